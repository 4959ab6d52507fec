package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub tracks connected clients per account and fans notifications out to
// them. Redis relays messages between instances; with a nil client the hub
// degrades to single-instance delivery.
type Hub struct {
	// AccountID -> open connections (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

const clusterChannel = "cluster_events"

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.AccountID] = append(h.clients[client.AccountID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"account_id": client.AccountID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.AccountID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.AccountID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.AccountID]) == 0 {
					delete(h.clients, client.AccountID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"account_id": client.AccountID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send pushes a notification to every open connection of one account, here
// and on sibling instances via Redis.
func (h *Hub) Send(accountID uuid.UUID, notification dto.NotificationMessage) {
	data, _ := json.Marshal(notification)

	h.mu.RLock()
	clients, localFound := h.clients[accountID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"account_id": accountID})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_account_id": accountID.String(),
			"message":           json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), clusterChannel, payload)
	}
}

// subscribeToRedis delivers messages published by other instances to
// locally connected clients.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetAccountID string          `json:"target_account_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Malformed cluster message", map[string]interface{}{"error": err.Error()})
			continue
		}

		accountID, err := uuid.Parse(payload.TargetAccountID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[accountID]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
