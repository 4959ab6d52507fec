package dto

// NotificationMessage is the envelope pushed to websocket clients.
type NotificationMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}
