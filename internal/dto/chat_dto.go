package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

type AskResponse struct {
	Reply              string    `json:"reply"`
	UserMessageId      uuid.UUID `json:"user_message_id"`
	AssistantMessageId uuid.UUID `json:"assistant_message_id"`
}

type HistoryMessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
