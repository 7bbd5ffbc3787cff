package dto

import (
	"time"

	"github.com/google/uuid"
)

type AttachmentDTO struct {
	StorageKey  string `json:"storage_key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Description string `json:"description,omitempty"`
}

// SendChatRequest is the non-file part of the multipart form; files arrive
// under the "attachments" field.
type SendChatRequest struct {
	ChatroomId uuid.UUID `json:"chatroom_id" form:"chatroom_id" validate:"required"`
	Content    string    `json:"content" form:"content"`
}

type ChatMessageDTO struct {
	Id          uuid.UUID       `json:"id"`
	Role        string          `json:"role"`
	Content     string          `json:"content"`
	Attachments []AttachmentDTO `json:"attachments,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type SendChatResponse struct {
	ChatroomId uuid.UUID       `json:"chatroom_id"`
	Sent       *ChatMessageDTO `json:"sent"`
	Reply      *ChatMessageDTO `json:"reply"`
}

type GetChatHistoryResponse struct {
	ChatroomId uuid.UUID        `json:"chatroom_id"`
	Name       string           `json:"name"`
	Messages   []ChatMessageDTO `json:"messages"`
}

// SignedURLRequest asks for presigned URLs for a batch of storage keys.
type SignedURLRequest struct {
	StorageKeys []string `json:"storage_keys" validate:"required,min=1,max=50,dive,required"`
}

type SignedURLItem struct {
	StorageKey string    `json:"storage_key"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type SignedURLResponse struct {
	URLs []SignedURLItem `json:"urls"`
}

// ImageToTextResponse carries the model's description of an uploaded image.
type ImageToTextResponse struct {
	Description string `json:"description"`
}

// PublishAttachmentMessage is the payload published after a message with
// attachments is stored; the consumer backfills image descriptions.
type PublishAttachmentMessage struct {
	MessageId   uuid.UUID `json:"message_id"`
	UserId      uuid.UUID `json:"user_id"`
	StorageKeys []string  `json:"storage_keys"`
}
