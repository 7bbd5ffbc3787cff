package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChatroomRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type CreateChatroomResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateChatroomRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type ChatroomResponse struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// DeleteChatroomRequest tunes the cascade. DeleteAttachments controls whether
// stored blobs are removed alongside the rows; Force lets the row deletion
// proceed even when the blob batch fails.
type DeleteChatroomRequest struct {
	DeleteAttachments bool `json:"delete_attachments"`
	Force             bool `json:"force"`
}

// DeleteChatroomResult reports what the cascade actually removed.
type DeleteChatroomResult struct {
	ChatroomId         uuid.UUID `json:"chatroom_id"`
	MessagesDeleted    int64     `json:"messages_deleted"`
	AttachmentsDeleted int       `json:"attachments_deleted"`
	Forced             bool      `json:"forced"`
	Warnings           []string  `json:"warnings,omitempty"`
}
