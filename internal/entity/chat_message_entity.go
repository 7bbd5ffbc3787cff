package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Attachment is embedded in a message; the blob itself lives in object
// storage under StorageKey. The key encodes the uploader's user id, which
// is the fast-path authorization signal.
type Attachment struct {
	StorageKey  string `json:"storage_key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Description string `json:"description,omitempty"`
}

type ChatMessage struct {
	Id          uuid.UUID
	ChatroomId  uuid.UUID
	Content     string
	Role        MessageRole
	Attachments []Attachment
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
