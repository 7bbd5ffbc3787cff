package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ATTACHMENT_UPLOADED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeAttachmentUploaded = "ATTACHMENT_UPLOADED"
	TypeChatroomDeleted    = "CHATROOM_DELETED"
	TypeChatReply          = "CHAT_REPLY"
)

// NewAttachmentUploaded is emitted after a message with attachments is
// persisted; consumers backfill image descriptions asynchronously.
func NewAttachmentUploaded(messageID, userID string, storageKeys []string) Event {
	return BaseEvent{
		Type: TypeAttachmentUploaded,
		Data: map[string]interface{}{
			"message_id":   messageID,
			"user_id":      userID,
			"storage_keys": storageKeys,
		},
		OccurredAt: time.Now(),
	}
}

// NewChatroomDeleted is emitted after a chatroom cascade completes.
func NewChatroomDeleted(chatroomID, userID string, messagesDeleted int64, attachmentsDeleted int) Event {
	return BaseEvent{
		Type: TypeChatroomDeleted,
		Data: map[string]interface{}{
			"chatroom_id":         chatroomID,
			"user_id":             userID,
			"messages_deleted":    messagesDeleted,
			"attachments_deleted": attachmentsDeleted,
		},
		OccurredAt: time.Now(),
	}
}

// NewChatReply is emitted after the assistant's reply is persisted.
func NewChatReply(chatroomID, messageID string) Event {
	return BaseEvent{
		Type: TypeChatReply,
		Data: map[string]interface{}{
			"chatroom_id": chatroomID,
			"message_id":  messageID,
		},
		OccurredAt: time.Now(),
	}
}
