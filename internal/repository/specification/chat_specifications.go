package specification

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatroomID struct {
	ChatroomID uuid.UUID
}

func (s ByChatroomID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chatroom_id = ?", s.ChatroomID)
}

// ByAttachmentKey matches messages whose attachments JSON references the
// given storage key. Drives the slow-path access check.
type ByAttachmentKey struct {
	StorageKey string
}

func (s ByAttachmentKey) Apply(db *gorm.DB) *gorm.DB {
	probe, _ := json.Marshal([]map[string]string{{"storage_key": s.StorageKey}})
	return db.Where("attachments @> ?", string(probe))
}

// WithAttachments keeps only messages carrying at least one attachment.
type WithAttachments struct{}

func (s WithAttachments) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("attachments IS NOT NULL AND jsonb_array_length(attachments) > 0")
}
