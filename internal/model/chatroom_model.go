package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chatroom struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string         `gorm:"type:text;not null"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"` // Owner, single-user rooms
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Chatroom) TableName() string {
	return "chatrooms"
}
