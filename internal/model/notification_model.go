package model

import "time"

// Notification is a realtime push payload. It is never persisted; it exists
// only on the wire between the hub and connected clients.
type Notification struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
