package models

import "time"

// Notification is the persisted record of a notification shown in the
// user's inbox. Real-time delivery over the websocket is separate and
// best-effort; this row is what survives a disconnect.
type Notification struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index" json:"user_id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `gorm:"not null" json:"message"`
	Type      string    `gorm:"default:info" json:"type"` // info, booking, payment, review
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
