package models

import "time"

// Booking is the external entity the payment state machine cascades
// onto: a succeeded payment confirms its linked booking exactly once.
type Booking struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index;not null" json:"user_id"`
	PlaceID     string    `gorm:"index;not null" json:"place_id"`
	Status      string    `gorm:"default:pending" json:"status"`
	BookingDate time.Time `json:"booking_date"`
	Guests      int       `json:"guests,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	PaymentID   string    `json:"payment_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingStatus constants
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)
