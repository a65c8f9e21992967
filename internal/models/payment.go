package models

import "time"

// Payment tracks a payment through its status lifecycle. Gateway
// mediated methods go PENDING -> PROCESSING -> SUCCESS/FAILED, manual
// methods go PENDING -> SUCCESS/FAILED directly. SUCCESS and FAILED
// are terminal.
type Payment struct {
	ID          string  `gorm:"primaryKey" json:"id"`
	UserID      string  `gorm:"index;not null" json:"user_id"`
	PlaceID     string  `gorm:"index" json:"place_id"`
	BookingID   string  `gorm:"index" json:"booking_id"`
	Amount      float64 `gorm:"not null" json:"amount"`
	Currency    string  `gorm:"default:usd" json:"currency"`
	Status      string  `gorm:"index;default:PENDING" json:"status"`
	Method      string  `gorm:"not null" json:"method"`
	GatewayRef  string  `gorm:"index" json:"gateway_ref,omitempty"` // payment intent ID
	Description string  `json:"description,omitempty"`
	ReceiptURL  string  `json:"receipt_url,omitempty"`
	Platform    string  `gorm:"index" json:"platform"`
	Metadata    string  `json:"-"` // JSON for method-specific extras

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment statuses
const (
	PaymentStatusPending    = "PENDING"
	PaymentStatusProcessing = "PROCESSING"
	PaymentStatusSuccess    = "SUCCESS"
	PaymentStatusFailed     = "FAILED"
)

// Payment methods
const (
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodCash         = "cash"
)

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusSuccess, PaymentStatusFailed:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodMobileMoney, PaymentMethodCash:
		return true
	}
	return false
}

// Terminal reports whether the payment reached a final status.
func (p *Payment) Terminal() bool {
	return p.Status == PaymentStatusSuccess || p.Status == PaymentStatusFailed
}

// statusRank orders statuses so transitions can only move forward.
var statusRank = map[string]int{
	PaymentStatusPending:    0,
	PaymentStatusProcessing: 1,
	PaymentStatusSuccess:    2,
	PaymentStatusFailed:     2,
}

// CanTransitionTo reports whether moving to next is a legal forward
// transition from the payment's current status.
func (p *Payment) CanTransitionTo(next string) bool {
	if p.Terminal() {
		return false
	}
	return statusRank[next] > statusRank[p.Status]
}

// PaymentRequest is the payment submission shape accepted by the API.
type PaymentRequest struct {
	UserID      string            `json:"userId"`
	PlaceID     string            `json:"placeId"`
	BookingID   string            `json:"bookingId"`
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	Method      string            `json:"method"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
