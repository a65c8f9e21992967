package storage

import (
	"errors"

	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
)

// ErrNotFound is returned when a looked-up entity does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for storage operations
type Store interface {
	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(user *models.User) error

	// OTP operations. IssueOTP marks every unused code for the same
	// (email, purpose) as used and inserts the new one as a single
	// atomic unit against the store. ConsumeOTP checks and flips the
	// matching active code in one atomic step and returns ErrNotFound
	// when no unused, unexpired row matches, including when a
	// concurrent call consumed it first.
	IssueOTP(otp *models.OTP) (*models.OTP, error)
	ConsumeOTP(email, code, purpose string) error
	GetActiveOTP(email, code, purpose string) (*models.OTP, error)
	UpdateOTP(otp *models.OTP) error

	// Payment operations
	CreatePayment(payment *models.Payment) (*models.Payment, error)
	GetPayment(id string) (*models.Payment, error)
	GetPaymentByGatewayRef(ref string) (*models.Payment, error)
	GetPayments(platform string) ([]*models.Payment, error)
	UpdatePayment(payment *models.Payment) error

	// Booking operations
	CreateBooking(booking *models.Booking) (*models.Booking, error)
	GetBooking(id string) (*models.Booking, error)
	UpdateBooking(booking *models.Booking) error

	// Notification operations. MarkNotificationRead only touches the
	// user's own notification; a foreign or unknown id is ErrNotFound.
	CreateNotification(n *models.Notification) (*models.Notification, error)
	GetNotificationsByUser(userID string) ([]*models.Notification, error)
	MarkNotificationRead(id, userID string) error
	MarkAllNotificationsRead(userID string) error
}
