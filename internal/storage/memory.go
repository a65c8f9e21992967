package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
)

// MemoryStore holds all data in memory, used for tests and local
// development (USE_MEMORY_STORE=true).
type MemoryStore struct {
	users         map[string]*models.User
	otps          map[uint]*models.OTP
	payments      map[string]*models.Payment
	bookings      map[string]*models.Booking
	notifications map[string]*models.Notification

	// Mutexes for thread safety
	userMu    sync.RWMutex
	otpMu     sync.Mutex
	paymentMu sync.RWMutex
	bookingMu sync.RWMutex
	notifMu   sync.RWMutex

	otpCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*models.User),
		otps:          make(map[uint]*models.OTP),
		payments:      make(map[string]*models.Payment),
		bookings:      make(map[string]*models.Booking),
		notifications: make(map[string]*models.Notification),
	}
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.users[user.ID] = &cp
	return user, nil
}

func (m *MemoryStore) GetUser(id string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.userMu.RLock()
	defer m.userMu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateUser(user *models.User) error {
	m.userMu.Lock()
	defer m.userMu.Unlock()

	if _, exists := m.users[user.ID]; !exists {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// OTP operations

// IssueOTP invalidates every active code for (email, purpose) and
// inserts the new one under a single lock, so two concurrent
// issuances can never both stay active.
func (m *MemoryStore) IssueOTP(otp *models.OTP) (*models.OTP, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	now := time.Now()
	for _, existing := range m.otps {
		if existing.Email == otp.Email && existing.Purpose == otp.Purpose && !existing.IsUsed {
			existing.IsUsed = true
			existing.UpdatedAt = now
		}
	}

	m.otpCounter++
	otp.ID = m.otpCounter
	otp.CreatedAt = now
	otp.UpdatedAt = now
	cp := *otp
	m.otps[otp.ID] = &cp
	return otp, nil
}

// ConsumeOTP flips the matching active code to used. Lookup and flip
// happen under one lock, so two concurrent calls cannot both consume
// the same code.
func (m *MemoryStore) ConsumeOTP(email, code, purpose string) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	now := time.Now()
	for _, otp := range m.otps {
		if otp.Email == email && otp.Code == code && otp.Purpose == purpose && otp.Active(now) {
			otp.IsUsed = true
			otp.UsedAt = &now
			otp.UpdatedAt = now
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) GetActiveOTP(email, code, purpose string) (*models.OTP, error) {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	now := time.Now()
	for _, otp := range m.otps {
		if otp.Email == email && otp.Code == code && otp.Purpose == purpose && otp.Active(now) {
			cp := *otp
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateOTP(otp *models.OTP) error {
	m.otpMu.Lock()
	defer m.otpMu.Unlock()

	if _, exists := m.otps[otp.ID]; !exists {
		return ErrNotFound
	}
	otp.UpdatedAt = time.Now()
	cp := *otp
	m.otps[otp.ID] = &cp
	return nil
}

// Payment operations

func (m *MemoryStore) CreatePayment(payment *models.Payment) (*models.Payment, error) {
	m.paymentMu.Lock()
	defer m.paymentMu.Unlock()

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	cp := *payment
	m.payments[payment.ID] = &cp
	return payment, nil
}

func (m *MemoryStore) GetPayment(id string) (*models.Payment, error) {
	m.paymentMu.RLock()
	defer m.paymentMu.RUnlock()

	payment, exists := m.payments[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *payment
	return &cp, nil
}

func (m *MemoryStore) GetPaymentByGatewayRef(ref string) (*models.Payment, error) {
	m.paymentMu.RLock()
	defer m.paymentMu.RUnlock()

	for _, payment := range m.payments {
		if payment.GatewayRef == ref {
			cp := *payment
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetPayments(platform string) ([]*models.Payment, error) {
	m.paymentMu.RLock()
	defer m.paymentMu.RUnlock()

	var payments []*models.Payment
	for _, payment := range m.payments {
		if platform != "" && payment.Platform != platform {
			continue
		}
		cp := *payment
		payments = append(payments, &cp)
	}
	// Newest first, matching the database store ordering
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}

func (m *MemoryStore) UpdatePayment(payment *models.Payment) error {
	m.paymentMu.Lock()
	defer m.paymentMu.Unlock()

	if _, exists := m.payments[payment.ID]; !exists {
		return ErrNotFound
	}
	payment.UpdatedAt = time.Now()
	cp := *payment
	m.payments[payment.ID] = &cp
	return nil
}

// Booking operations

func (m *MemoryStore) CreateBooking(booking *models.Booking) (*models.Booking, error) {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	cp := *booking
	m.bookings[booking.ID] = &cp
	return booking, nil
}

func (m *MemoryStore) GetBooking(id string) (*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	booking, exists := m.bookings[id]
	if !exists {
		return nil, ErrNotFound
	}
	cp := *booking
	return &cp, nil
}

func (m *MemoryStore) UpdateBooking(booking *models.Booking) error {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	if _, exists := m.bookings[booking.ID]; !exists {
		return ErrNotFound
	}
	booking.UpdatedAt = time.Now()
	cp := *booking
	m.bookings[booking.ID] = &cp
	return nil
}

// Notification operations

func (m *MemoryStore) CreateNotification(n *models.Notification) (*models.Notification, error) {
	m.notifMu.Lock()
	defer m.notifMu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	cp := *n
	m.notifications[n.ID] = &cp
	return n, nil
}

func (m *MemoryStore) GetNotificationsByUser(userID string) ([]*models.Notification, error) {
	m.notifMu.RLock()
	defer m.notifMu.RUnlock()

	var result []*models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			cp := *n
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MemoryStore) MarkNotificationRead(id, userID string) error {
	m.notifMu.Lock()
	defer m.notifMu.Unlock()

	n, exists := m.notifications[id]
	if !exists || n.UserID != userID {
		return ErrNotFound
	}
	n.Read = true
	n.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) MarkAllNotificationsRead(userID string) error {
	m.notifMu.Lock()
	defer m.notifMu.Unlock()

	now := time.Now()
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			n.UpdatedAt = now
		}
	}
	return nil
}
