package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// User operations

func (d *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := d.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (d *DatabaseStore) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (d *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := d.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (d *DatabaseStore) UpdateUser(user *models.User) error {
	return translate(d.db.Save(user).Error)
}

// OTP operations

// IssueOTP runs the invalidate-then-insert sequence in one
// transaction. The OTP service additionally serializes issuance per
// (email, purpose), so two concurrent requests cannot both insert.
func (d *DatabaseStore) IssueOTP(otp *models.OTP) (*models.OTP, error) {
	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OTP{}).
			Where("email = ? AND purpose = ? AND is_used = ?", otp.Email, otp.Purpose, false).
			Update("is_used", true).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
	if err != nil {
		return nil, err
	}
	return otp, nil
}

// ConsumeOTP consumes the matching active code with one conditional
// update. Concurrent verifications race on the database row, not on a
// read-then-write window, so at most one of them sees RowsAffected==1.
func (d *DatabaseStore) ConsumeOTP(email, code, purpose string) error {
	now := time.Now()
	res := d.db.Model(&models.OTP{}).
		Where("email = ? AND code = ? AND purpose = ? AND is_used = ? AND expires_at > ?",
			email, code, purpose, false, now).
		Updates(map[string]interface{}{"is_used": true, "used_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) GetActiveOTP(email, code, purpose string) (*models.OTP, error) {
	var otp models.OTP
	err := d.db.
		Where("email = ? AND code = ? AND purpose = ? AND is_used = ? AND expires_at > ?",
			email, code, purpose, false, time.Now()).
		First(&otp).Error
	if err != nil {
		return nil, translate(err)
	}
	return &otp, nil
}

func (d *DatabaseStore) UpdateOTP(otp *models.OTP) error {
	return translate(d.db.Save(otp).Error)
}

// Payment operations

func (d *DatabaseStore) CreatePayment(payment *models.Payment) (*models.Payment, error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if err := d.db.Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (d *DatabaseStore) GetPayment(id string) (*models.Payment, error) {
	var payment models.Payment
	if err := d.db.First(&payment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (d *DatabaseStore) GetPaymentByGatewayRef(ref string) (*models.Payment, error) {
	var payment models.Payment
	if err := d.db.First(&payment, "gateway_ref = ?", ref).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (d *DatabaseStore) GetPayments(platform string) ([]*models.Payment, error) {
	var payments []*models.Payment
	q := d.db.Order("created_at DESC")
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (d *DatabaseStore) UpdatePayment(payment *models.Payment) error {
	return translate(d.db.Save(payment).Error)
}

// Booking operations

func (d *DatabaseStore) CreateBooking(booking *models.Booking) (*models.Booking, error) {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	if err := d.db.Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (d *DatabaseStore) GetBooking(id string) (*models.Booking, error) {
	var booking models.Booking
	if err := d.db.First(&booking, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (d *DatabaseStore) UpdateBooking(booking *models.Booking) error {
	return translate(d.db.Save(booking).Error)
}

// Notification operations

func (d *DatabaseStore) CreateNotification(n *models.Notification) (*models.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := d.db.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (d *DatabaseStore) GetNotificationsByUser(userID string) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := d.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (d *DatabaseStore) MarkNotificationRead(id, userID string) error {
	res := d.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) MarkAllNotificationsRead(userID string) error {
	return d.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
