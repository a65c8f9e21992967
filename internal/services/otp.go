package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
	"github.com/ndagijimanapazo/ikaze-backend/internal/storage"
	"github.com/ndagijimanapazo/ikaze-backend/internal/utils"
)

// Notifier pushes best-effort real-time notifications. *realtime.Hub
// implements it; failures never propagate to business operations.
type Notifier interface {
	SendNotification(userID, title, message, platformFilter, notifType string, data map[string]interface{})
	NotifyPayment(payment interface{})
}

var (
	// ErrInvalidOTP covers mismatch, reuse and expiry alike, so a
	// caller cannot tell which check failed.
	ErrInvalidOTP = errors.New("invalid or expired OTP")

	// ErrEmailAlreadyVerified rejects verification requests for
	// already verified accounts.
	ErrEmailAlreadyVerified = errors.New("email is already verified")
)

// OTPService drives the one-time-code lifecycle: per (email, purpose)
// at most one unused, unexpired code exists at any instant.
type OTPService struct {
	store    storage.Store
	mail     Mailer
	sms      SMSSender
	notifier Notifier

	// serializes issuance per (email, purpose); see issueLock
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOTPService creates a new OTP service
func NewOTPService(store storage.Store, mail Mailer, sms SMSSender, notifier Notifier) *OTPService {
	return &OTPService{
		store:    store,
		mail:     mail,
		sms:      sms,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
	}
}

// issueLock returns the mutex guarding issuance for one (email,
// purpose) pair. Entries are never dropped; the map is bounded by the
// set of distinct pairs seen by this process.
func (s *OTPService) issueLock(email, purpose string) *sync.Mutex {
	key := email + "\x00" + purpose
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Issue supersedes any active code for (email, purpose) and creates a
// fresh one with the given expiry window. The invalidate-then-insert
// sequence runs under a per-pair lock on top of the store's own
// transaction, so concurrent issuances cannot leave two active codes.
func (s *OTPService) Issue(email, purpose, platform string, ttl time.Duration) (*models.OTP, error) {
	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if purpose == models.OTPPurposeEmailVerification && user.IsEmailVerified {
		return nil, ErrEmailAlreadyVerified
	}

	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	otp := &models.OTP{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
		IsUsed:    false,
		UserID:    user.ID,
		Platform:  platform,
	}

	l := s.issueLock(email, purpose)
	l.Lock()
	defer l.Unlock()

	return s.store.IssueOTP(otp)
}

// Verify checks a submitted code and consumes it. Check and consume
// are one atomic store operation, so a code is consumed at most once
// even when the same code is verified concurrently. A wrong code, a
// used code and an expired code all fail identically. On
// EMAIL_VERIFICATION success the user is marked verified.
func (s *OTPService) Verify(email, code, purpose string) error {
	if err := s.store.ConsumeOTP(email, code, purpose); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrInvalidOTP
		}
		return err
	}

	if purpose == models.OTPPurposeEmailVerification {
		return s.markEmailVerified(email)
	}
	return nil
}

func (s *OTPService) markEmailVerified(email string) error {
	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	if user.IsEmailVerified {
		return nil
	}
	now := time.Now()
	user.IsEmailVerified = true
	user.EmailVerifiedAt = &now
	return s.store.UpdateUser(user)
}

// RequestEmailVerification issues and delivers a verification code.
func (s *OTPService) RequestEmailVerification(email, platform string) error {
	otp, err := s.Issue(email, models.OTPPurposeEmailVerification, platform, models.OTPDefaultTTL)
	if err != nil {
		return err
	}

	if err := s.mail.SendEmailVerificationOTP(email, otp.Code); err != nil {
		return err
	}

	s.pushOTP(otp, "Email Verification",
		fmt.Sprintf("Your email verification OTP is: %s", otp.Code))
	return nil
}

// RequestRegistrationVerification is the registration-flow variant
// with the shorter expiry window.
func (s *OTPService) RequestRegistrationVerification(email, platform string) error {
	otp, err := s.Issue(email, models.OTPPurposeEmailVerification, platform, models.OTPRegistrationTTL)
	if err != nil {
		return err
	}

	if err := s.mail.SendEmailVerificationOTP(email, otp.Code); err != nil {
		return err
	}

	s.pushOTP(otp, "Email Verification",
		fmt.Sprintf("Your email verification OTP is: %s", otp.Code))
	return nil
}

// RequestPasswordReset issues a reset code. Mobile users get the code
// by mail (plus push and SMS); web users get a reset link instead.
func (s *OTPService) RequestPasswordReset(email, platform string) error {
	otp, err := s.Issue(email, models.OTPPurposePasswordReset, platform, models.OTPDefaultTTL)
	if err != nil {
		return err
	}

	if platform == models.PlatformMobile {
		if err := s.mail.SendPasswordResetOTP(email, otp.Code); err != nil {
			return err
		}
		s.pushOTP(otp, "Password Reset",
			fmt.Sprintf("Your password reset OTP is: %s", otp.Code))
		return nil
	}

	return s.mail.SendPasswordResetLink(email, otp.Code)
}

// Resend reissues a code, superseding the previous one.
func (s *OTPService) Resend(email, purpose, platform string) error {
	otp, err := s.Issue(email, purpose, platform, models.OTPDefaultTTL)
	if err != nil {
		return err
	}

	if purpose == models.OTPPurposeEmailVerification {
		if err := s.mail.SendEmailVerificationOTP(email, otp.Code); err != nil {
			return err
		}
		s.pushOTP(otp, "Email Verification",
			fmt.Sprintf("Your new email verification OTP is: %s", otp.Code))
		return nil
	}

	if platform == models.PlatformMobile {
		if err := s.mail.SendPasswordResetOTP(email, otp.Code); err != nil {
			return err
		}
		s.pushOTP(otp, "Password Reset",
			fmt.Sprintf("Your new password reset OTP is: %s", otp.Code))
		return nil
	}

	return s.mail.SendPasswordResetLink(email, otp.Code)
}

// pushOTP delivers the real-time hint and, for mobile users with a
// phone on file, an SMS. Both are best-effort and never fail the
// issuance.
func (s *OTPService) pushOTP(otp *models.OTP, title, message string) {
	s.notifier.SendNotification(otp.UserID, title, message, otp.Platform, otp.Purpose,
		map[string]interface{}{"email": otp.Email})

	if otp.Platform != models.PlatformMobile {
		return
	}
	user, err := s.store.GetUser(otp.UserID)
	if err != nil || user.Phone == "" {
		return
	}
	if err := s.sms.SendOTPSMS(user.Phone, otp.Code); err != nil {
		log.Printf("Failed to send OTP SMS to %s: %v", user.Phone, err)
	}
}
