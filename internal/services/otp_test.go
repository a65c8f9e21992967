package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
	"github.com/ndagijimanapazo/ikaze-backend/internal/storage"
)

type fakeMailer struct {
	mu                sync.Mutex
	verificationSends []string
	resetOTPSends     []string
	resetLinkSends    []string
}

func (f *fakeMailer) SendEmailVerificationOTP(to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verificationSends = append(f.verificationSends, code)
	return nil
}

func (f *fakeMailer) SendPasswordResetOTP(to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetOTPSends = append(f.resetOTPSends, code)
	return nil
}

func (f *fakeMailer) SendPasswordResetLink(to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLinkSends = append(f.resetLinkSends, token)
	return nil
}

type fakeSMS struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeSMS) SendOTPSMS(phone, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, code)
	return nil
}

type notifierCall struct {
	userID, title, message, platformFilter, notifType string
}

type fakeNotifier struct {
	mu       sync.Mutex
	calls    []notifierCall
	payments []interface{}
}

func (f *fakeNotifier) SendNotification(userID, title, message, platformFilter, notifType string, data map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifierCall{userID, title, message, platformFilter, notifType})
}

func (f *fakeNotifier) NotifyPayment(payment interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, payment)
}

func newOTPFixture(t *testing.T) (*OTPService, storage.Store, *fakeMailer, *fakeSMS, *fakeNotifier) {
	t.Helper()
	store := storage.NewMemoryStore()
	mailer := &fakeMailer{}
	sms := &fakeSMS{}
	notifier := &fakeNotifier{}

	_, err := store.CreateUser(&models.User{
		ID:    "u1",
		Email: "a@x.com",
		Phone: "+250780000000",
	})
	require.NoError(t, err)

	return NewOTPService(store, mailer, sms, notifier), store, mailer, sms, notifier
}

func TestIssueGeneratesSixDigitCode(t *testing.T) {
	svc, _, _, _, _ := newOTPFixture(t)

	otp, err := svc.Issue("a@x.com", models.OTPPurposeEmailVerification, models.PlatformWeb, models.OTPDefaultTTL)
	require.NoError(t, err)

	assert.Len(t, otp.Code, 6)
	assert.Regexp(t, `^\d{6}$`, otp.Code)
	assert.WithinDuration(t, time.Now().Add(models.OTPDefaultTTL), otp.ExpiresAt, 2*time.Second)
	assert.Equal(t, "u1", otp.UserID)
}

func TestIssueUnknownUserFails(t *testing.T) {
	svc, _, _, _, _ := newOTPFixture(t)

	_, err := svc.Issue("nobody@x.com", models.OTPPurposePasswordReset, models.PlatformWeb, models.OTPDefaultTTL)
	assert.Error(t, err)
}

func TestIssueSupersedesPreviousCode(t *testing.T) {
	svc, _, _, _, _ := newOTPFixture(t)

	first, err := svc.Issue("a@x.com", models.OTPPurposeEmailVerification, models.PlatformWeb, models.OTPDefaultTTL)
	require.NoError(t, err)
	second, err := svc.Issue("a@x.com", models.OTPPurposeEmailVerification, models.PlatformWeb, models.OTPDefaultTTL)
	require.NoError(t, err)

	// Only the second code verifies; the first was invalidated at
	// issuance time
	if first.Code != second.Code {
		err = svc.Verify("a@x.com", first.Code, models.OTPPurposeEmailVerification)
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}

	err = svc.Verify("a@x.com", second.Code, models.OTPPurposeEmailVerification)
	assert.NoError(t, err)
}

func TestVerifyIsSingleUse(t *testing.T) {
	svc, _, _, _, _ := newOTPFixture(t)

	otp, err := svc.Issue("a@x.com", models.OTPPurposePasswordReset, models.PlatformWeb, models.OTPDefaultTTL)
	require.NoError(t, err)

	require.NoError(t, svc.Verify("a@x.com", otp.Code, models.OTPPurposePasswordReset))

	// Same code again must fail
	err = svc.Verify("a@x.com", otp.Code, models.OTPPurposePasswordReset)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestConcurrentVerifyConsumesOnce(t *testing.T) {
	svc, _, _, _, _ := newOTPFixture(t)

	otp, err := svc.Issue("a@x.com", models.OTPPurposePasswordReset, models.PlatformWeb, models.OTPDefaultTTL)
	require.NoError(t, err)

	const verifiers = 8
	start := make(chan struct{})
	results := make([]error, verifiers)

	var wg sync.WaitGroup
	for i := 0; i < verifiers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = svc.Verify("a@x.com", otp.Code, models.OTPPurposePasswordReset)
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInvalidOTP)
		}
	}
	assert.Equal(t, 1, succeeded, "a code must be consumed exactly once")
}

func TestVerifyExpiredCodeFails(t *testing.T) {
	svc, store, _, _, _ := newOTPFixture(t)

	otp, err := svc.Issue("a@x.com", models.OTPPurposePasswordReset, models.PlatformWeb, models.OTPDefaultTTL)
	require.NoError(t, err)

	// Force the code into the past; correct code and email no
	// longer matter
	otp.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.UpdateOTP(otp))

	err = svc.Verify("a@x.com", otp.Code, models.OTPPurposePasswordReset)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyWrongCodeFails(t *testing.T) {
	svc, _, _, _, _ := newOTPFixture(t)

	otp, err := svc.Issue("a@x.com", models.OTPPurposePasswordReset, models.PlatformWeb, models.OTPDefaultTTL)
	require.NoError(t, err)

	wrong := "000000"
	if otp.Code == wrong {
		wrong = "000001"
	}
	err = svc.Verify("a@x.com", wrong, models.OTPPurposePasswordReset)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	// Purpose mismatch fails the same generic way
	err = svc.Verify("a@x.com", otp.Code, models.OTPPurposeEmailVerification)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyEmailVerificationMarksUserVerified(t *testing.T) {
	svc, store, _, _, _ := newOTPFixture(t)

	otp, err := svc.Issue("a@x.com", models.OTPPurposeEmailVerification, models.PlatformWeb, models.OTPDefaultTTL)
	require.NoError(t, err)
	require.NoError(t, svc.Verify("a@x.com", otp.Code, models.OTPPurposeEmailVerification))

	user, err := store.GetUserByEmail("a@x.com")
	require.NoError(t, err)
	assert.True(t, user.IsEmailVerified)
	require.NotNil(t, user.EmailVerifiedAt)

	// A verified account cannot request another verification code
	_, err = svc.Issue("a@x.com", models.OTPPurposeEmailVerification, models.PlatformWeb, models.OTPDefaultTTL)
	assert.ErrorIs(t, err, ErrEmailAlreadyVerified)
}

func TestConcurrentIssueLeavesOneActiveCode(t *testing.T) {
	svc, store, _, _, _ := newOTPFixture(t)

	const issuers = 20
	codes := make([]string, issuers)
	errs := make([]error, issuers)

	var wg sync.WaitGroup
	for i := 0; i < issuers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			otp, err := svc.Issue("a@x.com", models.OTPPurposePasswordReset, models.PlatformWeb, models.OTPDefaultTTL)
			if err != nil {
				errs[i] = err
				return
			}
			codes[i] = otp.Code
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	active := map[string]bool{}
	for _, code := range codes {
		if _, err := store.GetActiveOTP("a@x.com", code, models.OTPPurposePasswordReset); err == nil {
			active[code] = true
		}
	}
	assert.Len(t, active, 1, "exactly one code may remain active after concurrent issuance")
}

func TestRequestPasswordResetMobileDelivery(t *testing.T) {
	svc, _, mailer, sms, notifier := newOTPFixture(t)

	require.NoError(t, svc.RequestPasswordReset("a@x.com", models.PlatformMobile))

	assert.Len(t, mailer.resetOTPSends, 1)
	assert.Empty(t, mailer.resetLinkSends)
	assert.Len(t, sms.sends, 1)

	require.Len(t, notifier.calls, 1)
	call := notifier.calls[0]
	assert.Equal(t, "u1", call.userID)
	assert.Equal(t, "Password Reset", call.title)
	assert.Equal(t, models.PlatformMobile, call.platformFilter)
	assert.Equal(t, models.OTPPurposePasswordReset, call.notifType)
}

func TestRequestPasswordResetWebSendsLink(t *testing.T) {
	svc, _, mailer, sms, notifier := newOTPFixture(t)

	require.NoError(t, svc.RequestPasswordReset("a@x.com", models.PlatformWeb))

	assert.Len(t, mailer.resetLinkSends, 1)
	assert.Empty(t, mailer.resetOTPSends)
	assert.Empty(t, sms.sends)
	assert.Empty(t, notifier.calls)
}

func TestResendSupersedes(t *testing.T) {
	svc, _, mailer, _, _ := newOTPFixture(t)

	require.NoError(t, svc.RequestEmailVerification("a@x.com", models.PlatformMobile))
	require.NoError(t, svc.Resend("a@x.com", models.OTPPurposeEmailVerification, models.PlatformMobile))

	require.Len(t, mailer.verificationSends, 2)
	first, second := mailer.verificationSends[0], mailer.verificationSends[1]

	err := svc.Verify("a@x.com", first, models.OTPPurposeEmailVerification)
	if first != second {
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}
	assert.NoError(t, svc.Verify("a@x.com", second, models.OTPPurposeEmailVerification))
}

func TestRegistrationVariantUsesShorterWindow(t *testing.T) {
	svc, store, _, _, _ := newOTPFixture(t)

	require.NoError(t, svc.RequestRegistrationVerification("a@x.com", models.PlatformMobile))

	// Recover the issued code from the store via the mailer-free
	// path: issue again and inspect expiry of a fresh issuance
	otp, err := svc.Issue("a@x.com", models.OTPPurposeEmailVerification, models.PlatformMobile, models.OTPRegistrationTTL)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(models.OTPRegistrationTTL), otp.ExpiresAt, 2*time.Second)

	_, err = store.GetActiveOTP("a@x.com", otp.Code, models.OTPPurposeEmailVerification)
	assert.NoError(t, err)
}
