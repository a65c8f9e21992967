package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ndagijimanapazo/ikaze-backend/internal/config"
	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
	"github.com/ndagijimanapazo/ikaze-backend/internal/storage"
)

var (
	// ErrInvalidPaymentMethod rejects unknown payment methods.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidTransition rejects backward moves and any move out
	// of a terminal status.
	ErrInvalidTransition = errors.New("invalid payment status transition")
)

// PaymentService advances payments through their status lifecycle and
// cascades confirmed payments onto the linked booking.
type PaymentService struct {
	store    storage.Store
	gateway  PaymentGateway
	notifier Notifier

	bankAccountName   string
	bankAccountNumber string
	bankName          string
}

// NewPaymentService creates a new payment service
func NewPaymentService(store storage.Store, gateway PaymentGateway, notifier Notifier, cfg *config.Config) *PaymentService {
	return &PaymentService{
		store:             store,
		gateway:           gateway,
		notifier:          notifier,
		bankAccountName:   cfg.BankAccountName,
		bankAccountNumber: cfg.BankAccountNumber,
		bankName:          cfg.BankName,
	}
}

// ProcessResult is what the API returns for a submitted payment. The
// populated fields depend on the method.
type ProcessResult struct {
	PaymentID    string                 `json:"paymentId"`
	Status       string                 `json:"status"`
	Platform     string                 `json:"platform"`
	ClientSecret string                 `json:"clientSecret,omitempty"`
	Instructions string                 `json:"instructions,omitempty"`
	BankDetails  map[string]string      `json:"bankDetails,omitempty"`
	MobileMoney  map[string]interface{} `json:"mobileMoneyDetails,omitempty"`
}

// Process persists a new PENDING payment and dispatches it per
// method. Card payments go through the gateway and move to
// PROCESSING; a gateway failure marks the payment FAILED and is
// surfaced to the caller. Offline methods stay PENDING and return
// manual-completion instructions.
func (s *PaymentService) Process(ctx context.Context, req *models.PaymentRequest, platform string) (*ProcessResult, error) {
	if !models.ValidPaymentMethod(req.Method) {
		return nil, ErrInvalidPaymentMethod
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	payment := &models.Payment{
		UserID:      req.UserID,
		PlaceID:     req.PlaceID,
		BookingID:   req.BookingID,
		Amount:      req.Amount,
		Currency:    currency,
		Status:      models.PaymentStatusPending,
		Method:      req.Method,
		Description: req.Description,
		Platform:    platform,
	}
	if len(req.Metadata) > 0 {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("invalid payment metadata: %w", err)
		}
		payment.Metadata = string(raw)
	}

	payment, err := s.store.CreatePayment(payment)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	switch req.Method {
	case models.PaymentMethodCard:
		return s.processCard(ctx, payment, req.Metadata)
	case models.PaymentMethodBankTransfer:
		return s.processBankTransfer(payment)
	default: // mobile money, cash
		return s.processMobileOrCash(payment, req.Metadata)
	}
}

func (s *PaymentService) processCard(ctx context.Context, payment *models.Payment, metadata map[string]string) (*ProcessResult, error) {
	gwMeta := map[string]string{
		"bookingId": payment.BookingID,
		"userId":    payment.UserID,
	}
	for k, v := range metadata {
		gwMeta[k] = v
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.Amount, payment.Currency, payment.Platform, gwMeta)
	if err != nil {
		payment.Status = models.PaymentStatusFailed
		if uerr := s.store.UpdatePayment(payment); uerr != nil {
			log.Printf("Failed to mark payment %s as failed: %v", payment.ID, uerr)
		}
		return nil, fmt.Errorf("payment gateway error: %w", err)
	}

	payment.GatewayRef = intent.ID
	payment.Status = models.PaymentStatusProcessing
	if err := s.store.UpdatePayment(payment); err != nil {
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	log.Printf("Payment intent created: %s for payment %s", intent.ID, payment.ID)
	return &ProcessResult{
		PaymentID:    payment.ID,
		Status:       payment.Status,
		Platform:     payment.Platform,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (s *PaymentService) processBankTransfer(payment *models.Payment) (*ProcessResult, error) {
	return &ProcessResult{
		PaymentID:    payment.ID,
		Status:       payment.Status,
		Platform:     payment.Platform,
		Instructions: "Transfer the amount to the account below and quote the payment ID as reference.",
		BankDetails: map[string]string{
			"accountName":   s.bankAccountName,
			"accountNumber": s.bankAccountNumber,
			"bankName":      s.bankName,
		},
	}, nil
}

func (s *PaymentService) processMobileOrCash(payment *models.Payment, metadata map[string]string) (*ProcessResult, error) {
	result := &ProcessResult{
		PaymentID: payment.ID,
		Status:    payment.Status,
		Platform:  payment.Platform,
	}

	if payment.Method == models.PaymentMethodMobileMoney {
		provider := metadata["provider"]
		if provider == "" {
			provider = "default"
		}
		result.MobileMoney = map[string]interface{}{
			"provider":    provider,
			"phoneNumber": metadata["phoneNumber"],
		}
		result.Instructions = "Confirm the payment on your mobile money account."
	} else {
		result.Instructions = "Payment will be collected in cash on arrival."
	}
	return result, nil
}

// UpdateStatus is the administrative transition path. Transitions are
// forward-only and terminal statuses are immutable; repeating the
// current status is an idempotent no-op. A move to SUCCESS confirms
// the linked booking exactly once and pushes the payment
// notifications.
func (s *PaymentService) UpdateStatus(id, status string) (*models.Payment, error) {
	if !models.ValidPaymentStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	payment, err := s.store.GetPayment(id)
	if err != nil {
		return nil, err
	}

	if payment.Status == status {
		return payment, nil
	}
	if !payment.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, payment.Status, status)
	}

	payment.Status = status
	if err := s.store.UpdatePayment(payment); err != nil {
		return nil, err
	}

	if status == models.PaymentStatusSuccess {
		s.applySuccess(payment)
	}
	return payment, nil
}

// ProcessGatewayEvent maps a gateway webhook event onto the status
// lifecycle.
func (s *PaymentService) ProcessGatewayEvent(eventType, gatewayRef string) error {
	payment, err := s.store.GetPaymentByGatewayRef(gatewayRef)
	if err != nil {
		return fmt.Errorf("payment for gateway ref %s: %w", gatewayRef, err)
	}

	switch eventType {
	case "payment_intent.succeeded":
		_, err = s.UpdateStatus(payment.ID, models.PaymentStatusSuccess)
	case "payment_intent.payment_failed":
		_, err = s.UpdateStatus(payment.ID, models.PaymentStatusFailed)
	default:
		log.Printf("Unhandled gateway event: %s", eventType)
		return nil
	}
	return err
}

// applySuccess runs the confirmed-payment side effects. Booking
// confirmation is idempotent; the notification pushes are
// best-effort.
func (s *PaymentService) applySuccess(payment *models.Payment) {
	s.confirmBooking(payment)

	if _, err := s.store.CreateNotification(&models.Notification{
		UserID:  payment.UserID,
		Title:   "Payment Successful",
		Message: fmt.Sprintf("Your payment of %.2f %s was successful.", payment.Amount, payment.Currency),
		Type:    "payment",
	}); err != nil {
		log.Printf("Failed to record payment notification: %v", err)
	}

	s.notifier.SendNotification(payment.UserID, "Payment Successful",
		fmt.Sprintf("Your payment of %.2f %s was successful.", payment.Amount, payment.Currency),
		"", "payment", map[string]interface{}{
			"paymentId":        payment.ID,
			"bookingId":        payment.BookingID,
			"receiptAvailable": true,
		})
	s.notifier.NotifyPayment(payment)
}

// confirmBooking transitions the linked booking to confirmed, once.
func (s *PaymentService) confirmBooking(payment *models.Payment) {
	if payment.BookingID == "" {
		return
	}

	booking, err := s.store.GetBooking(payment.BookingID)
	if err != nil {
		log.Printf("Booking %s for payment %s not found: %v", payment.BookingID, payment.ID, err)
		return
	}
	if booking.Status == models.BookingStatusConfirmed {
		return
	}

	booking.Status = models.BookingStatusConfirmed
	booking.PaymentID = payment.ID
	if err := s.store.UpdateBooking(booking); err != nil {
		log.Printf("Failed to confirm booking %s: %v", booking.ID, err)
		return
	}
	log.Printf("Booking %s confirmed by payment %s", booking.ID, payment.ID)
}

// Get returns a payment by ID.
func (s *PaymentService) Get(id string) (*models.Payment, error) {
	return s.store.GetPayment(id)
}

// List returns payments, newest first, optionally filtered by
// platform.
func (s *PaymentService) List(platform string) ([]*models.Payment, error) {
	return s.store.GetPayments(platform)
}

// Receipt is the generated receipt descriptor.
type Receipt struct {
	ReceiptID   string          `json:"receiptId"`
	Payment     *models.Payment `json:"payment"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Platform    string          `json:"platform"`
	Format      string          `json:"format"`
	DownloadURL string          `json:"downloadUrl"`
}

// GenerateReceipt builds a platform-appropriate receipt for a
// payment.
func (s *PaymentService) GenerateReceipt(id string) (*Receipt, error) {
	payment, err := s.store.GetPayment(id)
	if err != nil {
		return nil, err
	}

	platform := payment.Platform
	if platform == "" {
		platform = models.PlatformWeb
	}

	receipt := &Receipt{
		ReceiptID:   fmt.Sprintf("REC-%d", time.Now().UnixMilli()),
		Payment:     payment,
		GeneratedAt: time.Now(),
		Platform:    platform,
	}
	if platform == models.PlatformMobile {
		receipt.Format = "mobile"
		receipt.DownloadURL = fmt.Sprintf("receipts/mobile/%s.pdf", payment.ID)
	} else {
		receipt.Format = "pdf"
		receipt.DownloadURL = fmt.Sprintf("receipts/web/%s.pdf", payment.ID)
	}
	return receipt, nil
}
