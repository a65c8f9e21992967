package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/ndagijimanapazo/ikaze-backend/internal/config"
)

// SMSSender is the optional SMS side channel for OTP delivery.
type SMSSender interface {
	SendOTPSMS(phone, code string) error
}

// SMSService sends SMS via Twilio. Without credentials it is created
// disabled and every send is a logged no-op, so SMS stays optional.
type SMSService struct {
	client *twilio.RestClient
	from   string
}

// NewSMSService creates the Twilio-backed SMS service.
func NewSMSService(cfg *config.Config) *SMSService {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFrom == "" {
		log.Println("⚠️  Twilio credentials not found - SMS delivery disabled")
		return &SMSService{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &SMSService{client: client, from: cfg.TwilioFrom}
}

// SendOTPSMS sends the verification code as a text message.
func (t *SMSService) SendOTPSMS(phone, code string) error {
	if t.client == nil {
		log.Printf("📱 [dev] SMS to %s skipped (Twilio disabled)", phone)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(phone)
	params.SetBody(fmt.Sprintf("Your verification code is: %s", code))

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send SMS: %v", err)
		return err
	}

	log.Printf("✅ SMS sent! SID: %s", *resp.Sid)
	return nil
}
