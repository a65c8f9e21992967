package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment configuration for the backend.
type Config struct {
	// Server
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	AppName     string `envconfig:"APP_NAME" default:"Ikaze App"`

	// Storage
	UseMemoryStore bool `envconfig:"USE_MEMORY_STORE"`

	// Auth - same secret as the REST layer, also used by the
	// websocket handshake
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// Stripe
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY" required:"true"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	// Mail (SMTP). When MAIL_HOST is empty mails are logged instead
	// of sent, for local development.
	MailHost     string `envconfig:"MAIL_HOST"`
	MailPort     int    `envconfig:"MAIL_PORT" default:"587"`
	MailUser     string `envconfig:"MAIL_USER"`
	MailPassword string `envconfig:"MAIL_PASSWORD"`
	MailFrom     string `envconfig:"MAIL_FROM" default:"noreply@example.com"`
	SupportEmail string `envconfig:"SUPPORT_EMAIL"`
	WebAppURL    string `envconfig:"WEB_APP_URL" default:"http://localhost:3000"`

	// Twilio (optional, SMS delivery of OTPs to mobile users)
	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `envconfig:"TWILIO_PHONE_NUMBER"`

	// Bank transfer instructions returned for manual payments
	BankAccountName   string `envconfig:"BANK_ACCOUNT_NAME"`
	BankAccountNumber string `envconfig:"BANK_ACCOUNT_NUMBER"`
	BankName          string `envconfig:"BANK_NAME"`
}

// Load reads configuration from the environment. Required keys that
// are missing make startup fail hard.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
