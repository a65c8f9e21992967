package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"

	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
)

// PaymentIntent is the gateway's reference for a card payment.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentGateway abstracts the external payment provider so the
// payment service can be exercised without network access.
type PaymentGateway interface {
	// CreateIntent authorizes a card payment and returns the
	// provider reference. The call is bounded by the context.
	CreateIntent(ctx context.Context, amount float64, currency, platform string, metadata map[string]string) (*PaymentIntent, error)
}

const gatewayTimeout = 15 * time.Second

// minorUnits converts a major-unit amount to the smallest currency
// unit. Rounded, not truncated: 19.99 must become 1999 cents, and
// float multiplication alone lands it at 1998.999...
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// StripeGateway implements PaymentGateway against Stripe.
type StripeGateway struct{}

// NewStripeGateway configures the Stripe client. The secret key is
// required; startup fails before this point when it is missing.
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, currency, platform string, metadata map[string]string) (*PaymentIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	defer cancel()

	if currency == "" {
		currency = "usd"
	}

	methodTypes := []string{"card"}
	if platform == models.PlatformMobile {
		methodTypes = []string{"card", "mobile_money"}
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(minorUnits(amount)),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice(methodTypes),
	}
	params.Context = ctx
	params.AddMetadata("platform", platform)
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	return &PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
