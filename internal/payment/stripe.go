// Package payment wraps the Stripe API behind a small interface so
// handlers and tests do not depend on the SDK directly.
package payment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// MinChargeCents is the smallest amount Stripe accepts for USD.
const MinChargeCents = 50

// ErrAmountTooSmall is returned before any API call when the amount
// is below the Stripe minimum.
var ErrAmountTooSmall = errors.New("charge amount below minimum")

// Charger performs card charges and hosted checkout sessions.
type Charger interface {
	// Charge captures amountCents immediately using a tokenized
	// payment method and returns the provider reference.
	Charge(amountCents uint32, paymentMethodID, description string) (string, error)
	// CreateCheckoutSession opens a hosted checkout page for the
	// amount and returns (sessionID, url).  The metadata is echoed
	// back on the completed session.
	CreateCheckoutSession(amountCents uint32, description string, metadata map[string]string) (string, string, error)
	// CheckoutSession fetches a session so callers can verify it
	// completed and read back the metadata.
	CheckoutSession(id string) (*stripe.CheckoutSession, error)
}

// StripeCharger is the live implementation backed by stripe-go.
type StripeCharger struct {
	successURL string
	cancelURL  string
}

// NewStripeCharger sets the package-level API key and returns a
// charger that sends checkout customers to the given URLs.
func NewStripeCharger(secretKey, successURL, cancelURL string) *StripeCharger {
	stripe.Key = secretKey
	return &StripeCharger{successURL: successURL, cancelURL: cancelURL}
}

// Charge creates and confirms a PaymentIntent in one call.  The
// idempotency key guards against double charges on client retries.
func (s *StripeCharger) Charge(amountCents uint32, paymentMethodID, description string) (string, error) {
	if amountCents < MinChargeCents {
		return "", ErrAmountTooSmall
	}
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(int64(amountCents)),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethod: stripe.String(paymentMethodID),
		Description:   stripe.String(description),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.SetIdempotencyKey(uuid.NewString())
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe charge: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("stripe charge not completed: status %s", pi.Status)
	}
	return pi.ID, nil
}

// CreateCheckoutSession opens a hosted payment page.
func (s *StripeCharger) CreateCheckoutSession(amountCents uint32, description string, metadata map[string]string) (string, string, error) {
	if amountCents < MinChargeCents {
		return "", "", ErrAmountTooSmall
	}
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(int64(amountCents)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(description),
				},
			},
		}},
	}
	params.Metadata = metadata
	params.SetIdempotencyKey(uuid.NewString())
	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe checkout session: %w", err)
	}
	return sess.ID, sess.URL, nil
}

// CheckoutSession retrieves a session by id.
func (s *StripeCharger) CheckoutSession(id string) (*stripe.CheckoutSession, error) {
	sess, err := session.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session lookup: %w", err)
	}
	return sess, nil
}
