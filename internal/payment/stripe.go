package payment

import (
    "context"
    "fmt"
    "strconv"

    "github.com/stripe/stripe-go/v82"
    "github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway implements Gateway on top of Stripe PaymentIntents.
// The intent's client secret doubles as the session token returned to
// the UI; reservation coordinates ride along in the intent metadata so
// the webhook edge can rebuild the callback payload.
type StripeGateway struct{}

// NewStripeGateway configures the global Stripe key and returns a
// gateway.  The secret key is required.
func NewStripeGateway(secretKey string) (*StripeGateway, error) {
    if secretKey == "" {
        return nil, fmt.Errorf("stripe secret key is required")
    }
    stripe.Key = secretKey
    return &StripeGateway{}, nil
}

// CreateSession creates a PaymentIntent for the held amount.  Any
// gateway error is returned as-is; the caller releases the hold.
func (g *StripeGateway) CreateSession(ctx context.Context, amountCents int64, currency string, meta OrderMetadata) (*Session, error) {
    params := &stripe.PaymentIntentParams{
        Amount:   stripe.Int64(amountCents),
        Currency: stripe.String(currency),
        AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
            Enabled: stripe.Bool(true),
        },
        Description:  stripe.String(fmt.Sprintf("Seat %s", meta.SeatCode)),
        ReceiptEmail: stripe.String(meta.BuyerEmail),
        Metadata: map[string]string{
            "order_ref": meta.OrderRef,
            "event_id":  strconv.FormatUint(meta.EventID, 10),
            "seat_code": meta.SeatCode,
        },
    }
    params.Context = ctx

    pi, err := paymentintent.New(params)
    if err != nil {
        return nil, fmt.Errorf("create payment intent: %w", err)
    }
    return &Session{Token: pi.ClientSecret}, nil
}
