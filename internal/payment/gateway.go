// Package payment adapts the external payment gateway.  The booking core
// only needs two things from it: create a charge session for a held seat,
// and receive the success/failure signal out-of-band.  Everything else the
// gateway can do is out of scope.
package payment

import "context"

// OrderMetadata travels with the payment session so the callback can be
// correlated back to a reservation without trusting the client.
type OrderMetadata struct {
    OrderRef   string // e.g. "EVT-7-3f2c..." – unique per attempt
    EventID    uint64
    SeatCode   string
    BuyerEmail string
}

// Session is the result of creating a charge intent with the gateway.
// Token is handed to the UI to complete the payment; the same token
// comes back on the callback.
type Session struct {
    Token string
}

// Outcome is the gateway's out-of-band verdict for a session.
type Outcome string

const (
    OutcomeSuccess Outcome = "success"
    OutcomeFailure Outcome = "failure"
)

// Gateway creates charge sessions.  Implementations must not mutate any
// reservation state; pairing a failed session with a hold release is the
// orchestrator's job.
type Gateway interface {
    CreateSession(ctx context.Context, amountCents int64, currency string, meta OrderMetadata) (*Session, error)
}
