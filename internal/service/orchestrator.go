package service

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/event-seat-reservation/internal/model"
    "github.com/iliyamo/event-seat-reservation/internal/payment"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
)

// BookingState names a position in the purchase state machine.  The
// durable reservation row is the real state; these values describe it
// to callers so the flow survives process restarts.
type BookingState string

const (
    StateBrowsing       BookingState = "BROWSING"
    StateSeatHeld       BookingState = "SEAT_HELD"
    StatePaymentPending BookingState = "PAYMENT_PENDING"
    StateConfirmed      BookingState = "CONFIRMED"
    StateReleased       BookingState = "RELEASED"
)

// PurchaseResult reports a purchase attempt that reached
// PAYMENT_PENDING: the seat is held and a gateway session exists.
type PurchaseResult struct {
    State        BookingState
    HoldID       string
    SeatCode     string
    ExpiresAt    time.Time
    SessionToken string
    OrderRef     string
}

// OutcomeResult reports where a payment signal left the attempt:
// CONFIRMED with the order, or RELEASED with the reason the purchase
// failed (payment failure, expired hold, unknown hold).
type OutcomeResult struct {
    State  BookingState
    Order  *model.Order
    Reason string
}

// BookingOrchestrator coordinates catalog lookup, hold acquisition,
// payment session creation and the confirm/release transitions.  It
// keeps no per-attempt state in memory: every decision re-reads the
// ledger, so concurrent workers and restarts are safe.
type BookingOrchestrator struct {
    reservations *ReservationService
    gateway      payment.Gateway
    currency     string
}

// NewBookingOrchestrator constructs a BookingOrchestrator.  All
// dependencies must be non-nil.
func NewBookingOrchestrator(reservations *ReservationService, gateway payment.Gateway, currency string) *BookingOrchestrator {
    if reservations == nil || gateway == nil {
        panic("nil dependency passed to NewBookingOrchestrator")
    }
    return &BookingOrchestrator{reservations: reservations, gateway: gateway, currency: currency}
}

// Purchase runs Browsing → SeatHeld → PaymentPending.  If the gateway
// cannot create a session the hold is released immediately – a seat is
// never left blocked against a payment session that does not exist.
// ErrInvalidSeat and repository.ErrSeatTaken pass through untouched so
// handlers can render them as ordinary outcomes.
func (o *BookingOrchestrator) Purchase(ctx context.Context, eventID uint64, sectionName string, seatIndex uint32, buyerEmail string, amountCents int64) (*PurchaseResult, error) {
    res, err := o.reservations.Reserve(ctx, eventID, sectionName, seatIndex, buyerEmail, amountCents)
    if err != nil {
        return nil, err
    }

    orderRef := fmt.Sprintf("EVT-%d-%s", eventID, uuid.NewString())
    session, err := o.gateway.CreateSession(ctx, amountCents, o.currency, payment.OrderMetadata{
        OrderRef:   orderRef,
        EventID:    eventID,
        SeatCode:   res.SeatCode,
        BuyerEmail: buyerEmail,
    })
    if err != nil {
        if relErr := o.reservations.Release(ctx, eventID, res.SeatCode); relErr != nil {
            log.Printf("orchestrator: release after gateway failure event=%d seat=%s: %v", eventID, res.SeatCode, relErr)
        }
        return nil, fmt.Errorf("create payment session: %w", err)
    }

    return &PurchaseResult{
        State:        StatePaymentPending,
        HoldID:       res.HoldID,
        SeatCode:     res.SeatCode,
        ExpiresAt:    res.ExpiresAt,
        SessionToken: session.Token,
        OrderRef:     orderRef,
    }, nil
}

// HandleOutcome applies a gateway signal to a pending attempt:
// PaymentPending → Confirmed on success, PaymentPending → Released on
// failure.  A success that arrives after the hold's TTL is a failed
// purchase – the expired hold is released and the caller is told to
// restart from seat selection, never to retry the stale hold.
func (o *BookingOrchestrator) HandleOutcome(ctx context.Context, eventID uint64, seatCode string, outcome payment.Outcome) (*OutcomeResult, error) {
    switch outcome {
    case payment.OutcomeSuccess:
        order, err := o.reservations.Confirm(ctx, eventID, seatCode)
        if err == nil {
            return &OutcomeResult{State: StateConfirmed, Order: order}, nil
        }
        if errors.Is(err, repository.ErrHoldExpired) {
            if relErr := o.reservations.Release(ctx, eventID, seatCode); relErr != nil {
                log.Printf("orchestrator: release expired hold event=%d seat=%s: %v", eventID, seatCode, relErr)
            }
            return &OutcomeResult{State: StateReleased, Reason: "hold expired before confirmation"}, repository.ErrHoldExpired
        }
        if errors.Is(err, repository.ErrHoldNotFound) {
            return &OutcomeResult{State: StateReleased, Reason: "no matching hold"}, repository.ErrHoldNotFound
        }
        return nil, err
    case payment.OutcomeFailure:
        if err := o.reservations.Release(ctx, eventID, seatCode); err != nil {
            return nil, err
        }
        return &OutcomeResult{State: StateReleased, Reason: "payment failed"}, nil
    default:
        return nil, fmt.Errorf("unknown payment outcome %q", outcome)
    }
}

// Cancel releases a hold on explicit user abandonment.  Safe to call
// any number of times.
func (o *BookingOrchestrator) Cancel(ctx context.Context, eventID uint64, seatCode string) error {
    return o.reservations.Release(ctx, eventID, seatCode)
}
