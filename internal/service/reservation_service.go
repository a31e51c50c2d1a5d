// Package service contains the booking logic that sits between the HTTP
// handlers and the reservation ledger: seat validation, seat code
// derivation, and the purchase state machine.
package service

import (
    "context"
    "errors"
    "time"

    "github.com/iliyamo/event-seat-reservation/internal/model"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
)

// ErrInvalidSeat is returned when the requested seat does not exist:
// unknown section, or a seat index outside the section's capacity.
// Handlers should translate this into a 400 validation failure.
var ErrInvalidSeat = errors.New("invalid seat")

// Ledger is the slice of the reservation repository the service needs.
// The durable store behind it is the only component allowed to decide
// seat ownership.
type Ledger interface {
    TryHold(ctx context.Context, eventID uint64, seatCode, holderEmail string, amountCents int64, ttl time.Duration) (*model.Reservation, error)
    Confirm(ctx context.Context, eventID uint64, seatCode string) (*model.Order, error)
    Release(ctx context.Context, eventID uint64, seatCode string) error
    SweepExpired(ctx context.Context) (int64, error)
    ReservedSeats(ctx context.Context, eventID uint64) ([]string, error)
}

// Catalog is the read contract of the seat catalog.  The booking core
// never writes through it.
type Catalog interface {
    GetSectionByName(ctx context.Context, eventID uint64, name string) (*model.SeatSection, error)
}

// ReservationService wraps the ledger with capacity validation and seat
// code derivation.  Seat identity is handled as a structured value and
// only formatted to a string at the storage boundary.
type ReservationService struct {
    ledger  Ledger
    catalog Catalog
    holdTTL time.Duration
}

// NewReservationService constructs a ReservationService.  holdTTL
// bounds how long a hold blocks a seat before the sweeper reclaims it.
func NewReservationService(ledger Ledger, catalog Catalog, holdTTL time.Duration) *ReservationService {
    if ledger == nil || catalog == nil {
        panic("nil dependency passed to NewReservationService")
    }
    return &ReservationService{ledger: ledger, catalog: catalog, holdTTL: holdTTL}
}

// HoldTTL reports the configured hold lifetime.
func (s *ReservationService) HoldTTL() time.Duration { return s.holdTTL }

// Reserve validates the seat against the catalog and attempts to hold
// it.  Outcomes: a HELD reservation, ErrInvalidSeat when the section or
// index is bad, or repository.ErrSeatTaken when another buyer already
// occupies the seat – the latter is an ordinary result under
// contention, not a failure.
func (s *ReservationService) Reserve(ctx context.Context, eventID uint64, sectionName string, seatIndex uint32, holderEmail string, amountCents int64) (*model.Reservation, error) {
    if seatIndex == 0 || holderEmail == "" || amountCents < 0 {
        return nil, ErrInvalidSeat
    }
    section, err := s.catalog.GetSectionByName(ctx, eventID, sectionName)
    if err != nil {
        if errors.Is(err, repository.ErrSectionNotFound) {
            return nil, ErrInvalidSeat
        }
        return nil, err
    }
    if seatIndex > section.Capacity {
        return nil, ErrInvalidSeat
    }
    code := model.SeatCode{Index: seatIndex, Section: section.Name}
    return s.ledger.TryHold(ctx, eventID, code.String(), holderEmail, amountCents, s.holdTTL)
}

// Confirm finalises a held seat into an order.  The ledger re-checks
// expiry, so a confirmation racing the TTL is rejected there.
func (s *ReservationService) Confirm(ctx context.Context, eventID uint64, seatCode string) (*model.Order, error) {
    if _, err := model.ParseSeatCode(seatCode); err != nil {
        return nil, ErrInvalidSeat
    }
    return s.ledger.Confirm(ctx, eventID, seatCode)
}

// Release frees a held seat.  Idempotent: releasing an unknown or
// already-released seat succeeds silently.  Transient storage errors
// are retried a bounded number of times because the operation is safe
// to repeat.
func (s *ReservationService) Release(ctx context.Context, eventID uint64, seatCode string) error {
    if _, err := model.ParseSeatCode(seatCode); err != nil {
        return ErrInvalidSeat
    }
    var err error
    for attempt := 0; attempt < 3; attempt++ {
        if err = s.ledger.Release(ctx, eventID, seatCode); err == nil {
            return nil
        }
        if ctx.Err() != nil {
            return err
        }
    }
    return err
}

// ReservedSeats returns the seat codes currently blocking the seat map
// for an event.
func (s *ReservationService) ReservedSeats(ctx context.Context, eventID uint64) ([]string, error) {
    return s.ledger.ReservedSeats(ctx, eventID)
}
