package model

import "time"

// Reservation lifecycle states.  HELD and CONFIRMED are the only
// states persisted in the ledger: a released hold is deleted so the
// UNIQUE(event_id, seat_code) key stays authoritative.  StatusReleased
// is reported by the booking flow for attempts that ended without a
// purchase.
const (
    StatusHeld      = "HELD"
    StatusConfirmed = "CONFIRMED"
    StatusReleased  = "RELEASED"
)

// Reservation is a claim on one seat of one event.  At most one
// reservation per (event, seat code) may be HELD or CONFIRMED at any
// time; the ledger's unique key enforces this against concurrent
// writers.
//
// Fields:
//  ID          – primary key identifier.
//  EventID     – event the seat belongs to.
//  SeatCode    – formatted seat code ("12VIP"), unique per event while active.
//  HoldID      – opaque token returned to the client for correlation.
//  HolderEmail – contact of the person holding the seat.
//  AmountCents – amount to be charged on confirmation.
//  Status      – HELD or CONFIRMED.
//  ExpiresAt   – when a HELD reservation lapses.
//  CreatedAt   – creation timestamp.
type Reservation struct {
    ID          uint64    // reservations.id
    EventID     uint64    // reservations.event_id
    SeatCode    string    // reservations.seat_code
    HoldID      string    // reservations.hold_id
    HolderEmail string    // reservations.holder_email
    AmountCents int64     // reservations.amount_cents
    Status      string    // reservations.status
    ExpiresAt   time.Time // reservations.expires_at
    CreatedAt   time.Time // reservations.created_at
}

// Expired reports whether a HELD reservation has passed its expiry.
// Confirmed reservations never expire.
func (r *Reservation) Expired(now time.Time) bool {
    return r.Status == StatusHeld && !now.Before(r.ExpiresAt)
}
