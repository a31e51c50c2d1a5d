package model

import "time"

// Order is the permanent record of a paid seat.  One row is written
// when a reservation transitions from HELD to CONFIRMED and is never
// updated afterwards; downstream reporting reads from here.
//
// Fields:
//  ID          – primary key identifier.
//  EventID     – event the seat belongs to.
//  SeatCode    – formatted seat code that was purchased.
//  AmountCents – amount charged.
//  BuyerEmail  – buyer contact copied from the reservation.
//  ConfirmedAt – when the purchase was finalised.
type Order struct {
    ID          uint64    // orders.id
    EventID     uint64    // orders.event_id
    SeatCode    string    // orders.seat_code
    AmountCents int64     // orders.amount_cents
    BuyerEmail  string    // orders.buyer_email
    ConfirmedAt time.Time // orders.confirmed_at
}
