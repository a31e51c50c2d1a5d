// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderConfirmedEvent is published when a seat purchase is finalised.
// It carries enough information for downstream consumers – receipt
// delivery, reporting – to act without querying the primary database.
type OrderConfirmedEvent struct {
    OrderID     uint64 `json:"order_id"`
    EventID     uint64 `json:"event_id"`
    SeatCode    string `json:"seat_code"`
    BuyerEmail  string `json:"buyer_email"`
    AmountCents int64  `json:"amount_cents"`
    ConfirmedAt string `json:"confirmed_at"`
}
