package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/payment"
    "github.com/iliyamo/event-seat-reservation/internal/queue"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
    "github.com/iliyamo/event-seat-reservation/internal/service"
)

// PaymentHandler receives the gateway's out-of-band outcome signal and
// feeds it to the booking orchestrator.  Success drives the pending
// attempt to CONFIRMED; failure or cancellation releases the hold so
// the seat frees up immediately instead of waiting for the sweeper.
type PaymentHandler struct {
    Orchestrator *service.BookingOrchestrator
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(orchestrator *service.BookingOrchestrator) *PaymentHandler {
    if orchestrator == nil {
        panic("nil orchestrator passed to NewPaymentHandler")
    }
    return &PaymentHandler{Orchestrator: orchestrator}
}

// Callback handles POST /v1/payments/callback.  The body identifies the
// reservation by (event_id, seat_code) plus the session token for
// correlation, and carries the outcome.  A success arriving after the
// hold expired is answered 410: the purchase failed and the buyer must
// re-select a seat.
func (h *PaymentHandler) Callback(c echo.Context) error {
    var body struct {
        SessionToken string `json:"session_token"`
        EventID      uint64 `json:"event_id"`
        SeatCode     string `json:"seat_code"`
        Outcome      string `json:"outcome"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.EventID == 0 || body.SeatCode == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id and seat_code are required"})
    }
    outcome := payment.Outcome(body.Outcome)
    if outcome != payment.OutcomeSuccess && outcome != payment.OutcomeFailure {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "outcome must be success or failure"})
    }

    ctx := c.Request().Context()
    result, err := h.Orchestrator.HandleOutcome(ctx, body.EventID, body.SeatCode, outcome)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrHoldExpired):
            return c.JSON(http.StatusGone, echo.Map{"status": "expired"})
        case errors.Is(err, repository.ErrHoldNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"status": "not_found"})
        case errors.Is(err, service.ErrInvalidSeat):
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat code"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    if result.State == service.StateConfirmed {
        // Receipt hook: best effort, a broker outage must not undo a
        // confirmed purchase.
        _ = queue.PublishOrderConfirmed(ctx, queue.OrderConfirmedEvent{
            OrderID:     result.Order.ID,
            EventID:     result.Order.EventID,
            SeatCode:    result.Order.SeatCode,
            BuyerEmail:  result.Order.BuyerEmail,
            AmountCents: result.Order.AmountCents,
            ConfirmedAt: result.Order.ConfirmedAt.Format(time.RFC3339),
        })
        return c.JSON(http.StatusOK, echo.Map{
            "status":   "confirmed",
            "order_id": result.Order.ID,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "released"})
}
