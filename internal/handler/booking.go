package handler

import (
    "errors"   // for errors.Is comparisons
    "net/http" // HTTP status codes
    "strconv"  // parsing path parameters
    "time"     // formatting expiry timestamps

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/repository"
    "github.com/iliyamo/event-seat-reservation/internal/service"
)

// BookingHandler exposes the seat booking flow: direct holds, the
// orchestrated purchase operation, confirmation, release and the
// reserved-seat listing used to render seat maps.  Seat-taken and
// expired-hold are ordinary outcomes here and are answered inline with
// a status field; they are never logged as errors.
type BookingHandler struct {
    Reservations *service.ReservationService
    Orchestrator *service.BookingOrchestrator
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies
// must be non-nil.
func NewBookingHandler(reservations *service.ReservationService, orchestrator *service.BookingOrchestrator) *BookingHandler {
    if reservations == nil || orchestrator == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{Reservations: reservations, Orchestrator: orchestrator}
}

// Reserve handles POST /v1/events/:id/reserve.  It attempts to hold one
// seat for the configured TTL.  Responses: 201 with status "held" and
// the hold's expiry, 409 with status "taken" when another buyer has the
// seat, 400 with status "invalid" for a bad section or index.
func (h *BookingHandler) Reserve(c echo.Context) error {
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body struct {
        Section   string `json:"section"`
        SeatIndex uint32 `json:"seat_index"`
        Email     string `json:"email"`
        Amount    int64  `json:"amount"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    ctx := c.Request().Context()
    res, err := h.Reservations.Reserve(ctx, eventID, body.Section, body.SeatIndex, body.Email, body.Amount)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrSeatTaken):
            return c.JSON(http.StatusConflict, echo.Map{"status": "taken"})
        case errors.Is(err, service.ErrInvalidSeat):
            return c.JSON(http.StatusBadRequest, echo.Map{"status": "invalid"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "status":     "held",
        "hold_id":    res.HoldID,
        "seat_code":  res.SeatCode,
        "expires_at": res.ExpiresAt.Format(time.RFC3339),
    })
}

// Purchase handles POST /v1/events/:id/purchase.  This is the single
// operation the UI drives: hold the seat, then open a payment session
// for it.  A gateway failure releases the hold before the error is
// reported, so no seat stays blocked against a session that does not
// exist.
func (h *BookingHandler) Purchase(c echo.Context) error {
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body struct {
        Section   string `json:"section"`
        SeatIndex uint32 `json:"seat_index"`
        Email     string `json:"email"`
        Amount    int64  `json:"amount"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    ctx := c.Request().Context()
    result, err := h.Orchestrator.Purchase(ctx, eventID, body.Section, body.SeatIndex, body.Email, body.Amount)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrSeatTaken):
            return c.JSON(http.StatusConflict, echo.Map{"status": "taken"})
        case errors.Is(err, service.ErrInvalidSeat):
            return c.JSON(http.StatusBadRequest, echo.Map{"status": "invalid"})
        }
        // Gateway or storage outage: the hold has already been
        // compensated; show a generic retry message.
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "purchase unavailable, try again later"})
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "status":        "payment_pending",
        "hold_id":       result.HoldID,
        "seat_code":     result.SeatCode,
        "expires_at":    result.ExpiresAt.Format(time.RFC3339),
        "session_token": result.SessionToken,
        "order_ref":     result.OrderRef,
    })
}

// Confirm handles POST /v1/events/:id/confirm.  Valid only for an
// unexpired hold; the ledger re-checks expiry at confirmation time.
// Responses: 200 with the order id, 410 with status "expired" when the
// TTL lapsed (the caller must re-select a seat), 404 with status
// "not_found" when no hold exists.
func (h *BookingHandler) Confirm(c echo.Context) error {
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body struct {
        SeatCode string `json:"seat_code"`
    }
    if err := c.Bind(&body); err != nil || body.SeatCode == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_code is required"})
    }
    ctx := c.Request().Context()
    order, err := h.Reservations.Confirm(ctx, eventID, body.SeatCode)
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
    return c.JSON(http.StatusOK, echo.Map{
        "status":   "confirmed",
        "order_id": order.ID,
    })
}

// Release handles POST /v1/events/:id/release.  Idempotent: releasing a
// seat that is not held answers 200 with status "released" exactly like
// the first call.
func (h *BookingHandler) Release(c echo.Context) error {
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body struct {
        SeatCode string `json:"seat_code"`
    }
    if err := c.Bind(&body); err != nil || body.SeatCode == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_code is required"})
    }
    ctx := c.Request().Context()
    if err := h.Reservations.Release(ctx, eventID, body.SeatCode); err != nil {
        if errors.Is(err, service.ErrInvalidSeat) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat code"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "released"})
}

// ReservedSeats handles GET /v1/events/:id/reserved-seats.  It returns
// the seat codes currently unavailable (confirmed plus unexpired holds)
// so the UI can grey out the seat map.
func (h *BookingHandler) ReservedSeats(c echo.Context) error {
    eventID, err := eventIDParam(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx := c.Request().Context()
    codes, err := h.Reservations.ReservedSeats(ctx, eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"reserved": codes})
}

// eventIDParam parses the :id path parameter shared by all booking routes.
func eventIDParam(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, echo.ErrBadRequest
    }
    return id, nil
}
