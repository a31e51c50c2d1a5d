package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/model"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
)

// CatalogHandler serves the seat catalog: the public section listing
// attendees browse before picking a seat, and the organizer write path
// that sets an event's sections up.  The booking core itself only ever
// reads sections.
type CatalogHandler struct {
    Sections *repository.SectionRepo
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(sections *repository.SectionRepo) *CatalogHandler {
    if sections == nil {
        panic("nil repository passed to NewCatalogHandler")
    }
    return &CatalogHandler{Sections: sections}
}

// GetSections handles GET /v1/events/:id/sections.  Returns the
// sections configured for the event with name, capacity and price.  An
// event without sections yields an empty array.
func (h *CatalogHandler) GetSections(c echo.Context) error {
    eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || eventID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    ctx := c.Request().Context()
    sections, err := h.Sections.GetSections(ctx, eventID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    items := make([]echo.Map, 0, len(sections))
    for _, s := range sections {
        items = append(items, echo.Map{
            "name":        s.Name,
            "capacity":    s.Capacity,
            "price_cents": s.PriceCents,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"sections": items})
}

// ReplaceSections handles PUT /v1/events/:id/sections.  Organizer-only:
// it swaps the event's section list in one transaction.  Sections must
// have a non-empty name starting with a letter, a positive capacity and
// a non-negative price; names must be unique within the event.
func (h *CatalogHandler) ReplaceSections(c echo.Context) error {
    eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || eventID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
    }
    var body struct {
        Sections []struct {
            Name       string `json:"name"`
            Capacity   uint32 `json:"capacity"`
            PriceCents int64  `json:"price_cents"`
        } `json:"sections"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if len(body.Sections) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "sections is required"})
    }
    seen := make(map[string]struct{}, len(body.Sections))
    sections := make([]model.SeatSection, 0, len(body.Sections))
    for _, s := range body.Sections {
        // A section name starting with a digit would make seat codes
        // ambiguous to parse ("12VIP" vs "1" + "2VIP").
        if s.Name == "" || (s.Name[0] >= '0' && s.Name[0] <= '9') {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid section name", "section": s.Name})
        }
        if s.Capacity == 0 || s.PriceCents < 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid capacity or price", "section": s.Name})
        }
        if _, dup := seen[s.Name]; dup {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate section name", "section": s.Name})
        }
        seen[s.Name] = struct{}{}
        sections = append(sections, model.SeatSection{
            EventID:    eventID,
            Name:       s.Name,
            Capacity:   s.Capacity,
            PriceCents: s.PriceCents,
        })
    }
    ctx := c.Request().Context()
    if err := h.Sections.ReplaceSections(ctx, eventID, sections); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"updated": len(sections)})
}
