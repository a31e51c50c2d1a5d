package model

import "time"

// SeatSection describes a block of purchasable seats for an event.
// Sections are created by organizer tooling and are read-only to the
// booking core; seats inside a section are addressed by a 1-based
// index up to Capacity.
//
// Fields:
//  ID         – primary key identifier.
//  EventID    – event to which this section belongs.
//  Name       – display name of the section (e.g. "VIP", "REG").
//  Capacity   – number of purchasable seats in the section.
//  PriceCents – price per seat in cents.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type SeatSection struct {
    ID         uint64    // seat_sections.id
    EventID    uint64    // seat_sections.event_id
    Name       string    // seat_sections.section_name
    Capacity   uint32    // seat_sections.capacity
    PriceCents int64     // seat_sections.price_cents
    CreatedAt  time.Time // seat_sections.created_at
    UpdatedAt  time.Time // seat_sections.updated_at
}
