package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/event-seat-reservation/internal/model"
)

// SectionRepo provides read access to the seat catalog and the write
// path used by organizer tooling.  The booking core only ever reads
// from it; seat ownership decisions belong to the reservation ledger.
type SectionRepo struct {
    db *sql.DB
}

// NewSectionRepo returns a new SectionRepo bound to the provided database.
func NewSectionRepo(db *sql.DB) *SectionRepo { return &SectionRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions
// spanning multiple repositories.
func (r *SectionRepo) DB() *sql.DB { return r.db }

// GetSections returns all seat sections configured for an event.  An
// event without sections yields an empty slice and nil error.
func (r *SectionRepo) GetSections(ctx context.Context, eventID uint64) ([]model.SeatSection, error) {
    const q = `SELECT id, event_id, section_name, capacity, price_cents, created_at, updated_at
               FROM seat_sections
               WHERE event_id = ?
               ORDER BY section_name`
    rows, err := r.db.QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    sections := make([]model.SeatSection, 0, 4)
    for rows.Next() {
        var s model.SeatSection
        if err := rows.Scan(&s.ID, &s.EventID, &s.Name, &s.Capacity, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt); err != nil {
            return nil, err
        }
        sections = append(sections, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return sections, nil
}

// GetSectionByName looks up a single section of an event by its display
// name.  Returns ErrSectionNotFound when no such section exists.
func (r *SectionRepo) GetSectionByName(ctx context.Context, eventID uint64, name string) (*model.SeatSection, error) {
    const q = `SELECT id, event_id, section_name, capacity, price_cents, created_at, updated_at
               FROM seat_sections
               WHERE event_id = ? AND section_name = ?`
    var s model.SeatSection
    err := r.db.QueryRowContext(ctx, q, eventID, name).
        Scan(&s.ID, &s.EventID, &s.Name, &s.Capacity, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrSectionNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// ReplaceSections swaps an event's section list in one transaction.
// Organizer tooling calls this when setting up or editing a seat map.
// Only section_name, capacity and price_cents are inserted; timestamps
// default in the DB.
func (r *SectionRepo) ReplaceSections(ctx context.Context, eventID uint64, sections []model.SeatSection) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if _, err := tx.ExecContext(ctx, `DELETE FROM seat_sections WHERE event_id = ?`, eventID); err != nil {
        return err
    }
    if len(sections) > 0 {
        query := `INSERT INTO seat_sections (event_id, section_name, capacity, price_cents) VALUES `
        args := make([]interface{}, 0, len(sections)*4)
        for i, s := range sections {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?)"
            args = append(args, eventID, s.Name, s.Capacity, s.PriceCents)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
