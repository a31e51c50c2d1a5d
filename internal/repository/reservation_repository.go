package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/go-sql-driver/mysql"
    "github.com/google/uuid"

    "github.com/iliyamo/event-seat-reservation/internal/model"
)

// mysqlDupEntry is the MySQL error number for a duplicate key
// violation (ER_DUP_ENTRY).
const mysqlDupEntry = 1062

// ReservationRepo is the reservation ledger: durable, race-safe storage
// of seat claims.  The reservations table carries
// UNIQUE KEY (event_id, seat_code); that constraint is the single
// source of truth for seat ownership across all processes.  Holds and
// confirmations are single conditional statements – there is no
// check-then-insert anywhere, so two concurrent writers can never both
// succeed for the same key.  All expiry comparisons are performed by
// the database in UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the provided database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for callers that need transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const insertHold = `INSERT INTO reservations
        (event_id, seat_code, hold_id, holder_email, amount_cents, status, expires_at)
        VALUES (?, ?, ?, ?, ?, 'HELD', ?)`

// TryHold attempts to create a HELD reservation for (eventID, seatCode).
// Exactly one concurrent caller can win: the insert either succeeds or
// collides with the unique key.  A colliding row that is itself an
// expired hold is reclaimed with a conditional delete and the insert is
// retried once; any other collision returns ErrSeatTaken.
func (r *ReservationRepo) TryHold(ctx context.Context, eventID uint64, seatCode, holderEmail string, amountCents int64, ttl time.Duration) (*model.Reservation, error) {
    now := time.Now().UTC()
    res := &model.Reservation{
        EventID:     eventID,
        SeatCode:    seatCode,
        HoldID:      uuid.NewString(),
        HolderEmail: holderEmail,
        AmountCents: amountCents,
        Status:      model.StatusHeld,
        ExpiresAt:   now.Add(ttl),
        CreatedAt:   now,
    }
    expiresArg := res.ExpiresAt.Format("2006-01-02 15:04:05")

    out, err := r.db.ExecContext(ctx, insertHold,
        eventID, seatCode, res.HoldID, holderEmail, amountCents, expiresArg)
    if isDupEntry(err) {
        // The occupying row may be a hold whose TTL already lapsed but
        // that the sweeper has not removed yet.  Reclaim lazily: the
        // delete only matches an expired HELD row, so a live hold or a
        // confirmed purchase survives and the retried insert collides
        // again.
        reclaimed, rErr := r.reclaimExpired(ctx, eventID, seatCode)
        if rErr != nil {
            return nil, rErr
        }
        if !reclaimed {
            return nil, ErrSeatTaken
        }
        out, err = r.db.ExecContext(ctx, insertHold,
            eventID, seatCode, res.HoldID, holderEmail, amountCents, expiresArg)
        if isDupEntry(err) {
            return nil, ErrSeatTaken
        }
    }
    if err != nil {
        return nil, err
    }
    if id, idErr := out.LastInsertId(); idErr == nil {
        res.ID = uint64(id)
    }
    return res, nil
}

func (r *ReservationRepo) reclaimExpired(ctx context.Context, eventID uint64, seatCode string) (bool, error) {
    out, err := r.db.ExecContext(ctx,
        `DELETE FROM reservations
         WHERE event_id = ? AND seat_code = ? AND status = 'HELD' AND expires_at <= UTC_TIMESTAMP()`,
        eventID, seatCode,
    )
    if err != nil {
        return false, err
    }
    n, err := out.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// Confirm finalises a hold into an Order within one transaction.  The
// transition is a conditional update that re-checks expiry at
// confirmation time, so a payment completing just after the TTL is
// rejected with ErrHoldExpired rather than silently honoured.  Returns
// ErrHoldNotFound when no HELD reservation exists for the key.
func (r *ReservationRepo) Confirm(ctx context.Context, eventID uint64, seatCode string) (*model.Order, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    out, err := tx.ExecContext(ctx,
        `UPDATE reservations SET status = 'CONFIRMED'
         WHERE event_id = ? AND seat_code = ? AND status = 'HELD' AND expires_at > UTC_TIMESTAMP()`,
        eventID, seatCode,
    )
    if err != nil {
        return nil, err
    }
    n, err := out.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        // Distinguish a lapsed hold from a missing one inside the same
        // transaction so the answer matches what the update saw.
        var status string
        var expiresAt time.Time
        err := tx.QueryRowContext(ctx,
            `SELECT status, expires_at FROM reservations WHERE event_id = ? AND seat_code = ?`,
            eventID, seatCode,
        ).Scan(&status, &expiresAt)
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrHoldNotFound
        }
        if err != nil {
            return nil, err
        }
        if status == model.StatusHeld {
            return nil, ErrHoldExpired
        }
        // Already confirmed earlier: there is no HELD reservation to
        // finalise, and no second order may be created.
        return nil, ErrHoldNotFound
    }

    order := &model.Order{
        EventID:     eventID,
        SeatCode:    seatCode,
        ConfirmedAt: time.Now().UTC(),
    }
    err = tx.QueryRowContext(ctx,
        `SELECT holder_email, amount_cents FROM reservations WHERE event_id = ? AND seat_code = ?`,
        eventID, seatCode,
    ).Scan(&order.BuyerEmail, &order.AmountCents)
    if err != nil {
        return nil, err
    }

    ins, err := tx.ExecContext(ctx,
        `INSERT INTO orders (event_id, seat_code, amount_cents, buyer_email) VALUES (?, ?, ?, ?)`,
        eventID, seatCode, order.AmountCents, order.BuyerEmail,
    )
    if err != nil {
        return nil, err
    }
    if id, idErr := ins.LastInsertId(); idErr == nil {
        order.ID = uint64(id)
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return order, nil
}

// Release frees a held seat.  Only HELD rows are deleted, so releasing
// a confirmed purchase does nothing.  Releasing a seat that is not held
// is a no-op, never an error; the operation is idempotent and safe to
// retry.
func (r *ReservationRepo) Release(ctx context.Context, eventID uint64, seatCode string) error {
    _, err := r.db.ExecContext(ctx,
        `DELETE FROM reservations WHERE event_id = ? AND seat_code = ? AND status = 'HELD'`,
        eventID, seatCode,
    )
    return err
}

// SweepExpired removes every HELD reservation whose TTL has lapsed and
// returns how many were reclaimed.  The delete is keyed on expiry
// alone, so it never touches live holds or confirmed rows and is safe
// to run concurrently with holds and confirms on other seats.
func (r *ReservationRepo) SweepExpired(ctx context.Context) (int64, error) {
    out, err := r.db.ExecContext(ctx,
        `DELETE FROM reservations WHERE status = 'HELD' AND expires_at <= UTC_TIMESTAMP()`,
    )
    if err != nil {
        return 0, err
    }
    return out.RowsAffected()
}

// ReservedSeats lists the seat codes of an event that are currently
// unavailable: confirmed purchases plus unexpired holds.  The UI uses
// this to grey out the seat map.
func (r *ReservationRepo) ReservedSeats(ctx context.Context, eventID uint64) ([]string, error) {
    const q = `SELECT seat_code FROM reservations
               WHERE event_id = ?
                 AND (status = 'CONFIRMED' OR (status = 'HELD' AND expires_at > UTC_TIMESTAMP()))
               ORDER BY seat_code`
    rows, err := r.db.QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    codes := make([]string, 0, 16)
    for rows.Next() {
        var code string
        if err := rows.Scan(&code); err != nil {
            return nil, err
        }
        codes = append(codes, code)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return codes, nil
}

// GetBySeat fetches the reservation currently occupying a seat, if
// any.  Callers re-checking state before a retry use this; it is not
// part of the hold/confirm path.
func (r *ReservationRepo) GetBySeat(ctx context.Context, eventID uint64, seatCode string) (*model.Reservation, error) {
    const q = `SELECT id, event_id, seat_code, hold_id, holder_email, amount_cents, status, expires_at, created_at
               FROM reservations WHERE event_id = ? AND seat_code = ?`
    var res model.Reservation
    err := r.db.QueryRowContext(ctx, q, eventID, seatCode).
        Scan(&res.ID, &res.EventID, &res.SeatCode, &res.HoldID, &res.HolderEmail,
            &res.AmountCents, &res.Status, &res.ExpiresAt, &res.CreatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrHoldNotFound
    }
    if err != nil {
        return nil, err
    }
    return &res, nil
}

func isDupEntry(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == mysqlDupEntry
}
