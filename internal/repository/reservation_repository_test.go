package repository

import (
    "context"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/event-seat-reservation/internal/model"
)

func newLedger(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    return NewReservationRepo(db), mock
}

func dupKey() error { return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"} }

func TestTryHoldInsertsHeldRow(t *testing.T) {
    repo, mock := newLedger(t)

    mock.ExpectExec("INSERT INTO reservations").
        WithArgs(uint64(7), "1VIP", sqlmock.AnyArg(), "a@example.com", int64(100000), sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(42, 1))

    res, err := repo.TryHold(context.Background(), 7, "1VIP", "a@example.com", 100000, 10*time.Minute)
    require.NoError(t, err)
    assert.Equal(t, uint64(42), res.ID)
    assert.Equal(t, model.StatusHeld, res.Status)
    assert.Equal(t, "1VIP", res.SeatCode)
    assert.NotEmpty(t, res.HoldID)
    assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), res.ExpiresAt, 5*time.Second)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryHoldConflictWithLiveHold(t *testing.T) {
    repo, mock := newLedger(t)

    // Insert collides; the reclaim delete matches nothing because the
    // occupying hold is still live.
    mock.ExpectExec("INSERT INTO reservations").
        WillReturnError(dupKey())
    mock.ExpectExec("DELETE FROM reservations").
        WithArgs(uint64(7), "1VIP").
        WillReturnResult(sqlmock.NewResult(0, 0))

    _, err := repo.TryHold(context.Background(), 7, "1VIP", "b@example.com", 100000, 10*time.Minute)
    assert.ErrorIs(t, err, ErrSeatTaken)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryHoldReclaimsExpiredHold(t *testing.T) {
    repo, mock := newLedger(t)

    // First insert collides with a lapsed hold; the conditional delete
    // reclaims it and the retried insert wins.
    mock.ExpectExec("INSERT INTO reservations").
        WillReturnError(dupKey())
    mock.ExpectExec("DELETE FROM reservations").
        WithArgs(uint64(7), "2VIP").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("INSERT INTO reservations").
        WillReturnResult(sqlmock.NewResult(43, 1))

    res, err := repo.TryHold(context.Background(), 7, "2VIP", "c@example.com", 100000, 10*time.Minute)
    require.NoError(t, err)
    assert.Equal(t, uint64(43), res.ID)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTryHoldLosesReclaimRace(t *testing.T) {
    repo, mock := newLedger(t)

    // Another worker reclaims and re-holds between our delete and
    // retried insert: the second duplicate key is a plain conflict.
    mock.ExpectExec("INSERT INTO reservations").
        WillReturnError(dupKey())
    mock.ExpectExec("DELETE FROM reservations").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("INSERT INTO reservations").
        WillReturnError(dupKey())

    _, err := repo.TryHold(context.Background(), 7, "2VIP", "d@example.com", 100000, 10*time.Minute)
    assert.ErrorIs(t, err, ErrSeatTaken)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmCreatesOrder(t *testing.T) {
    repo, mock := newLedger(t)

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE reservations SET status = 'CONFIRMED'").
        WithArgs(uint64(7), "1VIP").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery("SELECT holder_email, amount_cents FROM reservations").
        WithArgs(uint64(7), "1VIP").
        WillReturnRows(sqlmock.NewRows([]string{"holder_email", "amount_cents"}).
            AddRow("a@example.com", int64(100000)))
    mock.ExpectExec("INSERT INTO orders").
        WithArgs(uint64(7), "1VIP", int64(100000), "a@example.com").
        WillReturnResult(sqlmock.NewResult(9, 1))
    mock.ExpectCommit()

    order, err := repo.Confirm(context.Background(), 7, "1VIP")
    require.NoError(t, err)
    assert.Equal(t, uint64(9), order.ID)
    assert.Equal(t, int64(100000), order.AmountCents)
    assert.Equal(t, "a@example.com", order.BuyerEmail)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmExpiredHold(t *testing.T) {
    repo, mock := newLedger(t)

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE reservations SET status = 'CONFIRMED'").
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("SELECT status, expires_at FROM reservations").
        WillReturnRows(sqlmock.NewRows([]string{"status", "expires_at"}).
            AddRow(model.StatusHeld, time.Now().UTC().Add(-time.Minute)))
    mock.ExpectRollback()

    _, err := repo.Confirm(context.Background(), 7, "1VIP")
    assert.ErrorIs(t, err, ErrHoldExpired)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmMissingHold(t *testing.T) {
    repo, mock := newLedger(t)

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE reservations SET status = 'CONFIRMED'").
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("SELECT status, expires_at FROM reservations").
        WillReturnRows(sqlmock.NewRows([]string{"status", "expires_at"}))
    mock.ExpectRollback()

    _, err := repo.Confirm(context.Background(), 7, "3VIP")
    assert.ErrorIs(t, err, ErrHoldNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmTwiceNeverCreatesSecondOrder(t *testing.T) {
    repo, mock := newLedger(t)

    // An already-confirmed row means there is no HELD reservation to
    // finalise; no order insert may run.
    mock.ExpectBegin()
    mock.ExpectExec("UPDATE reservations SET status = 'CONFIRMED'").
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("SELECT status, expires_at FROM reservations").
        WillReturnRows(sqlmock.NewRows([]string{"status", "expires_at"}).
            AddRow(model.StatusConfirmed, time.Now().UTC().Add(5*time.Minute)))
    mock.ExpectRollback()

    _, err := repo.Confirm(context.Background(), 7, "1VIP")
    assert.ErrorIs(t, err, ErrHoldNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseIsIdempotent(t *testing.T) {
    repo, mock := newLedger(t)

    mock.ExpectExec("DELETE FROM reservations").
        WithArgs(uint64(7), "1VIP").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("DELETE FROM reservations").
        WithArgs(uint64(7), "1VIP").
        WillReturnResult(sqlmock.NewResult(0, 0))

    require.NoError(t, repo.Release(context.Background(), 7, "1VIP"))
    // Second release matches nothing and still succeeds.
    require.NoError(t, repo.Release(context.Background(), 7, "1VIP"))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepExpiredReportsCount(t *testing.T) {
    repo, mock := newLedger(t)

    mock.ExpectExec("DELETE FROM reservations WHERE status = 'HELD'").
        WillReturnResult(sqlmock.NewResult(0, 3))

    n, err := repo.SweepExpired(context.Background())
    require.NoError(t, err)
    assert.Equal(t, int64(3), n)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBySeat(t *testing.T) {
    repo, mock := newLedger(t)

    now := time.Now().UTC()
    mock.ExpectQuery("SELECT id, event_id, seat_code, hold_id, holder_email, amount_cents, status, expires_at, created_at").
        WithArgs(uint64(7), "1VIP").
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "event_id", "seat_code", "hold_id", "holder_email",
            "amount_cents", "status", "expires_at", "created_at",
        }).AddRow(42, 7, "1VIP", "aaaa-bbbb", "a@example.com",
            int64(100000), model.StatusHeld, now.Add(10*time.Minute), now))
    mock.ExpectQuery("SELECT id, event_id, seat_code, hold_id, holder_email, amount_cents, status, expires_at, created_at").
        WithArgs(uint64(7), "9VIP").
        WillReturnRows(sqlmock.NewRows([]string{
            "id", "event_id", "seat_code", "hold_id", "holder_email",
            "amount_cents", "status", "expires_at", "created_at",
        }))

    res, err := repo.GetBySeat(context.Background(), 7, "1VIP")
    require.NoError(t, err)
    assert.Equal(t, uint64(42), res.ID)
    assert.Equal(t, model.StatusHeld, res.Status)

    _, err = repo.GetBySeat(context.Background(), 7, "9VIP")
    assert.ErrorIs(t, err, ErrHoldNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservedSeatsListsActiveCodes(t *testing.T) {
    repo, mock := newLedger(t)

    mock.ExpectQuery("SELECT seat_code FROM reservations").
        WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"seat_code"}).
            AddRow("1VIP").AddRow("2VIP").AddRow("5REG"))

    codes, err := repo.ReservedSeats(context.Background(), 7)
    require.NoError(t, err)
    assert.Equal(t, []string{"1VIP", "2VIP", "5REG"}, codes)
    assert.NoError(t, mock.ExpectationsWereMet())
}
