package service

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "testing"
    "time"

    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/event-seat-reservation/internal/model"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
)

// fakeLedger implements Ledger in memory with the same semantics the
// MySQL repository gets from its unique key: insert-if-absent under a
// single lock, lazy reclaim of expired holds, conditional transitions.
// It lets the service and orchestrator tests exercise real contention
// without a database.
type fakeLedger struct {
    mu     sync.Mutex
    rows   map[string]*model.Reservation // key: seatKey(event, code)
    orders []model.Order
    nextID uint64

    releaseErrs int // fail this many Release calls before succeeding
}

func newFakeLedger() *fakeLedger {
    return &fakeLedger{rows: make(map[string]*model.Reservation)}
}

func seatKey(eventID uint64, code string) string {
    return fmt.Sprintf("%d/%s", eventID, code)
}

func (f *fakeLedger) TryHold(_ context.Context, eventID uint64, seatCode, holderEmail string, amountCents int64, ttl time.Duration) (*model.Reservation, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    key := seatKey(eventID, seatCode)
    now := time.Now().UTC()
    if existing, ok := f.rows[key]; ok {
        if !existing.Expired(now) {
            return nil, repository.ErrSeatTaken
        }
        delete(f.rows, key) // lazy reclaim of a lapsed hold
    }
    f.nextID++
    res := &model.Reservation{
        ID:          f.nextID,
        EventID:     eventID,
        SeatCode:    seatCode,
        HoldID:      uuid.NewString(),
        HolderEmail: holderEmail,
        AmountCents: amountCents,
        Status:      model.StatusHeld,
        ExpiresAt:   now.Add(ttl),
        CreatedAt:   now,
    }
    f.rows[key] = res
    return res, nil
}

func (f *fakeLedger) Confirm(_ context.Context, eventID uint64, seatCode string) (*model.Order, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    res, ok := f.rows[seatKey(eventID, seatCode)]
    if !ok || res.Status != model.StatusHeld {
        return nil, repository.ErrHoldNotFound
    }
    if res.Expired(time.Now().UTC()) {
        return nil, repository.ErrHoldExpired
    }
    res.Status = model.StatusConfirmed
    f.nextID++
    order := model.Order{
        ID:          f.nextID,
        EventID:     eventID,
        SeatCode:    seatCode,
        AmountCents: res.AmountCents,
        BuyerEmail:  res.HolderEmail,
        ConfirmedAt: time.Now().UTC(),
    }
    f.orders = append(f.orders, order)
    return &order, nil
}

func (f *fakeLedger) Release(_ context.Context, eventID uint64, seatCode string) error {
    f.mu.Lock()
    defer f.mu.Unlock()
    if f.releaseErrs > 0 {
        f.releaseErrs--
        return errStorageDown
    }
    key := seatKey(eventID, seatCode)
    if res, ok := f.rows[key]; ok && res.Status == model.StatusHeld {
        delete(f.rows, key)
    }
    return nil
}

func (f *fakeLedger) SweepExpired(_ context.Context) (int64, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    now := time.Now().UTC()
    var n int64
    for key, res := range f.rows {
        if res.Expired(now) {
            delete(f.rows, key)
            n++
        }
    }
    return n, nil
}

func (f *fakeLedger) ReservedSeats(_ context.Context, eventID uint64) ([]string, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    now := time.Now().UTC()
    codes := make([]string, 0, len(f.rows))
    for _, res := range f.rows {
        if res.EventID == eventID && !res.Expired(now) {
            codes = append(codes, res.SeatCode)
        }
    }
    return codes, nil
}

// fakeCatalog serves a fixed section list.
type fakeCatalog struct {
    sections map[string]*model.SeatSection
}

func (f *fakeCatalog) GetSectionByName(_ context.Context, _ uint64, name string) (*model.SeatSection, error) {
    if s, ok := f.sections[name]; ok {
        return s, nil
    }
    return nil, repository.ErrSectionNotFound
}

var errStorageDown = errors.New("transient storage error")

func newTestService(ttl time.Duration) (*ReservationService, *fakeLedger) {
    ledger := newFakeLedger()
    catalog := &fakeCatalog{sections: map[string]*model.SeatSection{
        "VIP": {EventID: 1, Name: "VIP", Capacity: 2, PriceCents: 100000},
        "REG": {EventID: 1, Name: "REG", Capacity: 100, PriceCents: 25000},
    }}
    return NewReservationService(ledger, catalog, ttl), ledger
}

func TestReserveValidatesSeat(t *testing.T) {
    svc, _ := newTestService(10 * time.Minute)
    ctx := context.Background()

    _, err := svc.Reserve(ctx, 1, "GOLD", 1, "a@example.com", 100000)
    assert.ErrorIs(t, err, ErrInvalidSeat, "unknown section")

    _, err = svc.Reserve(ctx, 1, "VIP", 3, "a@example.com", 100000)
    assert.ErrorIs(t, err, ErrInvalidSeat, "index beyond capacity")

    _, err = svc.Reserve(ctx, 1, "VIP", 0, "a@example.com", 100000)
    assert.ErrorIs(t, err, ErrInvalidSeat, "seat index is 1-based")
}

func TestReserveDerivesSeatCode(t *testing.T) {
    svc, _ := newTestService(10 * time.Minute)

    res, err := svc.Reserve(context.Background(), 1, "VIP", 2, "a@example.com", 100000)
    require.NoError(t, err)
    assert.Equal(t, "2VIP", res.SeatCode)
    assert.Equal(t, model.StatusHeld, res.Status)
}

func TestConcurrentReservesOneWinner(t *testing.T) {
    svc, _ := newTestService(10 * time.Minute)
    const attempts = 50

    var (
        wg    sync.WaitGroup
        mu    sync.Mutex
        held  int
        taken int
    )
    start := make(chan struct{})
    for i := 0; i < attempts; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            <-start
            _, err := svc.Reserve(context.Background(), 1, "VIP", 1, "rush@example.com", 100000)
            mu.Lock()
            defer mu.Unlock()
            switch {
            case err == nil:
                held++
            case errors.Is(err, repository.ErrSeatTaken):
                taken++
            default:
                t.Errorf("unexpected error: %v", err)
            }
        }()
    }
    close(start)
    wg.Wait()

    assert.Equal(t, 1, held, "exactly one concurrent hold must win")
    assert.Equal(t, attempts-1, taken, "all losers must see seat taken")
}

func TestReserveConfirmRoundTrip(t *testing.T) {
    svc, ledger := newTestService(10 * time.Minute)
    ctx := context.Background()

    res, err := svc.Reserve(ctx, 1, "VIP", 1, "buyer@example.com", 100000)
    require.NoError(t, err)

    order, err := svc.Confirm(ctx, 1, res.SeatCode)
    require.NoError(t, err)
    assert.Equal(t, int64(100000), order.AmountCents, "order amount equals the reserved amount")
    assert.Equal(t, "buyer@example.com", order.BuyerEmail)
    assert.Len(t, ledger.orders, 1, "exactly one order")

    codes, err := svc.ReservedSeats(ctx, 1)
    require.NoError(t, err)
    assert.Contains(t, codes, res.SeatCode)
}

func TestExpiredHoldNotConfirmable(t *testing.T) {
    svc, _ := newTestService(-time.Second) // holds are born expired
    ctx := context.Background()

    res, err := svc.Reserve(ctx, 1, "REG", 5, "slow@example.com", 25000)
    require.NoError(t, err)

    _, err = svc.Confirm(ctx, 1, res.SeatCode)
    assert.ErrorIs(t, err, repository.ErrHoldExpired)

    // After a sweep the seat is hold-able again.
    n, err := svc.ledger.SweepExpired(ctx)
    require.NoError(t, err)
    assert.GreaterOrEqual(t, n, int64(1))

    again, err := svc.Reserve(ctx, 1, "REG", 5, "fast@example.com", 25000)
    require.NoError(t, err)
    assert.Equal(t, res.SeatCode, again.SeatCode)
}

func TestConfirmUnknownHold(t *testing.T) {
    svc, ledger := newTestService(10 * time.Minute)

    _, err := svc.Confirm(context.Background(), 1, "9REG")
    assert.ErrorIs(t, err, repository.ErrHoldNotFound)
    assert.Empty(t, ledger.orders, "no order may be created for a missing hold")
}

func TestReleaseIdempotentAndRetried(t *testing.T) {
    svc, ledger := newTestService(10 * time.Minute)
    ctx := context.Background()

    res, err := svc.Reserve(ctx, 1, "VIP", 1, "a@example.com", 100000)
    require.NoError(t, err)

    require.NoError(t, svc.Release(ctx, 1, res.SeatCode))
    require.NoError(t, svc.Release(ctx, 1, res.SeatCode), "second release is a no-op")

    // Transient failures are retried because release is idempotent.
    res, err = svc.Reserve(ctx, 1, "VIP", 1, "b@example.com", 100000)
    require.NoError(t, err)
    ledger.releaseErrs = 2
    require.NoError(t, svc.Release(ctx, 1, res.SeatCode))

    codes, err := svc.ReservedSeats(ctx, 1)
    require.NoError(t, err)
    assert.NotContains(t, codes, res.SeatCode)
}

func TestEndToEndVIPScenario(t *testing.T) {
    // Event 1, section VIP, capacity 2, price 100000: two concurrent
    // attempts on seat 1, one winner; winner confirms; a third attempt
    // is refused; an abandoned hold on seat 2 frees up after the sweep.
    svc, ledger := newTestService(10 * time.Minute)
    ctx := context.Background()

    var wg sync.WaitGroup
    results := make([]error, 2)
    for i := 0; i < 2; i++ {
        wg.Add(1)
        go func(slot int) {
            defer wg.Done()
            _, results[slot] = svc.Reserve(ctx, 1, "VIP", 1, "rival@example.com", 100000)
        }(i)
    }
    wg.Wait()
    wins := 0
    for _, err := range results {
        if err == nil {
            wins++
        } else {
            assert.ErrorIs(t, err, repository.ErrSeatTaken)
        }
    }
    require.Equal(t, 1, wins)

    order, err := svc.Confirm(ctx, 1, "1VIP")
    require.NoError(t, err)
    assert.Equal(t, int64(100000), order.AmountCents)

    _, err = svc.Reserve(ctx, 1, "VIP", 1, "third@example.com", 100000)
    assert.ErrorIs(t, err, repository.ErrSeatTaken, "confirmed seat stays taken")

    // Seat 2 is held but never confirmed; force the hold to lapse and sweep.
    held, err := svc.Reserve(ctx, 1, "VIP", 2, "ghost@example.com", 100000)
    require.NoError(t, err)
    ledger.mu.Lock()
    ledger.rows[seatKey(1, held.SeatCode)].ExpiresAt = time.Now().UTC().Add(-time.Minute)
    ledger.mu.Unlock()

    n, err := ledger.SweepExpired(ctx)
    require.NoError(t, err)
    assert.Equal(t, int64(1), n)

    _, err = svc.Reserve(ctx, 1, "VIP", 2, "lucky@example.com", 100000)
    require.NoError(t, err, "swept seat is hold-able again")
}
