// Package worker hosts background processes that run alongside the HTTP
// server.  The sweeper is the safety net of the hold lifecycle: a hold
// that is never confirmed must not block its seat forever.
package worker

import (
    "context"
    "log"
    "sync"
    "time"
)

// ExpiredSweeper is the single ledger operation the sweeper needs.
type ExpiredSweeper interface {
    SweepExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically reclaims expired seat holds.  It runs
// independently of any user session so abandoned checkouts free their
// seats even when nobody comes back to release them.
type Sweeper struct {
    ledger   ExpiredSweeper
    interval time.Duration
    stopCh   chan struct{}
    wg       sync.WaitGroup
    mu       sync.Mutex
    running  bool
}

// NewSweeper constructs a Sweeper.  interval must be positive; holds
// lapse at most one interval after their TTL.
func NewSweeper(ledger ExpiredSweeper, interval time.Duration) *Sweeper {
    if interval <= 0 {
        interval = time.Minute
    }
    return &Sweeper{ledger: ledger, interval: interval, stopCh: make(chan struct{})}
}

// Start launches the sweep loop.  Calling Start on a running sweeper is
// a no-op.  The loop exits when Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
    s.mu.Lock()
    if s.running {
        s.mu.Unlock()
        return
    }
    s.running = true
    s.mu.Unlock()

    s.wg.Add(1)
    go s.loop(ctx)
}

// Stop halts the sweep loop and waits for the in-flight sweep to finish.
func (s *Sweeper) Stop() {
    s.mu.Lock()
    if !s.running {
        s.mu.Unlock()
        return
    }
    s.running = false
    s.mu.Unlock()

    close(s.stopCh)
    s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
    defer s.wg.Done()
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ticker.C:
            s.sweepOnce(ctx)
        case <-s.stopCh:
            return
        case <-ctx.Done():
            return
        }
    }
}

// sweepOnce runs one sweep with a bounded retry.  SweepExpired is
// idempotent, so repeating it after a transient storage error cannot
// double-free anything.
func (s *Sweeper) sweepOnce(ctx context.Context) {
    var (
        count int64
        err   error
    )
    for attempt := 0; attempt < 3; attempt++ {
        count, err = s.ledger.SweepExpired(ctx)
        if err == nil {
            break
        }
        if ctx.Err() != nil {
            return
        }
        time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
    }
    if err != nil {
        log.Printf("sweeper: sweep failed: %v", err)
        return
    }
    if count > 0 {
        log.Printf("sweeper: released %d expired holds", count)
    }
}
