package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/event-seat-reservation/internal/config"
    "github.com/iliyamo/event-seat-reservation/internal/database"
    "github.com/iliyamo/event-seat-reservation/internal/handler"
    "github.com/iliyamo/event-seat-reservation/internal/payment"
    "github.com/iliyamo/event-seat-reservation/internal/queue"
    "github.com/iliyamo/event-seat-reservation/internal/repository"
    "github.com/iliyamo/event-seat-reservation/internal/router"
    "github.com/iliyamo/event-seat-reservation/internal/service"
    "github.com/iliyamo/event-seat-reservation/internal/worker"
)

func main() {
    // Load .env when present; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    sectionRepo := repository.NewSectionRepo(db)
    reservationRepo := repository.NewReservationRepo(db)

    gateway, err := payment.NewStripeGateway(cfg.StripeSecret)
    if err != nil {
        log.Fatalf("payment gateway: %v", err)
    }

    reservations := service.NewReservationService(reservationRepo, sectionRepo, cfg.HoldTTL)
    orchestrator := service.NewBookingOrchestrator(reservations, gateway, cfg.Currency)

    // Background reclaim of expired holds; runs independent of any
    // user session so abandoned checkouts free their seats.
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    sweeper := worker.NewSweeper(reservationRepo, cfg.SweepInterval)
    sweeper.Start(ctx)
    defer sweeper.Stop()

    // Receipt consumer; reconnects on broker failure and never blocks
    // the request path.
    go func() {
        if err := queue.StartOrderConsumer(); err != nil {
            log.Printf("order consumer stopped: %v", err)
        }
    }()

    // Redis is optional: when unreachable the rate limiter and cache
    // middleware degrade to pass-through.
    rdb := config.NewRedisClient()
    rlCfg := config.LoadRateLimitConfig()
    cacheCfg := config.LoadCacheConfig()

    e := echo.New()
    bookingHandler := handler.NewBookingHandler(reservations, orchestrator)
    paymentHandler := handler.NewPaymentHandler(orchestrator)
    catalogHandler := handler.NewCatalogHandler(sectionRepo)

    router.RegisterRoutes(e)
    router.RegisterBooking(e, bookingHandler, paymentHandler, catalogHandler, rdb, rlCfg, cacheCfg)
    router.RegisterOrganizer(e, catalogHandler, cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
