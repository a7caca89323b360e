package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/shivenk/gatepass/internal/config"
	"github.com/shivenk/gatepass/internal/database"
	"github.com/shivenk/gatepass/internal/gate"
	"github.com/shivenk/gatepass/internal/handler"
	"github.com/shivenk/gatepass/internal/queue"
	"github.com/shivenk/gatepass/internal/repository"
	"github.com/shivenk/gatepass/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and rate limiter; nil means both
	// degrade to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}

	entries := repository.NewEntryRepo(db)
	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)

	alloc := gate.NewAllocator(entries, cfg.Checkpoint)
	lifecycle := gate.NewLifecycle(entries, alloc, cfg.Checkpoint)
	resolver := gate.NewResolver(entries)
	queries := gate.NewQuery(entries, cfg.Checkpoint)

	// Slip renderer runs for the life of the process, reconnecting to
	// the broker on its own.
	go func() {
		if err := queue.StartSlipConsumer(); err != nil {
			log.Printf("slip consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, sessions), cfg.JWTSecret)
	router.RegisterGate(e, cfg, handler.NewEntryHandler(lifecycle, resolver), handler.NewQueryHandler(queries), rdb)
	router.RegisterAdmin(e, cfg, handler.NewAdminHandler(cfg, users, sessions))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, tz=%s)", addr, cfg.Env, cfg.Checkpoint)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
