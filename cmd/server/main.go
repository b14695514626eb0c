package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guild-inventory/internal/config"
	"github.com/iliyamo/guild-inventory/internal/database"
	"github.com/iliyamo/guild-inventory/internal/handler"
	"github.com/iliyamo/guild-inventory/internal/ledger"
	"github.com/iliyamo/guild-inventory/internal/queue"
	"github.com/iliyamo/guild-inventory/internal/repository"
	"github.com/iliyamo/guild-inventory/internal/router"
	queue_publisher "github.com/iliyamo/guild-inventory/internal/service"
	"github.com/iliyamo/guild-inventory/internal/sheets"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: open failed: %v", err)
	}
	defer db.Close()

	if err := database.CreateSchema(db); err != nil {
		log.Fatalf("database: schema setup failed: %v", err)
	}

	// Optional tiers: Redis only backs the rate limiter and the mirror
	// webhook only backs the sync consumer; the ledger runs without both.
	rdb := config.NewRedisClient()
	rlCfg := config.LoadRateLimitConfig()

	engine := ledger.New(db, queue_publisher.Notifier{})

	mirror := sheets.NewClient(cfg.SyncWebhookURL)
	go func() {
		if err := queue.StartSyncConsumer(engine, mirror); err != nil {
			log.Printf("sync-consumer: stopped: %v", err)
		}
	}()

	accounts := repository.NewAccountRepo(db)
	tokens := repository.NewTokenRepo(db)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, accounts, tokens), cfg.JWTSecret)
	router.RegisterGuild(e,
		handler.NewItemHandler(engine),
		handler.NewCheckoutHandler(engine),
		handler.NewReportHandler(engine),
		handler.NewAdminHandler(engine, queue_publisher.Notifier{}),
		cfg.JWTSecret, rlCfg, rdb,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
