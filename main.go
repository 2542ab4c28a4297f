package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"fakeout/internal/broadcast"
	"fakeout/internal/clock"
	"fakeout/internal/game"
	"fakeout/internal/handlers"
	"fakeout/internal/room"
	"fakeout/internal/store"
)

type config struct {
	Addr          string        `envconfig:"ADDR" default:":4000"`
	CardsFile     string        `envconfig:"CARDS_FILE"`
	JoinBaseURL   string        `envconfig:"JOIN_BASE_URL" default:"http://localhost:4000"`
	EvictionGrace time.Duration `envconfig:"EVICTION_GRACE" default:"2m"`
	Debug         bool          `envconfig:"DEBUG"`
}

func main() {
	godotenv.Load()

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cards := game.DefaultCards()
	if cfg.CardsFile != "" {
		loaded, err := game.LoadCards(cfg.CardsFile)
		if err != nil {
			log.Error("loading cards failed", "file", cfg.CardsFile, "err", err)
			os.Exit(1)
		}
		cards = loaded
	}
	log.Info("card deck ready", "cards", len(cards))

	hub := broadcast.NewHub(log)
	tokens := store.NewSessionStore()
	registry := room.NewRegistry(cards, clock.System(), hub, tokens, cfg.EvictionGrace, log)
	defer registry.Close()

	app := fiber.New(fiber.Config{
		AppName:               "fakeout",
		DisableStartupMessage: true,
	})
	handlers.New(registry, hub, cfg.JoinBaseURL, log).Register(app)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := app.Listen(cfg.Addr); err != nil {
			log.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Error("shutdown failed", "err", err)
	}
}
