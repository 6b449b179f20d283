// Command godsworn runs the Godsworn world simulation and wagering API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ravenna/godsworn/internal/api"
	"github.com/ravenna/godsworn/internal/config"
	"github.com/ravenna/godsworn/internal/divine"
	"github.com/ravenna/godsworn/internal/engine"
	"github.com/ravenna/godsworn/internal/hero"
	"github.com/ravenna/godsworn/internal/persistence"
	"github.com/ravenna/godsworn/internal/refdata"
	"github.com/ravenna/godsworn/internal/rng"
	"github.com/ravenna/godsworn/internal/settlement"
	"github.com/ravenna/godsworn/internal/wager"
	"github.com/ravenna/godsworn/internal/worldgen"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Godsworn — world simulation & divine wagering")

	// ── Reference data ────────────────────────────────────────────────
	var ref *refdata.Ref
	if cfg.RefDataPath != "" {
		ref, err = refdata.Open(cfg.RefDataPath)
		if err != nil {
			slog.Error("failed to load reference data", "path", cfg.RefDataPath, "error", err)
			os.Exit(1)
		}
		slog.Info("reference data loaded", "path", cfg.RefDataPath)
	} else {
		ref = refdata.Static(refdata.Defaults())
		slog.Info("using built-in reference data")
	}

	// ── Database ──────────────────────────────────────────────────────
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or generate world state ──────────────────────────────────
	hasState, err := db.HasWorldState()
	if err != nil {
		slog.Error("failed to inspect world state", "error", err)
		os.Exit(1)
	}

	if hasState {
		year, err := db.CurrentYear()
		if err != nil {
			slog.Error("failed to restore current year", "error", err)
			os.Exit(1)
		}
		slog.Info("found saved world state, resuming", "year", year)
	} else {
		slog.Info("no saved state found, generating new world...")
		gen := worldgen.DefaultConfig()
		gen.Seed = cfg.WorldSeed
		gen.Regions = cfg.WorldRegions
		w := worldgen.Generate(gen, ref.Tables())
		if err := db.SeedWorld(w); err != nil {
			slog.Error("failed to seed world", "error", err)
			os.Exit(1)
		}
		slog.Info("world generated",
			"regions", len(w.Regions),
			"settlements", len(w.Settlements),
			"heroes", len(w.Heroes),
		)
	}

	// ── Engines ───────────────────────────────────────────────────────
	ledger := &wager.Ledger{
		Odds: &wager.OddsEngine{
			Ref:         ref,
			Heroes:      db,
			Settlements: db,
			Regions:     db,
			Landmarks:   db,
		},
		Bets:    db,
		Players: db,
	}

	driver := &engine.Driver{
		Ref:         ref,
		Heroes:      db,
		Settlements: db,
		Regions:     db,
		Events:      db,
		Meta:        db,
		Ledger:      ledger,
		Lifecycle:   &hero.Engine{Ref: ref},
		Evolution:   &settlement.Engine{Ref: ref},
		Rand:        rng.NewLocked(rng.New(0)),
		Workers:     cfg.Workers,
	}

	clock := engine.NewClock(driver, cfg.TickInterval)
	if cfg.TickSpeed > 0 {
		clock.SetSpeed(cfg.TickSpeed)
	}

	oracle := &divine.Engine{
		Ref:         ref,
		Heroes:      db,
		Settlements: db,
		Regions:     db,
		Landmarks:   db,
		Players:     db,
		History:     db,
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("GODSWORN_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	srv := &api.Server{
		DB:       db,
		Ref:      ref,
		Driver:   driver,
		Clock:    clock,
		Divine:   oracle,
		Ledger:   ledger,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	srv.Start()

	// ── Run until signalled ───────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	if clock.Speed() == 0 {
		fmt.Println("World clock paused. Set a speed via POST /api/v1/speed.")
	}

	clock.Run(ctx)

	slog.Info("world clock stopped")
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
