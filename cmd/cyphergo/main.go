// Command cyphergo serves the hashing console: a browser UI for generating
// and verifying hashes with a remote hash service.
//
// Usage:
//
//	cyphergo [-config cyphergo.yaml]
//
// Every setting can also be given as a CYPHERGO_* environment variable,
// e.g. CYPHERGO_API_BASE_URL=http://localhost:8000.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pthm/cyphergo/internal/config"
	"github.com/pthm/cyphergo/internal/hashapi"
	"github.com/pthm/cyphergo/internal/hx"
	"github.com/pthm/cyphergo/internal/logger"
	"github.com/pthm/cyphergo/internal/server"
	"github.com/pthm/cyphergo/internal/session"
	"github.com/pthm/cyphergo/internal/ui"
	"github.com/pthm/cyphergo/internal/workflow"
)

func main() {
	configPath := flag.String("config", "", "path to a yaml, json or toml config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string) error {
	var (
		level     zap.AtomicLevel
		zapLogger *zap.Logger
		ready     = make(chan struct{})
	)

	// The log level is the only setting applied on reload.
	cfg, err := config.Load(configPath, config.WithOnChange(func(next *config.Config) {
		<-ready
		lvl, err := logger.ParseLevel(next.Log.Level)
		if err != nil {
			return
		}
		level.SetLevel(lvl)
		zapLogger.Info("log level applied", zap.Stringer("level", lvl))
	}))
	if err != nil {
		return err
	}

	zapLogger, level, err = logger.NewZapLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()
	// Reload messages from the config watcher go through the global logger.
	defer zap.ReplaceGlobals(zapLogger)()
	close(ready)

	ordering, err := workflow.ParseOrdering(cfg.UI.Ordering)
	if err != nil {
		return err
	}

	client, err := hashapi.NewClient(cfg.API.BaseURL,
		hashapi.WithTimeout(cfg.API.Timeout),
		hashapi.WithLogger(zapLogger.Named("hashapi")),
	)
	if err != nil {
		return err
	}
	service := hashapi.WithRetry(client, hashapi.RetryPolicy{Attempts: cfg.API.RetryAttempts}, zapLogger.Named("hashapi"))

	sessions := session.NewStore(cfg.Session.TTL,
		func() *workflow.Orchestrator {
			return workflow.New(service,
				workflow.WithOrdering(ordering),
				workflow.WithLogger(zapLogger.Named("workflow")),
			)
		},
		session.WithLogger(zapLogger.Named("session")),
	)

	reg, err := hx.NewRegistry([]byte(cfg.UI.PropsKey), zapLogger.Named("hx"))
	if err != nil {
		return err
	}
	reg.OnError = ui.ErrorHandler(reg.OnError)

	generate, verify := ui.NewGeneratePanel(sessions), ui.NewVerifyPanel(sessions)
	reg.Add(generate, verify)
	pages := ui.NewPages(sessions, generate, verify, zapLogger.Named("ui"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweepEvery := max(cfg.Session.TTL/4, time.Second)
	go sessions.Run(ctx, sweepEvery)

	zapLogger.Info("starting cyphergo",
		zap.String("addr", cfg.Server.Addr),
		zap.String("api", cfg.API.BaseURL),
		zap.Stringer("ordering", ordering),
		zap.Duration("session_ttl", cfg.Session.TTL),
	)

	router := server.NewRouter(pages, reg, zapLogger.Named("http"))
	return server.New(cfg.Server.Addr, router, cfg.Server.ShutdownTimeout, zapLogger).Run(ctx)
}
