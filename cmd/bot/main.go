package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"rosterbot/internal/adapters/api"
	"rosterbot/internal/adapters/discord"
	"rosterbot/internal/application"
	"rosterbot/internal/config"
	"rosterbot/internal/infrastructure/database"
	"rosterbot/internal/infrastructure/i18n"
	"rosterbot/internal/infrastructure/metrics"
	"rosterbot/internal/infrastructure/suppression"
	"rosterbot/internal/ports/output"
	"rosterbot/pkg/logger"
	"rosterbot/pkg/worker"
)

const shutdownTimeout = 10 * time.Second

type closer func() error

type documentStore interface {
	output.DocumentStore
	api.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("❌ invalid configuration")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("❌ bot stopped with errors")
		os.Exit(1)
	}
	log.Info("👋 bye")
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) (err error) {
	var closers []closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if cerr := closers[i](); cerr != nil {
				err = multierror.Append(err, cerr)
			}
		}
	}()
	checks := map[string]api.Pinger{}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)
	checks["store"] = store

	events, err := database.NewEventRepository(ctx, store, database.WithTimeout(cfg.StoreTimeout))
	if err != nil {
		return err
	}
	lineups, err := database.NewLineupRepository(ctx, store, database.WithTimeout(cfg.StoreTimeout))
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"events": len(events.All(ctx)), "driver": cfg.StoreDriver}).Info("💾 state loaded")

	var ledger output.SuppressionLedger
	if cfg.RedisURL != "" {
		rl, err := suppression.NewRedisLedger(cfg.RedisURL, cfg.SuppressionTTL, cfg.StoreTimeout)
		if err != nil {
			return err
		}
		closers = append(closers, rl.Close)
		checks["redis"] = rl
		ledger = rl
	} else {
		ml := suppression.NewMemoryLedger(cfg.SuppressionTTL, cfg.SuppressionTTL)
		closers = append(closers, ml.Close)
		ledger = ml
	}

	pool := worker.NewPool(log, worker.Options{
		Workers: cfg.ThreadSyncWorkers,
		Rate:    cfg.ThreadSyncRate,
		Burst:   cfg.ThreadSyncWorkers,
		Timeout: cfg.IOTimeout * 3,
	})
	pool.Start()
	closers = append(closers, func() error {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return pool.Stop(sctx)
	})

	rec := metrics.New(prometheus.DefaultRegisterer, func() float64 { return float64(pool.Pending()) })

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return err
	}
	tr := i18n.NewTranslator(cfg.Locale, log)
	messenger := discord.NewMessenger(session, cfg.GuildID, tr, cfg.Locale, cfg.IOTimeout, log)

	opts := application.Options{
		Log:      log,
		Recorder: rec,
		Runner:   pool,
		Locks:    application.NewLocks(),
	}
	auth := application.NewAuthorizer(messenger, cfg.OrganizerRoleID)
	threads := application.NewThreadSynchronizer(events, messenger, opts)
	lineupSvc := application.NewLineupService(lineups, messenger, auth, cfg.DefaultChannelID, opts)
	eventSvc := application.NewEventService(events, messenger, auth, threads, lineupSvc, cfg.DefaultChannelID, opts)
	rsvpSvc := application.NewRSVPService(events, messenger, ledger, threads, cfg.LatePromptTimeout, opts)

	handler := discord.NewHandler(eventSvc, rsvpSvc, lineupSvc, tr, cfg.Locale, cfg.GuildID, log)
	bot := discord.NewBot(session, handler, cfg.GuildID, log)

	httpSrv := api.NewServer(cfg.HTTPAddr, prometheus.DefaultGatherer, checks, log)
	httpErr := make(chan error, 1)
	go func() { httpErr <- httpSrv.ListenAndServe() }()
	closers = append(closers, func() error {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})

	botCtx, cancelBot := context.WithCancel(ctx)
	defer cancelBot()
	go func() {
		if err := <-httpErr; err != nil {
			log.WithError(err).Error("❌ http server failed")
			cancelBot()
		}
	}()

	log.Info("🚀 starting bot")
	return bot.Start(botCtx)
}

// openStore builds the configured document store. Postgres migrations run
// before the pool opens; SQLite migrates on open.
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (documentStore, closer, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		version, err := database.RunMigrations("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("version", version).Info("🗄️ migrations applied")
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return database.NewPostgresStore(pool), func() error { pool.Close(); return nil }, nil
	case config.DriverSQLite:
		s, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, errors.New("unknown store driver " + cfg.StoreDriver)
}
