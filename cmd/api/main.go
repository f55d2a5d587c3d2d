package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/pawtrail/dogwalk-service/docs"
	"github.com/pawtrail/dogwalk-service/internal/api"
	"github.com/pawtrail/dogwalk-service/internal/api/handler"
	"github.com/pawtrail/dogwalk-service/internal/api/middleware"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
	"github.com/pawtrail/dogwalk-service/internal/core/service"
	"github.com/pawtrail/dogwalk-service/internal/infrastructure/db/memory"
	"github.com/pawtrail/dogwalk-service/internal/infrastructure/db/mongo"
	"github.com/pawtrail/dogwalk-service/internal/infrastructure/db/postgres"
	"github.com/pawtrail/dogwalk-service/internal/infrastructure/db/redis"
	"github.com/pawtrail/dogwalk-service/internal/infrastructure/queue"
	"github.com/pawtrail/dogwalk-service/internal/pkg/config"
	"github.com/pawtrail/dogwalk-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title       Dog Walk Marketplace API
// @version     1.0
// @description Owners post walk requests for their dogs; walkers apply to them.
// @BasePath    /
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "dogwalk-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	checks := map[string]handler.Check{}
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn().Err(err).Msg("error while closing dependency")
			}
		}
	}()

	// --- Marketplace store ---
	var (
		users   ports.UserRepository
		dogs    ports.DogRepository
		walks   ports.WalkRequestRepository
		summary ports.SummaryRepository
	)
	switch cfg.Database.Store {
	case config.StorePostgres:
		pg, err := postgres.Open(ctx, postgres.Config{DSN: cfg.Database.URL, Timeout: cfg.Database.Timeout})
		if err != nil {
			return err
		}
		closers = append(closers, pg.Close)
		checks["postgres"] = pg.Ping

		if err := pg.Migrate(ctx); err != nil {
			return err
		}
		if cfg.Database.Seed {
			seeded, err := pg.Seed(ctx)
			if err != nil {
				return err
			}
			log.Info().Bool("seeded", seeded).Msg("postgres seed checked")
		}

		walkRepo := postgres.NewWalkRepository(pg)
		users = postgres.NewUserRepository(pg)
		dogs = postgres.NewDogRepository(pg)
		walks, summary = walkRepo, walkRepo
		log.Info().Msg("using postgres store")
	default:
		store := memory.NewStore()
		if err := store.Seed(ctx); err != nil {
			return err
		}
		users, dogs, walks, summary = store.Users(), store.Dogs(), store.Walks(), store.Summary()
		log.Info().Msg("using in-memory store")
	}

	// --- Sessions and idempotency keys ---
	var (
		sessions    ports.SessionStore
		idempotency ports.IdempotencyStore
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		closers = append(closers, rdb.Close)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		sessions = redis.NewSessionStore(rdb)
		idempotency = redis.NewIdempotencyStore(rdb)
	} else {
		sessions = memory.NewSessionStore()
		idempotency = memory.NewIdempotencyStore()
	}

	// --- Walk event log ---
	var history ports.EventRepository
	if cfg.Mongo.URI != "" {
		store, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		closers = append(closers, store.Close)
		checks["mongo"] = store.Ping

		repo := store.Events()
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		history = repo
	} else {
		history = memory.NewEventLog()
	}

	dispatcherCtx, stopDispatcher := context.WithCancel(ctx)
	dispatcher := queue.NewDispatcher(cfg.Events.Workers, history, log)
	dispatcher.Start(dispatcherCtx)
	defer func() {
		stopDispatcher()
		dispatcher.Wait()
	}()

	// --- Services and HTTP ---
	authService := service.NewAuthService(users, sessions, cfg.Session.TTL, log)
	walkService := service.NewWalkService(service.WalkDeps{
		Users:       users,
		Dogs:        dogs,
		Walks:       walks,
		Summary:     summary,
		History:     history,
		Events:      dispatcher,
		Idempotency: idempotency,
	}, log)

	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Walks:      walkService,
		Codec:      middleware.NewSessionCodec(cfg.Session.Secret, cfg.Session.TTL, !cfg.IsDevelopment()),
		Checks:     checks,
		Log:        log,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-sigCtx.Done():
	}

	log.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
