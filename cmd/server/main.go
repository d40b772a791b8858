package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/medsched/api/handler"
	"github.com/fastygo/medsched/internal/config"
	"github.com/fastygo/medsched/internal/infrastructure/boltdb"
	"github.com/fastygo/medsched/internal/infrastructure/memory"
	"github.com/fastygo/medsched/internal/infrastructure/monitor"
	"github.com/fastygo/medsched/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/medsched/internal/infrastructure/redis"
	"github.com/fastygo/medsched/internal/middleware"
	"github.com/fastygo/medsched/internal/router"
	"github.com/fastygo/medsched/internal/services/lifecycle"
	"github.com/fastygo/medsched/internal/services/snapshot"
	"github.com/fastygo/medsched/internal/services/writer"
	"github.com/fastygo/medsched/pkg/httpcontext"
	"github.com/fastygo/medsched/pkg/logger"
	"github.com/fastygo/medsched/repository"
	"github.com/fastygo/medsched/repository/kv"
	appointmentUC "github.com/fastygo/medsched/usecase/appointment"
	authUC "github.com/fastygo/medsched/usecase/auth"
	"github.com/fastygo/medsched/usecase/identity"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	store, boltStore, err := openStore(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("storage unavailable", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	manager.RegisterCloser("storage", store)
	zapLogger.Info("storage opened", zap.String("backend", cfg.Storage.Backend))

	mon := monitor.New(cfg.Storage.Backend, store, cfg.Storage.CheckInterval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if cfg.Backup.Enabled && boltStore != nil {
		scheduler, err := snapshot.New(boltStore, zapLogger, snapshot.Config{
			Interval: cfg.Backup.Interval,
			Dir:      cfg.Backup.Dir,
			Keep:     cfg.Backup.Keep,
		})
		if err != nil {
			zapLogger.Fatal("snapshot scheduler", zap.Error(err))
		}
		scheduler.Start()
		manager.Register("snapshot", func(ctx context.Context) error {
			scheduler.Stop(ctx)
			return nil
		})
	}

	// one writer per collection; registered after storage so they drain before it closes
	patientWriter := startWriter(manager, "patients", cfg, zapLogger)
	appointmentWriter := startWriter(manager, "appointments", cfg, zapLogger)

	directory := identity.New(kv.NewPatientRepository(store), patientWriter, identity.Roster{}, cfg.Auth.DefaultPassword, zapLogger)
	directory.Restore(appCtx)
	// runs before the patients writer stops
	manager.Register("patient_roster", directory.Flush)

	authUseCase := authUC.New(directory, kv.NewSessionRepository(store), authUC.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL), zapLogger)
	if session := authUseCase.Restore(appCtx); session != nil {
		zapLogger.Info("resuming session", zap.String("dashboard", session.User.Role.Dashboard()))
	}

	appointmentUseCase := appointmentUC.New(kv.NewAppointmentRepository(store), appointmentWriter, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:        apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Directory:   apiHandler.NewDirectoryHandler(directory, ctxAdapter, zapLogger),
		Appointment: apiHandler.NewAppointmentHandler(appointmentUseCase, directory, ctxAdapter, zapLogger),
		Health:      apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	r := router.New(handlers, middleware.SessionAuth(authUseCase, zapLogger))

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openStore returns the configured backend and, for bolt, the concrete store so
// snapshots can be scheduled.
func openStore(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (repository.KeyValueStore, *boltdb.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		store, err := redisInfra.Open(ctx, cfg.Redis)
		return store, nil, err
	case config.BackendPostgres:
		if err := postgres.RunMigrations(cfg, zapLogger); err != nil {
			return nil, nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStore(pool), nil, nil
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	default:
		store, err := boltdb.Open(cfg.Storage.Path, cfg.Storage.Bucket)
		return store, store, err
	}
}

func startWriter(manager *lifecycle.Manager, name string, cfg *config.Config, zapLogger *zap.Logger) *writer.Writer {
	w := writer.New(name, cfg.Storage.Timeout, cfg.Storage.QueueSize, zapLogger)
	w.Start()
	manager.Register(name+"_writer", w.Stop)
	return w
}
