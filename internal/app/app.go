package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/calbar/internal/config"
	"github.com/klokku/calbar/internal/database"
	"github.com/klokku/calbar/pkg/syncer"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 30 * time.Second

// Application wires configuration, database and dependencies. Commands share one instance.
type Application struct {
	cfg  config.Application
	db   *sql.DB
	deps *Dependencies
}

// NewApplication loads the configuration at configPath and opens the database.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// DB + migrations
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Build dependencies (services, handlers...)
	deps, err := BuildDependencies(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Application{cfg: cfg, db: db, deps: deps}, nil
}

func (a *Application) Close() error {
	return a.db.Close()
}

// Router builds the HTTP API.
func (a *Application) Router() *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	SetupMiddleware(r)

	// Routes
	RegisterRoutes(r, a.deps)

	return r
}

// Serve runs the HTTP API and the sync schedule until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	scheduler, err := syncer.NewScheduler(a.deps.Syncer, a.cfg.Sync.Cron)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      a.Router(),
		Addr:         a.cfg.Listen,
		WriteTimeout: 2 * time.Minute,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	scheduler.Start()
	if a.cfg.Sync.OnStart {
		go func() {
			if _, err := a.deps.Syncer.Run(ctx); err != nil {
				log.Warnf("Initial sync finished with errors: %v", err)
			}
		}()
	}

	select {
	case err := <-serverErr:
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		scheduler.Stop(stopCtx)
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-serverErr
}
