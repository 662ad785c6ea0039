package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/aknott/kumo/internal/auth"
	"github.com/aknott/kumo/internal/bridge"
	"github.com/aknott/kumo/internal/config"
	"github.com/aknott/kumo/internal/db"
	"github.com/aknott/kumo/internal/notify"
	"github.com/aknott/kumo/internal/remote"
	"github.com/aknott/kumo/internal/store"
)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	DB       *db.DB // local database
	SyncDB   *db.DB // shared database for accounts and synced todos
	Store    *store.Store
	Auth     auth.Provider
	Remote   remote.Store
	Bridge   *bridge.Bridge
	Notifier *notify.Notifier
	lockFile *flock.Flock
}

// New creates a new application instance
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Load(config.DefaultPath())
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	notifier := notify.NewNotifier()
	notifier.SetEnabled(cfg.Notifications)

	app := &App{
		Config:   cfg,
		Notifier: notifier,
	}

	// Acquire lock to ensure single instance
	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	// Open databases
	local, err := db.Open(cfg.LocalDB())
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = local

	sync, err := db.Open(cfg.SyncDB)
	if err != nil {
		local.Close()
		app.releaseLock()
		return nil, fmt.Errorf("failed to open sync database: %w", err)
	}
	app.SyncDB = sync

	app.Store = store.New(local, nil)
	app.Auth = auth.NewLocalProvider(sync, nil)
	app.Remote = remote.NewSQLite(sync, cfg.PollInterval())
	app.Bridge = bridge.New(app.Store, local, app.Remote)
	app.Bridge.Start()

	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.Config.DataDir, "kumo.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of kumo is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Bridge != nil {
		a.Bridge.Close()
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if a.SyncDB != nil {
		if err := a.SyncDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close sync database: %w", err))
		}
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
