package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"zennovel/internal/config"
	"zennovel/internal/library"
	"zennovel/internal/logging"
	"zennovel/internal/server"
)

// Version is stamped at build time.
var Version = "dev"

// Daemon coordinates the store and API server and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	store  *library.Store
	server *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon. The store and server are created on Start.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	lockPath := cfg.LockFilePath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, opens the store, and starts the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another zennovel daemon instance is already running")
	}

	store, err := library.Open(d.cfg)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("open library: %w", err)
	}
	d.store = store

	srv, err := server.New(d.cfg, store, d.logger, d.status)
	if err != nil {
		_ = store.Close()
		_ = d.lock.Unlock()
		return fmt.Errorf("build api server: %w", err)
	}
	d.server = srv

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := srv.Start(d.ctx); err != nil {
		d.cancel()
		d.ctx, d.cancel = nil, nil
		_ = store.Close()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("daemon started", "lock", d.lockPath, "database", store.Path())
	return nil
}

// Stop shuts the server and store down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	if d.server != nil {
		d.server.Stop()
		d.server = nil
	}
	if d.store != nil {
		_ = d.store.Close()
		d.store = nil
	}
	_ = d.lock.Unlock()
	d.ctx, d.cancel = nil, nil
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Running reports whether the daemon has started and not yet stopped.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Addr returns the API listener address, empty before Start.
func (d *Daemon) Addr() string {
	if d.server == nil {
		return ""
	}
	return d.server.Addr()
}

func (d *Daemon) status(ctx context.Context) server.Status {
	status := server.Status{
		Running: d.running.Load(),
		Version: Version,
	}
	if d.store != nil {
		status.DatabasePath = d.store.Path()
		if novels, err := d.store.ListNovels(ctx, library.NovelFilter{}); err == nil {
			status.Novels = len(novels)
		}
	}
	return status
}
