package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/rosterapp/roster/internal/config"
	"github.com/rosterapp/roster/internal/logger"
	"github.com/rosterapp/roster/internal/sse"
	"github.com/rosterapp/roster/internal/store"
	"github.com/rosterapp/roster/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.WithComponent("sse"))

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the selected storage backend with shutdown capability.
type StoreHandle struct {
	store.Backend
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured storage backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	backend, err := OpenBackend(cfg.Storage, log.WithComponent("store"))
	if err != nil {
		return nil, err
	}

	log.Info("Storage initialized", "backend", cfg.Storage.Backend, "path", cfg.Storage.DataPath)

	return &StoreHandle{Backend: backend}, nil
}

// OpenBackend opens the storage backend named by cfg. Badger and SQLite
// files live under cfg.DataPath, which is created if missing.
func OpenBackend(cfg config.StorageConfig, log *slog.Logger) (store.Backend, error) {
	if cfg.Backend == config.BackendMemory {
		return store.NewMemory(log), nil
	}

	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	switch cfg.Backend {
	case config.BackendBadger:
		return store.New(filepath.Join(cfg.DataPath, "db"), log)
	case config.BackendSQLite:
		return sqlite.Open(filepath.Join(cfg.DataPath, "roster.db"), log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
