// Package service holds the roster state managers: tags, members and chats.
// Each manager owns the authoritative in-memory copy of its records and mirrors
// every mutation to a store.Adapter before committing it.
package service

import (
	"context"
	"log/slog"
	"time"

	domainerrors "github.com/rosterapp/roster/internal/errors"
	"github.com/rosterapp/roster/internal/store"
	"github.com/rosterapp/roster/internal/validation"
)

// Deps bundles the collaborators shared by the roster services.
type Deps struct {
	Store     store.Adapter
	Emitter   store.EventEmitter // Optional; events are dropped when nil
	Validator *validation.Validator
	Logger    *slog.Logger
	Now       func() time.Time // Optional; defaults to UTC wall clock
}

func (d Deps) withDefaults() Deps {
	if d.Emitter == nil {
		d.Emitter = store.NewNoopEmitter()
	}
	if d.Validator == nil {
		d.Validator = validation.New()
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// errLoading is returned by mutators called before Load completes.
func errLoading(what string) error {
	return domainerrors.NotReady(what + " are still loading")
}

// persist writes one key and wraps failures as STORAGE errors.
func persist(ctx context.Context, s store.Adapter, key string, value any) error {
	if err := s.SetItem(ctx, key, value); err != nil {
		return domainerrors.Storage(err, "persist "+key)
	}
	return nil
}

// persistAll writes several keys atomically and wraps failures as STORAGE errors.
func persistAll(ctx context.Context, s store.Adapter, items map[string]any) error {
	if err := s.SetItems(ctx, items); err != nil {
		return domainerrors.Storage(err, "persist chat state")
	}
	return nil
}

// hydrate reads key into dest. Read errors are logged and reported as "no data".
func hydrate(ctx context.Context, s store.Adapter, logger *slog.Logger, key string, dest any) bool {
	found, err := s.GetItem(ctx, key, dest)
	if err != nil {
		logger.Warn("failed to read persisted state, falling back to seed data", "key", key, "error", err)
		return false
	}
	return found
}
