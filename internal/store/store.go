// Package store provides the optional user store. The store is either
// Configured with a backend or Unconfigured; callers type-switch on the
// Capability returned by New.
package store

import (
	"context"
	"fmt"

	"pongping/internal/config"
	"pongping/internal/logger"
	"pongping/internal/model"
	"pongping/internal/repository"
)

const (
	BackendSupabase = "supabase"
	BackendSQLite   = "sqlite"
)

// UserStore is implemented by every backend.
type UserStore interface {
	UpsertUser(ctx context.Context, user model.User) error
	CountUsers(ctx context.Context) (int64, error)
}

// Capability is either Configured or Unconfigured.
type Capability interface {
	capability()
}

// Configured wraps a working backend.
type Configured struct {
	Users   UserStore
	Backend string
}

// Unconfigured means no backend is available; Reason says why.
type Unconfigured struct {
	Reason string
}

func (Configured) capability() {}
func (Unconfigured) capability() {}

// Error is returned by Configured operations.
type Error struct {
	Backend string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (c Configured) UpsertUser(ctx context.Context, user model.User) error {
	if err := c.Users.UpsertUser(ctx, user); err != nil {
		return &Error{Backend: c.Backend, Op: "upsert", Err: err}
	}
	return nil
}

func (c Configured) CountUsers(ctx context.Context) (int64, error) {
	n, err := c.Users.CountUsers(ctx)
	if err != nil {
		return 0, &Error{Backend: c.Backend, Op: "count", Err: err}
	}
	return n, nil
}

// New picks a backend from cfg. It never fails: any problem degrades to Unconfigured.
func New(cfg config.Config) Capability {
	if cfg.SupabasePartial() {
		if cfg.DatabaseURL != "" {
			logger.Warn().Msg("Only one of SUPABASE_URL/SUPABASE_KEY is set, using the local SQLite store instead")
		} else {
			logger.Warn().Msg("Only one of SUPABASE_URL/SUPABASE_KEY is set, Supabase disabled")
		}
	}

	switch {
	case cfg.SupabaseConfigured():
		users, err := NewSupabase(cfg.Supabase.URL, cfg.Supabase.Key)
		if err != nil {
			return degrade(fmt.Sprintf("supabase client: %v", err))
		}
		logger.Info().Str("backend", BackendSupabase).Msg("User store ready")
		return Configured{Users: users, Backend: BackendSupabase}

	case cfg.DatabaseURL != "":
		db, err := repository.NewDB(cfg.DatabaseURL)
		if err != nil {
			return degrade(fmt.Sprintf("sqlite: %v", err))
		}
		logger.Info().Str("backend", BackendSQLite).Str("dsn", cfg.DatabaseURL).Msg("User store ready")
		return Configured{Users: repository.NewUserRepository(db), Backend: BackendSQLite}

	default:
		return degrade("no store credentials")
	}
}

func degrade(reason string) Unconfigured {
	logger.Warn().Str("reason", reason).Msg("User store unavailable, users will not be recorded")
	return Unconfigured{Reason: reason}
}

type closer interface {
	Close() error
}

// Close releases backend resources, if the backend holds any.
func Close(c Capability) error {
	configured, ok := c.(Configured)
	if !ok {
		return nil
	}
	if cl, ok := configured.Users.(closer); ok {
		return cl.Close()
	}
	return nil
}
