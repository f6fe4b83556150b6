package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/cancelflow/internal/adapters/file"
	"github.com/aretw0/cancelflow/internal/adapters/redis"
	"github.com/aretw0/cancelflow/internal/adapters/sqlite"
	"github.com/aretw0/cancelflow/internal/config"
	"github.com/aretw0/cancelflow/internal/logging"
	"github.com/aretw0/cancelflow/pkg/adapters/memory"
	"github.com/aretw0/cancelflow/pkg/catalog"
	"github.com/aretw0/cancelflow/pkg/domain"
	"github.com/aretw0/cancelflow/pkg/loader"
	"github.com/aretw0/cancelflow/pkg/persistence/middleware"
	"github.com/aretw0/cancelflow/pkg/ports"
	"github.com/aretw0/cancelflow/pkg/registry"
)

// createLogger configures the application logger on Stderr, keeping Stdout for the flow.
func createLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(os.Stderr, level, cfg.JSON), nil
}

// LoadRegistry resolves the flow named by the configuration.
// A definition file wins over a built-in name.
func LoadRegistry(cfg config.FlowConfig) (*registry.Registry, string, error) {
	if cfg.File != "" {
		reg, err := loader.LoadFile(cfg.File)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load flow %s: %w", cfg.File, err)
		}
		return reg, cfg.File, nil
	}

	reg, ok, err := catalog.ByName(cfg.Name)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", fmt.Errorf("unknown flow %q (available: %s)", cfg.Name, strings.Join(catalog.Names(), ", "))
	}
	name := cfg.Name
	if name == "" {
		name = "cancel"
	}
	return reg, name, nil
}

// Databases shares SQLite handles by path, so the session store and the
// event log can live in one file without fighting over the write lock.
type Databases struct {
	dbs map[string]*sql.DB
}

// NewDatabases returns an empty pool.
func NewDatabases() *Databases {
	return &Databases{dbs: make(map[string]*sql.DB)}
}

// Open returns the handle for path, opening it on first use.
func (d *Databases) Open(path string) (*sql.DB, error) {
	if db, ok := d.dbs[path]; ok {
		return db, nil
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	d.dbs[path] = db
	return db, nil
}

// Close closes every handle.
func (d *Databases) Close() error {
	var errs []error
	for path, db := range d.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", path, err))
		}
		delete(d.dbs, path)
	}
	return errors.Join(errs...)
}

// OpenStore builds the configured session store wrapped in the privacy middleware.
// The returned function releases connections that are not pooled in dbs.
func OpenStore(ctx context.Context, cfg *config.Config, dbs *Databases) (ports.StateStore, func() error, error) {
	noop := func() error { return nil }

	var (
		store   ports.StateStore
		release = noop
	)
	switch cfg.Store.Type {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(cfg.Store.Path)
	case config.StoreSQLite:
		path := cfg.Store.Path
		if path == "" || path == config.Defaults().Store.Path {
			path = "cancelflow.db"
		}
		db, err := dbs.Open(path)
		if err != nil {
			return nil, nil, err
		}
		s, err := sqlite.NewStore(db)
		if err != nil {
			return nil, nil, err
		}
		store = s
	case config.StoreRedis:
		s := redis.New(cfg.Store.Addr, cfg.Store.Password, cfg.Store.DB,
			redis.WithPrefix(cfg.Store.Prefix),
			redis.WithTTL(cfg.Store.TTL),
		)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := s.Ping(pingCtx); err != nil {
			_ = s.Close()
			return nil, nil, fmt.Errorf("redis %s unreachable: %w", cfg.Store.Addr, err)
		}
		store = s
		release = s.Close
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store.Type)
	}

	mws, err := privacyMiddleware(cfg.Privacy)
	if err != nil {
		_ = release()
		return nil, nil, err
	}
	return middleware.Chain(store, mws...), release, nil
}

// privacyMiddleware returns PII masking then encryption, outermost first.
func privacyMiddleware(cfg config.PrivacyConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.PIIKeys) > 0 {
		pii, err := middleware.NewPIIMiddleware(cfg.PIIKeys)
		if err != nil {
			return nil, fmt.Errorf("privacy.pii_keys: %w", err)
		}
		mws = append(mws, pii)
	}
	if cfg.EncryptionKey != "" {
		active, err := config.DecodeKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		var fallback [][]byte
		for _, k := range cfg.FallbackKeys {
			key, err := config.DecodeKey(k)
			if err != nil {
				return nil, err
			}
			fallback = append(fallback, key)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

// OpenEventLog opens the analytics log, or returns nil when analytics is off.
func OpenEventLog(cfg config.AnalyticsConfig, dbs *Databases) (*sqlite.EventLog, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	db, err := dbs.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	return sqlite.NewEventLog(db)
}

// Account builds the account provider from configuration.
func Account(cfg config.AccountConfig, now time.Time) ports.AccountProvider {
	data := domain.UserData{
		FirstName:   cfg.FirstName,
		RenewalDate: now.AddDate(0, 0, cfg.RenewalDays).Truncate(24 * time.Hour),
		IsTrial:     cfg.Trial,
	}
	if cfg.Trial {
		days := cfg.TrialDays
		data.TrialDaysRemaining = &days
	}
	return memory.NewAccount(data)
}
