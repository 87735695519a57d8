// Package bootstrap opens the configured storage backend for the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	badgerstore "github.com/samirrijal/travelplan/internal/adapters/badger"
	"github.com/samirrijal/travelplan/internal/adapters/postgres"
	"github.com/samirrijal/travelplan/internal/core/ports"
	"github.com/samirrijal/travelplan/internal/pkg/config"
)

// Store is an opened storage backend. DB is set only for the postgres driver.
type Store struct {
	ports.Store
	DB    *postgres.DB
	close func()
}

// Close releases the backend.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore opens the backend named by cfg.Store.Driver.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Store.Driver {
	case "badger":
		bs, err := badgerstore.Open(badgerstore.Options{Dir: cfg.Store.BadgerDir})
		if err != nil {
			return nil, err
		}
		slog.Info("using badger store", "dir", cfg.Store.BadgerDir)
		return &Store{Store: bs, close: func() {
			if err := bs.Close(); err != nil {
				slog.Error("close badger", "error", err)
			}
		}}, nil

	case "postgres", "":
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		return &Store{Store: postgres.NewStore(db), DB: db, close: db.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
