package storage

import (
	"context"
	"fmt"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
	"github.com/nemanja-m/stylize/internal/shared/config"
)

// Stores bundles the image and style stores of one backend.
type Stores struct {
	Images core.ImageStore
	Styles core.StyleStore
	close  func()
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open builds the stores selected by cfg.Driver and seeds the style catalog.
func Open(ctx context.Context, cfg config.StorageConfig) (*Stores, error) {
	switch cfg.Driver {
	case "", "memory":
		return &Stores{
			Images: NewInMemoryImageStore(),
			Styles: NewInMemoryStyleStore(DefaultStyles()),
		}, nil
	case "postgres":
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("storage.postgres_url is required for the postgres driver")
		}
		pg, err := NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx, DefaultStyles()); err != nil {
			pg.Close()
			return nil, err
		}
		return &Stores{Images: pg, Styles: pg, close: pg.Close}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
