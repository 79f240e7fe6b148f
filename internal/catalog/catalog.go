// Package catalog reads the reviewable items a user has completed from the
// problem catalog that owns them.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/at-ishikawa/revisit/internal/config"
	"github.com/at-ishikawa/revisit/internal/repetition"
)

//go:generate mockgen -source=catalog.go -destination=../mocks/catalog/mock_catalog.go -package=mock_catalog

// Catalog lists the items a user has completed, in the catalog's own order.
type Catalog interface {
	CompletedItems(ctx context.Context, userID string) ([]repetition.ReviewableRef, error)
}

type item struct {
	ItemID     int64  `json:"item_id" yaml:"item_id"`
	Slug       string `json:"slug" yaml:"slug"`
	Name       string `json:"name" yaml:"name"`
	Difficulty string `json:"difficulty" yaml:"difficulty"`
	Topic      string `json:"topic" yaml:"topic"`
}

func (i item) ref() repetition.ReviewableRef {
	return repetition.ReviewableRef{
		ItemID:     i.ItemID,
		Slug:       i.Slug,
		Name:       i.Name,
		Difficulty: i.Difficulty,
		Topic:      i.Topic,
	}
}

func toRefs(items []item) ([]repetition.ReviewableRef, error) {
	refs := make([]repetition.ReviewableRef, 0, len(items))
	for _, i := range items {
		ref := i.ref()
		if err := repetition.ValidateRef(ref); err != nil {
			return nil, fmt.Errorf("catalog item %d: %w", i.ItemID, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// New builds the catalog selected in the configuration.
func New(cfg config.CatalogConfig) (Catalog, error) {
	switch cfg.Source {
	case config.CatalogSourceFile:
		if cfg.File == "" {
			return nil, fmt.Errorf("catalog.file is required for the file catalog")
		}
		return NewFileCatalog(cfg.File), nil
	case config.CatalogSourceHTTP:
		if cfg.HTTP.BaseURL == "" {
			return nil, fmt.Errorf("catalog.http.base_url is required for the http catalog")
		}
		return NewHTTPCatalog(
			cfg.HTTP.BaseURL,
			cfg.HTTP.APIKey,
			time.Duration(cfg.HTTP.TimeoutSeconds)*time.Second,
			cfg.HTTP.MaxRetryAttempts,
		), nil
	default:
		return nil, fmt.Errorf("unsupported catalog source %q", cfg.Source)
	}
}
