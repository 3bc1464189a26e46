package mongo

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/closetshop/closet-api/internal/core/domain"
)

//go:embed fixtures/products.json
var productFixtures []byte

type productFixture struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Size        string  `json:"size"`
	Featured    bool    `json:"featured"`
}

// FixtureProducts decodes and validates the embedded catalog. Fixtures are
// admin listings; creation times step back one minute per entry so the
// newest-first sort follows file order.
func FixtureProducts(now time.Time) ([]*domain.Product, error) {
	var fixtures []productFixture
	if err := json.Unmarshal(productFixtures, &fixtures); err != nil {
		return nil, fmt.Errorf("decode product fixtures: %w", err)
	}

	products := make([]*domain.Product, 0, len(fixtures))
	for i, f := range fixtures {
		p := &domain.Product{
			Name:           f.Name,
			Description:    f.Description,
			ImageURL:       f.ImageURL,
			Price:          f.Price,
			Category:       f.Category,
			Size:           f.Size,
			Featured:       f.Featured,
			CreatedByAdmin: true,
			CreatedAt:      now.Add(-time.Duration(i) * time.Minute).UTC(),
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("fixture %d (%s): %w", i, f.Name, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// SeedProducts replaces the catalog with the embedded fixtures.
func SeedProducts(ctx context.Context, repo *ProductRepository, logger zerolog.Logger) error {
	products, err := FixtureProducts(time.Now())
	if err != nil {
		return err
	}
	if err := repo.ReplaceAll(ctx, products); err != nil {
		return err
	}
	logger.Info().Int("products", len(products)).Msg("catalog reset from fixtures")
	return nil
}
