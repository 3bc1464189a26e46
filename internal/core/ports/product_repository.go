package ports

import (
	"context"

	"github.com/closetshop/closet-api/internal/core/domain"
)

// ProductSort selects the ordering of a product listing.
type ProductSort string

const (
	SortNone      ProductSort = ""
	SortPriceHigh ProductSort = "high"
	SortPriceLow  ProductSort = "low"
	SortNewest    ProductSort = "newest"
)

// ListProductsFilter carries the query for a product listing page.
type ListProductsFilter struct {
	CreatedByAdmin *bool  // optional
	Featured       *bool  // optional
	Category       string // optional: exact match
	Sort           ProductSort
	Skip           int64
	Limit          int64
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	// Create inserts p and sets its ID.
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// FindSummaries returns the name/price projection of the given ids.
	// Unknown ids are skipped.
	FindSummaries(ctx context.Context, ids []string) ([]domain.ProductSummary, error)
	// List returns one page of products and the count of all matches.
	List(ctx context.Context, filter ListProductsFilter) ([]*domain.Product, int64, error)
	SetSold(ctx context.Context, id string, sold bool) error
	SetFeatured(ctx context.Context, id string, featured bool) error
	// MarkSoldByOrder flags ids as sold by orderID. A product matches when it
	// is unsold or already sold by the same order, so the call is idempotent.
	// It returns how many of ids matched.
	MarkSoldByOrder(ctx context.Context, ids []string, orderID string) (int64, error)
	// ReleaseOrder reverts every product marked sold by orderID.
	ReleaseOrder(ctx context.Context, orderID string) error
}

// ProductCache is a read-through cache for product details. Implementations
// treat backend failures as misses.
type ProductCache interface {
	Get(ctx context.Context, id string) (*domain.Product, bool)
	Set(ctx context.Context, p *domain.Product)
	Invalidate(ctx context.Context, ids ...string)
}
