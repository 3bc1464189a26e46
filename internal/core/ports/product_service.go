package ports

import (
	"context"
	"io"

	"github.com/closetshop/closet-api/internal/core/domain"
)

// ProductPageSize is the fixed number of products per listing page.
const ProductPageSize = 12

// ListProductsInput carries the parameters of GET /products.
type ListProductsInput struct {
	Page           int // 1-based; values < 1 are treated as 1
	CreatedByAdmin *bool
	Featured       *bool
	Category       string
	Sort           string
}

// ListProductsResult is one page of the catalog.
type ListProductsResult struct {
	Items      []*domain.Product
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// ImageUpload is an image file received with a product.
type ImageUpload struct {
	Filename    string
	// ContentType is the type declared by the client. The stored type is
	// detected from the content.
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateProductInput carries all data needed to list a new product.
type CreateProductInput struct {
	Seller      *domain.User
	Name        string
	Description string
	Price       float64
	Category    string
	Size        string
	Featured    bool
	// Exactly one of ImageURL or Image is used; Image wins when both are set.
	ImageURL string
	Image    *ImageUpload
}

// CatalogService defines use-case operations on the product catalog.
type CatalogService interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ListProductsResult, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	// ToggleSold flips the sold flag of a product owned by userID.
	ToggleSold(ctx context.Context, actor *domain.User, userID, productID string) (*domain.Product, error)
	SetFeatured(ctx context.Context, productID string, featured bool) (*domain.Product, error)
	OpenImage(ctx context.Context, id string) (*Image, error)
}
