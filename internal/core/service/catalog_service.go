package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/closetshop/closet-api/pkg/metrics"
	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// sniffLen is how much of an upload is read to detect its real type.
const sniffLen = 3072

// maxListPage bounds the page number so the store offset cannot overflow.
const maxListPage = math.MaxInt32 / ports.ProductPageSize

type CatalogService struct {
	products ports.ProductRepository
	users    ports.UserRepository
	images   ports.ImageStore
	cache    ports.ProductCache
	logger   zerolog.Logger
}

// NewCatalogService wires the catalog use cases. cache may be nil.
func NewCatalogService(
	products ports.ProductRepository,
	users ports.UserRepository,
	images ports.ImageStore,
	cache ports.ProductCache,
	logger zerolog.Logger,
) *CatalogService {
	if cache == nil {
		cache = noopCache{}
	}
	return &CatalogService{
		products: products,
		users:    users,
		images:   images,
		cache:    cache,
		logger:   logger,
	}
}

// ListProducts returns one page of at most ports.ProductPageSize products.
// An empty match set is not an error; a page past the last one is.
func (s *CatalogService) ListProducts(ctx context.Context, input ports.ListProductsInput) (*ports.ListProductsResult, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	if page > maxListPage {
		return nil, domain.ErrPageNotFound
	}

	items, total, err := s.products.List(ctx, ports.ListProductsFilter{
		CreatedByAdmin: input.CreatedByAdmin,
		Featured:       input.Featured,
		Category:       input.Category,
		Sort:           parseSort(input.Sort),
		Skip:           int64(page-1) * ports.ProductPageSize,
		Limit:          ports.ProductPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	totalPages := int((total + ports.ProductPageSize - 1) / ports.ProductPageSize)
	if total > 0 && page > totalPages {
		return nil, domain.ErrPageNotFound
	}
	if items == nil {
		items = []*domain.Product{}
	}

	return &ports.ListProductsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   ports.ProductPageSize,
		TotalPages: totalPages,
	}, nil
}

// parseSort maps the public sort key; anything unrecognised is unsorted.
func parseSort(key string) ports.ProductSort {
	switch s := ports.ProductSort(key); s {
	case ports.SortPriceHigh, ports.SortPriceLow, ports.SortNewest:
		return s
	}
	return ports.SortNone
}

// GetProduct returns a single product, reading through the cache.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if p, ok := s.cache.Get(ctx, id); ok {
		return p, nil
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, p)
	return p, nil
}

// CreateProduct validates the listing, stores its image, persists it under
// the subtype resolved from its category and links it to the seller.
func (s *CatalogService) CreateProduct(ctx context.Context, input ports.CreateProductInput) (*domain.Product, error) {
	if input.Seller == nil {
		return nil, domain.ErrUnauthorized
	}

	seller, err := s.users.FindByID(ctx, input.Seller.ID)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{
		Name:           input.Name,
		Description:    input.Description,
		ImageURL:       input.ImageURL,
		Price:          input.Price,
		Category:       input.Category,
		Size:           input.Size,
		Featured:       input.Featured && seller.Admin,
		SellerID:       seller.ID,
		CreatedByAdmin: seller.Admin,
		CreatedAt:      time.Now().UTC(),
	}

	// Validate before the upload so a rejected listing leaves no orphan image.
	draft := *p
	if input.Image != nil {
		draft.ImageURL = input.Image.Filename
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	p.Type = draft.Type

	if input.Image != nil {
		contentType, body, err := sniffImage(input.Image.Body)
		if err != nil {
			return nil, err
		}
		if contentType != input.Image.ContentType {
			s.logger.Debug().
				Str("declared", input.Image.ContentType).
				Str("detected", contentType).
				Msg("image content type differs from upload header")
		}
		ref, err := s.images.Upload(ctx, input.Image.Filename, contentType, body)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		p.ImageID = ref.ID
		p.ImageURL = ref.URL
	}

	if err := s.products.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("seller_id", seller.ID).Msg("failed to create product")
		return nil, err
	}

	if err := s.users.AppendProduct(ctx, seller.ID, p.ID); err != nil {
		s.logger.Error().Err(err).
			Str("product_id", p.ID).
			Str("seller_id", seller.ID).
			Msg("product created but not linked to seller")
		return nil, fmt.Errorf("link product to seller: %w", err)
	}

	metrics.ProductsCreatedTotal.WithLabelValues(string(p.Type)).Inc()
	s.logger.Info().
		Str("product_id", p.ID).
		Str("type", string(p.Type)).
		Str("seller_id", seller.ID).
		Msg("product created")

	return p, nil
}

// ToggleSold flips the sold flag of a product listed by userID.
func (s *CatalogService) ToggleSold(ctx context.Context, actor *domain.User, userID, productID string) (*domain.Product, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.SellerID != userID {
		return nil, domain.ErrProductNotFound
	}
	if !actor.CanActOn(userID) {
		return nil, domain.ErrForbidden
	}

	p.Sold = !p.Sold
	if err := s.products.SetSold(ctx, p.ID, p.Sold); err != nil {
		return nil, fmt.Errorf("toggle sold: %w", err)
	}
	if !p.Sold {
		p.SoldInOrder = ""
	}
	s.cache.Invalidate(ctx, p.ID)

	s.logger.Info().Str("product_id", p.ID).Bool("sold", p.Sold).Msg("product sold flag toggled")
	return p, nil
}

// SetFeatured changes whether a product is featured.
func (s *CatalogService) SetFeatured(ctx context.Context, productID string, featured bool) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.products.SetFeatured(ctx, p.ID, featured); err != nil {
		return nil, fmt.Errorf("set featured: %w", err)
	}
	p.Featured = featured
	s.cache.Invalidate(ctx, p.ID)
	return p, nil
}

// OpenImage returns a stored product image.
func (s *CatalogService) OpenImage(ctx context.Context, id string) (*ports.Image, error) {
	return s.images.Open(ctx, id)
}

// sniffImage detects the type of an upload from its first bytes, ignoring
// the client-declared content type. The returned reader yields the full body.
func sniffImage(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, fmt.Errorf("read image: %w", err)
	}
	head = head[:n]

	contentType := mimetype.Detect(head).String()
	if _, ok := allowedImageTypes[contentType]; !ok {
		return "", nil, domain.NewValidationError(map[string]string{
			"image": "image must be a jpeg, png or webp file",
		})
	}
	return contentType, io.MultiReader(bytes.NewReader(head), r), nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.Product, bool) { return nil, false }
func (noopCache) Set(context.Context, *domain.Product)                {}
func (noopCache) Invalidate(context.Context, ...string)               {}
