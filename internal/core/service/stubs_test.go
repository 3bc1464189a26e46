package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"

	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type stubProductRepo struct {
	byID      map[string]*domain.Product
	order     []string // insertion order, used as the natural listing order
	seq       int
	createErr error
	// beforeMark runs at the start of MarkSoldByOrder, letting tests race a
	// concurrent sale in between the availability check and the write.
	beforeMark func()
	markErr    error
	listCalls  int
	lastSkip   int64
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[string]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	if r.createErr != nil {
		return r.createErr
	}
	if p.ID == "" {
		r.seq++
		p.ID = fmt.Sprintf("p%03d", r.seq)
	}
	clone := *p
	r.byID[p.ID] = &clone
	r.order = append(r.order, p.ID)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) FindSummaries(_ context.Context, ids []string) ([]domain.ProductSummary, error) {
	var out []domain.ProductSummary
	for _, id := range ids {
		if p, ok := r.byID[id]; ok {
			out = append(out, domain.ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Sold: p.Sold})
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context, f ports.ListProductsFilter) ([]*domain.Product, int64, error) {
	r.listCalls++
	r.lastSkip = f.Skip
	var matched []*domain.Product
	for _, id := range r.order {
		p := r.byID[id]
		if f.CreatedByAdmin != nil && p.CreatedByAdmin != *f.CreatedByAdmin {
			continue
		}
		if f.Featured != nil && p.Featured != *f.Featured {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}

	switch f.Sort {
	case ports.SortPriceHigh:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	case ports.SortPriceLow:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case ports.SortNewest:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	}

	total := int64(len(matched))
	if f.Skip >= total {
		return nil, total, nil
	}
	end := f.Skip + f.Limit
	if end > total {
		end = total
	}
	return matched[f.Skip:end], total, nil
}

func (r *stubProductRepo) SetSold(_ context.Context, id string, sold bool) error {
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Sold = sold
	if !sold {
		p.SoldInOrder = ""
	}
	return nil
}

func (r *stubProductRepo) SetFeatured(_ context.Context, id string, featured bool) error {
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Featured = featured
	return nil
}

// MarkSoldByOrder mirrors the conditional update of the Mongo repository.
func (r *stubProductRepo) MarkSoldByOrder(_ context.Context, ids []string, orderID string) (int64, error) {
	if r.beforeMark != nil {
		r.beforeMark()
	}
	if r.markErr != nil {
		return 0, r.markErr
	}
	var matched int64
	for _, id := range ids {
		p, ok := r.byID[id]
		if !ok {
			continue
		}
		if !p.Sold || p.SoldInOrder == orderID {
			p.Sold = true
			p.SoldInOrder = orderID
			matched++
		}
	}
	return matched, nil
}

func (r *stubProductRepo) ReleaseOrder(_ context.Context, orderID string) error {
	for _, p := range r.byID {
		if p.SoldInOrder == orderID {
			p.Sold = false
			p.SoldInOrder = ""
		}
	}
	return nil
}

func (r *stubProductRepo) seed(p domain.Product) *domain.Product {
	if p.Category == "" {
		p.Category = "Tops"
		p.Type = domain.TypeClothing
		p.Size = "M"
	}
	_ = r.Create(context.Background(), &p)
	return r.byID[p.ID]
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[string]*domain.User
	seq       int
	updateErr error
	// appendOrderFailures makes the next n AppendOrder calls fail.
	appendOrderFailures int
	appendProductErr    error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("u%03d", r.seq)
	}
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByAccessToken(_ context.Context, token string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.AccessToken == token {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) SetAdmin(_ context.Context, id string, admin bool) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Admin = admin
	return nil
}

func (r *stubUserRepo) AppendProduct(_ context.Context, userID, productID string) error {
	if r.appendProductErr != nil {
		return r.appendProductErr
	}
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ProductIDs = append(u.ProductIDs, productID)
	return nil
}

func (r *stubUserRepo) AppendOrder(_ context.Context, userID, orderID string) error {
	if r.appendOrderFailures > 0 {
		r.appendOrderFailures--
		return fmt.Errorf("connection reset")
	}
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, id := range u.OrderIDs {
		if id == orderID {
			return nil
		}
	}
	u.OrderIDs = append(u.OrderIDs, orderID)
	return nil
}

func (r *stubUserRepo) seed(u domain.User) *domain.User {
	if u.Email == "" {
		u.Email = fmt.Sprintf("user%d@example.com", len(r.byID)+1)
	}
	_ = r.Create(context.Background(), &u)
	return r.byID[u.ID]
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type stubOrderRepo struct {
	byID map[string]*domain.Order
	seq  int
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{byID: make(map[string]*domain.Order)}
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	if o.ID == "" {
		r.seq++
		o.ID = fmt.Sprintf("o%03d", r.seq)
	}
	clone := *o
	r.byID[o.ID] = &clone
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *stubOrderRepo) FindByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	for _, o := range r.byID {
		if o.IdempotencyKey == key {
			clone := *o
			return &clone, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *stubOrderRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, id := range ids {
		if o, ok := r.byID[id]; ok {
			clone := *o
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubOrderRepo) FindUnfulfilled(_ context.Context) ([]string, error) {
	var ids []string
	for id, o := range r.byID {
		if !o.Fulfilled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *stubOrderRepo) MarkFulfilled(_ context.Context, id string) error {
	o, ok := r.byID[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Fulfilled = true
	return nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus) error {
	o, ok := r.byID[id]
	if !ok || o.Status != from {
		return domain.ErrOrderNotFound
	}
	o.Status = to
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

// ---------------------------------------------------------------------------
// Transactions, queue, cache, images
// ---------------------------------------------------------------------------

type stubTransactor struct {
	atomic bool
	calls  int
}

func (t *stubTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func (t *stubTransactor) Atomic() bool { return t.atomic }

type stubQueue struct {
	enqueued []string
}

func (q *stubQueue) Enqueue(orderID string) {
	q.enqueued = append(q.enqueued, orderID)
}

type stubCache struct {
	items       map[string]*domain.Product
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{items: make(map[string]*domain.Product)}
}

func (c *stubCache) Get(_ context.Context, id string) (*domain.Product, bool) {
	p, ok := c.items[id]
	return p, ok
}

func (c *stubCache) Set(_ context.Context, p *domain.Product) {
	c.items[p.ID] = p
}

func (c *stubCache) Invalidate(_ context.Context, ids ...string) {
	for _, id := range ids {
		delete(c.items, id)
		c.invalidated = append(c.invalidated, id)
	}
}

type stubImageStore struct {
	files     map[string][]byte
	types     map[string]string
	uploadErr error
}

func newStubImageStore() *stubImageStore {
	return &stubImageStore{files: make(map[string][]byte), types: make(map[string]string)}
}

func (s *stubImageStore) Upload(_ context.Context, filename, contentType string, body io.Reader) (ports.ImageRef, error) {
	if s.uploadErr != nil {
		return ports.ImageRef{}, s.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return ports.ImageRef{}, err
	}
	id := fmt.Sprintf("img%d", len(s.files)+1)
	s.files[id] = data
	s.types[id] = contentType
	return ports.ImageRef{ID: id, URL: "/images/" + id}, nil
}

func (s *stubImageStore) Open(_ context.Context, id string) (*ports.Image, error) {
	data, ok := s.files[id]
	if !ok {
		return nil, domain.ErrImageNotFound
	}
	return &ports.Image{Body: io.NopCloser(bytes.NewReader(data)), ContentType: "image/png", Size: int64(len(data))}, nil
}
