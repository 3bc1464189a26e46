package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

const collectionProducts = "products"

// ProductRepository implements ports.ProductRepository. All product types
// share one collection and are told apart by the type field.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection(collectionProducts)}
}

type productDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	Type           string             `bson:"type"`
	Name           string             `bson:"name"`
	Description    string             `bson:"description"`
	ImageURL       string             `bson:"image_url"`
	ImageID        string             `bson:"image_id,omitempty"`
	Price          float64            `bson:"price"`
	Category       string             `bson:"category"`
	Size           string             `bson:"size,omitempty"`
	Featured       bool               `bson:"featured"`
	Sold           bool               `bson:"sold"`
	SoldInOrder    primitive.ObjectID `bson:"sold_in_order,omitempty"`
	SellerID       primitive.ObjectID `bson:"seller_id,omitempty"`
	CreatedByAdmin bool               `bson:"created_by_admin"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func toProductDoc(p *domain.Product) productDoc {
	seller, _ := objectID(p.SellerID)
	order, _ := objectID(p.SoldInOrder)
	return productDoc{
		ID:             assignID(p.ID),
		Type:           string(p.Type),
		Name:           p.Name,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		ImageID:        p.ImageID,
		Price:          p.Price,
		Category:       p.Category,
		Size:           p.Size,
		Featured:       p.Featured,
		Sold:           p.Sold,
		SoldInOrder:    order,
		SellerID:       seller,
		CreatedByAdmin: p.CreatedByAdmin,
		CreatedAt:      p.CreatedAt.UTC(),
	}
}

func (d productDoc) toDomain() *domain.Product {
	return &domain.Product{
		ID:             d.ID.Hex(),
		Type:           domain.ProductType(d.Type),
		Name:           d.Name,
		Description:    d.Description,
		ImageURL:       d.ImageURL,
		ImageID:        d.ImageID,
		Price:          d.Price,
		Category:       d.Category,
		Size:           d.Size,
		Featured:       d.Featured,
		Sold:           d.Sold,
		SoldInOrder:    hexOrEmpty(d.SoldInOrder),
		SellerID:       hexOrEmpty(d.SellerID),
		CreatedByAdmin: d.CreatedByAdmin,
		CreatedAt:      d.CreatedAt,
	}
}

// Create inserts a new product document.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toProductDoc(p)
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

// FindByID retrieves a product. Malformed ids are reported as not found.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *ProductRepository) FindSummaries(ctx context.Context, ids []string) ([]domain.ProductSummary, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"name": 1, "price": 1, "sold": 1})
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Name  string             `bson:"name"`
		Price float64            `bson:"price"`
		Sold  bool               `bson:"sold"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.ProductSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.ProductSummary{ID: d.ID.Hex(), Name: d.Name, Price: d.Price, Sold: d.Sold})
	}
	return out, nil
}

// List returns one page of products matching filter and the total match
// count. Every ordering ends on _id so pages never overlap.
func (r *ProductRepository) List(ctx context.Context, filter ports.ListProductsFilter) ([]*domain.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.CreatedByAdmin != nil {
		query["created_by_admin"] = *filter.CreatedByAdmin
	}
	if filter.Featured != nil {
		query["featured"] = *filter.Featured
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(sortFor(filter.Sort)).
		SetSkip(filter.Skip).
		SetLimit(filter.Limit)

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	items := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toDomain())
	}
	return items, total, nil
}

func sortFor(s ports.ProductSort) bson.D {
	switch s {
	case ports.SortPriceHigh:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: 1}}
	case ports.SortPriceLow:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case ports.SortNewest:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
	return bson.D{{Key: "_id", Value: 1}}
}

func (r *ProductRepository) SetSold(ctx context.Context, id string, sold bool) error {
	update := bson.M{"$set": bson.M{"sold": sold}}
	if !sold {
		update["$unset"] = bson.M{"sold_in_order": ""}
	}
	return r.updateOne(ctx, id, update)
}

func (r *ProductRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"featured": featured}})
}

func (r *ProductRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrProductNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// MarkSoldByOrder sets sold on every id that is unsold or already sold by
// orderID, and returns how many matched.
func (r *ProductRepository) MarkSoldByOrder(ctx context.Context, ids []string, orderID string) (int64, error) {
	order, ok := objectID(orderID)
	if !ok {
		return 0, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id": bson.M{"$in": objectIDs(ids)},
		"$or": bson.A{
			bson.M{"sold": bson.M{"$ne": true}},
			bson.M{"sold_in_order": order},
		},
	}
	update := bson.M{"$set": bson.M{"sold": true, "sold_in_order": order}}

	res, err := r.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// ReleaseOrder marks every product sold by orderID as available again.
func (r *ProductRepository) ReleaseOrder(ctx context.Context, orderID string) error {
	order, ok := objectID(orderID)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateMany(ctx,
		bson.M{"sold_in_order": order},
		bson.M{"$set": bson.M{"sold": false}, "$unset": bson.M{"sold_in_order": ""}},
	)
	return err
}

// ReplaceAll drops every product and inserts products. Used by the startup seed.
func (r *ProductRepository) ReplaceAll(ctx context.Context, products []*domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	if len(products) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		doc := toProductDoc(p)
		p.ID = doc.ID.Hex()
		docs = append(docs, doc)
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert products: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes backing the listing filters and sorts.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "featured", Value: 1}}},
		{Keys: bson.D{{Key: "created_by_admin", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "sold_in_order", Value: 1}}, Options: options.Index().SetSparse(true)},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
