// Package remote stores areas and products in MongoDB under per-owner
// partitions, mirroring the hierarchical document namespace
// owners/{ownerKey}/areas/{id} and owners/{ownerKey}/products/{id}.
// The owner key is the URL-encoded owner name. Geometry crosses the
// wire as an opaque string; the typed in-memory shape never leaks into
// the stored documents.
package remote

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"agro-gps/field-backend/internal/fields"
	"agro-gps/field-backend/pkg/geospatial"
)

const (
	ownersCollection   = "owners"
	areasCollection    = "areas"
	productsCollection = "products"
)

// OwnerKey returns the partition key for an owner name
func OwnerKey(owner string) string {
	return url.PathEscape(owner)
}

type ownerDoc struct {
	Key     string    `bson:"_id"`
	Owner   string    `bson:"owner"`
	Updated time.Time `bson:"updated"`
}

type areaDoc struct {
	DocID       string    `bson:"_id"` // ownerKey/areaID
	ID          string    `bson:"id"`
	OwnerKey    string    `bson:"ownerKey"`
	Name        string    `bson:"name"`
	Owner       string    `bson:"owner"`
	Area        float64   `bson:"area"`
	Coordinates string    `bson:"coordinates"` // opaque string encoding
	Type        string    `bson:"type"`
	Created     time.Time `bson:"created"`
	Updated     time.Time `bson:"updated,omitempty"`
}

type productDoc struct {
	DocID    string    `bson:"_id"` // ownerKey/productID
	ID       string    `bson:"id"`
	OwnerKey string    `bson:"ownerKey"`
	AreaID   string    `bson:"areaId"`
	Type     string    `bson:"type"`
	Name     string    `bson:"name"`
	Quantity float64   `bson:"quantity"`
	Unit     string    `bson:"unit"`
	WorkType string    `bson:"workType,omitempty"`
	Date     string    `bson:"date"`
	Notes    string    `bson:"notes,omitempty"`
	Created  time.Time `bson:"created"`
	Updated  time.Time `bson:"updated,omitempty"`
}

// Store is the MongoDB-backed remote document store
type Store struct {
	db     *mongo.Database
	logger *zap.Logger
}

// Connect dials MongoDB and verifies the connection
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// NewStore creates a remote store on the given database
func NewStore(client *mongo.Client, database string, logger *zap.Logger) *Store {
	return &Store{
		db:     client.Database(database),
		logger: logger,
	}
}

// Database exposes the underlying database for collaborators that keep
// their own collections (the auth gate's users collection).
func (s *Store) Database() *mongo.Database {
	return s.db
}

// UpsertOwner writes the idempotent owner partition marker. Merge
// semantics: only the fields present here are touched.
func (s *Store) UpsertOwner(ctx context.Context, owner string) error {
	key := OwnerKey(owner)
	_, err := s.db.Collection(ownersCollection).UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"owner": owner, "updated": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert owner %s: %w", key, err)
	}
	return nil
}

// UpsertArea writes the full area document under the owner partition
func (s *Store) UpsertArea(ctx context.Context, a fields.Area) error {
	coords, err := geospatial.EncodeCoordinates(a.Coordinates)
	if err != nil {
		return fmt.Errorf("upsert area %s: %w", a.ID, err)
	}

	key := OwnerKey(a.Owner)
	doc := areaDoc{
		DocID:       key + "/" + a.ID,
		ID:          a.ID,
		OwnerKey:    key,
		Name:        a.Name,
		Owner:       a.Owner,
		Area:        a.Area,
		Coordinates: coords,
		Type:        string(a.Type),
		Created:     a.Created,
		Updated:     a.Updated,
	}

	_, err = s.db.Collection(areasCollection).ReplaceOne(ctx,
		bson.M{"_id": doc.DocID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert area %s: %w", a.ID, err)
	}
	return nil
}

// DeleteArea removes one area document from the owner partition
func (s *Store) DeleteArea(ctx context.Context, id, owner string) error {
	docID := OwnerKey(owner) + "/" + id
	_, err := s.db.Collection(areasCollection).DeleteOne(ctx, bson.M{"_id": docID})
	if err != nil {
		return fmt.Errorf("delete area %s: %w", docID, err)
	}
	return nil
}

// UpsertProduct writes the full product document under the owner partition
func (s *Store) UpsertProduct(ctx context.Context, p fields.Product, owner string) error {
	key := OwnerKey(owner)
	doc := productDoc{
		DocID:    key + "/" + p.ID,
		ID:       p.ID,
		OwnerKey: key,
		AreaID:   p.AreaID,
		Type:     p.Type,
		Name:     p.Name,
		Quantity: p.Quantity,
		Unit:     p.Unit,
		WorkType: p.WorkType,
		Date:     p.Date,
		Notes:    p.Notes,
		Created:  p.Created,
		Updated:  p.Updated,
	}

	_, err := s.db.Collection(productsCollection).ReplaceOne(ctx,
		bson.M{"_id": doc.DocID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

// DeleteProduct removes one product document from the owner partition
func (s *Store) DeleteProduct(ctx context.Context, id, owner string) error {
	docID := OwnerKey(owner) + "/" + id
	_, err := s.db.Collection(productsCollection).DeleteOne(ctx, bson.M{"_id": docID})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", docID, err)
	}
	return nil
}

// ListAllOwners returns every owner partition name
func (s *Store) ListAllOwners(ctx context.Context) ([]string, error) {
	cur, err := s.db.Collection(ownersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer cur.Close(ctx)

	var owners []string
	for cur.Next(ctx) {
		var doc ownerDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode owner: %w", err)
		}
		owner := doc.Owner
		if owner == "" {
			// Older markers carried only the key
			if decoded, derr := url.PathUnescape(doc.Key); derr == nil {
				owner = decoded
			} else {
				owner = doc.Key
			}
		}
		owners = append(owners, owner)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return owners, nil
}

// ListAreas returns the full contents of one owner's area partition.
// A malformed stored geometry is treated as missing, not fatal.
func (s *Store) ListAreas(ctx context.Context, owner string) ([]fields.Area, error) {
	cur, err := s.db.Collection(areasCollection).Find(ctx, bson.M{"ownerKey": OwnerKey(owner)})
	if err != nil {
		return nil, fmt.Errorf("list areas for %s: %w", owner, err)
	}
	defer cur.Close(ctx)

	var areas []fields.Area
	for cur.Next(ctx) {
		var doc areaDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode area: %w", err)
		}

		area := fields.Area{
			ID:      doc.ID,
			Name:    doc.Name,
			Owner:   doc.Owner,
			Area:    doc.Area,
			Type:    fields.AreaType(doc.Type),
			Created: doc.Created,
			Updated: doc.Updated,
		}
		if poly, perr := geospatial.DecodeCoordinates(doc.Coordinates); perr == nil {
			area.Coordinates = poly
		} else {
			s.logger.Warn("malformed stored geometry, dropping coordinates",
				zap.String("area_id", doc.ID), zap.Error(perr))
		}
		areas = append(areas, area)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list areas for %s: %w", owner, err)
	}
	return areas, nil
}

// ListProducts returns the full contents of one owner's product partition
func (s *Store) ListProducts(ctx context.Context, owner string) ([]fields.Product, error) {
	cur, err := s.db.Collection(productsCollection).Find(ctx, bson.M{"ownerKey": OwnerKey(owner)})
	if err != nil {
		return nil, fmt.Errorf("list products for %s: %w", owner, err)
	}
	defer cur.Close(ctx)

	var products []fields.Product
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		products = append(products, fields.Product{
			ID:       doc.ID,
			AreaID:   doc.AreaID,
			Type:     doc.Type,
			Name:     doc.Name,
			Quantity: doc.Quantity,
			Unit:     doc.Unit,
			WorkType: doc.WorkType,
			Date:     doc.Date,
			Notes:    doc.Notes,
			Created:  doc.Created,
			Updated:  doc.Updated,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list products for %s: %w", owner, err)
	}
	return products, nil
}
