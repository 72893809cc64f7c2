package fields

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"agro-gps/field-backend/pkg/geospatial"
)

// Store persists the full catalog state locally on every mutation
type Store interface {
	Save(areas []Area, products []Product) error
}

// Pusher forwards per-document mutations to the remote store. Pushes
// are fire-and-forget; implementations must never block the caller.
type Pusher interface {
	PushArea(a Area)
	PushProduct(p Product, owner string)
	PushDeleteArea(id, owner string)
	PushDeleteProduct(id, owner string)
}

// Requests

type CreateAreaRequest struct {
	Name        string      `json:"name"`
	Owner       string      `json:"owner"`
	Coordinates orb.Polygon `json:"coordinates"`
	Type        AreaType    `json:"type"`
}

type UpdateAreaRequest struct {
	Name        *string      `json:"name"`
	Owner       *string      `json:"owner"`
	Coordinates *orb.Polygon `json:"coordinates"`
	Type        *AreaType    `json:"type"`
}

type ProductLine struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	WorkType string  `json:"workType"`
}

type CreateProductsRequest struct {
	Date  string        `json:"date"`
	Notes string        `json:"notes"`
	Lines []ProductLine `json:"lines"`
}

type UpdateProductRequest struct {
	Type     *string  `json:"type"`
	Name     *string  `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	WorkType *string  `json:"workType"`
	Notes    *string  `json:"notes"`
	Date     *string  `json:"date"`
}

// Service owns all catalog mutations: it validates input, recomputes
// geodesic areas, writes the full state to the local store and issues
// per-document remote pushes.
type Service struct {
	catalog *Catalog
	store   Store
	pusher  Pusher
	logger  *zap.Logger
}

// NewService creates a field service
func NewService(catalog *Catalog, store Store, pusher Pusher, logger *zap.Logger) *Service {
	return &Service{
		catalog: catalog,
		store:   store,
		pusher:  pusher,
		logger:  logger,
	}
}

// Catalog exposes the underlying catalog for read paths
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

func validatePolygon(poly orb.Polygon) error {
	if len(poly) == 0 || len(poly[0]) < 3 {
		return errors.New("coordinates must form a ring of at least 3 points")
	}
	for _, ring := range poly {
		if err := geospatial.ValidateRing(ring); err != nil {
			return fmt.Errorf("invalid coordinates: %w", err)
		}
	}
	return nil
}

func validateProductLine(l ProductLine) error {
	if l.Name == "" {
		return errors.New("product name is required")
	}
	if l.Quantity <= 0 {
		return errors.New("product quantity must be greater than zero")
	}
	return nil
}

func validateDate(date string) error {
	if date == "" {
		return errors.New("application date is required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid application date %q: %w", date, err)
	}
	return nil
}

// CreateArea registers a newly drawn shape. The hectare size is always
// computed from the coordinates, never taken from the caller.
func (s *Service) CreateArea(req CreateAreaRequest) (*Area, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.Owner == "" {
		return nil, errors.New("owner is required")
	}
	if err := validatePolygon(req.Coordinates); err != nil {
		return nil, err
	}

	areaType := req.Type
	if areaType == "" {
		areaType = TypePolygon
	}
	if areaType != TypePolygon && areaType != TypeRectangle {
		return nil, fmt.Errorf("unknown area type %q", areaType)
	}

	area := Area{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Owner:       req.Owner,
		Area:        geospatial.GeodesicAreaHectares(req.Coordinates),
		Coordinates: req.Coordinates,
		Type:        areaType,
		Created:     time.Now().UTC(),
	}

	s.catalog.AddArea(area)
	s.persist()
	s.pusher.PushArea(area)

	return &area, nil
}

// UpdateArea edits an area. A coordinate change recomputes the hectare
// size; a bare owner rename leaves the document under the old owner
// partition in place, matching the per-edit push contract.
func (s *Service) UpdateArea(id string, req UpdateAreaRequest) (*Area, error) {
	area, ok := s.catalog.AreaByID(id)
	if !ok {
		return nil, ErrAreaNotFound
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, errors.New("name is required")
		}
		area.Name = *req.Name
	}
	if req.Owner != nil {
		if *req.Owner == "" {
			return nil, errors.New("owner is required")
		}
		area.Owner = *req.Owner
	}
	if req.Type != nil {
		if *req.Type != TypePolygon && *req.Type != TypeRectangle {
			return nil, fmt.Errorf("unknown area type %q", *req.Type)
		}
		area.Type = *req.Type
	}
	if req.Coordinates != nil {
		if err := validatePolygon(*req.Coordinates); err != nil {
			return nil, err
		}
		area.Coordinates = *req.Coordinates
		area.Area = geospatial.GeodesicAreaHectares(*req.Coordinates)
	}
	area.Updated = time.Now().UTC()

	s.catalog.UpdateArea(area)
	s.persist()
	s.pusher.PushArea(area)

	return &area, nil
}

// DeleteArea removes an area and cascades to every product applied to
// it, issuing one remote delete per orphaned product.
func (s *Service) DeleteArea(id string) error {
	removed, cascaded, ok := s.catalog.RemoveArea(id)
	if !ok {
		return ErrAreaNotFound
	}

	s.persist()
	s.pusher.PushDeleteArea(removed.ID, removed.Owner)
	for _, p := range cascaded {
		s.pusher.PushDeleteProduct(p.ID, removed.Owner)
	}

	s.logger.Info("area deleted",
		zap.String("area_id", removed.ID),
		zap.String("owner", removed.Owner),
		zap.Int("cascaded_products", len(cascaded)))

	return nil
}

// CreateProducts logs a batch of product applications against an area.
// Every line is validated before any state is mutated.
func (s *Service) CreateProducts(areaID string, req CreateProductsRequest) ([]Product, error) {
	area, ok := s.catalog.AreaByID(areaID)
	if !ok {
		return nil, ErrAreaNotFound
	}
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, errors.New("at least one product line is required")
	}
	for _, line := range req.Lines {
		if err := validateProductLine(line); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	products := make([]Product, 0, len(req.Lines))
	for _, line := range req.Lines {
		products = append(products, Product{
			ID:       uuid.New().String(),
			AreaID:   area.ID,
			Type:     line.Type,
			Name:     line.Name,
			Quantity: line.Quantity,
			Unit:     line.Unit,
			WorkType: line.WorkType,
			Date:     req.Date,
			Notes:    req.Notes,
			Created:  now,
		})
	}

	s.catalog.AddProducts(products)
	s.persist()
	for _, p := range products {
		s.pusher.PushProduct(p, area.Owner)
	}

	return products, nil
}

// UpdateProduct edits a logged application
func (s *Service) UpdateProduct(id string, req UpdateProductRequest) (*Product, error) {
	product, ok := s.catalog.ProductByID(id)
	if !ok {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, errors.New("product name is required")
		}
		product.Name = *req.Name
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, errors.New("product quantity must be greater than zero")
		}
		product.Quantity = *req.Quantity
	}
	if req.Type != nil {
		product.Type = *req.Type
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.WorkType != nil {
		product.WorkType = *req.WorkType
	}
	if req.Notes != nil {
		product.Notes = *req.Notes
	}
	if req.Date != nil {
		if err := validateDate(*req.Date); err != nil {
			return nil, err
		}
		product.Date = *req.Date
	}
	product.Updated = time.Now().UTC()

	s.catalog.UpdateProduct(product)
	s.persist()

	// Owner comes from the parent area; push is skipped downstream when
	// the area no longer exists.
	owner, _ := s.catalog.OwnerOf(product.AreaID)
	s.pusher.PushProduct(product, owner)

	return &product, nil
}

// DeleteProduct removes one logged application
func (s *Service) DeleteProduct(id string) error {
	product, ok := s.catalog.ProductByID(id)
	if !ok {
		return ErrProductNotFound
	}

	owner, _ := s.catalog.OwnerOf(product.AreaID)

	s.catalog.RemoveProduct(id)
	s.persist()
	s.pusher.PushDeleteProduct(id, owner)

	return nil
}

// persist writes the full catalog state to the local store. Local
// persistence failures are logged, never surfaced: the in-memory
// catalog stays authoritative for the rest of the run.
func (s *Service) persist() {
	areas, products := s.catalog.Snapshot()
	if err := s.store.Save(areas, products); err != nil {
		s.logger.Warn("failed to persist catalog locally", zap.Error(err))
	}
}
