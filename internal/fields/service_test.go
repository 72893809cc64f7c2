package fields

import (
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingStore struct {
	mu    sync.Mutex
	saves int
}

func (r *recordingStore) Save(areas []Area, products []Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	return nil
}

type recordingPusher struct {
	mu             sync.Mutex
	areas          []Area
	products       []Product
	deletedAreas   []string
	deletedProd    []string
	deletedOwners  []string
	productsOwners []string
}

func (r *recordingPusher) PushArea(a Area) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.areas = append(r.areas, a)
}

func (r *recordingPusher) PushProduct(p Product, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = append(r.products, p)
	r.productsOwners = append(r.productsOwners, owner)
}

func (r *recordingPusher) PushDeleteArea(id, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletedAreas = append(r.deletedAreas, id)
	r.deletedOwners = append(r.deletedOwners, owner)
}

func (r *recordingPusher) PushDeleteProduct(id, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletedProd = append(r.deletedProd, id)
	r.deletedOwners = append(r.deletedOwners, owner)
}

func squarePolygon() orb.Polygon {
	return orb.Polygon{{
		{0, 0}, {0.001, 0}, {0.001, 0.001}, {0, 0.001},
	}}
}

func newTestService() (*Service, *Catalog, *recordingStore, *recordingPusher) {
	catalog := NewCatalog(nil, nil)
	store := &recordingStore{}
	pusher := &recordingPusher{}
	return NewService(catalog, store, pusher, zap.NewNop()), catalog, store, pusher
}

func TestCreateAreaComputesHectares(t *testing.T) {
	svc, catalog, store, pusher := newTestService()

	area, err := svc.CreateArea(CreateAreaRequest{
		Name:        "North Field",
		Owner:       "Juan",
		Coordinates: squarePolygon(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, area.ID)
	assert.Equal(t, TypePolygon, area.Type)
	assert.InEpsilon(t, 1.23, area.Area, 0.05)

	assert.Len(t, catalog.Areas(), 1)
	assert.Equal(t, 1, store.saves)
	require.Len(t, pusher.areas, 1)
	assert.Equal(t, area.ID, pusher.areas[0].ID)
}

func TestCreateAreaValidation(t *testing.T) {
	svc, catalog, _, _ := newTestService()

	_, err := svc.CreateArea(CreateAreaRequest{Owner: "Juan", Coordinates: squarePolygon()})
	assert.Error(t, err)

	_, err = svc.CreateArea(CreateAreaRequest{Name: "x", Coordinates: squarePolygon()})
	assert.Error(t, err)

	_, err = svc.CreateArea(CreateAreaRequest{
		Name: "x", Owner: "Juan",
		Coordinates: orb.Polygon{{{0, 0}, {1, 1}}},
	})
	assert.Error(t, err)

	_, err = svc.CreateArea(CreateAreaRequest{
		Name: "x", Owner: "Juan",
		Coordinates: squarePolygon(),
		Type:        AreaType("circle"),
	})
	assert.Error(t, err)

	assert.Empty(t, catalog.Areas())
}

func TestUpdateAreaRecomputesOnCoordinateChange(t *testing.T) {
	svc, _, _, _ := newTestService()

	area, err := svc.CreateArea(CreateAreaRequest{
		Name: "Field", Owner: "Juan", Coordinates: squarePolygon(),
	})
	require.NoError(t, err)

	// Double the side length, area should roughly quadruple
	bigger := orb.Polygon{{
		{0, 0}, {0.002, 0}, {0.002, 0.002}, {0, 0.002},
	}}
	updated, err := svc.UpdateArea(area.ID, UpdateAreaRequest{Coordinates: &bigger})
	require.NoError(t, err)
	assert.InEpsilon(t, 4*area.Area, updated.Area, 0.05)
	assert.False(t, updated.Updated.IsZero())
}

func TestUpdateAreaNameOnlyKeepsHectares(t *testing.T) {
	svc, _, _, _ := newTestService()

	area, err := svc.CreateArea(CreateAreaRequest{
		Name: "Field", Owner: "Juan", Coordinates: squarePolygon(),
	})
	require.NoError(t, err)

	name := "Renamed"
	updated, err := svc.UpdateArea(area.ID, UpdateAreaRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, area.Area, updated.Area)
}

func TestDeleteAreaCascadesAndPushesDeletes(t *testing.T) {
	svc, catalog, _, pusher := newTestService()

	area, err := svc.CreateArea(CreateAreaRequest{
		Name: "Field", Owner: "Juan", Coordinates: squarePolygon(),
	})
	require.NoError(t, err)

	products, err := svc.CreateProducts(area.ID, CreateProductsRequest{
		Date: "2026-03-01",
		Lines: []ProductLine{
			{Type: ProductHerbicide, Name: "Glifosato", Quantity: 3, Unit: UnitLiters},
			{Type: ProductFertilizer, Name: "Urea", Quantity: 100, Unit: UnitKilos},
		},
	})
	require.NoError(t, err)
	require.Len(t, products, 2)

	require.NoError(t, svc.DeleteArea(area.ID))

	assert.Empty(t, catalog.Areas())
	assert.Empty(t, catalog.Products())

	// One remote delete for the area and one per cascaded product,
	// all under the owner's partition
	assert.Equal(t, []string{area.ID}, pusher.deletedAreas)
	assert.Len(t, pusher.deletedProd, 2)
	for _, owner := range pusher.deletedOwners {
		assert.Equal(t, "Juan", owner)
	}
}

func TestCreateProductsValidatesAllLinesBeforeMutating(t *testing.T) {
	svc, catalog, _, pusher := newTestService()

	area, err := svc.CreateArea(CreateAreaRequest{
		Name: "Field", Owner: "Juan", Coordinates: squarePolygon(),
	})
	require.NoError(t, err)

	_, err = svc.CreateProducts(area.ID, CreateProductsRequest{
		Date: "2026-03-01",
		Lines: []ProductLine{
			{Type: ProductHerbicide, Name: "Glifosato", Quantity: 3, Unit: UnitLiters},
			{Type: ProductFertilizer, Name: "Urea", Quantity: 0, Unit: UnitKilos},
		},
	})
	require.Error(t, err)

	// The valid first line must not have been applied
	assert.Empty(t, catalog.Products())
	assert.Empty(t, pusher.products)
}

func TestCreateProductsRejectsBadDate(t *testing.T) {
	svc, _, _, _ := newTestService()

	area, err := svc.CreateArea(CreateAreaRequest{
		Name: "Field", Owner: "Juan", Coordinates: squarePolygon(),
	})
	require.NoError(t, err)

	_, err = svc.CreateProducts(area.ID, CreateProductsRequest{
		Date:  "01/03/2026",
		Lines: []ProductLine{{Name: "Urea", Quantity: 1}},
	})
	assert.Error(t, err)
}

func TestCreateProductsUnknownArea(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.CreateProducts("missing", CreateProductsRequest{
		Date:  "2026-03-01",
		Lines: []ProductLine{{Name: "Urea", Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrAreaNotFound)
}

func TestUpdateProduct(t *testing.T) {
	svc, _, _, pusher := newTestService()

	area, err := svc.CreateArea(CreateAreaRequest{
		Name: "Field", Owner: "Juan", Coordinates: squarePolygon(),
	})
	require.NoError(t, err)

	products, err := svc.CreateProducts(area.ID, CreateProductsRequest{
		Date:  "2026-03-01",
		Lines: []ProductLine{{Name: "Urea", Quantity: 50, Unit: UnitKilos}},
	})
	require.NoError(t, err)

	qty := 75.0
	updated, err := svc.UpdateProduct(products[0].ID, UpdateProductRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.Quantity)

	// Push carries the parent area's owner
	require.NotEmpty(t, pusher.productsOwners)
	assert.Equal(t, "Juan", pusher.productsOwners[len(pusher.productsOwners)-1])

	bad := 0.0
	_, err = svc.UpdateProduct(products[0].ID, UpdateProductRequest{Quantity: &bad})
	assert.Error(t, err)
}

func TestDeleteProduct(t *testing.T) {
	svc, catalog, _, pusher := newTestService()

	area, err := svc.CreateArea(CreateAreaRequest{
		Name: "Field", Owner: "Juan", Coordinates: squarePolygon(),
	})
	require.NoError(t, err)

	products, err := svc.CreateProducts(area.ID, CreateProductsRequest{
		Date:  "2026-03-01",
		Lines: []ProductLine{{Name: "Urea", Quantity: 50, Unit: UnitKilos}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(products[0].ID))
	assert.Empty(t, catalog.Products())
	assert.Equal(t, []string{products[0].ID}, pusher.deletedProd)

	assert.ErrorIs(t, svc.DeleteProduct(products[0].ID), ErrProductNotFound)
}
