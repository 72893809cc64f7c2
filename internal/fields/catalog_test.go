package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveAreaCascadesProducts(t *testing.T) {
	c := NewCatalog(
		[]Area{
			{ID: "a1", Name: "North Field", Owner: "Juan"},
			{ID: "a2", Name: "South Field", Owner: "Juan"},
		},
		[]Product{
			{ID: "p1", AreaID: "a1"},
			{ID: "p2", AreaID: "a1"},
			{ID: "p3", AreaID: "a2"},
		})

	removed, cascaded, ok := c.RemoveArea("a1")
	require.True(t, ok)
	assert.Equal(t, "a1", removed.ID)
	assert.Len(t, cascaded, 2)

	assert.Len(t, c.Areas(), 1)
	products := c.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "p3", products[0].ID)
}

func TestRemoveAreaNotFound(t *testing.T) {
	c := NewCatalog(nil, nil)
	_, _, ok := c.RemoveArea("missing")
	assert.False(t, ok)
}

func TestSearchMatchesAreaAndProductFields(t *testing.T) {
	c := NewCatalog(
		[]Area{
			{ID: "a1", Name: "Lote Norte", Owner: "Juan"},
			{ID: "a2", Name: "Lote Sur", Owner: "Maria"},
			{ID: "a3", Name: "Potrero", Owner: "Pedro"},
		},
		[]Product{
			{ID: "p1", AreaID: "a2", Name: "Glifosato", Type: ProductHerbicide},
			{ID: "p2", AreaID: "a3", Name: "Urea", Type: ProductFertilizer},
		})

	// By area name, case-insensitive
	got := c.Search("norte")
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)

	// By product name
	got = c.Search("glifo")
	require.Len(t, got, 1)
	assert.Equal(t, "a2", got[0].ID)

	// By product type
	got = c.Search(string(ProductFertilizer))
	require.Len(t, got, 1)
	assert.Equal(t, "a3", got[0].ID)

	// Empty query returns everything
	assert.Len(t, c.Search("  "), 3)

	// No match
	assert.Empty(t, c.Search("soja"))
}

func TestStats(t *testing.T) {
	c := NewCatalog([]Area{
		{ID: "a1", Area: 1.5},
		{ID: "a2", Area: 2.25},
	}, nil)

	s := c.Stats()
	assert.Equal(t, 2, s.TotalAreas)
	assert.InDelta(t, 3.75, s.TotalHectares, 1e-9)
}

func TestReplaceAllSwapsState(t *testing.T) {
	c := NewCatalog([]Area{{ID: "old"}}, []Product{{ID: "oldp", AreaID: "old"}})

	c.ReplaceAll([]Area{{ID: "new1"}, {ID: "new2"}}, nil)

	areas := c.Areas()
	assert.Len(t, areas, 2)
	assert.Empty(t, c.Products())
	_, found := c.AreaByID("old")
	assert.False(t, found)
}

func TestOwnerOf(t *testing.T) {
	c := NewCatalog([]Area{{ID: "a1", Owner: "Juan"}}, nil)

	owner, ok := c.OwnerOf("a1")
	require.True(t, ok)
	assert.Equal(t, "Juan", owner)

	_, ok = c.OwnerOf("missing")
	assert.False(t, ok)
}

func TestSnapshotReturnsCopies(t *testing.T) {
	c := NewCatalog([]Area{{ID: "a1", Name: "original"}}, nil)

	areas, _ := c.Snapshot()
	areas[0].Name = "mutated"

	fresh, _ := c.AreaByID("a1")
	assert.Equal(t, "original", fresh.Name)
}
