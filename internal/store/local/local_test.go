package local

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agro-gps/field-backend/internal/fields"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadEmpty(t *testing.T) {
	s := openTestStore(t)

	areas, products, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, areas)
	assert.Empty(t, products)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	areas := []fields.Area{{
		ID:    "a1",
		Name:  "North Field",
		Owner: "Juan",
		Area:  1.23,
		Coordinates: orb.Polygon{{
			{0, 0}, {0.001, 0}, {0.001, 0.001}, {0, 0.001},
		}},
		Type:    fields.TypePolygon,
		Created: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
	products := []fields.Product{{
		ID:       "p1",
		AreaID:   "a1",
		Type:     fields.ProductFertilizer,
		Name:     "Urea 46%",
		Quantity: 50,
		Unit:     fields.UnitKilos,
		Date:     "2026-03-01",
		Created:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}}

	require.NoError(t, s.Save(areas, products))

	gotAreas, gotProducts, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, areas, gotAreas)
	assert.Equal(t, products, gotProducts)
}

func TestSaveOverwrites(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save([]fields.Area{{ID: "a1", Owner: "Juan"}}, nil))
	require.NoError(t, s.Save([]fields.Area{{ID: "a2", Owner: "Maria"}}, nil))

	areas, _, err := s.Load()
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "a2", areas[0].ID)
}

func TestLoadCorruptValueTreatedAsEmpty(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save([]fields.Area{{ID: "a1", Owner: "Juan"}}, nil))

	// Scribble over the stored value directly
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(areasKey), []byte("{not valid json"))
	})
	require.NoError(t, err)

	areas, products, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, areas)
	assert.Empty(t, products)
}
