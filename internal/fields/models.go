package fields

import (
	"time"

	"github.com/paulmach/orb"
)

// AreaType is the shape kind the area was drawn as
type AreaType string

const (
	TypePolygon   AreaType = "polygon"
	TypeRectangle AreaType = "rectangle"
)

// Area represents a user-drawn field boundary
type Area struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Owner       string      `json:"owner"`
	Area        float64     `json:"area"` // hectares, always recomputed from coordinates
	Coordinates orb.Polygon `json:"coordinates"`
	Type        AreaType    `json:"type"`
	Created     time.Time   `json:"created"`
	Updated     time.Time   `json:"updated,omitempty"`
}

// Product types
const (
	ProductFungicide   = "fungicide"
	ProductHerbicide   = "herbicide"
	ProductInsecticide = "insecticide"
	ProductFoliar      = "foliar"
	ProductFertilizer  = "fertilizer"
)

// Quantity units
const (
	UnitLiters      = "liters"
	UnitKilos       = "kilos"
	UnitGrams       = "grams"
	UnitMilliliters = "milliliters"
)

// Product represents a logged application of a substance or task
// against an area. It exists only while its parent area exists;
// deleting an area cascades to its products.
type Product struct {
	ID       string    `json:"id"`
	AreaID   string    `json:"areaId"`
	Type     string    `json:"type"`
	Name     string    `json:"name"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
	WorkType string    `json:"workType,omitempty"`
	Date     string    `json:"date"` // application date, YYYY-MM-DD
	Notes    string    `json:"notes,omitempty"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated,omitempty"`
}

// Stats summarizes the catalog for the dashboard header
type Stats struct {
	TotalAreas    int     `json:"total_areas"`
	TotalHectares float64 `json:"total_hectares"`
}
