package geospatial

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Equatorial Earth radius in meters, matching the sphere model used by
// the field-drawing frontend.
const earthRadius = 6378137.0

const degToRad = math.Pi / 180

// ValidateGeoJSON validates a GeoJSON string and returns its geometry
func ValidateGeoJSON(geojsonStr string) (orb.Geometry, error) {
	feature, err := geojson.UnmarshalFeature([]byte(geojsonStr))
	if err != nil {
		// Not a feature; try a bare geometry
		geom, gerr := geojson.UnmarshalGeometry([]byte(geojsonStr))
		if gerr != nil {
			return nil, err
		}
		return geom.Geometry(), nil
	}

	if feature.Geometry == nil {
		return nil, errors.New("invalid GeoJSON: no geometry")
	}

	return feature.Geometry, nil
}

// ValidateRing rejects rings containing non-finite or out-of-range coordinates.
// GeodesicArea has undefined behavior on such input, so callers must run this first.
func ValidateRing(ring orb.Ring) error {
	for i, p := range ring {
		lng, lat := p[0], p[1]
		if math.IsNaN(lng) || math.IsInf(lng, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
			return fmt.Errorf("vertex %d is not finite", i)
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return fmt.Errorf("vertex %d out of range: (%f, %f)", i, lng, lat)
		}
	}
	return nil
}

// GeodesicArea calculates the surface area of a ring in square meters
// using a spherical excess approximation. The ring is treated as
// implicitly closed; a repeated closing vertex contributes nothing.
// Returns 0 for rings with fewer than 3 vertices. The result is
// independent of the starting vertex and of winding direction.
func GeodesicArea(ring orb.Ring) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}

	var area float64
	for i := 0; i < n; i++ {
		p1 := ring[i]
		p2 := ring[(i+1)%n]
		area += (p2[0] - p1[0]) * degToRad * (2 + math.Sin(p1[1]*degToRad) + math.Sin(p2[1]*degToRad))
	}
	area = area * earthRadius * earthRadius / 2

	return math.Abs(area)
}

// GeodesicAreaHectares calculates the area of a polygon's outer ring in hectares
func GeodesicAreaHectares(poly orb.Polygon) float64 {
	if len(poly) == 0 {
		return 0
	}
	return ConvertToHectares(GeodesicArea(poly[0]))
}

// CalculateCentroid calculates the centroid of a ring
func CalculateCentroid(ring orb.Ring) orb.Point {
	if len(ring) == 0 {
		return orb.Point{}
	}
	var lng, lat float64
	for _, p := range ring {
		lng += p[0]
		lat += p[1]
	}
	n := float64(len(ring))
	return orb.Point{lng / n, lat / n}
}

// ConvertToHectares converts square meters to hectares
func ConvertToHectares(sqMeters float64) float64 {
	return sqMeters / 10000
}

// EncodeCoordinates serializes polygon coordinates to the opaque string
// form the remote schema stores geometry as.
func EncodeCoordinates(poly orb.Polygon) (string, error) {
	data, err := json.Marshal(poly)
	if err != nil {
		return "", fmt.Errorf("encode coordinates: %w", err)
	}
	return string(data), nil
}

// DecodeCoordinates parses the string encoding back into polygon
// coordinates. The inverse of EncodeCoordinates.
func DecodeCoordinates(s string) (orb.Polygon, error) {
	var poly orb.Polygon
	if err := json.Unmarshal([]byte(s), &poly); err != nil {
		return nil, fmt.Errorf("decode coordinates: %w", err)
	}
	return poly, nil
}
