package geospatial

import "math"

// metersPerDegreeLat is the length of one degree of latitude, close enough for city-scale maps.
const metersPerDegreeLat = 111320.0

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / metersPerDegreeLat
	lonDelta := radiusMeters / (metersPerDegreeLat * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

// Edges is BoundingBox in map-edge order: north, south, west, east.
func Edges(lat, lon, radiusMeters float64) (north, south, west, east float64) {
	minLat, minLon, maxLat, maxLon := BoundingBox(lat, lon, radiusMeters)
	return maxLat, minLat, minLon, maxLon
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
