package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeoBounds represents the latitude/longitude rectangle covered by the map raster.
// Use geo.NewBounds to build one; a zero-span box is rejected there.
type GeoBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// GeoJSONPoint is the {"type":"Point","coordinates":[lon,lat]} shape used by the upstream API.
type GeoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Point converts the GeoJSON coordinate pair. ok is false when fewer than two coordinates are present.
func (p *GeoJSONPoint) Point() (GeoPoint, bool) {
	if p == nil || len(p.Coordinates) < 2 {
		return GeoPoint{}, false
	}
	return GeoPoint{Latitude: p.Coordinates[1], Longitude: p.Coordinates[0]}, true
}

// Size is a pixel width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ContainerRect is where the fitted image sits inside its container, in container pixels.
type ContainerRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ProjectedPoint is a pixel offset from the container origin.
type ProjectedPoint struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// Marker is a geo-tagged record to be drawn on the map.
type Marker struct {
	ID    string   `json:"id"`
	Kind  string   `json:"kind"`
	Label string   `json:"label,omitempty"`
	Point GeoPoint `json:"point"`
}

// ProjectedMarker is a marker that landed inside the map bounds.
type ProjectedMarker struct {
	Marker
	Position ProjectedPoint `json:"position"`
}
