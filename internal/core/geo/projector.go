// Package geo projects geographic coordinates onto a raster map image that is
// fit (object-fit: contain) inside a container of arbitrary size.
package geo

import (
	"math"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// NewBounds validates a lat/lon rectangle. Zero or negative spans are rejected
// here so Project never divides by zero.
func NewBounds(north, south, west, east float64) (domain.GeoBounds, error) {
	if !finite(north, south, west, east) {
		return domain.GeoBounds{}, &domain.ValidationError{Field: "bounds", Message: "coordinates must be finite"}
	}
	if north <= south {
		return domain.GeoBounds{}, &domain.ValidationError{Field: "bounds", Message: "north must be greater than south"}
	}
	if east <= west {
		return domain.GeoBounds{}, &domain.ValidationError{Field: "bounds", Message: "east must be greater than west"}
	}
	return domain.GeoBounds{North: north, South: south, West: west, East: east}, nil
}

// ComputeContainerRect places an image of the given natural size inside the
// container, preserving its aspect ratio and centering it on the free axis.
// Non-positive sizes yield a zero rect.
func ComputeContainerRect(container, image domain.Size) domain.ContainerRect {
	if !(container.Width > 0 && container.Height > 0 && image.Width > 0 && image.Height > 0) {
		return domain.ContainerRect{}
	}

	containerRatio := container.Width / container.Height
	imageRatio := image.Width / image.Height

	if containerRatio > imageRatio {
		height := container.Height
		width := height * imageRatio
		return domain.ContainerRect{
			X:      (container.Width - width) / 2,
			Y:      0,
			Width:  width,
			Height: height,
		}
	}

	width := container.Width
	height := width / imageRatio
	return domain.ContainerRect{
		X:      0,
		Y:      (container.Height - height) / 2,
		Width:  width,
		Height: height,
	}
}

// Project converts a coordinate to a pixel offset from the container origin.
// ok is false when the point lies outside bounds; the marker should not be drawn.
func Project(point domain.GeoPoint, bounds domain.GeoBounds, rect domain.ContainerRect) (domain.ProjectedPoint, bool) {
	top := (bounds.North - point.Latitude) / (bounds.North - bounds.South)
	left := (point.Longitude - bounds.West) / (bounds.East - bounds.West)

	// NaN fails both comparisons.
	if !(top >= 0 && top <= 1) || !(left >= 0 && left <= 1) {
		return domain.ProjectedPoint{}, false
	}

	return domain.ProjectedPoint{
		Top:  top*rect.Height + rect.Y,
		Left: left*rect.Width + rect.X,
	}, true
}

// ProjectAll projects markers in order, dropping those outside bounds.
func ProjectAll(markers []domain.Marker, bounds domain.GeoBounds, rect domain.ContainerRect) []domain.ProjectedMarker {
	out := make([]domain.ProjectedMarker, 0, len(markers))
	for _, m := range markers {
		pos, ok := Project(m.Point, bounds, rect)
		if !ok {
			continue
		}
		out = append(out, domain.ProjectedMarker{Marker: m, Position: pos})
	}
	return out
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
