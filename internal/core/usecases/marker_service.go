package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/geo"
	"github.com/samirrijal/echoadmin/internal/pkg/metrics"
)

// Marker kinds.
const (
	KindComplaints = "complaints"
	KindEchoes     = "echoes"
)

// MarkerProjection is the marker layer for one container size.
type MarkerProjection struct {
	Kind    string                   `json:"kind"`
	Bounds  domain.GeoBounds         `json:"bounds"`
	Rect    domain.ContainerRect     `json:"rect"`
	Markers []domain.ProjectedMarker `json:"markers"`
	Missed  int                      `json:"missed"`
}

// MarkerService places geo-tagged complaints and echoes on the map raster.
type MarkerService struct {
	complaints *ComplaintService
	echoes     *EchoService
	bounds     domain.GeoBounds
	image      *geo.ImageLoader
}

// NewMarkerService creates a new MarkerService for a raster covering bounds.
func NewMarkerService(complaints *ComplaintService, echoes *EchoService, bounds domain.GeoBounds, image *geo.ImageLoader) *MarkerService {
	image.Start()
	return &MarkerService{complaints: complaints, echoes: echoes, bounds: bounds, image: image}
}

// Bounds returns the geographic box of the map raster.
func (s *MarkerService) Bounds() domain.GeoBounds { return s.bounds }

// Image returns the raster size loader.
func (s *MarkerService) Image() *geo.ImageLoader { return s.image }

// Markers fetches the records of kind that carry a location.
func (s *MarkerService) Markers(ctx context.Context, kind string) ([]domain.Marker, error) {
	switch kind {
	case KindComplaints:
		complaints, err := s.complaints.All(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Marker, 0, len(complaints))
		for _, c := range complaints {
			if p, ok := c.Location.Point(); ok {
				out = append(out, domain.Marker{ID: c.ID.String(), Kind: kind, Label: c.Title, Point: p})
			}
		}
		return out, nil
	case KindEchoes:
		echoes, err := s.echoes.All(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Marker, 0, len(echoes))
		for _, e := range echoes {
			if p, ok := e.Location.Point(); ok {
				out = append(out, domain.Marker{ID: e.ID.String(), Kind: kind, Label: e.Content, Point: p})
			}
		}
		return out, nil
	}
	return nil, &domain.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown marker kind %q", kind)}
}

// Project lays the markers of kind over a container of the given size.
// Markers outside the raster bounds are dropped and counted in Missed.
func (s *MarkerService) Project(ctx context.Context, kind string, container domain.Size) (*MarkerProjection, error) {
	markers, err := s.Markers(ctx, kind)
	if err != nil {
		return nil, err
	}
	natural, err := s.image.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("map image: %w", err)
	}
	rect := geo.ComputeContainerRect(container, natural)
	return s.place(kind, markers, rect), nil
}

// ProjectRect is Project for an already fitted rect, used by live viewports.
func (s *MarkerService) ProjectRect(ctx context.Context, kind string, rect domain.ContainerRect) (*MarkerProjection, error) {
	markers, err := s.Markers(ctx, kind)
	if err != nil {
		return nil, err
	}
	return s.place(kind, markers, rect), nil
}

func (s *MarkerService) place(kind string, markers []domain.Marker, rect domain.ContainerRect) *MarkerProjection {
	projected := geo.ProjectAll(markers, s.bounds, rect)
	missed := len(markers) - len(projected)

	metrics.MarkersProjected.WithLabelValues(kind).Add(float64(len(projected)))
	metrics.MarkersMissed.WithLabelValues(kind).Add(float64(missed))

	return &MarkerProjection{
		Kind:    kind,
		Bounds:  s.bounds,
		Rect:    rect,
		Markers: projected,
		Missed:  missed,
	}
}
