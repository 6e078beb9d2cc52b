package usecases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/geo"
	"github.com/samirrijal/echoadmin/internal/core/usecases"
)

func newMarkerService(t *testing.T) *usecases.MarkerService {
	t.Helper()
	complaints := usecases.NewComplaintService(&mockComplaints{
		listFn: func(ctx context.Context) ([]domain.Complaint, error) { return sampleComplaints(), nil },
	}, nil, nil, 0)
	echoes := usecases.NewEchoService(&mockEchoes{
		listFn: func(ctx context.Context) ([]domain.Echo, error) {
			return []domain.Echo{{ID: "e1", Content: "hi", Location: &domain.GeoJSONPoint{Coordinates: []float64{10, 0}}}}, nil
		},
	}, nil, nil, 0)

	bounds, err := geo.NewBounds(10, 0, 0, 10)
	require.NoError(t, err)
	return usecases.NewMarkerService(complaints, echoes, bounds, geo.StaticImage(domain.Size{Width: 100, Height: 100}))
}

func TestMarkerService_ProjectComplaints(t *testing.T) {
	svc := newMarkerService(t)

	proj, err := svc.Project(context.Background(), usecases.KindComplaints, domain.Size{Width: 200, Height: 100})
	require.NoError(t, err)

	assert.Equal(t, domain.ContainerRect{X: 50, Y: 0, Width: 100, Height: 100}, proj.Rect)
	// complaint 2 lies outside the bounds, complaint 3 has no location
	require.Len(t, proj.Markers, 1)
	assert.Equal(t, 1, proj.Missed)
	assert.Equal(t, "1", proj.Markers[0].ID)
	assert.Equal(t, domain.ProjectedPoint{Top: 50, Left: 100}, proj.Markers[0].Position)
}

func TestMarkerService_ProjectEchoesOnEdge(t *testing.T) {
	svc := newMarkerService(t)

	proj, err := svc.ProjectRect(context.Background(), usecases.KindEchoes, domain.ContainerRect{Width: 100, Height: 100})
	require.NoError(t, err)
	require.Len(t, proj.Markers, 1)
	assert.Equal(t, domain.ProjectedPoint{Top: 100, Left: 100}, proj.Markers[0].Position)
}

func TestMarkerService_UnknownKind(t *testing.T) {
	svc := newMarkerService(t)

	_, err := svc.Project(context.Background(), "users", domain.Size{Width: 1, Height: 1})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "kind", verr.Field)
}
