package geo_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/geo"
)

// Seoul-ish raster extent used across tests.
func testBounds(t *testing.T) domain.GeoBounds {
	t.Helper()
	b, err := geo.NewBounds(37.70, 37.40, 126.80, 127.20)
	require.NoError(t, err)
	return b
}

func TestNewBounds_RejectsDegenerateSpan(t *testing.T) {
	cases := []struct {
		name                     string
		north, south, west, east float64
	}{
		{"zero lat span", 37.5, 37.5, 126.8, 127.2},
		{"inverted lat", 37.4, 37.7, 126.8, 127.2},
		{"zero lon span", 37.7, 37.4, 127.0, 127.0},
		{"inverted lon", 37.7, 37.4, 127.2, 126.8},
		{"nan", math.NaN(), 37.4, 126.8, 127.2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := geo.NewBounds(tc.north, tc.south, tc.west, tc.east)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "bounds", verr.Field)
		})
	}
}

func TestComputeContainerRect_WiderContainerIsPillarboxed(t *testing.T) {
	rect := geo.ComputeContainerRect(domain.Size{Width: 1000, Height: 500}, domain.Size{Width: 800, Height: 800})

	assert.InDelta(t, 500, rect.Width, 1e-9)
	assert.InDelta(t, 500, rect.Height, 1e-9)
	assert.InDelta(t, 250, rect.X, 1e-9)
	assert.InDelta(t, 0, rect.Y, 1e-9)
}

func TestComputeContainerRect_TallerContainerIsLetterboxed(t *testing.T) {
	rect := geo.ComputeContainerRect(domain.Size{Width: 400, Height: 900}, domain.Size{Width: 1600, Height: 900})

	assert.InDelta(t, 400, rect.Width, 1e-9)
	assert.InDelta(t, 225, rect.Height, 1e-9)
	assert.InDelta(t, 0, rect.X, 1e-9)
	assert.InDelta(t, 337.5, rect.Y, 1e-9)
}

func TestComputeContainerRect_NonPositiveInput(t *testing.T) {
	assert.Equal(t, domain.ContainerRect{}, geo.ComputeContainerRect(domain.Size{}, domain.Size{Width: 10, Height: 10}))
	assert.Equal(t, domain.ContainerRect{}, geo.ComputeContainerRect(domain.Size{Width: 10, Height: 10}, domain.Size{Width: -1, Height: 10}))
}

func TestComputeContainerRect_AspectFitProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		container := domain.Size{Width: 1 + rng.Float64()*3000, Height: 1 + rng.Float64()*3000}
		image := domain.Size{Width: 1 + rng.Float64()*5000, Height: 1 + rng.Float64()*5000}

		rect := geo.ComputeContainerRect(container, image)

		require.InEpsilon(t, image.Width/image.Height, rect.Width/rect.Height, 1e-9, "container=%v image=%v", container, image)
		require.GreaterOrEqual(t, rect.X, -1e-9)
		require.GreaterOrEqual(t, rect.Y, -1e-9)
		require.LessOrEqual(t, rect.X+rect.Width, container.Width+1e-9)
		require.LessOrEqual(t, rect.Y+rect.Height, container.Height+1e-9)
	}
}

func TestProject_CornersAndCenter(t *testing.T) {
	bounds := testBounds(t)
	rect := domain.ContainerRect{X: 100, Y: 20, Width: 400, Height: 300}

	p, ok := geo.Project(domain.GeoPoint{Latitude: 37.70, Longitude: 126.80}, bounds, rect)
	require.True(t, ok)
	assert.InDelta(t, 20, p.Top, 1e-9)
	assert.InDelta(t, 100, p.Left, 1e-9)

	p, ok = geo.Project(domain.GeoPoint{Latitude: 37.55, Longitude: 127.00}, bounds, rect)
	require.True(t, ok)
	assert.InDelta(t, 170, p.Top, 1e-6)
	assert.InDelta(t, 300, p.Left, 1e-6)

	p, ok = geo.Project(domain.GeoPoint{Latitude: 37.40, Longitude: 127.20}, bounds, rect)
	require.True(t, ok)
	assert.InDelta(t, 320, p.Top, 1e-9)
	assert.InDelta(t, 500, p.Left, 1e-9)
}

func TestProject_BoundsProperty(t *testing.T) {
	bounds := testBounds(t)
	rect := domain.ContainerRect{Width: 640, Height: 480}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		lat := bounds.South + rng.Float64()*(bounds.North-bounds.South)
		lon := bounds.West + rng.Float64()*(bounds.East-bounds.West)

		p, ok := geo.Project(domain.GeoPoint{Latitude: lat, Longitude: lon}, bounds, rect)
		require.True(t, ok, "lat=%v lon=%v", lat, lon)
		require.GreaterOrEqual(t, p.Top, 0.0)
		require.LessOrEqual(t, p.Top, rect.Height)
		require.GreaterOrEqual(t, p.Left, 0.0)
		require.LessOrEqual(t, p.Left, rect.Width)
	}

	outside := []domain.GeoPoint{
		{Latitude: bounds.North + 0.001, Longitude: 127.0},
		{Latitude: bounds.South - 0.001, Longitude: 127.0},
		{Latitude: 37.5, Longitude: bounds.West - 0.001},
		{Latitude: 37.5, Longitude: bounds.East + 0.001},
		{Latitude: math.NaN(), Longitude: 127.0},
	}
	for _, pt := range outside {
		_, ok := geo.Project(pt, bounds, rect)
		assert.False(t, ok, "point %v should be a miss", pt)
	}
}

func TestProjectAll_SkipsMissesAndKeepsOrder(t *testing.T) {
	bounds := testBounds(t)
	rect := domain.ContainerRect{Width: 100, Height: 100}
	markers := []domain.Marker{
		{ID: "a", Point: domain.GeoPoint{Latitude: 37.6, Longitude: 127.0}},
		{ID: "out", Point: domain.GeoPoint{Latitude: 35.1, Longitude: 129.0}},
		{ID: "b", Point: domain.GeoPoint{Latitude: 37.5, Longitude: 126.9}},
	}

	got := geo.ProjectAll(markers, bounds, rect)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}
