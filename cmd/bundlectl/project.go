package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/geo"
	"github.com/samirrijal/echoadmin/internal/pkg/geospatial"
)

var projectFlags struct {
	north, south, west, east float64
	centerLat, centerLon     float64
	radius                   float64
	width, height            float64
	imageWidth, imageHeight  float64
	imagePath                string
}

var projectCmd = &cobra.Command{
	Use:   "project lat,lon [lat,lon...]",
	Short: "Project coordinates onto the map raster for a container size",
	Long: `Fit the map image inside a container of --width x --height pixels and print
the pixel offset of each coordinate. Points outside the raster bounds are
reported as missed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProject,
}

func init() {
	f := projectCmd.Flags()
	f.Float64Var(&projectFlags.north, "north", 0, "North edge (latitude)")
	f.Float64Var(&projectFlags.south, "south", 0, "South edge (latitude)")
	f.Float64Var(&projectFlags.west, "west", 0, "West edge (longitude)")
	f.Float64Var(&projectFlags.east, "east", 0, "East edge (longitude)")
	f.Float64Var(&projectFlags.centerLat, "center-lat", 0, "Raster center latitude, used with --radius")
	f.Float64Var(&projectFlags.centerLon, "center-lon", 0, "Raster center longitude, used with --radius")
	f.Float64VarP(&projectFlags.radius, "radius", "r", 0, "Half-width of the raster in meters; overrides the edges")
	f.Float64Var(&projectFlags.width, "width", 0, "Container width in pixels")
	f.Float64Var(&projectFlags.height, "height", 0, "Container height in pixels")
	f.Float64Var(&projectFlags.imageWidth, "image-width", 0, "Natural image width in pixels")
	f.Float64Var(&projectFlags.imageHeight, "image-height", 0, "Natural image height in pixels")
	f.StringVar(&projectFlags.imagePath, "image", "", "Map image; its header gives the natural size")
	_ = projectCmd.MarkFlagRequired("width")
	_ = projectCmd.MarkFlagRequired("height")
}

func runProject(cmd *cobra.Command, args []string) error {
	pf := projectFlags
	north, south, west, east := pf.north, pf.south, pf.west, pf.east
	if pf.radius > 0 {
		north, south, west, east = geospatial.Edges(pf.centerLat, pf.centerLon, pf.radius)
	}
	bounds, err := geo.NewBounds(north, south, west, east)
	if err != nil {
		return err
	}

	natural := domain.Size{Width: pf.imageWidth, Height: pf.imageHeight}
	if pf.imagePath != "" {
		if natural, err = geo.DecodeImageSize(pf.imagePath); err != nil {
			return err
		}
	}
	rect := geo.ComputeContainerRect(domain.Size{Width: pf.width, Height: pf.height}, natural)
	if rect.Width == 0 {
		return fmt.Errorf("container and image sizes must be positive")
	}

	markers := make([]domain.Marker, 0, len(args))
	for i, arg := range args {
		p, err := parsePoint(arg)
		if err != nil {
			return err
		}
		markers = append(markers, domain.Marker{ID: strconv.Itoa(i + 1), Kind: "cli", Label: arg, Point: p})
	}

	projected := geo.ProjectAll(markers, bounds, rect)
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "rect x=%.1f y=%.1f w=%.1f h=%.1f, %d of %d points inside\n",
			rect.X, rect.Y, rect.Width, rect.Height, len(projected), len(markers))
	}
	return printJSON(cmd, struct {
		Bounds  domain.GeoBounds         `json:"bounds"`
		Rect    domain.ContainerRect     `json:"rect"`
		Markers []domain.ProjectedMarker `json:"markers"`
		Missed  int                      `json:"missed"`
	}{bounds, rect, projected, len(markers) - len(projected)})
}

func parsePoint(arg string) (domain.GeoPoint, error) {
	lat, lon, ok := strings.Cut(arg, ",")
	if !ok {
		return domain.GeoPoint{}, fmt.Errorf("point %q: want lat,lon", arg)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("point %q: %w", arg, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("point %q: %w", arg, err)
	}
	return domain.GeoPoint{Latitude: la, Longitude: lo}, nil
}
