package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/ports"
	"github.com/samirrijal/echoadmin/internal/core/query"
)

const bundlesKey = "bundles:all"

// BundleService lists VR asset bundles and the prefab assets inside them.
type BundleService struct {
	bundles ports.BundleSource
	cache   ports.CacheService
	ttl     int
}

// NewBundleService creates a new BundleService. ttl is the cache lifetime in seconds.
func NewBundleService(bundles ports.BundleSource, cache ports.CacheService, ttl int) *BundleService {
	return &BundleService{bundles: bundles, cache: cache, ttl: ttl}
}

func (s *BundleService) all(ctx context.Context) ([]domain.Bundle, error) {
	bundles, err := readThrough(ctx, s.cache, bundlesKey, s.ttl, s.bundles.ListBundles)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	return bundles, nil
}

// List applies spec to the full bundle list and returns one page of the result.
func (s *BundleService) List(ctx context.Context, spec query.Spec, offset, limit int) ([]domain.Bundle, query.Page, error) {
	bundles, err := s.all(ctx)
	if err != nil {
		return nil, query.Page{}, err
	}
	items, page := query.Paginate(query.Apply(bundles, spec, query.BundleSchema), offset, clampLimit(limit))
	return items, page, nil
}

// Stats summarizes every bundle, regardless of filters.
func (s *BundleService) Stats(ctx context.Context) (query.BundleStats, error) {
	bundles, err := s.all(ctx)
	if err != nil {
		return query.BundleStats{}, err
	}
	return query.NewBundleStats(bundles), nil
}

// Assets flattens every bundle's prefabs into asset rows, then queries them.
func (s *BundleService) Assets(ctx context.Context, spec query.Spec, offset, limit int) ([]domain.Asset, query.Page, error) {
	bundles, err := s.all(ctx)
	if err != nil {
		return nil, query.Page{}, err
	}
	items, page := query.Paginate(query.Apply(AssetsFromBundles(bundles), spec, query.AssetSchema), offset, clampLimit(limit))
	return items, page, nil
}

// Invalidate drops the cached bundle list. Called after a successful upload.
func (s *BundleService) Invalidate(ctx context.Context) {
	invalidate(ctx, s.cache, bundlesKey)
}

// AssetsFromBundles produces one asset row per prefab. Bundles without prefabs
// contribute a single row describing the bundle itself.
func AssetsFromBundles(bundles []domain.Bundle) []domain.Asset {
	var out []domain.Asset
	for _, b := range bundles {
		updated := b.UpdatedAt
		if updated == "" {
			updated = b.CreatedAt
		}
		base := domain.Asset{
			BundleKey: b.BundleID,
			Version:   b.Version,
			UpdatedAt: updated,
			Status:    b.EffectiveStatus(),
			Usage:     b.Usage,
		}

		if len(b.Prefabs) == 0 {
			a := base
			a.ID = b.BundleID
			a.Name = b.Name
			a.Kind = "bundle"
			a.SizeMB = b.SizeMB()
			a.Tags = b.Tags
			a.Location = bundleLocation(b)
			out = append(out, a)
			continue
		}

		for _, p := range b.Prefabs {
			a := base
			a.ID = b.BundleID + "/" + p.ID
			a.Name = p.Name
			a.Kind = "prefab"
			if len(p.Tags) > 0 {
				a.Kind = p.Tags[0]
			}
			a.SizeMB = p.SizeMB
			a.Tags = p.Tags
			a.Location = prefabLocation(b, p.ID)
			out = append(out, a)
		}
	}
	return out
}

// prefabLocation is the first active placement of the prefab, falling back to the bundle location.
func prefabLocation(b domain.Bundle, prefabID string) *domain.GpsLocation {
	for _, g := range b.PlacementGroups {
		if g.PrefabID != prefabID || len(g.Transforms) == 0 {
			continue
		}
		if g.Active != nil && !*g.Active {
			continue
		}
		loc := g.Transforms[0].Location
		return &domain.GpsLocation{Lat: loc.Latitude, Lon: loc.Longitude}
	}
	return bundleLocation(b)
}

func bundleLocation(b domain.Bundle) *domain.GpsLocation {
	if p, ok := b.Location.Point(); ok {
		return &domain.GpsLocation{Lat: p.Latitude, Lon: p.Longitude}
	}
	return nil
}

// clampLimit keeps list pages between 1 and 200 items; 0 means the default of 50.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 200:
		return 200
	}
	return limit
}
