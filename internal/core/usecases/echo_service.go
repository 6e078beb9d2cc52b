package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/ports"
	"github.com/samirrijal/echoadmin/internal/core/query"
)

const echoesKey = "echoes:all"

// EchoService handles AR echo moderation.
type EchoService struct {
	echoes    ports.EchoSource
	cache     ports.CacheService
	publisher ports.EventPublisher
	ttl       int
	schema    query.Schema
}

// NewEchoService creates a new EchoService. publisher may be nil.
func NewEchoService(echoes ports.EchoSource, cache ports.CacheService, publisher ports.EventPublisher, ttl int) *EchoService {
	return &EchoService{echoes: echoes, cache: cache, publisher: publisher, ttl: ttl, schema: query.EchoSchema}
}

// WithVocabulary sets the status and type values accepted as filters.
func (s *EchoService) WithVocabulary(v query.Vocabulary) *EchoService {
	s.schema = v.WithDefaults().EchoSchema()
	return s
}

// All returns every echo, served from cache when possible.
func (s *EchoService) All(ctx context.Context) ([]domain.Echo, error) {
	echoes, err := readThrough(ctx, s.cache, echoesKey, s.ttl, s.echoes.ListEchoes)
	if err != nil {
		return nil, fmt.Errorf("list echoes: %w", err)
	}
	return echoes, nil
}

// List applies spec to every echo and returns one page.
func (s *EchoService) List(ctx context.Context, spec query.Spec, offset, limit int) ([]domain.Echo, query.Page, error) {
	echoes, err := s.All(ctx)
	if err != nil {
		return nil, query.Page{}, err
	}
	items, page := query.Paginate(query.Apply(echoes, spec, s.schema), offset, clampLimit(limit))
	return items, page, nil
}

// Get returns a single echo.
func (s *EchoService) Get(ctx context.Context, id string) (*domain.Echo, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	return s.echoes.GetEcho(ctx, id)
}

// Delete removes an echo, drops the cached list and announces the deletion.
func (s *EchoService) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := s.echoes.DeleteEcho(ctx, id); err != nil {
		return fmt.Errorf("delete echo %s: %w", id, err)
	}
	invalidate(ctx, s.cache, echoesKey)
	if s.publisher != nil {
		_ = s.publisher.PublishEchoDeleted(ctx, id)
	}
	return nil
}
