package usecases

import (
	"context"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/ports"
)

// dashboardTTL is short; the aggregates move with every new complaint.
const dashboardTTL = 60

// DashboardService serves the dashboard aggregates.
type DashboardService struct {
	source ports.DashboardSource
	cache  ports.CacheService
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(source ports.DashboardSource, cache ports.CacheService) *DashboardService {
	return &DashboardService{source: source, cache: cache}
}

func (s *DashboardService) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	return readThrough(ctx, s.cache, "dashboard:summary", dashboardTTL, s.source.Summary)
}

func (s *DashboardService) AiSummary(ctx context.Context) (*domain.AiSummary, error) {
	return readThrough(ctx, s.cache, "dashboard:ai-summary", dashboardTTL, s.source.AiSummary)
}

func (s *DashboardService) WeeklyDiagnoses(ctx context.Context) ([]domain.WeeklyDiagnosis, error) {
	return readThrough(ctx, s.cache, "dashboard:weekly-diagnoses", dashboardTTL, s.source.WeeklyDiagnoses)
}

func (s *DashboardService) TagDistribution(ctx context.Context) ([]domain.TagDistribution, error) {
	return readThrough(ctx, s.cache, "dashboard:tag-distribution", dashboardTTL, s.source.TagDistribution)
}

func (s *DashboardService) HourlyComplaints(ctx context.Context) ([]domain.HourlyComplaint, error) {
	return readThrough(ctx, s.cache, "dashboard:hourly-complaints", dashboardTTL, s.source.HourlyComplaints)
}
