package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// --- Mock sources ---

type mockBundles struct {
	listFn func(ctx context.Context) ([]domain.Bundle, error)
	calls  int
}

func (m *mockBundles) ListBundles(ctx context.Context) ([]domain.Bundle, error) {
	m.calls++
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockComplaints struct {
	listFn    func(ctx context.Context) ([]domain.Complaint, error)
	getFn     func(ctx context.Context, id string) (*domain.Complaint, error)
	resolveFn func(ctx context.Context, id string) (*domain.Complaint, error)
	presignFn func(ctx context.Context, objectURL string) (string, error)
	listCalls int
}

func (m *mockComplaints) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockComplaints) GetComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockComplaints) ResolveComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, id)
	}
	return &domain.Complaint{ID: domain.ID(id)}, nil
}

func (m *mockComplaints) PresignComplaintImage(ctx context.Context, objectURL string) (string, error) {
	if m.presignFn != nil {
		return m.presignFn(ctx, objectURL)
	}
	return objectURL + "?signed", nil
}

type mockEchoes struct {
	listFn    func(ctx context.Context) ([]domain.Echo, error)
	deleteFn  func(ctx context.Context, id string) error
	listCalls int
}

func (m *mockEchoes) ListEchoes(ctx context.Context) ([]domain.Echo, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockEchoes) GetEcho(ctx context.Context, id string) (*domain.Echo, error) {
	return &domain.Echo{ID: domain.ID(id)}, nil
}

func (m *mockEchoes) DeleteEcho(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockDashboard struct {
	summaryCalls int
}

func (m *mockDashboard) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	m.summaryCalls++
	return &domain.DashboardSummary{TotalDiagnoses: domain.ChangeCount{Count: 42}}, nil
}

func (m *mockDashboard) AiSummary(ctx context.Context) (*domain.AiSummary, error) {
	return &domain.AiSummary{}, nil
}

func (m *mockDashboard) WeeklyDiagnoses(ctx context.Context) ([]domain.WeeklyDiagnosis, error) {
	return []domain.WeeklyDiagnosis{{Date: "2024-05-01", Total: 3, Resolved: 1}}, nil
}

func (m *mockDashboard) TagDistribution(ctx context.Context) ([]domain.TagDistribution, error) {
	return nil, nil
}

func (m *mockDashboard) HourlyComplaints(ctx context.Context) ([]domain.HourlyComplaint, error) {
	return nil, nil
}

// --- Mock cache ---

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *memCache) wasDeleted(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.deleted {
		if k == key {
			return true
		}
	}
	return false
}

// --- Mock publisher ---

type mockPublisher struct {
	mu        sync.Mutex
	phases    []domain.UploadPhase
	uploaded  []domain.UploadSnapshot
	resolved  []domain.ID
	deletions []string
}

func (p *mockPublisher) PublishUploadPhase(ctx context.Context, snap domain.UploadSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phases = append(p.phases, snap.Phase)
	return nil
}

func (p *mockPublisher) PublishBundleUploaded(ctx context.Context, snap domain.UploadSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.uploaded = append(p.uploaded, snap)
	return nil
}

func (p *mockPublisher) PublishComplaintResolved(ctx context.Context, c *domain.Complaint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolved = append(p.resolved, c.ID)
	return nil
}

func (p *mockPublisher) PublishEchoDeleted(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletions = append(p.deletions, id)
	return nil
}

// --- Mock upload transport ---

type mockUploadAPI struct {
	initiateErr error
}

func (m *mockUploadAPI) InitiateUpload(ctx context.Context, files []domain.FileInfo) (*domain.PresignedUpload, error) {
	if m.initiateErr != nil {
		return nil, m.initiateErr
	}
	urls := make([]domain.PresignedURL, len(files))
	for i, f := range files {
		urls[i] = domain.PresignedURL{FileName: f.FileName, URL: "https://s3.test/" + f.FileName}
	}
	return &domain.PresignedUpload{UploadID: "u1", URLs: urls}, nil
}

func (m *mockUploadAPI) FinalizeUpload(ctx context.Context, req domain.FinalizeRequest) (domain.FinalizeResult, error) {
	return domain.FinalizeResult{"id": "bundle-1"}, nil
}

type nopStorage struct{}

func (nopStorage) Put(ctx context.Context, url, contentType string, body []byte) error { return nil }

type mockAudit struct {
	recentFn func(ctx context.Context, limit int) ([]domain.UploadSnapshot, error)
}

func (m *mockAudit) Record(ctx context.Context, snap domain.UploadSnapshot) error { return nil }

func (m *mockAudit) Recent(ctx context.Context, limit int) ([]domain.UploadSnapshot, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}
