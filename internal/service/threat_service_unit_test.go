//go:build unit

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stormcenter/internal/data"
)

// mockThreatRepository is a mock implementation of the ThreatRepository
// interface.
type mockThreatRepository struct {
	currentLevel *data.ThreatLevel
	currentErr   error
	stats        *data.DashboardStats

	recordCalled int
	statsCalled  int
	lastRecorded *data.ThreatLevel
}

var _ ThreatRepository = (*mockThreatRepository)(nil)

func (m *mockThreatRepository) CurrentLevel(ctx context.Context) (*data.ThreatLevel, error) {
	return m.currentLevel, m.currentErr
}

func (m *mockThreatRepository) RecordLevel(ctx context.Context, level *data.ThreatLevel) (int64, error) {
	m.recordCalled++
	m.lastRecorded = level
	return int64(m.recordCalled), nil
}

func (m *mockThreatRepository) ListPorts(ctx context.Context, filter data.PortFilter, req data.PageRequest) ([]*data.PortActivity, data.PageInfo, error) {
	return nil, data.PageInfo{}, nil
}

func (m *mockThreatRepository) ListIPs(ctx context.Context, filter data.IPFilter, req data.PageRequest) ([]*data.IPReputation, data.PageInfo, error) {
	return nil, data.PageInfo{}, nil
}

func (m *mockThreatRepository) ListIndicators(ctx context.Context, filter data.IndicatorFilter, req data.PageRequest) ([]*data.ThreatIndicator, data.PageInfo, error) {
	return nil, data.PageInfo{}, nil
}

func (m *mockThreatRepository) TopPorts(ctx context.Context, limit int) ([]*data.PortActivity, error) {
	return nil, nil
}

func (m *mockThreatRepository) MaliciousIPs(ctx context.Context, limit int) ([]*data.IPReputation, error) {
	return nil, nil
}

func (m *mockThreatRepository) ActiveIndicators(ctx context.Context, limit int) ([]*data.ThreatIndicator, error) {
	return nil, nil
}

func (m *mockThreatRepository) Stats(ctx context.Context) (*data.DashboardStats, error) {
	m.statsCalled++
	if m.stats == nil {
		return &data.DashboardStats{}, nil
	}
	return m.stats, nil
}

// memoryStatsCache is a trivial StatsCache backed by a map. TTLs are ignored;
// the unit tests only care about hit/miss behavior.
type memoryStatsCache struct {
	entries map[string][]byte
}

func (c *memoryStatsCache) Get(key string) ([]byte, error) {
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return nil, nil
}

func (c *memoryStatsCache) Set(key string, value []byte, ttl time.Duration) error {
	if c.entries == nil {
		c.entries = map[string][]byte{}
	}
	c.entries[key] = value
	return nil
}

func TestThreatService_CurrentLevel_EmptyHistoryYieldsDefault(t *testing.T) {
	repo := &mockThreatRepository{currentErr: data.ErrNotFound}
	svc := NewThreatService(repo, nil)

	level, err := svc.CurrentLevel(context.Background())
	if err != nil {
		t.Fatalf("CurrentLevel failed: %v", err)
	}
	if level.Level != "low" {
		t.Errorf("expected default level 'low', got '%s'", level.Level)
	}
	if level.Description != "Normal activity" {
		t.Errorf("expected default description, got '%s'", level.Description)
	}
	if level.RecordedAt.IsZero() {
		t.Error("expected a recorded time on the default level")
	}
}

func TestThreatService_CurrentLevel_PassesThroughRows(t *testing.T) {
	repo := &mockThreatRepository{
		currentLevel: &data.ThreatLevel{Level: "high", Description: "Active exploitation"},
	}
	svc := NewThreatService(repo, nil)

	level, err := svc.CurrentLevel(context.Background())
	if err != nil {
		t.Fatalf("CurrentLevel failed: %v", err)
	}
	if level.Level != "high" {
		t.Errorf("expected level 'high', got '%s'", level.Level)
	}
}

func TestThreatService_CurrentLevel_StoreErrorSurfaces(t *testing.T) {
	repo := &mockThreatRepository{currentErr: errors.New("connection refused")}
	svc := NewThreatService(repo, nil)

	if _, err := svc.CurrentLevel(context.Background()); err == nil {
		t.Fatal("expected store errors other than not-found to surface")
	}
}

func TestThreatService_SetLevel_AppendsRow(t *testing.T) {
	repo := &mockThreatRepository{}
	svc := NewThreatService(repo, nil)

	by := int64(4)
	if err := svc.SetLevel(context.Background(), "high", "Worm outbreak", &by); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if repo.recordCalled != 1 {
		t.Fatalf("expected one RecordLevel call, got %d", repo.recordCalled)
	}
	rec := repo.lastRecorded
	if rec.Level != "high" || rec.Description != "Worm outbreak" {
		t.Errorf("unexpected recorded row: %+v", rec)
	}
	if rec.UpdatedBy == nil || *rec.UpdatedBy != 4 {
		t.Errorf("expected updated_by 4, got %v", rec.UpdatedBy)
	}
	if rec.RecordedAt.IsZero() {
		t.Error("expected recorded_at to be set")
	}
}

func TestInfoconColor(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"low", "green"},
		{"medium", "yellow"},
		{"high", "orange"},
		{"critical", "red"},
		{"bogus", "green"},
		{"", "green"},
	}
	for _, tt := range tests {
		if got := InfoconColor(tt.level); got != tt.want {
			t.Errorf("InfoconColor(%q) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestThreatService_GetDashboard_CachesStats(t *testing.T) {
	repo := &mockThreatRepository{
		currentLevel: &data.ThreatLevel{Level: "medium"},
		stats: &data.DashboardStats{
			TotalPortsMonitored: 12,
			MaliciousIPs:        3,
			ActiveIndicators:    7,
			HighRiskPorts:       2,
		},
	}
	cache := &memoryStatsCache{}
	svc := NewThreatService(repo, cache)
	ctx := context.Background()

	first, err := svc.GetDashboard(ctx)
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if first.Stats.TotalPortsMonitored != 12 {
		t.Errorf("expected 12 monitored ports, got %d", first.Stats.TotalPortsMonitored)
	}
	if repo.statsCalled != 1 {
		t.Fatalf("expected one Stats query, got %d", repo.statsCalled)
	}

	// The second dashboard is served from the cache.
	second, err := svc.GetDashboard(ctx)
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if repo.statsCalled != 1 {
		t.Errorf("expected the cached stats to be reused, Stats called %d times", repo.statsCalled)
	}
	if second.Stats.ActiveIndicators != 7 {
		t.Errorf("expected cached stats to round-trip, got %+v", second.Stats)
	}
}

func TestThreatService_GetDashboard_NilCache(t *testing.T) {
	repo := &mockThreatRepository{
		currentLevel: &data.ThreatLevel{Level: "low"},
		stats:        &data.DashboardStats{TotalPortsMonitored: 1},
	}
	svc := NewThreatService(repo, nil)
	ctx := context.Background()

	if _, err := svc.GetDashboard(ctx); err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if _, err := svc.GetDashboard(ctx); err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if repo.statsCalled != 2 {
		t.Errorf("expected stats recomputed without a cache, got %d calls", repo.statsCalled)
	}
}
