package service

import (
	"context"
	"encoding/json"
	"stormcenter/internal/data"
	"time"
)

const (
	threatPageSize    = 50
	dashboardTopN     = 10
	statsCacheKey     = "threats:dashboard-stats"
	statsCacheTTL     = time.Minute
	defaultLevel      = "low"
	defaultLevelDescr = "Normal activity"
)

// ThreatRepository defines the interface for threat table operations.
type ThreatRepository interface {
	CurrentLevel(ctx context.Context) (*data.ThreatLevel, error)
	RecordLevel(ctx context.Context, level *data.ThreatLevel) (int64, error)
	ListPorts(ctx context.Context, filter data.PortFilter, req data.PageRequest) ([]*data.PortActivity, data.PageInfo, error)
	ListIPs(ctx context.Context, filter data.IPFilter, req data.PageRequest) ([]*data.IPReputation, data.PageInfo, error)
	ListIndicators(ctx context.Context, filter data.IndicatorFilter, req data.PageRequest) ([]*data.ThreatIndicator, data.PageInfo, error)
	TopPorts(ctx context.Context, limit int) ([]*data.PortActivity, error)
	MaliciousIPs(ctx context.Context, limit int) ([]*data.IPReputation, error)
	ActiveIndicators(ctx context.Context, limit int) ([]*data.ThreatIndicator, error)
	Stats(ctx context.Context) (*data.DashboardStats, error)
}

// StatsCache is the subset of the cache used for dashboard statistics.
type StatsCache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
}

// Dashboard is everything the threat dashboard page needs.
type Dashboard struct {
	Current    *data.ThreatLevel
	TopPorts   []*data.PortActivity
	Malicious  []*data.IPReputation
	Indicators []*data.ThreatIndicator
	Stats      *data.DashboardStats
}

// infoconColors maps threat levels to the INFOCON badge color.
var infoconColors = map[string]string{
	"low":      "green",
	"medium":   "yellow",
	"high":     "orange",
	"critical": "red",
}

// InfoconColor returns the badge color for a threat level.
func InfoconColor(level string) string {
	if c, ok := infoconColors[level]; ok {
		return c
	}
	return "green"
}

// ThreatService provides business logic for the threat intelligence pages.
type ThreatService struct {
	repo  ThreatRepository
	cache StatsCache
}

// NewThreatService creates a new ThreatService. cache may be nil, in which
// case dashboard stats are computed on every request.
func NewThreatService(repo ThreatRepository, cache StatsCache) *ThreatService {
	return &ThreatService{repo: repo, cache: cache}
}

// CurrentLevel returns the most recently recorded threat level. An empty
// history yields the fixed default rather than an error. Both the dashboard
// badge and the infocon JSON endpoint go through this method, so the two
// can never disagree on which row is current.
func (s *ThreatService) CurrentLevel(ctx context.Context) (*data.ThreatLevel, error) {
	level, err := s.repo.CurrentLevel(ctx)
	if err == data.ErrNotFound {
		return &data.ThreatLevel{
			Level:       defaultLevel,
			Description: defaultLevelDescr,
			RecordedAt:  time.Now(),
		}, nil
	}
	return level, err
}

// SetLevel appends a new row to the threat level history.
func (s *ThreatService) SetLevel(ctx context.Context, level, description string, updatedBy *int64) error {
	_, err := s.repo.RecordLevel(ctx, &data.ThreatLevel{
		Level:       level,
		Description: description,
		RecordedAt:  time.Now(),
		UpdatedBy:   updatedBy,
	})
	return err
}

// GetDashboard assembles the threat dashboard: current level, top ports,
// recent malicious IPs, ranked active indicators and aggregate stats.
func (s *ThreatService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	current, err := s.CurrentLevel(ctx)
	if err != nil {
		return nil, err
	}
	topPorts, err := s.repo.TopPorts(ctx, dashboardTopN)
	if err != nil {
		return nil, err
	}
	malicious, err := s.repo.MaliciousIPs(ctx, dashboardTopN)
	if err != nil {
		return nil, err
	}
	indicators, err := s.repo.ActiveIndicators(ctx, dashboardTopN)
	if err != nil {
		return nil, err
	}
	stats, err := s.dashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Current:    current,
		TopPorts:   topPorts,
		Malicious:  malicious,
		Indicators: indicators,
		Stats:      stats,
	}, nil
}

// Ports returns one page of port activity rows for the given filters.
func (s *ThreatService) Ports(ctx context.Context, filter data.PortFilter, page int) ([]*data.PortActivity, data.PageInfo, error) {
	return s.repo.ListPorts(ctx, filter, data.PageRequest{Page: page, PageSize: threatPageSize})
}

// IPs returns one page of IP reputation rows for the given filters.
func (s *ThreatService) IPs(ctx context.Context, filter data.IPFilter, page int) ([]*data.IPReputation, data.PageInfo, error) {
	return s.repo.ListIPs(ctx, filter, data.PageRequest{Page: page, PageSize: threatPageSize})
}

// Indicators returns one page of active indicators for the given filters.
func (s *ThreatService) Indicators(ctx context.Context, filter data.IndicatorFilter, page int) ([]*data.ThreatIndicator, data.PageInfo, error) {
	return s.repo.ListIndicators(ctx, filter, data.PageRequest{Page: page, PageSize: threatPageSize})
}

// dashboardStats returns the aggregate counters, served from the cache when
// a fresh snapshot exists. The four COUNT queries are the most expensive
// read on the dashboard, and a minute of staleness is acceptable there.
func (s *ThreatService) dashboardStats(ctx context.Context) (*data.DashboardStats, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(statsCacheKey); err == nil && raw != nil {
			var stats data.DashboardStats
			if err := json.Unmarshal(raw, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			// Best effort; a failed cache write must not fail the page.
			_ = s.cache.Set(statsCacheKey, raw, statsCacheTTL)
		}
	}
	return stats, nil
}
