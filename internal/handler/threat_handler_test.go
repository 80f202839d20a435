//go:build unit

package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stormcenter/internal/config"
	"stormcenter/internal/data"
	"stormcenter/internal/logger"
	"stormcenter/internal/service"
)

// stubThreatRepository implements service.ThreatRepository; only the current
// level matters to these tests.
type stubThreatRepository struct {
	level        *data.ThreatLevel
	err          error
	lastRecorded *data.ThreatLevel
}

var _ service.ThreatRepository = (*stubThreatRepository)(nil)

func (s *stubThreatRepository) CurrentLevel(ctx context.Context) (*data.ThreatLevel, error) {
	return s.level, s.err
}

func (s *stubThreatRepository) RecordLevel(ctx context.Context, level *data.ThreatLevel) (int64, error) {
	s.lastRecorded = level
	return 1, nil
}

func (s *stubThreatRepository) ListPorts(ctx context.Context, filter data.PortFilter, req data.PageRequest) ([]*data.PortActivity, data.PageInfo, error) {
	return nil, data.PageInfo{}, nil
}

func (s *stubThreatRepository) ListIPs(ctx context.Context, filter data.IPFilter, req data.PageRequest) ([]*data.IPReputation, data.PageInfo, error) {
	return nil, data.PageInfo{}, nil
}

func (s *stubThreatRepository) ListIndicators(ctx context.Context, filter data.IndicatorFilter, req data.PageRequest) ([]*data.ThreatIndicator, data.PageInfo, error) {
	return nil, data.PageInfo{}, nil
}

func (s *stubThreatRepository) TopPorts(ctx context.Context, limit int) ([]*data.PortActivity, error) {
	return nil, nil
}

func (s *stubThreatRepository) MaliciousIPs(ctx context.Context, limit int) ([]*data.IPReputation, error) {
	return nil, nil
}

func (s *stubThreatRepository) ActiveIndicators(ctx context.Context, limit int) ([]*data.ThreatIndicator, error) {
	return nil, nil
}

func (s *stubThreatRepository) Stats(ctx context.Context) (*data.DashboardStats, error) {
	return &data.DashboardStats{}, nil
}

func testLogger() logger.Logger {
	return logger.New(config.LogConfig{Level: "error", Format: "json"}, io.Discard)
}

func TestThreatHandler_Infocon(t *testing.T) {
	recorded := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubThreatRepository{
		level: &data.ThreatLevel{
			Level:       "high",
			Description: "Active exploitation of CVE-2026-0001",
			RecordedAt:  recorded,
		},
	}
	h := NewThreatHandler(service.NewThreatService(repo, nil), nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/threats/api/infocon/", nil)
	rr := httptest.NewRecorder()
	h.infoconHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got '%s'", ct)
	}

	var payload struct {
		Status       string    `json:"status"`
		Description  string    `json:"description"`
		RecordedDate time.Time `json:"recorded_date"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// The JSON status is the badge color, not the raw level.
	if payload.Status != "orange" {
		t.Errorf("expected status 'orange' for level high, got '%s'", payload.Status)
	}
	if payload.Description != "Active exploitation of CVE-2026-0001" {
		t.Errorf("unexpected description '%s'", payload.Description)
	}
	if !payload.RecordedDate.Equal(recorded) {
		t.Errorf("expected recorded date %v, got %v", recorded, payload.RecordedDate)
	}
}

func TestThreatHandler_Infocon_EmptyHistory(t *testing.T) {
	repo := &stubThreatRepository{err: data.ErrNotFound}
	h := NewThreatHandler(service.NewThreatService(repo, nil), nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/threats/api/infocon/", nil)
	rr := httptest.NewRecorder()
	h.infoconHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with the default level, got %d", rr.Code)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["status"] != "green" {
		t.Errorf("expected default status 'green', got '%v'", payload["status"])
	}
	if payload["description"] != "Normal activity" {
		t.Errorf("expected default description, got '%v'", payload["description"])
	}
}

func TestPageParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"?page=3", 3},
		{"?page=abc", 1},
		{"?page=0", 1},
		{"?page=-2", 1},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/blog/"+tt.query, nil)
		if got := pageParam(req); got != tt.want {
			t.Errorf("pageParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}
