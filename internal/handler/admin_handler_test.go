//go:build unit

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"stormcenter/internal/service"
)

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAdminHandler_ThreatLevelRecordsAuthor(t *testing.T) {
	repo := &stubThreatRepository{}
	sessions := &stubSessionManager{values: map[string]string{sessionAuthorIDKey: "7"}}
	h := NewAdminHandler(nil, service.NewThreatService(repo, nil), nil, sessions, nil, testLogger())

	rr := httptest.NewRecorder()
	req := postForm("/admin/threat-level", url.Values{
		"level":       {"high"},
		"description": {"Active exploitation of CVE-2026-0001"},
	})
	if appErr := h.threatLevelHandler(rr, req); appErr != nil {
		t.Fatalf("threatLevelHandler failed: %s", appErr.Message)
	}

	if rr.Code != http.StatusFound {
		t.Errorf("expected redirect after recording, got %d", rr.Code)
	}
	if repo.lastRecorded == nil {
		t.Fatal("expected a threat level row to be recorded")
	}
	if repo.lastRecorded.Level != "high" {
		t.Errorf("expected level 'high', got '%s'", repo.lastRecorded.Level)
	}
	if repo.lastRecorded.UpdatedBy == nil || *repo.lastRecorded.UpdatedBy != 7 {
		t.Errorf("expected updated_by 7 from the session, got %v", repo.lastRecorded.UpdatedBy)
	}
}

func TestAdminHandler_ThreatLevelWithoutLoginAttribution(t *testing.T) {
	repo := &stubThreatRepository{}
	h := NewAdminHandler(nil, service.NewThreatService(repo, nil), nil, &stubSessionManager{}, nil, testLogger())

	rr := httptest.NewRecorder()
	req := postForm("/admin/threat-level", url.Values{
		"level":       {"low"},
		"description": {"Back to normal"},
	})
	if appErr := h.threatLevelHandler(rr, req); appErr != nil {
		t.Fatalf("threatLevelHandler failed: %s", appErr.Message)
	}

	if repo.lastRecorded == nil {
		t.Fatal("expected a threat level row to be recorded")
	}
	if repo.lastRecorded.UpdatedBy != nil {
		t.Errorf("expected no updated_by without a resolved author, got %d", *repo.lastRecorded.UpdatedBy)
	}
}

func TestAdminHandler_ThreatLevelRejectsUnknownLevel(t *testing.T) {
	repo := &stubThreatRepository{}
	h := NewAdminHandler(nil, service.NewThreatService(repo, nil), nil, &stubSessionManager{}, nil, testLogger())

	rr := httptest.NewRecorder()
	req := postForm("/admin/threat-level", url.Values{"level": {"apocalyptic"}})
	appErr := h.threatLevelHandler(rr, req)
	if appErr == nil || appErr.Code != http.StatusBadRequest {
		t.Fatalf("expected a 400 for an unknown level, got %v", appErr)
	}
	if repo.lastRecorded != nil {
		t.Error("no row must be recorded for an unknown level")
	}
}
