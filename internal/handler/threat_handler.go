package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"stormcenter/internal/data"
	"stormcenter/internal/logger"
	"stormcenter/internal/middleware"
	"stormcenter/internal/service"
	"stormcenter/internal/view"
)

// ThreatHandler holds the dependencies for the threat intelligence pages.
type ThreatHandler struct {
	threats *service.ThreatService
	view    *view.View
	log     logger.Logger
}

// NewThreatHandler creates a new ThreatHandler.
func NewThreatHandler(threats *service.ThreatService, v *view.View, log logger.Logger) *ThreatHandler {
	return &ThreatHandler{threats: threats, view: v, log: log}
}

// dashboardHandler renders the main threat intelligence dashboard.
func (h *ThreatHandler) dashboardHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	dashboard, err := h.threats.GetDashboard(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load dashboard", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Current":      dashboard.Current,
		"InfoconColor": service.InfoconColor(dashboard.Current.Level),
		"TopPorts":     dashboard.TopPorts,
		"MaliciousIPs": dashboard.Malicious,
		"Indicators":   dashboard.Indicators,
		"Stats":        dashboard.Stats,
	}
	if err := h.view.Render(w, r, "dashboard.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render dashboard", Code: http.StatusInternalServerError}
	}
	return nil
}

// portsHandler lists port activity, filterable by ?risk= and ?protocol=.
// Unknown filter values simply match nothing recognized and are ignored.
func (h *ThreatHandler) portsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	filter := data.PortFilter{
		Risk:     r.URL.Query().Get("risk"),
		Protocol: r.URL.Query().Get("protocol"),
	}
	ports, pageInfo, err := h.threats.Ports(r.Context(), filter, pageParam(r))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve port activity", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Ports":    ports,
		"Filter":   filter,
		"PageInfo": pageInfo,
	}
	if err := h.view.Render(w, r, "port_list.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render port list", Code: http.StatusInternalServerError}
	}
	return nil
}

// ipsHandler lists IP reputation records, filterable by ?reputation=.
func (h *ThreatHandler) ipsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	filter := data.IPFilter{Reputation: r.URL.Query().Get("reputation")}
	ips, pageInfo, err := h.threats.IPs(r.Context(), filter, pageParam(r))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve IP reputations", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"IPs":      ips,
		"Filter":   filter,
		"PageInfo": pageInfo,
	}
	if err := h.view.Render(w, r, "ip_list.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render IP list", Code: http.StatusInternalServerError}
	}
	return nil
}

// indicatorsHandler lists active IoCs, filterable by ?type= and ?severity=.
func (h *ThreatHandler) indicatorsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	filter := data.IndicatorFilter{
		Type:     r.URL.Query().Get("type"),
		Severity: r.URL.Query().Get("severity"),
	}
	indicators, pageInfo, err := h.threats.Indicators(r.Context(), filter, pageParam(r))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve indicators", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Indicators": indicators,
		"Filter":     filter,
		"PageInfo":   pageInfo,
	}
	if err := h.view.Render(w, r, "indicator_list.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render indicator list", Code: http.StatusInternalServerError}
	}
	return nil
}

// infoconResponse is the machine-readable INFOCON payload. It uses the same
// CurrentLevel derivation as the dashboard badge.
type infoconResponse struct {
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	RecordedDate time.Time `json:"recorded_date"`
}

// infoconHandler serves the current threat level as JSON.
func (h *ThreatHandler) infoconHandler(w http.ResponseWriter, r *http.Request) {
	current, err := h.threats.CurrentLevel(r.Context())
	if err != nil {
		h.log.Error(err, "Failed to load current threat level")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infoconResponse{
		Status:       service.InfoconColor(current.Level),
		Description:  current.Description,
		RecordedDate: current.RecordedAt,
	})
}
