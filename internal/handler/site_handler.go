package handler

import (
	"encoding/json"
	"net/http"

	"stormcenter/internal/data"
	"stormcenter/internal/logger"
	"stormcenter/internal/middleware"
	"stormcenter/internal/service"
	"stormcenter/internal/view"
)

const homePostCount = 5

// SiteHandler holds the dependencies for the core site pages.
type SiteHandler struct {
	blog    *service.BlogService
	threats *service.ThreatService
	authors *data.AuthorRepository
	view    *view.View
	log     logger.Logger
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(blog *service.BlogService, threats *service.ThreatService, authors *data.AuthorRepository, v *view.View, log logger.Logger) *SiteHandler {
	return &SiteHandler{blog: blog, threats: threats, authors: authors, view: v, log: log}
}

// homeHandler renders the homepage: latest posts plus the INFOCON badge.
func (h *SiteHandler) homeHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, err := h.blog.LatestPosts(r.Context(), homePostCount)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve latest posts", Code: http.StatusInternalServerError}
	}
	current, err := h.threats.CurrentLevel(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load threat level", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"LatestPosts":  posts,
		"Current":      current,
		"InfoconColor": service.InfoconColor(current.Level),
	}
	if err := h.view.Render(w, r, "home.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render home page", Code: http.StatusInternalServerError}
	}
	return nil
}

// aboutHandler renders the about page; the settings middleware already put
// the site settings (ISSN, publisher, contact) into the request context.
func (h *SiteHandler) aboutHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.view.Render(w, r, "about.html", nil); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render about page", Code: http.StatusInternalServerError}
	}
	return nil
}

// handlersHandler lists the active handler profiles.
func (h *SiteHandler) handlersHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	handlers, err := h.authors.ListActiveHandlers(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve handlers", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Handlers": handlers,
	}
	if err := h.view.Render(w, r, "handlers.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render handlers page", Code: http.StatusInternalServerError}
	}
	return nil
}

// healthHandler is the liveness probe. It performs no store access.
func (h *SiteHandler) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
