package handler

import (
	"net/http"
	"strconv"

	"stormcenter/internal/data"
	"stormcenter/internal/logger"
	"stormcenter/internal/middleware"
	"stormcenter/internal/service"
	"stormcenter/internal/session"
	"stormcenter/internal/view"
)

// validThreatLevels guards the admin form input; the enum also exists as a
// CHECK-like convention in the schema.
var validThreatLevels = map[string]bool{
	"low": true, "medium": true, "high": true, "critical": true,
}

// AdminHandler holds the dependencies for the moderation and settings
// endpoints. The generated CRUD screens of the original admin are out of
// scope; this is the minimum surface the site's flows need.
type AdminHandler struct {
	blog     *service.BlogService
	threats  *service.ThreatService
	settings *data.SettingsRepository
	sessions session.Manager
	view     *view.View
	log      logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(blog *service.BlogService, threats *service.ThreatService, settings *data.SettingsRepository, sessions session.Manager, v *view.View, log logger.Logger) *AdminHandler {
	return &AdminHandler{blog: blog, threats: threats, settings: settings, sessions: sessions, view: v, log: log}
}

// commentsHandler renders the moderation queue.
func (h *AdminHandler) commentsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	comments, pageInfo, err := h.blog.PendingComments(r.Context(), pageParam(r))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve pending comments", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Comments": comments,
		"PageInfo": pageInfo,
	}
	if err := h.view.Render(w, r, "admin_comments.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render moderation queue", Code: http.StatusInternalServerError}
	}
	return nil
}

// approveCommentsHandler is the bulk-approve action. It flips is_approved
// on the submitted comment ids; this is the only path that approves a
// comment.
func (h *AdminHandler) approveCommentsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}

	var ids []int64
	for _, raw := range r.PostForm["id"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	n, err := h.blog.ApproveComments(r.Context(), ids)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to approve comments", Code: http.StatusInternalServerError}
	}
	h.log.With(map[string]interface{}{"approved": n}).Info("Comments approved")

	http.Redirect(w, r, "/admin/comments", http.StatusFound)
	return nil
}

// threatLevelHandler appends a row to the threat level history, attributed
// to the logged-in handler when the login resolved to an author row.
func (h *AdminHandler) threatLevelHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	level := r.FormValue("level")
	description := r.FormValue("description")
	if !validThreatLevels[level] {
		return &middleware.AppError{Error: nil, Message: "Unknown threat level", Code: http.StatusBadRequest}
	}

	var updatedBy *int64
	if h.sessions != nil {
		if raw := h.sessions.GetString(r.Context(), sessionAuthorIDKey); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				updatedBy = &id
			}
		}
	}

	if err := h.threats.SetLevel(r.Context(), level, description, updatedBy); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to record threat level", Code: http.StatusInternalServerError}
	}

	http.Redirect(w, r, "/threats/", http.StatusFound)
	return nil
}

// settingsHandler updates the singleton settings row from the submitted
// form.
func (h *AdminHandler) settingsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Malformed form", Code: http.StatusBadRequest}
	}

	current, err := h.settings.Get(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to load settings", Code: http.StatusInternalServerError}
	}

	current.SiteName = r.FormValue("site_name")
	current.SiteDescription = r.FormValue("site_description")
	current.ISSN = r.FormValue("issn")
	current.ISSNL = r.FormValue("issn_l")
	current.PublisherName = r.FormValue("publisher_name")
	current.PublisherCountry = r.FormValue("publisher_country")
	current.ContactEmail = r.FormValue("contact_email")

	if err := h.settings.Update(r.Context(), current); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to update settings", Code: http.StatusInternalServerError}
	}

	http.Redirect(w, r, "/about/", http.StatusFound)
	return nil
}
