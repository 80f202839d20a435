package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"stormcenter/internal/middleware"
	"stormcenter/internal/session"
)

// Handlers bundles the per-area handlers the router wires up.
type Handlers struct {
	Site    *SiteHandler
	Blog    *BlogHandler
	Threats *ThreatHandler
	Feeds   *FeedHandler
	Seo     *SeoHandler
	Admin   *AdminHandler
	Auth    *AuthHandler
}

// NewRouter creates and configures a new chi router.
func NewRouter(
	h Handlers,
	authzMiddleware func(http.Handler) http.Handler,
	errorMiddleware func(middleware.AppHandler) http.Handler,
	settingsMiddleware func(http.Handler) http.Handler,
	sessions session.Manager,
	staticFS fs.FS,
) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessions.LoadAndSave)
	r.Use(authzMiddleware)

	// Liveness probe, crawler endpoints, feeds and static assets. None of
	// these render the base template, so they stay outside the settings
	// middleware; the liveness probe in particular must not touch the store.
	r.Get("/health/", h.Site.healthHandler)
	r.Get("/robots.txt", h.Seo.robotsHandler)
	r.Get("/sitemap.xml", h.Seo.sitemapHandler)
	r.Handle("/static/*", http.FileServer(http.FS(staticFS)))
	r.Get("/blog/feed/rss/", h.Feeds.rssHandler)
	r.Get("/blog/feed/atom/", h.Feeds.atomHandler)
	r.Get("/threats/api/infocon/", h.Threats.infoconHandler)

	// Authentication
	r.Get("/auth/login", h.Auth.handleLogin)
	r.Get("/auth/callback", h.Auth.handleCallback)
	r.Get("/auth/logout", h.Auth.handleLogout)

	// HTML pages; the settings middleware loads the site settings row into
	// the request context for the base template.
	r.Group(func(r chi.Router) {
		r.Use(settingsMiddleware)

		// Core site pages
		r.Method(http.MethodGet, "/", errorMiddleware(h.Site.homeHandler))
		r.Method(http.MethodGet, "/about/", errorMiddleware(h.Site.aboutHandler))
		r.Method(http.MethodGet, "/handlers/", errorMiddleware(h.Site.handlersHandler))

		// Blog
		r.Method(http.MethodGet, "/blog/", errorMiddleware(h.Blog.listHandler))
		r.Method(http.MethodGet, "/blog/post/{slug}/", errorMiddleware(h.Blog.detailHandler))
		r.Method(http.MethodPost, "/blog/post/{slug}/", errorMiddleware(h.Blog.commentHandler))
		r.Method(http.MethodGet, "/blog/category/{slug}/", errorMiddleware(h.Blog.categoryHandler))
		r.Method(http.MethodGet, "/blog/tag/{slug}/", errorMiddleware(h.Blog.tagHandler))

		// Threat intelligence
		r.Method(http.MethodGet, "/threats/", errorMiddleware(h.Threats.dashboardHandler))
		r.Method(http.MethodGet, "/threats/ports/", errorMiddleware(h.Threats.portsHandler))
		r.Method(http.MethodGet, "/threats/ips/", errorMiddleware(h.Threats.ipsHandler))
		r.Method(http.MethodGet, "/threats/indicators/", errorMiddleware(h.Threats.indicatorsHandler))

		// Moderation and settings; the authz middleware only lets the admin
		// role through here.
		r.Method(http.MethodGet, "/admin/comments", errorMiddleware(h.Admin.commentsHandler))
		r.Method(http.MethodPost, "/admin/comments/approve", errorMiddleware(h.Admin.approveCommentsHandler))
		r.Method(http.MethodPost, "/admin/threat-level", errorMiddleware(h.Admin.threatLevelHandler))
		r.Method(http.MethodPost, "/admin/settings", errorMiddleware(h.Admin.settingsHandler))
	})

	return r
}
