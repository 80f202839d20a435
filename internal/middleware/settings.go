package middleware

import (
	"net/http"
	"stormcenter/internal/logger"
	"stormcenter/internal/service"
	"stormcenter/internal/view"
)

// Settings is a middleware that loads the singleton site settings row into
// the request context for templates (site name, ISSN line, INFOCON badge).
// A store failure is logged and the request proceeds with the hard-coded
// defaults the accessor returned; no page fails because settings were
// unreachable.
func Settings(settings service.SettingsAccessor, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := settings.Get(r.Context())
			if err != nil {
				log.Error(err, "Failed to load site settings, using defaults")
			}
			ctx := view.WithSettings(r.Context(), s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
