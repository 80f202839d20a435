package view

import (
	"context"
	"stormcenter/internal/data"
)

type settingsKey string

// siteSettingsKey is the request context key under which the settings
// middleware stores the loaded site settings row.
const siteSettingsKey settingsKey = "siteSettings"

// WithSettings stores the site settings in the request context.
func WithSettings(ctx context.Context, s *data.SiteSettings) context.Context {
	return context.WithValue(ctx, siteSettingsKey, s)
}

// SettingsFromContext returns the site settings from the request context,
// falling back to the hard-coded defaults so templates always have a value.
func SettingsFromContext(ctx context.Context) *data.SiteSettings {
	if s, ok := ctx.Value(siteSettingsKey).(*data.SiteSettings); ok && s != nil {
		return s
	}
	return data.DefaultSettings()
}
