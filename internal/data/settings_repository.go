package data

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

// settingsID is the fixed identity of the singleton row. The PRIMARY KEY on
// site_settings.id is what makes the get-or-create race-safe; two concurrent
// first calls cannot both insert.
const settingsID = 1

// SettingsRepository handles the singleton site_settings row.
type SettingsRepository struct {
	DB *sqlx.DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

// DefaultSettings returns the hard-coded settings used when the row does not
// exist yet and as the degraded value when the store is unreachable.
func DefaultSettings() *SiteSettings {
	return &SiteSettings{
		ID:                 settingsID,
		SiteName:           "Storm Center",
		SiteDescription:    "Security Intelligence Platform",
		InfoconStatus:      "green",
		InfoconDescription: "Normal activity",
		InfoconUpdated:     time.Now(),
	}
}

// Get returns the singleton settings row, creating it with defaults on first
// call. On any store failure it returns DefaultSettings together with the
// error, so callers that must degrade gracefully (the feed, the settings
// middleware) can use the value and log, while others surface the error.
func (r *SettingsRepository) Get(ctx context.Context) (*SiteSettings, error) {
	s, err := r.fetch(ctx)
	if err == nil {
		return s, nil
	}
	if err != sql.ErrNoRows {
		return DefaultSettings(), err
	}

	// First access: insert the defaults. A duplicate-key failure means a
	// concurrent request won the race, in which case the row now exists
	// and the re-select below returns it.
	def := DefaultSettings()
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO site_settings
		 (id, site_name, site_description, issn, issn_l, publisher_name, publisher_country,
		  infocon_status, infocon_description, infocon_updated, contact_email)
		 VALUES (?, ?, ?, '', '', '', '', ?, ?, ?, '')`,
		settingsID, def.SiteName, def.SiteDescription,
		def.InfoconStatus, def.InfoconDescription, def.InfoconUpdated)
	if err != nil {
		if s, serr := r.fetch(ctx); serr == nil {
			return s, nil
		}
		return DefaultSettings(), err
	}
	return def, nil
}

// Update replaces the editable fields of the singleton row.
func (r *SettingsRepository) Update(ctx context.Context, s *SiteSettings) error {
	s.ID = settingsID
	s.InfoconUpdated = time.Now()
	_, err := r.DB.NamedExecContext(ctx,
		`UPDATE site_settings SET
		 site_name = :site_name, site_description = :site_description,
		 issn = :issn, issn_l = :issn_l,
		 publisher_name = :publisher_name, publisher_country = :publisher_country,
		 infocon_status = :infocon_status, infocon_description = :infocon_description,
		 infocon_updated = :infocon_updated, contact_email = :contact_email
		 WHERE id = :id`, s)
	return err
}

func (r *SettingsRepository) fetch(ctx context.Context) (*SiteSettings, error) {
	var s SiteSettings
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM site_settings WHERE id = ?`, settingsID)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
