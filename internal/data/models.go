package data

import (
	"html/template"
	"time"
)

// Post status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// SiteSettings is the single row of site-wide configuration. Exactly one
// row (id = 1) ever exists; see SettingsRepository.Get.
type SiteSettings struct {
	ID                 int64     `db:"id"`
	SiteName           string    `db:"site_name"`
	SiteDescription    string    `db:"site_description"`
	ISSN               string    `db:"issn"`
	ISSNL              string    `db:"issn_l"`
	PublisherName      string    `db:"publisher_name"`
	PublisherCountry   string    `db:"publisher_country"`
	InfoconStatus      string    `db:"infocon_status"`
	InfoconDescription string    `db:"infocon_description"`
	InfoconUpdated     time.Time `db:"infocon_updated"`
	ContactEmail       string    `db:"contact_email"`
}

// Author is a site author, which doubles as an ISC handler profile.
type Author struct {
	ID              int64     `db:"id"`
	Username        string    `db:"username"`
	FirstName       string    `db:"first_name"`
	LastName        string    `db:"last_name"`
	Email           string    `db:"email"`
	Bio             string    `db:"bio"`
	Expertise       string    `db:"expertise"`
	Website         string    `db:"website"`
	Twitter         string    `db:"twitter"`
	Github          string    `db:"github"`
	IsActiveHandler bool      `db:"is_active_handler"`
	JoinedDate      time.Time `db:"joined_date"`
	PostCount       int       `db:"post_count"`
}

// DisplayName returns the author's full name, falling back to the username.
func (a *Author) DisplayName() string {
	full := a.FirstName + " " + a.LastName
	if a.FirstName == "" && a.LastName == "" {
		return a.Username
	}
	if a.FirstName == "" || a.LastName == "" {
		full = a.FirstName + a.LastName
	}
	return full
}

// Category is a blog post category.
type Category struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Slug        string    `db:"slug"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Tag is a free-form label attached to posts.
type Tag struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
	Slug string `db:"slug"`
}

// Post is a blog post / handler diary entry.
type Post struct {
	ID              int64         `db:"id"`
	Title           string        `db:"title"`
	Slug            string        `db:"slug"`
	AuthorID        int64         `db:"author_id"`
	CategoryID      *int64        `db:"category_id"`
	Excerpt         string        `db:"excerpt"`
	Body            string        `db:"body"`
	HTMLBody        template.HTML `db:"-"`
	Status          string        `db:"status"`
	IsFeatured      bool          `db:"is_featured"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
	PublishedAt     *time.Time    `db:"published_at"`
	MetaDescription string        `db:"meta_description"`
	ViewsCount      int64         `db:"views_count"`

	// Joined fields, populated by list/detail queries.
	AuthorUsername  string `db:"author_username"`
	AuthorFirstName string `db:"author_first_name"`
	AuthorLastName  string `db:"author_last_name"`
	CategoryName    string `db:"category_name"`
	CategorySlug    string `db:"category_slug"`
	Tags            []Tag  `db:"-"`
}

// AuthorDisplayName returns the joined author's full name, falling back
// to the username.
func (p *Post) AuthorDisplayName() string {
	a := Author{
		Username:  p.AuthorUsername,
		FirstName: p.AuthorFirstName,
		LastName:  p.AuthorLastName,
	}
	return a.DisplayName()
}

// Comment is a moderated reply to a post. Comments are created unapproved
// and are only publicly visible once is_approved is set.
type Comment struct {
	ID          int64     `db:"id"`
	PostID      int64     `db:"post_id"`
	AuthorName  string    `db:"author_name"`
	AuthorEmail string    `db:"author_email"`
	Body        string    `db:"body"`
	CreatedAt   time.Time `db:"created_at"`
	IsApproved  bool      `db:"is_approved"`
}

// ThreatLevel is one row of the append-only threat level history.
type ThreatLevel struct {
	ID          int64     `db:"id"`
	Level       string    `db:"level"` // low, medium, high, critical
	Description string    `db:"description"`
	RecordedAt  time.Time `db:"recorded_at"`
	UpdatedBy   *int64    `db:"updated_by"`
}

// PortActivity records scanning statistics for a (port, protocol) pair.
type PortActivity struct {
	ID          int64     `db:"id"`
	PortNumber  int       `db:"port_number"`
	Protocol    string    `db:"protocol"` // TCP, UDP
	ServiceName string    `db:"service_name"`
	ScanCount   int64     `db:"scan_count"`
	RiskLevel   string    `db:"risk_level"` // low, medium, high, critical
	FirstSeen   time.Time `db:"first_seen"`
	LastSeen    time.Time `db:"last_seen"`
	Notes       string    `db:"notes"`
}

// IPReputation tracks the reputation of a single IP address.
type IPReputation struct {
	ID           int64     `db:"id"`
	IPAddress    string    `db:"ip_address"`
	Reputation   string    `db:"reputation"` // clean, suspicious, malicious, blocked
	ReportsCount int64     `db:"reports_count"`
	FirstSeen    time.Time `db:"first_seen"`
	LastSeen     time.Time `db:"last_seen"`
	Country      string    `db:"country"`
	ASN          *int64    `db:"asn"`
	Description  string    `db:"description"`
	Tags         string    `db:"tags"` // comma-separated
}

// ThreatIndicator is an indicator of compromise (IoC).
type ThreatIndicator struct {
	ID            int64     `db:"id"`
	IndicatorType string    `db:"indicator_type"` // ip, domain, url, hash, email, cve
	Value         string    `db:"value"`
	Description   string    `db:"description"`
	Severity      string    `db:"severity"` // info, low, medium, high, critical
	Source        string    `db:"source"`
	AddedAt       time.Time `db:"added_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	AddedBy       *int64    `db:"added_by"`
	RelatedPostID *int64    `db:"related_post_id"`
	IsActive      bool      `db:"is_active"`
}

// DashboardStats are the aggregate counters shown on the threat dashboard.
type DashboardStats struct {
	TotalPortsMonitored int64 `json:"total_ports_monitored"`
	MaliciousIPs        int64 `json:"malicious_ips"`
	ActiveIndicators    int64 `json:"active_indicators"`
	HighRiskPorts       int64 `json:"high_risk_ports"`
}
