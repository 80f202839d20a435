package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// severityRank orders indicator severities for the dashboard; SQL CASE keeps
// it portable between MySQL and the SQLite test databases.
const severityRank = `CASE severity
	WHEN 'critical' THEN 5
	WHEN 'high' THEN 4
	WHEN 'medium' THEN 3
	WHEN 'low' THEN 2
	ELSE 1 END`

// PortFilter holds the recognized query filters for port listings. Empty
// values mean "no filter"; unrecognized request parameters never reach here.
type PortFilter struct {
	Risk     string
	Protocol string
}

// IPFilter holds the recognized query filters for IP reputation listings.
type IPFilter struct {
	Reputation string
}

// IndicatorFilter holds the recognized query filters for IoC listings.
type IndicatorFilter struct {
	Type     string
	Severity string
}

// ThreatRepository handles database operations for the threat tables.
type ThreatRepository struct {
	DB *sqlx.DB
}

// NewThreatRepository creates a new ThreatRepository.
func NewThreatRepository(db *sqlx.DB) *ThreatRepository {
	return &ThreatRepository{DB: db}
}

// CurrentLevel returns the most recently recorded threat level row.
// ErrNotFound means the history is empty; the service substitutes the
// default level in that case.
func (r *ThreatRepository) CurrentLevel(ctx context.Context) (*ThreatLevel, error) {
	var level ThreatLevel
	err := r.DB.GetContext(ctx, &level,
		`SELECT * FROM threat_levels ORDER BY recorded_at DESC, id DESC LIMIT 1`)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &level, nil
}

// RecordLevel appends a row to the threat level history. History rows are
// never updated or deleted.
func (r *ThreatRepository) RecordLevel(ctx context.Context, level *ThreatLevel) (int64, error) {
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO threat_levels (level, description, recorded_at, updated_by)
		 VALUES (:level, :description, :recorded_at, :updated_by)`, level)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	level.ID = id
	return id, nil
}

// ListPorts returns one page of port activity rows, most-scanned first.
func (r *ThreatRepository) ListPorts(ctx context.Context, filter PortFilter, req PageRequest) ([]*PortActivity, PageInfo, error) {
	clause := `WHERE 1 = 1`
	var args []interface{}
	if filter.Risk != "" {
		clause += ` AND risk_level = ?`
		args = append(args, filter.Risk)
	}
	if filter.Protocol != "" {
		clause += ` AND protocol = ?`
		args = append(args, filter.Protocol)
	}

	var total int64
	if err := r.DB.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM port_activity `+clause, args...); err != nil {
		return nil, PageInfo{}, err
	}

	info, limit, offset := req.Resolve(total)

	var ports []*PortActivity
	query := `SELECT * FROM port_activity ` + clause + ` ORDER BY scan_count DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	if err := r.DB.SelectContext(ctx, &ports, query, args...); err != nil {
		return nil, PageInfo{}, err
	}
	return ports, info, nil
}

// ListIPs returns one page of IP reputation rows, most-reported first.
func (r *ThreatRepository) ListIPs(ctx context.Context, filter IPFilter, req PageRequest) ([]*IPReputation, PageInfo, error) {
	clause := `WHERE 1 = 1`
	var args []interface{}
	if filter.Reputation != "" {
		clause += ` AND reputation = ?`
		args = append(args, filter.Reputation)
	}

	var total int64
	if err := r.DB.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM ip_reputation `+clause, args...); err != nil {
		return nil, PageInfo{}, err
	}

	info, limit, offset := req.Resolve(total)

	var ips []*IPReputation
	query := `SELECT * FROM ip_reputation ` + clause +
		` ORDER BY reports_count DESC, last_seen DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	if err := r.DB.SelectContext(ctx, &ips, query, args...); err != nil {
		return nil, PageInfo{}, err
	}
	return ips, info, nil
}

// ListIndicators returns one page of active indicators, newest first.
// Inactive indicators are excluded unconditionally.
func (r *ThreatRepository) ListIndicators(ctx context.Context, filter IndicatorFilter, req PageRequest) ([]*ThreatIndicator, PageInfo, error) {
	clause := `WHERE is_active = ?`
	args := []interface{}{true}
	if filter.Type != "" {
		clause += ` AND indicator_type = ?`
		args = append(args, filter.Type)
	}
	if filter.Severity != "" {
		clause += ` AND severity = ?`
		args = append(args, filter.Severity)
	}

	var total int64
	if err := r.DB.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM threat_indicators `+clause, args...); err != nil {
		return nil, PageInfo{}, err
	}

	info, limit, offset := req.Resolve(total)

	var indicators []*ThreatIndicator
	query := `SELECT * FROM threat_indicators ` + clause + ` ORDER BY added_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	if err := r.DB.SelectContext(ctx, &indicators, query, args...); err != nil {
		return nil, PageInfo{}, err
	}
	return indicators, info, nil
}

// TopPorts returns the limit most-scanned ports for the dashboard.
func (r *ThreatRepository) TopPorts(ctx context.Context, limit int) ([]*PortActivity, error) {
	var ports []*PortActivity
	err := r.DB.SelectContext(ctx, &ports,
		`SELECT * FROM port_activity ORDER BY scan_count DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return ports, nil
}

// MaliciousIPs returns the limit most-reported malicious IPs.
func (r *ThreatRepository) MaliciousIPs(ctx context.Context, limit int) ([]*IPReputation, error) {
	var ips []*IPReputation
	err := r.DB.SelectContext(ctx, &ips,
		`SELECT * FROM ip_reputation WHERE reputation = 'malicious'
		 ORDER BY reports_count DESC, last_seen DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return ips, nil
}

// ActiveIndicators returns the limit highest-severity active indicators,
// newest first within each severity.
func (r *ThreatRepository) ActiveIndicators(ctx context.Context, limit int) ([]*ThreatIndicator, error) {
	var indicators []*ThreatIndicator
	query := fmt.Sprintf(
		`SELECT * FROM threat_indicators WHERE is_active = ?
		 ORDER BY %s DESC, added_at DESC LIMIT ?`, severityRank)
	err := r.DB.SelectContext(ctx, &indicators, query, true, limit)
	if err != nil {
		return nil, err
	}
	return indicators, nil
}

// Stats returns the aggregate counters for the dashboard.
func (r *ThreatRepository) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	if err := r.DB.GetContext(ctx, &stats.TotalPortsMonitored,
		`SELECT COUNT(*) FROM port_activity`); err != nil {
		return nil, err
	}
	if err := r.DB.GetContext(ctx, &stats.MaliciousIPs,
		`SELECT COUNT(*) FROM ip_reputation WHERE reputation = 'malicious'`); err != nil {
		return nil, err
	}
	if err := r.DB.GetContext(ctx, &stats.ActiveIndicators,
		`SELECT COUNT(*) FROM threat_indicators WHERE is_active = ?`, true); err != nil {
		return nil, err
	}
	if err := r.DB.GetContext(ctx, &stats.HighRiskPorts,
		`SELECT COUNT(*) FROM port_activity WHERE risk_level IN ('high', 'critical')`); err != nil {
		return nil, err
	}
	return &stats, nil
}
