package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/skillswap-api/internal/models"
)

// AnalyticsRepository exposes read-optimised queries for the admin
// dashboards and exports.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// PlatformStats aggregates user, swap and review counts in one round trip.
func (r *AnalyticsRepository) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM users) AS total_users,
		(SELECT COUNT(*) FROM users WHERE active = TRUE) AS active_users,
		(SELECT COUNT(*) FROM users WHERE active = FALSE) AS banned_users,
		(SELECT COUNT(*) FROM swap_requests) AS total_swaps,
		(SELECT COUNT(*) FROM swap_requests WHERE status = 'pending') AS pending_swaps,
		(SELECT COUNT(*) FROM swap_requests WHERE status = 'accepted') AS accepted_swaps,
		(SELECT COUNT(*) FROM swap_requests WHERE status = 'rejected') AS rejected_swaps,
		(SELECT COUNT(*) FROM swap_requests WHERE status = 'completed') AS completed_swaps,
		(SELECT COUNT(*) FROM swap_requests WHERE status = 'cancelled') AS cancelled_swaps,
		(SELECT COUNT(*) FROM reviews) AS total_reviews,
		(SELECT COALESCE(AVG(rating), 0) FROM reviews) AS average_rating`

	var stats models.PlatformStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("query platform stats: %w", err)
	}

	resolved := stats.RejectedSwaps + stats.CompletedSwaps + stats.CancelledSwaps
	if resolved > 0 {
		stats.CompletionRate = float64(stats.CompletedSwaps) / float64(resolved)
	}
	return &stats, nil
}

// TopSkills ranks skills by appearance in swap terms, offered and wanted
// combined.
func (r *AnalyticsRepository) TopSkills(ctx context.Context, limit int) ([]models.SkillCount, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	const query = `SELECT skill, COUNT(*) AS count FROM (
			SELECT LOWER(skill_offered) AS skill FROM swap_requests
			UNION ALL
			SELECT LOWER(skill_wanted) AS skill FROM swap_requests
		) s GROUP BY skill ORDER BY count DESC, skill ASC LIMIT $1`

	var skills []models.SkillCount
	if err := r.db.SelectContext(ctx, &skills, query, limit); err != nil {
		return nil, fmt.Errorf("query top skills: %w", err)
	}
	return skills, nil
}

// SwapReport flattens swap requests with party emails for export.
func (r *AnalyticsRepository) SwapReport(ctx context.Context, maxRows int) ([]models.SwapReportRow, error) {
	if maxRows <= 0 {
		maxRows = 10000
	}
	const query = `SELECT sr.id, req.email AS requester_email, rec.email AS recipient_email,
			sr.skill_offered, sr.skill_wanted, sr.status, sr.created_at,
			COALESCE(sr.completed_at, sr.rejected_at, sr.cancelled_at) AS resolved_at
		FROM swap_requests sr
		JOIN users req ON req.id = sr.requester_id
		JOIN users rec ON rec.id = sr.recipient_id
		ORDER BY sr.created_at DESC LIMIT $1`

	var rows []models.SwapReportRow
	if err := r.db.SelectContext(ctx, &rows, query, maxRows); err != nil {
		return nil, fmt.Errorf("query swap report: %w", err)
	}
	return rows, nil
}
