package models

import "time"

// PlatformStats aggregates marketplace health figures for the admin
// dashboard.
type PlatformStats struct {
	TotalUsers     int `db:"total_users" json:"total_users"`
	ActiveUsers    int `db:"active_users" json:"active_users"`
	BannedUsers    int `db:"banned_users" json:"banned_users"`
	TotalSwaps     int `db:"total_swaps" json:"total_swaps"`
	PendingSwaps   int `db:"pending_swaps" json:"pending_swaps"`
	AcceptedSwaps  int `db:"accepted_swaps" json:"accepted_swaps"`
	RejectedSwaps  int `db:"rejected_swaps" json:"rejected_swaps"`
	CompletedSwaps int `db:"completed_swaps" json:"completed_swaps"`
	CancelledSwaps int `db:"cancelled_swaps" json:"cancelled_swaps"`
	TotalReviews   int `db:"total_reviews" json:"total_reviews"`

	// CompletionRate is completed / (completed + rejected + cancelled),
	// computed over requests that have left pending.
	CompletionRate float64   `json:"completion_rate"`
	AverageRating  float64   `db:"average_rating" json:"average_rating"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// SkillCount ranks a skill by how often it appears in swap terms.
type SkillCount struct {
	Skill string `db:"skill" json:"skill"`
	Count int    `db:"count" json:"count"`
}

// SwapReportRow is one flattened row of the admin swap export.
type SwapReportRow struct {
	ID             string     `db:"id"`
	RequesterEmail string     `db:"requester_email"`
	RecipientEmail string     `db:"recipient_email"`
	SkillOffered   string     `db:"skill_offered"`
	SkillWanted    string     `db:"skill_wanted"`
	Status         SwapStatus `db:"status"`
	CreatedAt      time.Time  `db:"created_at"`
	ResolvedAt     *time.Time `db:"resolved_at"`
}
