package dto

import "github.com/noah-isme/skillswap-api/internal/models"

// BanUserRequest carries the moderation reason recorded in the audit trail.
type BanUserRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// AnalyticsResponse bundles platform aggregates with skill rankings.
type AnalyticsResponse struct {
	Stats     models.PlatformStats `json:"stats"`
	TopSkills []models.SkillCount  `json:"top_skills"`
}
