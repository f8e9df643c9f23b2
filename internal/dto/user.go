package dto

import "github.com/noah-isme/skillswap-api/internal/models"

// UpdateProfileRequest carries the self-editable profile fields.
type UpdateProfileRequest struct {
	FullName      *string  `json:"full_name" validate:"omitempty,min=1,max=100"`
	Bio           *string  `json:"bio" validate:"omitempty,max=1000"`
	Location      *string  `json:"location" validate:"omitempty,max=100"`
	Availability  *string  `json:"availability" validate:"omitempty,max=500"`
	Public        *bool    `json:"public"`
	SkillsOffered []string `json:"skills_offered" validate:"omitempty,dive,min=1,max=100"`
	SkillsWanted  []string `json:"skills_wanted" validate:"omitempty,dive,min=1,max=100"`
}

// PublicProfile is the view of a user exposed to other members. Email and
// moderation fields stay private.
type PublicProfile struct {
	ID            string   `json:"id"`
	FullName      string   `json:"full_name"`
	Bio           string   `json:"bio,omitempty"`
	Location      string   `json:"location,omitempty"`
	Availability  string   `json:"availability,omitempty"`
	SkillsOffered []string `json:"skills_offered"`
	SkillsWanted  []string `json:"skills_wanted"`

	TotalSwaps      int     `json:"total_swaps"`
	SuccessfulSwaps int     `json:"successful_swaps"`
	AverageRating   float64 `json:"average_rating"`
	TotalReviews    int     `json:"total_reviews"`
}

// NewPublicProfile projects a user onto its public view.
func NewPublicProfile(u *models.User) *PublicProfile {
	return &PublicProfile{
		ID:              u.ID,
		FullName:        u.FullName,
		Bio:             u.Bio,
		Location:        u.Location,
		Availability:    u.Availability,
		SkillsOffered:   append([]string(nil), u.SkillsOffered...),
		SkillsWanted:    append([]string(nil), u.SkillsWanted...),
		TotalSwaps:      u.TotalSwaps,
		SuccessfulSwaps: u.SuccessfulSwaps,
		AverageRating:   u.AverageRating,
		TotalReviews:    u.TotalReviews,
	}
}

// NewPublicProfiles maps a list of users.
func NewPublicProfiles(users []models.User) []PublicProfile {
	out := make([]PublicProfile, 0, len(users))
	for i := range users {
		out = append(out, *NewPublicProfile(&users[i]))
	}
	return out
}
