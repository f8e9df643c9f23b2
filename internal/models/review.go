package models

import "time"

// Review is post-completion feedback tied to one (reviewer, swap) pair.
type Review struct {
	ID            string `db:"id" json:"id"`
	SwapRequestID string `db:"swap_request_id" json:"swap_request_id"`
	ReviewerID    string `db:"reviewer_id" json:"reviewer_id"`
	RevieweeID    string `db:"reviewee_id" json:"reviewee_id"`

	Rating          int  `db:"rating" json:"rating"`
	TeachingQuality *int `db:"teaching_quality" json:"teaching_quality,omitempty"`
	Communication   *int `db:"communication" json:"communication,omitempty"`
	Reliability     *int `db:"reliability" json:"reliability,omitempty"`

	Comment        string `db:"comment" json:"comment,omitempty"`
	WouldRecommend bool   `db:"would_recommend" json:"would_recommend"`

	// SkillTaught and SkillLearned are captured from the swap terms at review
	// time, oriented to the reviewer's side of the exchange.
	SkillTaught  string `db:"skill_taught" json:"skill_taught"`
	SkillLearned string `db:"skill_learned" json:"skill_learned"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReviewFilter captures filtering criteria for listing reviews.
type ReviewFilter struct {
	RevieweeID string
	ReviewerID string
	MinRating  *int
	Page       int
	PageSize   int
}
