package dto

// ReviewRating bundles the overall score with optional sub-ratings.
type ReviewRating struct {
	Overall         int  `json:"overall" validate:"required,min=1,max=5"`
	TeachingQuality *int `json:"teaching_quality" validate:"omitempty,min=1,max=5"`
	Communication   *int `json:"communication" validate:"omitempty,min=1,max=5"`
	Reliability     *int `json:"reliability" validate:"omitempty,min=1,max=5"`
}

// CreateReviewRequest is the payload for reviewing a completed swap.
type CreateReviewRequest struct {
	Rating         ReviewRating `json:"rating" validate:"required"`
	Comment        string       `json:"comment" validate:"max=1000"`
	WouldRecommend bool         `json:"would_recommend"`
}
