package dto

import (
	"time"

	"github.com/noah-isme/skillswap-api/internal/models"
)

// SwapDuration groups effort estimate and preferred window.
type SwapDuration struct {
	EstimatedHours int              `json:"estimated_hours" validate:"required,min=1,max=100"`
	Timeframe      models.Timeframe `json:"timeframe" validate:"required"`
}

// CreateSwapRequest is the payload for proposing a new exchange.
type CreateSwapRequest struct {
	RecipientID  string              `json:"recipient_id" validate:"required,uuid4"`
	SkillOffered string              `json:"skill_offered" validate:"required,max=100"`
	SkillWanted  string              `json:"skill_wanted" validate:"required,max=100"`
	LearningMode models.LearningMode `json:"learning_mode" validate:"required"`
	Message      string              `json:"message" validate:"max=500"`
	Duration     SwapDuration        `json:"duration" validate:"required"`
	Schedule     string              `json:"schedule" validate:"max=500"`
	Priority     models.SwapPriority `json:"priority"`
}

// UpdateSwapRequest whitelist-merges mutable terms. Parties, skills, status
// and transition timestamps are deliberately absent: they cannot be changed
// through this payload.
type UpdateSwapRequest struct {
	Message        *string              `json:"message" validate:"omitempty,max=500"`
	Duration       *SwapDuration        `json:"duration"`
	Schedule       *string              `json:"schedule" validate:"omitempty,max=500"`
	MeetingDetails *string              `json:"meeting_details" validate:"omitempty,max=500"`
	Priority       *models.SwapPriority `json:"priority"`
}

// AcceptSwapRequest optionally attaches meeting details when accepting.
type AcceptSwapRequest struct {
	MeetingDetails string `json:"meeting_details" validate:"max=500"`
}

// ResolveSwapRequest carries the optional reason for reject and cancel.
type ResolveSwapRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// SwapResponse decorates the stored record with derived state.
type SwapResponse struct {
	models.SwapRequest
	IsExpired bool `json:"is_expired"`
}

// NewSwapResponse computes derived fields against the supplied clock.
func NewSwapResponse(req *models.SwapRequest, now time.Time) *SwapResponse {
	return &SwapResponse{SwapRequest: *req, IsExpired: req.IsExpired(now)}
}

// NewSwapResponses maps a list of records.
func NewSwapResponses(reqs []models.SwapRequest, now time.Time) []SwapResponse {
	out := make([]SwapResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, SwapResponse{SwapRequest: reqs[i], IsExpired: reqs[i].IsExpired(now)})
	}
	return out
}
