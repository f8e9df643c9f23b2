package models

import "time"

// SwapStatus is the lifecycle state of a swap request.
type SwapStatus string

const (
	SwapStatusPending   SwapStatus = "pending"
	SwapStatusAccepted  SwapStatus = "accepted"
	SwapStatusRejected  SwapStatus = "rejected"
	SwapStatusCompleted SwapStatus = "completed"
	SwapStatusCancelled SwapStatus = "cancelled"
)

// swapTransitions is the authoritative transition table. A status missing
// from the map, or a target missing from its set, is not reachable.
var swapTransitions = map[SwapStatus]map[SwapStatus]struct{}{
	SwapStatusPending: {
		SwapStatusAccepted:  {},
		SwapStatusRejected:  {},
		SwapStatusCancelled: {},
	},
	SwapStatusAccepted: {
		SwapStatusCompleted: {},
		SwapStatusCancelled: {},
	},
}

// Valid reports whether the status is one of the five known states.
func (s SwapStatus) Valid() bool {
	switch s {
	case SwapStatusPending, SwapStatusAccepted, SwapStatusRejected, SwapStatusCompleted, SwapStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave the status.
func (s SwapStatus) Terminal() bool {
	_, ok := swapTransitions[s]
	return !ok && s.Valid()
}

// CanTransition reports whether the directed edge s -> to exists.
func (s SwapStatus) CanTransition(to SwapStatus) bool {
	targets, ok := swapTransitions[s]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// LearningMode describes how the exchange takes place.
type LearningMode string

const (
	LearningModeOnline   LearningMode = "online"
	LearningModeInPerson LearningMode = "in_person"
	LearningModeBoth     LearningMode = "both"
)

// Valid reports whether the learning mode is known.
func (m LearningMode) Valid() bool {
	switch m {
	case LearningModeOnline, LearningModeInPerson, LearningModeBoth:
		return true
	}
	return false
}

// Timeframe is the requester's preferred window for the exchange.
type Timeframe string

const (
	TimeframeWithin1Week  Timeframe = "within_1_week"
	TimeframeWithin2Weeks Timeframe = "within_2_weeks"
	TimeframeWithin1Month Timeframe = "within_1_month"
	TimeframeFlexible     Timeframe = "flexible"
)

// Valid reports whether the timeframe is known.
func (t Timeframe) Valid() bool {
	switch t {
	case TimeframeWithin1Week, TimeframeWithin2Weeks, TimeframeWithin1Month, TimeframeFlexible:
		return true
	}
	return false
}

// SwapPriority orders a user's open requests.
type SwapPriority string

const (
	SwapPriorityLow    SwapPriority = "low"
	SwapPriorityNormal SwapPriority = "normal"
	SwapPriorityHigh   SwapPriority = "high"
)

// Valid reports whether the priority is known.
func (p SwapPriority) Valid() bool {
	switch p {
	case SwapPriorityLow, SwapPriorityNormal, SwapPriorityHigh:
		return true
	}
	return false
}

// SwapRequest represents a proposed skill exchange between two users.
type SwapRequest struct {
	ID          string `db:"id" json:"id"`
	RequesterID string `db:"requester_id" json:"requester_id"`
	RecipientID string `db:"recipient_id" json:"recipient_id"`

	SkillOffered   string       `db:"skill_offered" json:"skill_offered"`
	SkillWanted    string       `db:"skill_wanted" json:"skill_wanted"`
	LearningMode   LearningMode `db:"learning_mode" json:"learning_mode"`
	Message        string       `db:"message" json:"message,omitempty"`
	EstimatedHours int          `db:"estimated_hours" json:"estimated_hours"`
	Timeframe      Timeframe    `db:"timeframe" json:"timeframe"`
	Schedule       string       `db:"schedule" json:"schedule,omitempty"`
	MeetingDetails string       `db:"meeting_details" json:"meeting_details,omitempty"`
	Priority       SwapPriority `db:"priority" json:"priority"`

	Status             SwapStatus `db:"status" json:"status"`
	AcceptedAt         *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	RejectedAt         *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	CompletedAt        *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	ResponseBy         time.Time  `db:"response_by" json:"response_by"`
	CancellationReason string     `db:"cancellation_reason" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsExpired is derived at read time and never stored: a pending request past
// its response deadline.
func (r *SwapRequest) IsExpired(now time.Time) bool {
	return r.Status == SwapStatusPending && now.After(r.ResponseBy)
}

// IsParty reports whether the user is the requester or the recipient.
func (r *SwapRequest) IsParty(userID string) bool {
	return userID == r.RequesterID || userID == r.RecipientID
}

// CanAccept gates the accept transition: recipient only, pending, not past
// the response deadline.
func (r *SwapRequest) CanAccept(actorID string, now time.Time) bool {
	return actorID == r.RecipientID && r.Status == SwapStatusPending && !r.IsExpired(now)
}

// CanReject gates the reject transition: recipient only, pending. An expired
// request may still be rejected explicitly.
func (r *SwapRequest) CanReject(actorID string) bool {
	return actorID == r.RecipientID && r.Status == SwapStatusPending
}

// CanCancel gates the cancel transition: requester only, pending or accepted.
func (r *SwapRequest) CanCancel(actorID string) bool {
	return actorID == r.RequesterID && (r.Status == SwapStatusPending || r.Status == SwapStatusAccepted)
}

// CanComplete gates the complete transition: either party, accepted only.
func (r *SwapRequest) CanComplete(actorID string) bool {
	return r.IsParty(actorID) && r.Status == SwapStatusAccepted
}

// CanModify gates whitelist updates: either party while non-terminal.
func (r *SwapRequest) CanModify(actorID string) bool {
	return r.IsParty(actorID) && (r.Status == SwapStatusPending || r.Status == SwapStatusAccepted)
}

// CanDelete gates hard deletion: the requester of a still-pending request.
func (r *SwapRequest) CanDelete(actorID string) bool {
	return actorID == r.RequesterID && r.Status == SwapStatusPending
}

// SwapFilter captures filtering criteria for listing swap requests.
type SwapFilter struct {
	// UserID scopes results to requests the user participates in.
	UserID string
	// Role narrows participation: "sent", "received" or empty for both.
	Role         string
	Status       *SwapStatus
	LearningMode *LearningMode
	// Skill matches a case-insensitive substring of the offered or wanted
	// skill.
	Skill     string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}
