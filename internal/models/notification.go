package models

import "time"

// NotificationType classifies lifecycle notifications.
type NotificationType string

const (
	NotificationSwapRequest    NotificationType = "swap_request"
	NotificationSwapAccepted   NotificationType = "swap_accepted"
	NotificationSwapRejected   NotificationType = "swap_rejected"
	NotificationSwapCancelled  NotificationType = "swap_cancelled"
	NotificationSwapCompleted  NotificationType = "swap_completed"
	NotificationReviewReceived NotificationType = "review_received"
)

// Notification is a best-effort in-app message. Delivery is not guaranteed:
// dispatch failures are logged and dropped.
type Notification struct {
	ID            string           `db:"id" json:"id"`
	UserID        string           `db:"user_id" json:"user_id"`
	Type          NotificationType `db:"type" json:"type"`
	Title         string           `db:"title" json:"title"`
	Body          string           `db:"body" json:"body,omitempty"`
	SwapRequestID *string          `db:"swap_request_id" json:"swap_request_id,omitempty"`
	Read          bool             `db:"read" json:"read"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter captures filtering criteria for listing notifications.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
