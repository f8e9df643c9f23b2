package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/skillswap-api/internal/models"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
	"github.com/noah-isme/skillswap-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// NotificationService serves the in-app notification feed.
type NotificationService struct {
	repo   notificationStore
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService instance.
func NewNotificationService(repo notificationStore, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, logger: logger}
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, *models.Pagination, error) {
	notifications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// MarkRead flags a single notification belonging to the actor.
func (s *NotificationService) MarkRead(ctx context.Context, id, actorID string) error {
	if err := s.repo.MarkRead(ctx, id, actorID); err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead flags every unread notification belonging to the actor.
func (s *NotificationService) MarkAllRead(ctx context.Context, actorID string) error {
	if err := s.repo.MarkAllRead(ctx, actorID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}

// Notifier turns lifecycle events into persisted notifications through a
// background queue. Enqueue failures are logged and dropped; no lifecycle
// operation ever fails because a notification could not be delivered.
type Notifier struct {
	repo   notificationStore
	logger *zap.Logger
	queue  *jobs.Queue
}

// NewNotifier constructs the dispatcher. Call Start before use and Stop on
// shutdown.
func NewNotifier(repo notificationStore, logger *zap.Logger, cfg jobs.QueueConfig) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Notifier{repo: repo, logger: logger}
	cfg.Logger = logger
	n.queue = jobs.NewQueue("notifications", n.handle, cfg)
	return n
}

// Start launches the dispatch workers.
func (n *Notifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop drains the workers.
func (n *Notifier) Stop() {
	n.queue.Stop()
}

// SwapEvent enqueues a notification for the party on the receiving end of a
// lifecycle transition.
func (n *Notifier) SwapEvent(eventType models.NotificationType, swap *models.SwapRequest) {
	for _, target := range swapEventTargets(eventType, swap) {
		n.enqueue(&models.Notification{
			UserID:        target,
			Type:          eventType,
			Title:         swapEventTitle(eventType),
			Body:          fmt.Sprintf("%s for %s", swapEventTitle(eventType), swap.SkillWanted),
			SwapRequestID: &swap.ID,
		})
	}
}

// ReviewEvent enqueues a notification for the reviewee.
func (n *Notifier) ReviewEvent(review *models.Review) {
	n.enqueue(&models.Notification{
		UserID:        review.RevieweeID,
		Type:          models.NotificationReviewReceived,
		Title:         "You received a new review",
		Body:          fmt.Sprintf("A partner rated your %s exchange %d/5", review.SkillTaught, review.Rating),
		SwapRequestID: &review.SwapRequestID,
	})
}

func (n *Notifier) enqueue(notification *models.Notification) {
	err := n.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(notification.Type),
		Payload: notification,
	})
	if err != nil {
		n.logger.Warn("dropping notification",
			zap.String("type", string(notification.Type)),
			zap.String("user_id", notification.UserID),
			zap.Error(err))
	}
}

func (n *Notifier) handle(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(*models.Notification)
	if !ok {
		n.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}
	return n.repo.Create(ctx, notification)
}

func swapEventTargets(eventType models.NotificationType, swap *models.SwapRequest) []string {
	switch eventType {
	case models.NotificationSwapRequest:
		return []string{swap.RecipientID}
	case models.NotificationSwapAccepted, models.NotificationSwapRejected:
		return []string{swap.RequesterID}
	case models.NotificationSwapCancelled:
		return []string{swap.RecipientID}
	case models.NotificationSwapCompleted:
		return []string{swap.RequesterID, swap.RecipientID}
	default:
		return nil
	}
}

func swapEventTitle(eventType models.NotificationType) string {
	switch eventType {
	case models.NotificationSwapRequest:
		return "New swap request"
	case models.NotificationSwapAccepted:
		return "Swap request accepted"
	case models.NotificationSwapRejected:
		return "Swap request declined"
	case models.NotificationSwapCancelled:
		return "Swap cancelled"
	case models.NotificationSwapCompleted:
		return "Swap completed"
	default:
		return "Notification"
	}
}
