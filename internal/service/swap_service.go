package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/skillswap-api/internal/dto"
	"github.com/noah-isme/skillswap-api/internal/models"
	"github.com/noah-isme/skillswap-api/internal/repository"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
)

type swapStore interface {
	FindByID(ctx context.Context, id string) (*models.SwapRequest, error)
	Create(ctx context.Context, req *models.SwapRequest) error
	HasPendingDuplicate(ctx context.Context, requesterID, recipientID, skillOffered, skillWanted string) (bool, error)
	Accept(ctx context.Context, id string, meetingDetails string, now time.Time) (bool, error)
	Reject(ctx context.Context, id string, reason string, now time.Time) (bool, error)
	Cancel(ctx context.Context, id string, reason string, now time.Time) (bool, error)
	Complete(ctx context.Context, id, requesterID, recipientID string, now time.Time) (bool, error)
	UpdateTerms(ctx context.Context, req *models.SwapRequest) (bool, error)
	Delete(ctx context.Context, id, requesterID string) (bool, error)
	List(ctx context.Context, filter models.SwapFilter) ([]models.SwapRequest, int, error)
}

type swapUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// SwapNotifier receives lifecycle events for best-effort delivery.
type SwapNotifier interface {
	SwapEvent(eventType models.NotificationType, req *models.SwapRequest)
}

// SwapServiceOption configures the service.
type SwapServiceOption func(*SwapService)

// WithSwapClock overrides the clock; tests pin expiry behaviour with it.
func WithSwapClock(now func() time.Time) SwapServiceOption {
	return func(s *SwapService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSwapNotifier attaches a lifecycle event sink.
func WithSwapNotifier(n SwapNotifier) SwapServiceOption {
	return func(s *SwapService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// SwapService owns the swap-request lifecycle: creation, the five-state
// transition machine, whitelist updates and deletion. Every transition is a
// permission predicate followed by a status-guarded write, so concurrent
// callers cannot both win.
type SwapService struct {
	repo      swapStore
	users     swapUserStore
	validator *validator.Validate
	logger    *zap.Logger
	notifier  SwapNotifier

	responseWindow time.Duration
	now            func() time.Time
}

// NewSwapService constructs a SwapService instance.
func NewSwapService(repo swapStore, users swapUserStore, validate *validator.Validate, logger *zap.Logger, responseWindow time.Duration, opts ...SwapServiceOption) *SwapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if responseWindow <= 0 {
		responseWindow = 7 * 24 * time.Hour
	}
	svc := &SwapService{
		repo:           repo,
		users:          users,
		validator:      validate,
		logger:         logger,
		responseWindow: responseWindow,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create proposes a new exchange from the actor to the recipient.
func (s *SwapService) Create(ctx context.Context, req dto.CreateSwapRequest, actorID string) (*dto.SwapResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid swap payload")
	}
	if !req.LearningMode.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown learning mode")
	}
	if !req.Duration.Timeframe.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown timeframe")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.SwapPriorityNormal
	}
	if !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
	}

	if req.RecipientID == actorID {
		return nil, appErrors.Clone(appErrors.ErrInvalidArgument, "cannot send a swap request to yourself")
	}

	recipient, err := s.users.FindByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recipient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recipient")
	}
	if !recipient.Active {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "recipient not found")
	}

	duplicate, err := s.repo.HasPendingDuplicate(ctx, actorID, req.RecipientID, req.SkillOffered, req.SkillWanted)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check duplicates")
	}
	if duplicate {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an identical pending request already exists")
	}

	now := s.now()
	swap := &models.SwapRequest{
		RequesterID:    actorID,
		RecipientID:    req.RecipientID,
		SkillOffered:   req.SkillOffered,
		SkillWanted:    req.SkillWanted,
		LearningMode:   req.LearningMode,
		Message:        req.Message,
		EstimatedHours: req.Duration.EstimatedHours,
		Timeframe:      req.Duration.Timeframe,
		Schedule:       req.Schedule,
		Priority:       priority,
		Status:         models.SwapStatusPending,
		ResponseBy:     now.Add(s.responseWindow),
	}

	if err := s.repo.Create(ctx, swap); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "an identical pending request already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create swap request")
	}

	s.emitAudit(ctx, actorID, models.AuditActionSwapCreate, swap.ID)
	s.notify(models.NotificationSwapRequest, swap)

	return dto.NewSwapResponse(swap, now), nil
}

// Get returns a single request; only its parties may read it.
func (s *SwapService) Get(ctx context.Context, id, actorID string) (*dto.SwapResponse, error) {
	swap, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !swap.IsParty(actorID) {
		return nil, appErrors.ErrForbidden
	}
	return dto.NewSwapResponse(swap, s.now()), nil
}

// List returns the actor's requests with filters applied.
func (s *SwapService) List(ctx context.Context, filter models.SwapFilter, actorID string) ([]dto.SwapResponse, *models.Pagination, error) {
	filter.UserID = actorID
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	swaps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list swap requests")
	}
	return dto.NewSwapResponses(swaps, s.now()), models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Accept moves pending -> accepted. Recipient only, before the response
// deadline.
func (s *SwapService) Accept(ctx context.Context, id, actorID string, req dto.AcceptSwapRequest) (*dto.SwapResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid accept payload")
	}

	swap, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !swap.CanAccept(actorID, now) {
		return nil, appErrors.ErrForbidden
	}

	ok, err := s.repo.Accept(ctx, id, req.MeetingDetails, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to accept swap request")
	}
	if !ok {
		// Guard missed: another transition won between read and write.
		return nil, appErrors.ErrForbidden
	}

	return s.reloadAndNotify(ctx, id, models.NotificationSwapAccepted)
}

// Reject moves pending -> rejected. Recipient only.
func (s *SwapService) Reject(ctx context.Context, id, actorID string, req dto.ResolveSwapRequest) (*dto.SwapResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reject payload")
	}

	swap, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !swap.CanReject(actorID) {
		return nil, appErrors.ErrForbidden
	}

	ok, err := s.repo.Reject(ctx, id, req.Reason, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject swap request")
	}
	if !ok {
		return nil, appErrors.ErrForbidden
	}

	return s.reloadAndNotify(ctx, id, models.NotificationSwapRejected)
}

// Cancel moves pending|accepted -> cancelled. Requester only.
func (s *SwapService) Cancel(ctx context.Context, id, actorID string, req dto.ResolveSwapRequest) (*dto.SwapResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancel payload")
	}

	swap, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !swap.CanCancel(actorID) {
		return nil, appErrors.ErrForbidden
	}

	ok, err := s.repo.Cancel(ctx, id, req.Reason, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel swap request")
	}
	if !ok {
		return nil, appErrors.ErrForbidden
	}

	return s.reloadAndNotify(ctx, id, models.NotificationSwapCancelled)
}

// Complete moves accepted -> completed and bumps both parties' counters
// atomically with the status write.
func (s *SwapService) Complete(ctx context.Context, id, actorID string) (*dto.SwapResponse, error) {
	swap, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !swap.CanComplete(actorID) {
		return nil, appErrors.ErrForbidden
	}

	ok, err := s.repo.Complete(ctx, id, swap.RequesterID, swap.RecipientID, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete swap request")
	}
	if !ok {
		return nil, appErrors.ErrForbidden
	}

	return s.reloadAndNotify(ctx, id, models.NotificationSwapCompleted)
}

// Update whitelist-merges the mutable terms. Either party, non-terminal
// status only. Parties, skills, status and transition timestamps are not
// reachable through this path.
func (s *SwapService) Update(ctx context.Context, id, actorID string, req dto.UpdateSwapRequest) (*dto.SwapResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	swap, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !swap.CanModify(actorID) {
		return nil, appErrors.ErrForbidden
	}

	if req.Message != nil {
		swap.Message = *req.Message
	}
	if req.Duration != nil {
		if req.Duration.EstimatedHours < 1 || req.Duration.EstimatedHours > 100 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "estimated hours must be between 1 and 100")
		}
		if !req.Duration.Timeframe.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown timeframe")
		}
		swap.EstimatedHours = req.Duration.EstimatedHours
		swap.Timeframe = req.Duration.Timeframe
	}
	if req.Schedule != nil {
		swap.Schedule = *req.Schedule
	}
	if req.MeetingDetails != nil {
		swap.MeetingDetails = *req.MeetingDetails
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown priority")
		}
		swap.Priority = *req.Priority
	}

	ok, err := s.repo.UpdateTerms(ctx, swap)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update swap request")
	}
	if !ok {
		return nil, appErrors.ErrForbidden
	}

	return dto.NewSwapResponse(swap, s.now()), nil
}

// Delete hard-deletes a still-pending request; requester only.
func (s *SwapService) Delete(ctx context.Context, id, actorID string) error {
	swap, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !swap.CanDelete(actorID) {
		return appErrors.ErrForbidden
	}

	ok, err := s.repo.Delete(ctx, id, actorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete swap request")
	}
	if !ok {
		return appErrors.ErrForbidden
	}

	s.emitAudit(ctx, actorID, models.AuditActionSwapDelete, id)
	return nil
}

func (s *SwapService) load(ctx context.Context, id string) (*models.SwapRequest, error) {
	swap, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "swap request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load swap request")
	}
	return swap, nil
}

func (s *SwapService) reloadAndNotify(ctx context.Context, id string, eventType models.NotificationType) (*dto.SwapResponse, error) {
	swap, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(eventType, swap)
	return dto.NewSwapResponse(swap, s.now()), nil
}

func (s *SwapService) notify(eventType models.NotificationType, swap *models.SwapRequest) {
	if s.notifier == nil {
		return
	}
	s.notifier.SwapEvent(eventType, swap)
}

func (s *SwapService) emitAudit(ctx context.Context, actorID, action, resourceID string) {
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "swap_request",
		ResourceID: &resourceID,
	}); err != nil {
		s.logger.Warn("failed to record swap audit log", zap.Error(err))
	}
}
