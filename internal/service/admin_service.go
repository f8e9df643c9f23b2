package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/skillswap-api/internal/models"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
)

type adminUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type adminSwapStore interface {
	DeletePendingForUser(ctx context.Context, userID string) (int64, error)
}

type adminReviewStore interface {
	FindByID(ctx context.Context, id string) (*models.Review, error)
	Delete(ctx context.Context, id string) error
}

// AdminService carries the moderation surface: member listing, bans and
// review takedowns.
type AdminService struct {
	users   adminUserStore
	swaps   adminSwapStore
	reviews adminReviewStore
	logger  *zap.Logger
}

// NewAdminService constructs an AdminService instance.
func NewAdminService(users adminUserStore, swaps adminSwapStore, reviews adminReviewStore, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{users: users, swaps: swaps, reviews: reviews, logger: logger}
}

// ListUsers returns members without the public/active restriction applied to
// member search.
func (s *AdminService) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// BanUser deactivates an account, revokes its sessions and drops its pending
// swap requests. Admins cannot ban themselves or other admins.
func (s *AdminService) BanUser(ctx context.Context, id, actorID, reason string) error {
	if id == actorID {
		return appErrors.Clone(appErrors.ErrInvalidArgument, "cannot ban yourself")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role == models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot ban an admin account")
	}
	if !user.Active {
		return appErrors.Clone(appErrors.ErrConflict, "user is already banned")
	}

	if err := s.users.SetActive(ctx, id, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to ban user")
	}
	if err := s.users.RevokeUserRefreshTokens(ctx, id); err != nil {
		s.logger.Warn("failed to revoke sessions for banned user", zap.String("user_id", id), zap.Error(err))
	}
	dropped, err := s.swaps.DeletePendingForUser(ctx, id)
	if err != nil {
		s.logger.Warn("failed to drop pending swaps for banned user", zap.String("user_id", id), zap.Error(err))
	} else if dropped > 0 {
		s.logger.Info("dropped pending swaps for banned user", zap.String("user_id", id), zap.Int64("count", dropped))
	}

	s.emitAudit(ctx, actorID, models.AuditActionUserBan, "user", id, map[string]string{"reason": reason})
	return nil
}

// UnbanUser reactivates a banned account.
func (s *AdminService) UnbanUser(ctx context.Context, id, actorID string) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Active {
		return appErrors.Clone(appErrors.ErrConflict, "user is not banned")
	}

	if err := s.users.SetActive(ctx, id, true); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unban user")
	}

	s.emitAudit(ctx, actorID, models.AuditActionUserUnban, "user", id, nil)
	return nil
}

// DeleteReview removes a review and rolls the reviewee's rating back.
func (s *AdminService) DeleteReview(ctx context.Context, id, actorID string) error {
	if _, err := s.reviews.FindByID(ctx, id); err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete review")
	}

	s.emitAudit(ctx, actorID, models.AuditActionReviewDelete, "review", id, nil)
	return nil
}

func (s *AdminService) emitAudit(ctx context.Context, actorID, action, resource, resourceID string, details map[string]string) {
	entry := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   resource,
		ResourceID: &resourceID,
	}
	if len(details) > 0 {
		if raw, err := json.Marshal(details); err == nil {
			entry.NewValues = raw
		}
	}
	if err := s.users.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record admin audit log", zap.Error(err))
	}
}
