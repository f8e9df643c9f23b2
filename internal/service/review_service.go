package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/skillswap-api/internal/dto"
	"github.com/noah-isme/skillswap-api/internal/models"
	"github.com/noah-isme/skillswap-api/internal/repository"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
)

type reviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	ExistsForReviewer(ctx context.Context, swapRequestID, reviewerID string) (bool, error)
	ListForUser(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int, error)
}

type reviewSwapStore interface {
	FindByID(ctx context.Context, id string) (*models.SwapRequest, error)
}

// ReviewNotifier receives review events for best-effort delivery.
type ReviewNotifier interface {
	ReviewEvent(review *models.Review)
}

// ReviewService handles post-completion reviews. A review is bound to a
// completed swap, one per party, and its skill orientation is derived from
// the reviewer's side of the exchange.
type ReviewService struct {
	repo      reviewStore
	swaps     reviewSwapStore
	validator *validator.Validate
	logger    *zap.Logger
	notifier  ReviewNotifier
}

// NewReviewService constructs a ReviewService instance.
func NewReviewService(repo reviewStore, swaps reviewSwapStore, validate *validator.Validate, logger *zap.Logger, notifier ReviewNotifier) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReviewService{repo: repo, swaps: swaps, validator: validate, logger: logger, notifier: notifier}
}

// Create records the actor's review of the other party on a completed swap.
// The reviewee's rating rollup moves in the same transaction as the insert.
func (s *ReviewService) Create(ctx context.Context, swapID, actorID string, req dto.CreateReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	swap, err := s.swaps.FindByID(ctx, swapID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "swap request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load swap request")
	}
	if !swap.IsParty(actorID) {
		return nil, appErrors.ErrForbidden
	}
	if swap.Status != models.SwapStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only completed swaps can be reviewed")
	}

	exists, err := s.repo.ExistsForReviewer(ctx, swapID, actorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing review")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "you have already reviewed this swap")
	}

	review := &models.Review{
		SwapRequestID:   swapID,
		ReviewerID:      actorID,
		Rating:          req.Rating.Overall,
		TeachingQuality: req.Rating.TeachingQuality,
		Communication:   req.Rating.Communication,
		Reliability:     req.Rating.Reliability,
		Comment:         req.Comment,
		WouldRecommend:  req.WouldRecommend,
	}
	if actorID == swap.RequesterID {
		review.RevieweeID = swap.RecipientID
		review.SkillTaught = swap.SkillOffered
		review.SkillLearned = swap.SkillWanted
	} else {
		review.RevieweeID = swap.RequesterID
		review.SkillTaught = swap.SkillWanted
		review.SkillLearned = swap.SkillOffered
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "you have already reviewed this swap")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create review")
	}

	if s.notifier != nil {
		s.notifier.ReviewEvent(review)
	}
	return review, nil
}

// ListForUser returns reviews received by the given member.
func (s *ReviewService) ListForUser(ctx context.Context, filter models.ReviewFilter) ([]models.Review, *models.Pagination, error) {
	reviews, total, err := s.repo.ListForUser(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return reviews, models.NewPagination(filter.Page, filter.PageSize, total), nil
}
