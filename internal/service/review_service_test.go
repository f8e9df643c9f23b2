package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skillswap-api/internal/dto"
	"github.com/noah-isme/skillswap-api/internal/models"
	"github.com/noah-isme/skillswap-api/internal/repository"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
)

type reviewRepoStub struct {
	exists    bool
	createErr error
	created   *models.Review
	listResp  []models.Review
}

func (s *reviewRepoStub) Create(ctx context.Context, review *models.Review) error {
	if s.createErr != nil {
		return s.createErr
	}
	review.ID = "review-1"
	s.created = review
	return nil
}

func (s *reviewRepoStub) ExistsForReviewer(ctx context.Context, swapRequestID, reviewerID string) (bool, error) {
	return s.exists, nil
}

func (s *reviewRepoStub) ListForUser(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int, error) {
	return s.listResp, len(s.listResp), nil
}

type reviewSwapStub struct {
	swap *models.SwapRequest
}

func (s *reviewSwapStub) FindByID(ctx context.Context, id string) (*models.SwapRequest, error) {
	if s.swap == nil {
		return nil, sql.ErrNoRows
	}
	return s.swap, nil
}

type reviewNotifierStub struct {
	reviews []*models.Review
}

func (n *reviewNotifierStub) ReviewEvent(review *models.Review) {
	n.reviews = append(n.reviews, review)
}

func completedSwap() *models.SwapRequest {
	return &models.SwapRequest{
		ID:           "swap-1",
		RequesterID:  "alice",
		RecipientID:  "bob",
		SkillOffered: "Spanish",
		SkillWanted:  "Guitar",
		Status:       models.SwapStatusCompleted,
	}
}

func validReviewRequest() dto.CreateReviewRequest {
	return dto.CreateReviewRequest{
		Rating:         dto.ReviewRating{Overall: 5},
		Comment:        "great teacher",
		WouldRecommend: true,
	}
}

func TestReviewServiceCreateByRequester(t *testing.T) {
	repo := &reviewRepoStub{}
	notifier := &reviewNotifierStub{}
	svc := NewReviewService(repo, &reviewSwapStub{swap: completedSwap()}, nil, nil, notifier)

	review, err := svc.Create(context.Background(), "swap-1", "alice", validReviewRequest())
	require.NoError(t, err)

	// The requester taught what they offered and learned what they wanted.
	assert.Equal(t, "bob", review.RevieweeID)
	assert.Equal(t, "Spanish", review.SkillTaught)
	assert.Equal(t, "Guitar", review.SkillLearned)
	assert.Len(t, notifier.reviews, 1)
}

func TestReviewServiceCreateByRecipient(t *testing.T) {
	repo := &reviewRepoStub{}
	svc := NewReviewService(repo, &reviewSwapStub{swap: completedSwap()}, nil, nil, nil)

	review, err := svc.Create(context.Background(), "swap-1", "bob", validReviewRequest())
	require.NoError(t, err)

	// Skill orientation flips for the recipient's side of the exchange.
	assert.Equal(t, "alice", review.RevieweeID)
	assert.Equal(t, "Guitar", review.SkillTaught)
	assert.Equal(t, "Spanish", review.SkillLearned)
}

func TestReviewServiceCreateByStranger(t *testing.T) {
	svc := NewReviewService(&reviewRepoStub{}, &reviewSwapStub{swap: completedSwap()}, nil, nil, nil)

	_, err := svc.Create(context.Background(), "swap-1", "mallory", validReviewRequest())
	assertAppError(t, err, appErrors.ErrForbidden)
}

func TestReviewServiceCreateNotCompleted(t *testing.T) {
	swap := completedSwap()
	swap.Status = models.SwapStatusAccepted
	svc := NewReviewService(&reviewRepoStub{}, &reviewSwapStub{swap: swap}, nil, nil, nil)

	_, err := svc.Create(context.Background(), "swap-1", "alice", validReviewRequest())
	assertAppError(t, err, appErrors.ErrForbidden)
}

func TestReviewServiceCreateAlreadyReviewed(t *testing.T) {
	svc := NewReviewService(&reviewRepoStub{exists: true}, &reviewSwapStub{swap: completedSwap()}, nil, nil, nil)

	_, err := svc.Create(context.Background(), "swap-1", "alice", validReviewRequest())
	assertAppError(t, err, appErrors.ErrConflict)
}

func TestReviewServiceCreateDuplicateRace(t *testing.T) {
	// The uniqueness pre-check passed but the insert hit the constraint.
	svc := NewReviewService(&reviewRepoStub{createErr: repository.ErrDuplicate}, &reviewSwapStub{swap: completedSwap()}, nil, nil, nil)

	_, err := svc.Create(context.Background(), "swap-1", "alice", validReviewRequest())
	assertAppError(t, err, appErrors.ErrConflict)
}

func TestReviewServiceCreateSwapMissing(t *testing.T) {
	svc := NewReviewService(&reviewRepoStub{}, &reviewSwapStub{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), "missing", "alice", validReviewRequest())
	assertAppError(t, err, appErrors.ErrNotFound)
}

func TestReviewServiceCreateInvalidRating(t *testing.T) {
	svc := NewReviewService(&reviewRepoStub{}, &reviewSwapStub{swap: completedSwap()}, nil, nil, nil)

	req := validReviewRequest()
	req.Rating.Overall = 6
	_, err := svc.Create(context.Background(), "swap-1", "alice", req)
	assertAppError(t, err, appErrors.ErrValidation)
}

func TestReviewServiceListForUser(t *testing.T) {
	repo := &reviewRepoStub{listResp: []models.Review{{ID: "review-1", RevieweeID: "bob"}}}
	svc := NewReviewService(repo, &reviewSwapStub{}, nil, nil, nil)

	reviews, pagination, err := svc.ListForUser(context.Background(), models.ReviewFilter{RevieweeID: "bob", Page: 1, PageSize: 20})
	require.NoError(t, err)

	assert.Len(t, reviews, 1)
	assert.Equal(t, 1, pagination.TotalCount)
}
