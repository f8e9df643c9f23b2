package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skillswap-api/internal/models"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
)

type adminUserStub struct {
	users       map[string]*models.User
	setActive   map[string]bool
	revokedUser string
	audits      []*models.AuditLog
}

func newAdminUserStub() *adminUserStub {
	return &adminUserStub{users: map[string]*models.User{}, setActive: map[string]bool{}}
}

func (s *adminUserStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *adminUserStub) SetActive(ctx context.Context, id string, active bool) error {
	s.setActive[id] = active
	return nil
}

func (s *adminUserStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revokedUser = userID
	return nil
}

func (s *adminUserStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return nil, 0, nil
}

func (s *adminUserStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.audits = append(s.audits, log)
	return nil
}

type adminSwapStub struct {
	droppedFor string
	dropped    int64
}

func (s *adminSwapStub) DeletePendingForUser(ctx context.Context, userID string) (int64, error) {
	s.droppedFor = userID
	return s.dropped, nil
}

type adminReviewStub struct {
	review    *models.Review
	deleteErr error
	deleted   []string
}

func (s *adminReviewStub) FindByID(ctx context.Context, id string) (*models.Review, error) {
	if s.review == nil {
		return nil, sql.ErrNoRows
	}
	return s.review, nil
}

func (s *adminReviewStub) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func TestAdminServiceBanUser(t *testing.T) {
	users := newAdminUserStub()
	users.users["u1"] = &models.User{ID: "u1", Role: models.RoleUser, Active: true}
	swaps := &adminSwapStub{dropped: 2}
	svc := NewAdminService(users, swaps, &adminReviewStub{}, nil)

	require.NoError(t, svc.BanUser(context.Background(), "u1", "admin-1", "spamming"))

	active, ok := users.setActive["u1"]
	require.True(t, ok)
	assert.False(t, active)
	assert.Equal(t, "u1", users.revokedUser, "sessions revoked on ban")
	assert.Equal(t, "u1", swaps.droppedFor, "pending swaps dropped on ban")
	require.Len(t, users.audits, 1)
	assert.Equal(t, models.AuditActionUserBan, users.audits[0].Action)
}

func TestAdminServiceBanSelf(t *testing.T) {
	svc := NewAdminService(newAdminUserStub(), &adminSwapStub{}, &adminReviewStub{}, nil)

	err := svc.BanUser(context.Background(), "admin-1", "admin-1", "oops")
	assertAppError(t, err, appErrors.ErrInvalidArgument)
}

func TestAdminServiceBanAdmin(t *testing.T) {
	users := newAdminUserStub()
	users.users["u2"] = &models.User{ID: "u2", Role: models.RoleAdmin, Active: true}
	svc := NewAdminService(users, &adminSwapStub{}, &adminReviewStub{}, nil)

	err := svc.BanUser(context.Background(), "u2", "admin-1", "nope")
	assertAppError(t, err, appErrors.ErrForbidden)
}

func TestAdminServiceBanAlreadyBanned(t *testing.T) {
	users := newAdminUserStub()
	users.users["u1"] = &models.User{ID: "u1", Role: models.RoleUser, Active: false}
	svc := NewAdminService(users, &adminSwapStub{}, &adminReviewStub{}, nil)

	err := svc.BanUser(context.Background(), "u1", "admin-1", "again")
	assertAppError(t, err, appErrors.ErrConflict)
}

func TestAdminServiceUnbanUser(t *testing.T) {
	users := newAdminUserStub()
	users.users["u1"] = &models.User{ID: "u1", Role: models.RoleUser, Active: false}
	svc := NewAdminService(users, &adminSwapStub{}, &adminReviewStub{}, nil)

	require.NoError(t, svc.UnbanUser(context.Background(), "u1", "admin-1"))

	active, ok := users.setActive["u1"]
	require.True(t, ok)
	assert.True(t, active)
}

func TestAdminServiceUnbanActiveUser(t *testing.T) {
	users := newAdminUserStub()
	users.users["u1"] = &models.User{ID: "u1", Role: models.RoleUser, Active: true}
	svc := NewAdminService(users, &adminSwapStub{}, &adminReviewStub{}, nil)

	err := svc.UnbanUser(context.Background(), "u1", "admin-1")
	assertAppError(t, err, appErrors.ErrConflict)
}

func TestAdminServiceDeleteReview(t *testing.T) {
	users := newAdminUserStub()
	reviews := &adminReviewStub{review: &models.Review{ID: "review-1"}}
	svc := NewAdminService(users, &adminSwapStub{}, reviews, nil)

	require.NoError(t, svc.DeleteReview(context.Background(), "review-1", "admin-1"))
	assert.Equal(t, []string{"review-1"}, reviews.deleted)
}

func TestAdminServiceDeleteReviewMissing(t *testing.T) {
	svc := NewAdminService(newAdminUserStub(), &adminSwapStub{}, &adminReviewStub{}, nil)

	err := svc.DeleteReview(context.Background(), "missing", "admin-1")
	assertAppError(t, err, appErrors.ErrNotFound)
}
