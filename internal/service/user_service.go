package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/skillswap-api/internal/dto"
	"github.com/noah-isme/skillswap-api/internal/models"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

// UserService exposes profile reads and updates plus the public member
// directory.
type UserService struct {
	repo      userStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userStore, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// Me returns the actor's own profile, email included.
func (s *UserService) Me(ctx context.Context, actorID string) (*models.User, error) {
	user, err := s.findUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the provided fields to the actor's profile.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, req dto.UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	user, err := s.findUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}
	if req.Availability != nil {
		user.Availability = *req.Availability
	}
	if req.Public != nil {
		user.Public = *req.Public
	}
	if req.SkillsOffered != nil {
		user.SkillsOffered = req.SkillsOffered
	}
	if req.SkillsWanted != nil {
		user.SkillsWanted = req.SkillsWanted
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	return user, nil
}

// GetPublicProfile returns another member's profile. Hidden or deactivated
// profiles read as not found.
func (s *UserService) GetPublicProfile(ctx context.Context, id string) (*dto.PublicProfile, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Active || !user.Public {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return dto.NewPublicProfile(user), nil
}

// Search lists public, active members matching the filter.
func (s *UserService) Search(ctx context.Context, filter models.UserFilter) ([]dto.PublicProfile, *models.Pagination, error) {
	filter.PublicOnly = true
	active := true
	filter.Active = &active

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search users")
	}
	return dto.NewPublicProfiles(users), models.NewPagination(filter.Page, filter.PageSize, total), nil
}

func (s *UserService) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}
