package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/skillswap-api/internal/dto"
	"github.com/noah-isme/skillswap-api/internal/models"
	appErrors "github.com/noah-isme/skillswap-api/pkg/errors"
)

type analyticsStore interface {
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
	TopSkills(ctx context.Context, limit int) ([]models.SkillCount, error)
}

type analyticsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

const analyticsCacheKey = "analytics:platform"

const topSkillsLimit = 10

// AnalyticsService aggregates platform-wide numbers for the admin dashboard.
// Results are cached in Redis; staleness up to the TTL is acceptable.
type AnalyticsService struct {
	repo   analyticsStore
	cache  analyticsCache
	logger *zap.Logger
	ttl    time.Duration
}

// NewAnalyticsService constructs an AnalyticsService instance. cache may be
// nil, in which case every call hits the database.
func NewAnalyticsService(repo analyticsStore, cache analyticsCache, logger *zap.Logger, ttl time.Duration) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AnalyticsService{repo: repo, cache: cache, logger: logger, ttl: ttl}
}

// Platform returns platform stats plus the skill leaderboard.
func (s *AnalyticsService) Platform(ctx context.Context) (*dto.AnalyticsResponse, error) {
	if s.cache != nil {
		var cached dto.AnalyticsResponse
		if err := s.cache.Get(ctx, analyticsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.repo.PlatformStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute platform stats")
	}
	stats.GeneratedAt = time.Now().UTC()

	skills, err := s.repo.TopSkills(ctx, topSkillsLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank skills")
	}

	resp := &dto.AnalyticsResponse{Stats: *stats, TopSkills: skills}
	if s.cache != nil {
		if err := s.cache.Set(ctx, analyticsCacheKey, resp, s.ttl); err != nil {
			s.logger.Warn("failed to cache analytics", zap.Error(err))
		}
	}
	return resp, nil
}
