package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civiclens/civiclens-api/internal/dto"
	"github.com/civiclens/civiclens-api/internal/models"
	"github.com/civiclens/civiclens-api/pkg/config"
	appErrors "github.com/civiclens/civiclens-api/pkg/errors"
)

type statsRepository interface {
	CountReports(ctx context.Context) (int, error)
	CountReportsByStatus(ctx context.Context, status models.ReportStatus) (int, error)
	CountReportsCreatedSince(ctx context.Context, cutoff time.Time) (int, error)
	CountReportsByReporter(ctx context.Context, reporterID string) (int, error)
	CountsByCategory(ctx context.Context) ([]dto.CategoryCount, error)
	ReportCountsByCategory(ctx context.Context) ([]dto.CategoryCount, error)
	CountsBySeverity(ctx context.Context) ([]dto.SeverityCount, error)
	RecentReports(ctx context.Context, limit int) ([]models.Report, error)
}

type reportSummarizer interface {
	Summaries(ctx context.Context, principal *models.Principal, reports []models.Report) ([]*dto.ReportView, error)
}

// StatsService computes report rollups. Every call recomputes from current
// rows; the 30-day dashboard rollup is additionally cached in Redis per user
// because its results are advisory.
type StatsService struct {
	stats    statsRepository
	reports  reportSummarizer
	cache    *redis.Client
	cacheCfg config.StatsConfig
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// StatsServiceParams collects StatsService dependencies.
type StatsServiceParams struct {
	Stats   statsRepository
	Reports reportSummarizer
	Cache   *redis.Client
	Config  config.StatsConfig
	Metrics *MetricsService
	Logger  *zap.Logger
	Now     func() time.Time
}

// NewStatsService constructs a StatsService.
func NewStatsService(params StatsServiceParams) *StatsService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &StatsService{
		stats:    params.Stats,
		reports:  params.Reports,
		cache:    params.Cache,
		cacheCfg: params.Config,
		metrics:  params.Metrics,
		logger:   params.Logger,
		now:      params.Now,
	}
}

// DashboardStats returns the headline rollup with the five newest reports.
func (s *StatsService) DashboardStats(ctx context.Context, principal *models.Principal) (*dto.DashboardStats, error) {
	total, err := s.stats.CountReports(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to count reports")
	}
	resolved, err := s.stats.CountReportsByStatus(ctx, models.StatusResolved)
	if err != nil {
		return nil, s.internal(err, "failed to count resolved reports")
	}
	pending, err := s.stats.CountReportsByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, s.internal(err, "failed to count pending reports")
	}
	recent, err := s.stats.RecentReports(ctx, 5)
	if err != nil {
		return nil, s.internal(err, "failed to load recent reports")
	}
	views, err := s.reports.Summaries(ctx, principal, recent)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardStats{
		TotalReports:    total,
		ResolvedReports: resolved,
		PendingReports:  pending,
		RecentReports:   views,
	}, nil
}

// DashboardStatistics returns the trailing 30-day rollup, including the
// caller's own report count. Cached per user when caching is enabled.
func (s *StatsService) DashboardStatistics(ctx context.Context, principal *models.Principal) (*dto.DashboardStatistics, error) {
	cacheKey := fmt.Sprintf("stats:dashboard:%s", principal.UserID)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	total, err := s.stats.CountReports(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to count reports")
	}
	recent, err := s.stats.CountReportsCreatedSince(ctx, s.now().AddDate(0, 0, -30))
	if err != nil {
		return nil, s.internal(err, "failed to count recent reports")
	}
	byCategory, err := s.stats.CountsByCategory(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to count reports by category")
	}
	bySeverity, err := s.stats.CountsBySeverity(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to count reports by severity")
	}
	mine, err := s.stats.CountReportsByReporter(ctx, principal.UserID)
	if err != nil {
		return nil, s.internal(err, "failed to count user reports")
	}

	result := &dto.DashboardStatistics{
		TotalReports:      total,
		RecentReports:     recent,
		ReportsByCategory: byCategory,
		ReportsBySeverity: bySeverity,
		UserReports:       mine,
	}
	s.toCache(ctx, cacheKey, result)
	return result, nil
}

// ReportStatistics returns the report rollup with a trailing 7-day count.
func (s *StatsService) ReportStatistics(ctx context.Context, principal *models.Principal) (*dto.ReportStatistics, error) {
	total, err := s.stats.CountReports(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to count reports")
	}
	pending, err := s.stats.CountReportsByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, s.internal(err, "failed to count pending reports")
	}
	resolved, err := s.stats.CountReportsByStatus(ctx, models.StatusResolved)
	if err != nil {
		return nil, s.internal(err, "failed to count resolved reports")
	}
	recent, err := s.stats.CountReportsCreatedSince(ctx, s.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, s.internal(err, "failed to count recent reports")
	}
	byCategory, err := s.stats.ReportCountsByCategory(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to count reports by category")
	}
	bySeverity, err := s.stats.CountsBySeverity(ctx)
	if err != nil {
		return nil, s.internal(err, "failed to count reports by severity")
	}
	return &dto.ReportStatistics{
		TotalReports:    total,
		PendingReports:  pending,
		ResolvedReports: resolved,
		RecentReports:   recent,
		ByCategory:      byCategory,
		BySeverity:      bySeverity,
	}, nil
}

func (s *StatsService) fromCache(ctx context.Context, key string) *dto.DashboardStatistics {
	if s.cache == nil || !s.cacheCfg.CacheEnabled {
		return nil
	}
	start := time.Now()
	raw, err := s.cache.Get(ctx, key).Bytes()
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	var stats dto.DashboardStatistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.logger.Warn("stats cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, key string, stats *dto.DashboardStatistics) {
	if s.cache == nil || !s.cacheCfg.CacheEnabled {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheCfg.CacheTTL).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *StatsService) internal(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
