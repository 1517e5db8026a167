package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
)

const dashboardStatsKey = "dashboard:stats"

// newApplicantWindow is how far back registrations count as "new" on the
// dashboard.
const newApplicantWindow = 7 * 24 * time.Hour

type dashboardApplicantRepository interface {
	CountByStatus(ctx context.Context) (map[models.ApplicantStatus]int, error)
	CountCreatedSince(ctx context.Context, cutoff time.Time) (int, error)
}

type dashboardEvaluationRepository interface {
	CountFinalizedSince(ctx context.Context, cutoff time.Time) (int, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type cacheLookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// DashboardService aggregates applicant pipeline counts for the admin
// landing page, with a short Redis cache in front of the GROUP BY.
type DashboardService struct {
	applicants  dashboardApplicantRepository
	evaluations dashboardEvaluationRepository
	cache       statsCache
	metrics     cacheLookupRecorder
	ttl         time.Duration
	logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(applicants dashboardApplicantRepository, evaluations dashboardEvaluationRepository, cache statsCache, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{applicants: applicants, evaluations: evaluations, cache: cache, ttl: ttl, logger: logger}
}

// AttachMetrics records cache hit rates once the metrics service exists.
func (s *DashboardService) AttachMetrics(metrics cacheLookupRecorder) {
	s.metrics = metrics
}

// Stats returns pipeline counts, serving from cache when fresh.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	if s.cache != nil {
		var cached dto.DashboardStats
		err := s.cache.Get(ctx, dashboardStatsKey, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheLookup(true)
			}
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheLookup(false)
		}
	}

	counts, err := s.applicants.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applicants")
	}
	cutoff := time.Now().UTC().Add(-newApplicantWindow)
	newCount, err := s.applicants.CountCreatedSince(ctx, cutoff)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count new applicants")
	}
	finalized, err := s.evaluations.CountFinalizedSince(ctx, cutoff)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count finalized evaluations")
	}

	total := 0
	for _, count := range counts {
		total += count
	}

	stats := &dto.DashboardStats{
		TotalApplicants: total,
		NewApplicants:   newCount,
		RecentFinalized: finalized,
		PendingReview:   counts[models.StatusPendingReview],
		UnderAssessment: counts[models.StatusUnderAssessment],
		EvaluatedPassed: counts[models.StatusEvaluatedPassed],
		EvaluatedFailed: counts[models.StatusEvaluatedFailed],
		Rejected:        counts[models.StatusRejected],
		Approved:        counts[models.StatusApproved],
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardStatsKey, stats, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}
