package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/civiclens-api/internal/dto"
	"github.com/civiclens/civiclens-api/internal/models"
)

type mockStatsRepo struct {
	total          int
	byStatus       map[models.ReportStatus]int
	sinceCount     int
	sinceCutoffs   []time.Time
	reporterCounts map[string]int
	byCategory     []dto.CategoryCount
	bySeverity     []dto.SeverityCount
	recent         []models.Report
}

func (m *mockStatsRepo) CountReports(ctx context.Context) (int, error) {
	return m.total, nil
}

func (m *mockStatsRepo) CountReportsByStatus(ctx context.Context, status models.ReportStatus) (int, error) {
	return m.byStatus[status], nil
}

func (m *mockStatsRepo) CountReportsCreatedSince(ctx context.Context, cutoff time.Time) (int, error) {
	m.sinceCutoffs = append(m.sinceCutoffs, cutoff)
	return m.sinceCount, nil
}

func (m *mockStatsRepo) CountReportsByReporter(ctx context.Context, reporterID string) (int, error) {
	return m.reporterCounts[reporterID], nil
}

func (m *mockStatsRepo) CountsByCategory(ctx context.Context) ([]dto.CategoryCount, error) {
	return m.byCategory, nil
}

func (m *mockStatsRepo) ReportCountsByCategory(ctx context.Context) ([]dto.CategoryCount, error) {
	return m.byCategory, nil
}

func (m *mockStatsRepo) CountsBySeverity(ctx context.Context) ([]dto.SeverityCount, error) {
	return m.bySeverity, nil
}

func (m *mockStatsRepo) RecentReports(ctx context.Context, limit int) ([]models.Report, error) {
	if len(m.recent) > limit {
		return m.recent[:limit], nil
	}
	return m.recent, nil
}

type mockSummarizer struct{}

func (m *mockSummarizer) Summaries(ctx context.Context, principal *models.Principal, reports []models.Report) ([]*dto.ReportView, error) {
	views := make([]*dto.ReportView, 0, len(reports))
	for i := range reports {
		views = append(views, &dto.ReportView{ID: reports[i].ID, Title: reports[i].Title})
	}
	return views, nil
}

func TestStatsServiceDashboardStats(t *testing.T) {
	repo := &mockStatsRepo{
		total: 10,
		byStatus: map[models.ReportStatus]int{
			models.StatusResolved: 4,
			models.StatusPending:  3,
		},
		recent: []models.Report{{ID: "r1", Title: "newest"}, {ID: "r2", Title: "older"}},
	}
	svc := NewStatsService(StatsServiceParams{Stats: repo, Reports: &mockSummarizer{}})

	stats, err := svc.DashboardStats(context.Background(), &models.Principal{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalReports)
	assert.Equal(t, 4, stats.ResolvedReports)
	assert.Equal(t, 3, stats.PendingReports)
	require.Len(t, stats.RecentReports, 2)
	assert.Equal(t, "r1", stats.RecentReports[0].ID)
}

func TestStatsServiceDashboardStatisticsWindow(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	repo := &mockStatsRepo{
		total:          20,
		sinceCount:     7,
		reporterCounts: map[string]int{"u1": 5},
		byCategory:     []dto.CategoryCount{{Name: "Roads", Count: 12}, {Name: "Parks", Count: 0}},
		bySeverity:     []dto.SeverityCount{{Severity: "high", Count: 4}},
	}
	svc := NewStatsService(StatsServiceParams{
		Stats:   repo,
		Reports: &mockSummarizer{},
		Now:     func() time.Time { return now },
	})

	stats, err := svc.DashboardStatistics(context.Background(), &models.Principal{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 20, stats.TotalReports)
	assert.Equal(t, 7, stats.RecentReports)
	assert.Equal(t, 5, stats.UserReports)
	assert.Len(t, stats.ReportsByCategory, 2)

	require.Len(t, repo.sinceCutoffs, 1)
	assert.Equal(t, now.AddDate(0, 0, -30), repo.sinceCutoffs[0])
}

func TestStatsServiceReportStatisticsWindow(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	repo := &mockStatsRepo{
		total: 15,
		byStatus: map[models.ReportStatus]int{
			models.StatusPending:  6,
			models.StatusResolved: 5,
		},
		sinceCount: 2,
		byCategory: []dto.CategoryCount{{Name: "", Count: 3}},
		bySeverity: []dto.SeverityCount{{Severity: "low", Count: 9}},
	}
	svc := NewStatsService(StatsServiceParams{
		Stats:   repo,
		Reports: &mockSummarizer{},
		Now:     func() time.Time { return now },
	})

	stats, err := svc.ReportStatistics(context.Background(), &models.Principal{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 15, stats.TotalReports)
	assert.Equal(t, 6, stats.PendingReports)
	assert.Equal(t, 5, stats.ResolvedReports)
	assert.Equal(t, 2, stats.RecentReports)

	require.Len(t, repo.sinceCutoffs, 1)
	assert.Equal(t, now.AddDate(0, 0, -7), repo.sinceCutoffs[0])
}
