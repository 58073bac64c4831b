package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civiclens/civiclens-api/internal/models"
	appErrors "github.com/civiclens/civiclens-api/pkg/errors"
)

type mockReportRepo struct {
	items      map[string]*models.Report
	upvotes    map[string]map[string]bool
	listResult []models.Report
	listTotal  int
	updates    int
	deleted    []string
	views      map[string]int
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{
		items:   make(map[string]*models.Report),
		upvotes: make(map[string]map[string]bool),
		views:   make(map[string]int),
	}
}

func (m *mockReportRepo) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockReportRepo) FindByID(ctx context.Context, id string) (*models.Report, error) {
	if report, ok := m.items[id]; ok {
		cp := *report
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportRepo) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = "generated"
	}
	report.CreatedAt = time.Now().UTC()
	report.UpdatedAt = report.CreatedAt
	cp := *report
	m.items[report.ID] = &cp
	return nil
}

func (m *mockReportRepo) Update(ctx context.Context, report *models.Report) error {
	m.updates++
	cp := *report
	m.items[report.ID] = &cp
	return nil
}

func (m *mockReportRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func (m *mockReportRepo) IncrementViews(ctx context.Context, id string) error {
	m.views[id]++
	return nil
}

func (m *mockReportRepo) ListUpvoters(ctx context.Context, reportID string) ([]string, error) {
	var voters []string
	for userID := range m.upvotes[reportID] {
		voters = append(voters, userID)
	}
	return voters, nil
}

func (m *mockReportRepo) HasUpvote(ctx context.Context, reportID, userID string) (bool, error) {
	return m.upvotes[reportID][userID], nil
}

func (m *mockReportRepo) AddUpvote(ctx context.Context, reportID, userID string) error {
	if m.upvotes[reportID] == nil {
		m.upvotes[reportID] = make(map[string]bool)
	}
	m.upvotes[reportID][userID] = true
	return nil
}

func (m *mockReportRepo) RemoveUpvote(ctx context.Context, reportID, userID string) error {
	delete(m.upvotes[reportID], userID)
	return nil
}

type mockMediaRepo struct {
	images []models.ReportImage
	videos []models.ReportVideo
}

func (m *mockMediaRepo) CreateImage(ctx context.Context, img *models.ReportImage) error {
	if img.ID == "" {
		img.ID = "img-generated"
	}
	m.images = append(m.images, *img)
	return nil
}

func (m *mockMediaRepo) SetPrimary(ctx context.Context, reportID, imageID string) error {
	for i := range m.images {
		if m.images[i].ReportID == reportID {
			m.images[i].IsPrimary = m.images[i].ID == imageID
		}
	}
	return nil
}

func (m *mockMediaRepo) ListImages(ctx context.Context, reportID string) ([]models.ReportImage, error) {
	var out []models.ReportImage
	for _, img := range m.images {
		if img.ReportID == reportID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *mockMediaRepo) CreateVideo(ctx context.Context, vid *models.ReportVideo) error {
	if vid.ID == "" {
		vid.ID = "vid-generated"
	}
	m.videos = append(m.videos, *vid)
	return nil
}

func (m *mockMediaRepo) ListVideos(ctx context.Context, reportID string) ([]models.ReportVideo, error) {
	var out []models.ReportVideo
	for _, vid := range m.videos {
		if vid.ReportID == reportID {
			out = append(out, vid)
		}
	}
	return out, nil
}

type mockUserReader struct {
	users map[string]models.User
}

func (m *mockUserReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		cp := user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserReader) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User)
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

type mockCategoryReader struct {
	categories map[string]models.Category
}

func (m *mockCategoryReader) FindByID(ctx context.Context, id string) (*models.Category, error) {
	if category, ok := m.categories[id]; ok {
		cp := category
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func newTestReportService(repo *mockReportRepo, now func() time.Time) *ReportService {
	return NewReportService(ReportServiceParams{
		Reports:    repo,
		Media:      &mockMediaRepo{},
		Users:      &mockUserReader{users: map[string]models.User{"u1": {ID: "u1", Username: "resident"}}},
		Categories: &mockCategoryReader{},
		Now:        now,
	})
}

func TestReportServiceCreate(t *testing.T) {
	repo := newMockReportRepo()
	svc := newTestReportService(repo, nil)
	principal := &models.Principal{UserID: "u1", Username: "resident"}

	view, err := svc.Create(context.Background(), principal, CreateReportRequest{
		Title:        "Broken streetlight",
		Description:  "Dark corner at night",
		LocationName: "5th and Main",
		Latitude:     "40.12345678",
		Longitude:    "-74.0059",
	}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, view.Status)
	assert.Equal(t, models.SeverityMedium, view.Severity)
	assert.Equal(t, 2, view.Priority)
	assert.Equal(t, 40.123457, view.Latitude)
	assert.Equal(t, -74.0059, view.Longitude)
	assert.Equal(t, "u1", repo.items["generated"].ReporterID)
}

func TestReportServiceCreateRejectsBadCoordinate(t *testing.T) {
	svc := newTestReportService(newMockReportRepo(), nil)

	_, err := svc.Create(context.Background(), &models.Principal{UserID: "u1"}, CreateReportRequest{
		Title:        "Pothole",
		Description:  "Deep one",
		LocationName: "Elm St",
		Latitude:     "not-a-number",
		Longitude:    "0",
	}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceUpdateStampsResolution(t *testing.T) {
	repo := newMockReportRepo()
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.items["r1"] = &models.Report{
		ID:         "r1",
		Title:      "Pothole",
		ReporterID: "u1",
		Status:     models.StatusInProgress,
		Severity:   models.SeverityHigh,
		Priority:   3,
		CreatedAt:  created,
	}
	resolvedAt := created.Add(3*24*time.Hour + 5*time.Hour)
	svc := newTestReportService(repo, func() time.Time { return resolvedAt })

	status := string(models.StatusResolved)
	view, err := svc.Update(context.Background(), &models.Principal{UserID: "u1"}, "r1", UpdateReportRequest{Status: &status})
	require.NoError(t, err)

	require.NotNil(t, view.ResolvedAt)
	assert.Equal(t, resolvedAt, *view.ResolvedAt)
	require.NotNil(t, view.ResolutionTimeDays)
	assert.Equal(t, 3, *view.ResolutionTimeDays)
}

func TestReportServiceResolutionStampIsPermanent(t *testing.T) {
	repo := newMockReportRepo()
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	firstResolved := created.Add(48 * time.Hour)
	days := 2
	repo.items["r1"] = &models.Report{
		ID:                 "r1",
		ReporterID:         "u1",
		Status:             models.StatusResolved,
		Severity:           models.SeverityLow,
		Priority:           1,
		CreatedAt:          created,
		ResolvedAt:         &firstResolved,
		ResolutionTimeDays: &days,
	}
	svc := newTestReportService(repo, func() time.Time { return created.Add(30 * 24 * time.Hour) })

	// Reopen, then resolve again much later. The original stamp must survive.
	reopen := string(models.StatusInProgress)
	_, err := svc.Update(context.Background(), &models.Principal{UserID: "u1"}, "r1", UpdateReportRequest{Status: &reopen})
	require.NoError(t, err)

	resolve := string(models.StatusResolved)
	view, err := svc.Update(context.Background(), &models.Principal{UserID: "u1"}, "r1", UpdateReportRequest{Status: &resolve})
	require.NoError(t, err)

	require.NotNil(t, view.ResolvedAt)
	assert.Equal(t, firstResolved, *view.ResolvedAt)
	require.NotNil(t, view.ResolutionTimeDays)
	assert.Equal(t, 2, *view.ResolutionTimeDays)
}

func TestReportServiceUpdateRejectsNonOwner(t *testing.T) {
	repo := newMockReportRepo()
	repo.items["r1"] = &models.Report{ID: "r1", ReporterID: "u1", Status: models.StatusPending, Severity: models.SeverityLow, Priority: 1}
	svc := newTestReportService(repo, nil)

	title := "Hijacked"
	_, err := svc.Update(context.Background(), &models.Principal{UserID: "intruder"}, "r1", UpdateReportRequest{Title: &title})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.updates)
}

func TestReportServiceUpdateAllowsStaff(t *testing.T) {
	repo := newMockReportRepo()
	repo.items["r1"] = &models.Report{ID: "r1", ReporterID: "u1", Status: models.StatusPending, Severity: models.SeverityLow, Priority: 1}
	svc := newTestReportService(repo, nil)

	status := string(models.StatusInvestigating)
	view, err := svc.Update(context.Background(), &models.Principal{UserID: "staff1", IsStaff: true}, "r1", UpdateReportRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvestigating, view.Status)
}

func TestReportServiceToggleUpvoteInvolution(t *testing.T) {
	repo := newMockReportRepo()
	repo.items["r1"] = &models.Report{ID: "r1", ReporterID: "u1", Status: models.StatusPending, Severity: models.SeverityLow, Priority: 1}
	svc := newTestReportService(repo, nil)
	principal := &models.Principal{UserID: "u2"}

	view, err := svc.ToggleUpvote(context.Background(), principal, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.UpvoteCount)
	assert.True(t, view.HasUpvoted)

	view, err = svc.ToggleUpvote(context.Background(), principal, "r1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.UpvoteCount)
	assert.False(t, view.HasUpvoted)
}

func TestReportServiceGetBumpsViews(t *testing.T) {
	repo := newMockReportRepo()
	repo.items["r1"] = &models.Report{ID: "r1", ReporterID: "u1", Status: models.StatusPending, Severity: models.SeverityLow, Priority: 1}
	svc := newTestReportService(repo, nil)

	view, err := svc.Get(context.Background(), &models.Principal{UserID: "u1"}, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.ViewsCount)
	assert.Equal(t, 1, repo.views["r1"])
}

func TestReportServiceExportRequiresStaff(t *testing.T) {
	svc := newTestReportService(newMockReportRepo(), nil)

	_, _, err := svc.Export(context.Background(), &models.Principal{UserID: "u1"}, "csv", models.ReportFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportServiceExportCSV(t *testing.T) {
	repo := newMockReportRepo()
	repo.listResult = []models.Report{{
		ID:           "r1",
		Title:        "Pothole",
		Status:       models.StatusPending,
		Severity:     models.SeverityHigh,
		Priority:     3,
		LocationName: "Elm St",
		CreatedAt:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}}
	repo.listTotal = 1
	svc := newTestReportService(repo, nil)

	data, contentType, err := svc.Export(context.Background(), &models.Principal{UserID: "staff1", IsStaff: true}, "csv", models.ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(data), "Pothole")
}

func TestReportServiceDeleteRejectsNonOwner(t *testing.T) {
	repo := newMockReportRepo()
	repo.items["r1"] = &models.Report{ID: "r1", ReporterID: "u1", Status: models.StatusPending, Severity: models.SeverityLow, Priority: 1}
	svc := newTestReportService(repo, nil)

	err := svc.Delete(context.Background(), &models.Principal{UserID: "intruder"}, "r1")
	require.Error(t, err)
	assert.Empty(t, repo.deleted)
}
