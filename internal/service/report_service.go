package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civiclens/civiclens-api/internal/dto"
	"github.com/civiclens/civiclens-api/internal/models"
	appErrors "github.com/civiclens/civiclens-api/pkg/errors"
	"github.com/civiclens/civiclens-api/pkg/export"
	"github.com/civiclens/civiclens-api/pkg/storage"
)

type reportRepository interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.Report, int, error)
	FindByID(ctx context.Context, id string) (*models.Report, error)
	Create(ctx context.Context, report *models.Report) error
	Update(ctx context.Context, report *models.Report) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	ListUpvoters(ctx context.Context, reportID string) ([]string, error)
	HasUpvote(ctx context.Context, reportID, userID string) (bool, error)
	AddUpvote(ctx context.Context, reportID, userID string) error
	RemoveUpvote(ctx context.Context, reportID, userID string) error
}

type mediaRepository interface {
	CreateImage(ctx context.Context, img *models.ReportImage) error
	SetPrimary(ctx context.Context, reportID, imageID string) error
	ListImages(ctx context.Context, reportID string) ([]models.ReportImage, error)
	CreateVideo(ctx context.Context, vid *models.ReportVideo) error
	ListVideos(ctx context.Context, reportID string) ([]models.ReportVideo, error)
}

type reportUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}

type reportCategoryReader interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

type commentTreeBuilder interface {
	TreeByReport(ctx context.Context, principal *models.Principal, reportID string) ([]*dto.CommentView, error)
}

type reportNotifier interface {
	ReportStatusChanged(ctx context.Context, report *models.Report, previous models.ReportStatus)
}

// FileUpload carries an uploaded media file into the service layer.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// CreateReportRequest is the payload for filing a new report. Latitude and
// longitude arrive as strings so fixed-point validation happens here rather
// than in JSON number parsing.
type CreateReportRequest struct {
	Title         string   `json:"title" form:"title" validate:"required,max=200"`
	Description   string   `json:"description" form:"description" validate:"required"`
	LocationName  string   `json:"location_name" form:"location_name" validate:"required,max=200"`
	Latitude      string   `json:"latitude" form:"latitude" validate:"required"`
	Longitude     string   `json:"longitude" form:"longitude" validate:"required"`
	CategoryID    *string  `json:"category_id" form:"category_id"`
	Severity      string   `json:"severity" form:"severity"`
	Priority      int      `json:"priority" form:"priority"`
	IsPublic      *bool    `json:"is_public" form:"is_public"`
	EstimatedCost *float64 `json:"estimated_cost" form:"estimated_cost"`
}

// UpdateReportRequest carries a partial report mutation. Nil fields are left
// untouched.
type UpdateReportRequest struct {
	Title             *string  `json:"title" validate:"omitempty,max=200"`
	Description       *string  `json:"description"`
	LocationName      *string  `json:"location_name" validate:"omitempty,max=200"`
	Latitude          *string  `json:"latitude"`
	Longitude         *string  `json:"longitude"`
	CategoryID        *string  `json:"category_id"`
	AssignedToID      *string  `json:"assigned_to_id"`
	Status            *string  `json:"status"`
	Severity          *string  `json:"severity"`
	Priority          *int     `json:"priority"`
	Verified          *bool    `json:"verified"`
	VerificationNotes *string  `json:"verification_notes"`
	IsPublic          *bool    `json:"is_public"`
	EstimatedCost     *float64 `json:"estimated_cost"`
}

// AddImageRequest attaches an image to an existing report.
type AddImageRequest struct {
	Caption   string
	IsPrimary bool
	Upload    *FileUpload
}

// AddVideoRequest attaches a video to an existing report.
type AddVideoRequest struct {
	Caption  string
	Duration *int
	Upload   *FileUpload
}

// ReportService owns report creation, lifecycle transitions, media
// attachment and the resolution-stamp invariant.
type ReportService struct {
	reports    reportRepository
	media      mediaRepository
	users      reportUserReader
	categories reportCategoryReader
	comments   commentTreeBuilder
	notifier   reportNotifier
	blobs      storage.BlobStore
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// ReportServiceParams groups constructor dependencies.
type ReportServiceParams struct {
	Reports    reportRepository
	Media      mediaRepository
	Users      reportUserReader
	Categories reportCategoryReader
	Comments   commentTreeBuilder
	Notifier   reportNotifier
	Blobs      storage.BlobStore
	Validator  *validator.Validate
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(params ReportServiceParams) *ReportService {
	if params.Validator == nil {
		params.Validator = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &ReportService{
		reports:    params.Reports,
		media:      params.Media,
		users:      params.Users,
		categories: params.Categories,
		comments:   params.Comments,
		notifier:   params.Notifier,
		blobs:      params.Blobs,
		validator:  params.Validator,
		logger:     params.Logger,
		now:        params.Now,
	}
}

// Create files a new report for the principal, attaching optional media. The
// supplied image becomes the report's primary image.
func (s *ReportService) Create(ctx context.Context, principal *models.Principal, req CreateReportRequest, image, video *FileUpload) (*dto.ReportView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	lat, err := parseCoordinate(req.Latitude)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "latitude must be a decimal with at most 6 fractional digits")
	}
	lng, err := parseCoordinate(req.Longitude)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "longitude must be a decimal with at most 6 fractional digits")
	}

	severity := models.SeverityMedium
	if req.Severity != "" {
		severity = models.ReportSeverity(req.Severity)
		if !severity.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid severity")
		}
	}
	priority := req.Priority
	if priority == 0 {
		priority = 2
	}
	if priority < 1 || priority > 5 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "priority must be between 1 and 5")
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "category not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
		}
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	report := &models.Report{
		Title:         req.Title,
		Description:   req.Description,
		LocationName:  req.LocationName,
		Latitude:      lat,
		Longitude:     lng,
		CategoryID:    normalizeID(req.CategoryID),
		ReporterID:    principal.UserID,
		Status:        models.StatusPending,
		Severity:      severity,
		Priority:      priority,
		IsPublic:      isPublic,
		EstimatedCost: req.EstimatedCost,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report")
	}

	if image != nil {
		if err := s.attachImage(ctx, report.ID, image, "", true); err != nil {
			return nil, err
		}
	}
	if video != nil {
		if err := s.attachVideo(ctx, report.ID, video, "", nil); err != nil {
			return nil, err
		}
	}

	s.logger.Info("report created",
		zap.String("report_id", report.ID),
		zap.String("reporter_id", principal.UserID),
		zap.String("severity", string(report.Severity)),
	)
	return s.buildView(ctx, principal, report, false)
}

// Get returns the full report view and bumps the view counter.
func (s *ReportService) Get(ctx context.Context, principal *models.Principal, id string) (*dto.ReportView, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reports.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("failed to increment report views", zap.String("report_id", id), zap.Error(err))
	} else {
		report.ViewsCount++
	}
	return s.buildView(ctx, principal, report, true)
}

// List returns a page of report views.
func (s *ReportService) List(ctx context.Context, principal *models.Principal, filter models.ReportFilter) ([]*dto.ReportView, *models.Pagination, error) {
	reports, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}

	reporterIDs := make([]string, 0, len(reports))
	for _, rep := range reports {
		reporterIDs = append(reporterIDs, rep.ReporterID)
	}
	reporters, err := s.users.FindByIDs(ctx, reporterIDs)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reporters")
	}

	views := make([]*dto.ReportView, 0, len(reports))
	for i := range reports {
		rep := reports[i]
		var reporter *models.User
		if u, ok := reporters[rep.ReporterID]; ok {
			reporter = &u
		}
		category, err := s.loadCategory(ctx, rep.CategoryID)
		if err != nil {
			return nil, nil, err
		}
		images, err := s.media.ListImages(ctx, rep.ID)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report images")
		}
		views = append(views, dto.NewReportView(dto.ReportViewInput{
			Report:   &rep,
			Reporter: reporter,
			Category: category,
			Images:   images,
		}, principal))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return views, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update applies a partial mutation. Only the reporter or staff may mutate.
// The first transition into resolved stamps resolved_at and
// resolution_time_days; neither field is ever cleared or recomputed.
func (s *ReportService) Update(ctx context.Context, principal *models.Principal, id string, req UpdateReportRequest) (*dto.ReportView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.ReporterID != principal.UserID && !principal.IsStaff {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the reporter or staff may modify this report")
	}

	previousStatus := report.Status

	if req.Title != nil {
		report.Title = *req.Title
	}
	if req.Description != nil {
		report.Description = *req.Description
	}
	if req.LocationName != nil {
		report.LocationName = *req.LocationName
	}
	if req.Latitude != nil {
		lat, err := parseCoordinate(*req.Latitude)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "latitude must be a decimal with at most 6 fractional digits")
		}
		report.Latitude = lat
	}
	if req.Longitude != nil {
		lng, err := parseCoordinate(*req.Longitude)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "longitude must be a decimal with at most 6 fractional digits")
		}
		report.Longitude = lng
	}
	if req.CategoryID != nil {
		report.CategoryID = normalizeID(req.CategoryID)
	}
	if req.AssignedToID != nil {
		report.AssignedToID = normalizeID(req.AssignedToID)
	}
	if req.Severity != nil {
		severity := models.ReportSeverity(*req.Severity)
		if !severity.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid severity")
		}
		report.Severity = severity
	}
	if req.Priority != nil {
		if *req.Priority < 1 || *req.Priority > 5 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "priority must be between 1 and 5")
		}
		report.Priority = *req.Priority
	}
	if req.Verified != nil {
		report.Verified = *req.Verified
	}
	if req.VerificationNotes != nil {
		report.VerificationNotes = *req.VerificationNotes
	}
	if req.IsPublic != nil {
		report.IsPublic = *req.IsPublic
	}
	if req.EstimatedCost != nil {
		report.EstimatedCost = req.EstimatedCost
	}
	if req.Status != nil {
		status := models.ReportStatus(*req.Status)
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid status")
		}
		report.Status = status
		if status == models.StatusResolved && report.ResolvedAt == nil {
			resolvedAt := s.now()
			days := int(math.Floor(resolvedAt.Sub(report.CreatedAt).Hours() / 24))
			report.ResolvedAt = &resolvedAt
			report.ResolutionTimeDays = &days
		}
	}

	if err := s.reports.Update(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report")
	}

	if report.Status != previousStatus && s.notifier != nil {
		s.notifier.ReportStatusChanged(ctx, report, previousStatus)
	}
	return s.buildView(ctx, principal, report, false)
}

// Delete removes a report and its dependents. Only the reporter or staff may
// delete. Blob removal is best effort once the row cascade committed.
func (s *ReportService) Delete(ctx context.Context, principal *models.Principal, id string) error {
	report, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if report.ReporterID != principal.UserID && !principal.IsStaff {
		return appErrors.Clone(appErrors.ErrForbidden, "only the reporter or staff may delete this report")
	}

	images, err := s.media.ListImages(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report images")
	}
	videos, err := s.media.ListVideos(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report videos")
	}

	if err := s.reports.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete report")
	}

	if s.blobs != nil {
		for _, img := range images {
			if err := s.blobs.Delete(ctx, img.FileRef); err != nil {
				s.logger.Warn("failed to delete image blob", zap.String("file_ref", img.FileRef), zap.Error(err))
			}
		}
		for _, vid := range videos {
			if err := s.blobs.Delete(ctx, vid.FileRef); err != nil {
				s.logger.Warn("failed to delete video blob", zap.String("file_ref", vid.FileRef), zap.Error(err))
			}
		}
	}

	s.logger.Info("report deleted", zap.String("report_id", id), zap.String("actor_id", principal.UserID))
	return nil
}

// AddImage attaches an image to a report. Any authenticated user may attach
// media; ownership is not checked, matching upstream behavior.
func (s *ReportService) AddImage(ctx context.Context, principal *models.Principal, reportID string, req AddImageRequest) (*dto.ReportImageView, error) {
	if req.Upload == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image file is required")
	}
	if _, err := s.load(ctx, reportID); err != nil {
		return nil, err
	}
	img, err := s.storeImage(ctx, reportID, req.Upload, req.Caption, req.IsPrimary)
	if err != nil {
		return nil, err
	}
	return dto.NewReportImageView(img), nil
}

// AddVideo attaches a video to a report. Same open permission model as
// AddImage.
func (s *ReportService) AddVideo(ctx context.Context, principal *models.Principal, reportID string, req AddVideoRequest) (*dto.ReportVideoView, error) {
	if req.Upload == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "video file is required")
	}
	if _, err := s.load(ctx, reportID); err != nil {
		return nil, err
	}
	vid, err := s.storeVideo(ctx, reportID, req.Upload, req.Caption, req.Duration)
	if err != nil {
		return nil, err
	}
	return dto.NewReportVideoView(vid), nil
}

// ToggleUpvote flips the principal's upvote membership on a report.
func (s *ReportService) ToggleUpvote(ctx context.Context, principal *models.Principal, reportID string) (*dto.ReportView, error) {
	report, err := s.load(ctx, reportID)
	if err != nil {
		return nil, err
	}
	voted, err := s.reports.HasUpvote(ctx, reportID, principal.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check upvote")
	}
	if voted {
		err = s.reports.RemoveUpvote(ctx, reportID, principal.UserID)
	} else {
		err = s.reports.AddUpvote(ctx, reportID, principal.UserID)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle upvote")
	}
	return s.buildView(ctx, principal, report, false)
}

// Export renders the current reports as a CSV or PDF table. Staff only.
func (s *ReportService) Export(ctx context.Context, principal *models.Principal, format string, filter models.ReportFilter) ([]byte, string, error) {
	if !principal.IsStaff {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "only staff may export reports")
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 100
	}
	reports, _, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Title", "Status", "Severity", "Priority", "Location", "Created At", "Resolved In (days)"},
	}
	for _, rep := range reports {
		resolvedIn := ""
		if rep.ResolutionTimeDays != nil {
			resolvedIn = strconv.Itoa(*rep.ResolutionTimeDays)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":                 rep.ID,
			"Title":              rep.Title,
			"Status":             string(rep.Status),
			"Severity":           string(rep.Severity),
			"Priority":           strconv.Itoa(rep.Priority),
			"Location":           rep.LocationName,
			"Created At":         rep.CreatedAt.Format(time.RFC3339),
			"Resolved In (days)": resolvedIn,
		})
	}

	switch format {
	case "csv", "":
		data, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	case "pdf":
		data, err := export.NewPDFExporter().Render(dataset, "Civic Reports")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// Summaries projects reports without their comment threads, for rollups.
func (s *ReportService) Summaries(ctx context.Context, principal *models.Principal, reports []models.Report) ([]*dto.ReportView, error) {
	views := make([]*dto.ReportView, 0, len(reports))
	for i := range reports {
		view, err := s.buildView(ctx, principal, &reports[i], false)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ReportService) load(ctx context.Context, id string) (*models.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	return report, nil
}

func (s *ReportService) loadCategory(ctx context.Context, id *string) (*models.Category, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	category, err := s.categories.FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	return category, nil
}

func (s *ReportService) buildView(ctx context.Context, principal *models.Principal, report *models.Report, withComments bool) (*dto.ReportView, error) {
	reporter, err := s.users.FindByID(ctx, report.ReporterID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reporter")
	}
	category, err := s.loadCategory(ctx, report.CategoryID)
	if err != nil {
		return nil, err
	}
	images, err := s.media.ListImages(ctx, report.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report images")
	}
	videos, err := s.media.ListVideos(ctx, report.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report videos")
	}
	upvoters, err := s.reports.ListUpvoters(ctx, report.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report upvotes")
	}

	input := dto.ReportViewInput{
		Report:   report,
		Reporter: reporter,
		Category: category,
		Images:   images,
		Videos:   videos,
		Upvoters: upvoters,
	}
	if withComments && s.comments != nil {
		tree, err := s.comments.TreeByReport(ctx, principal, report.ID)
		if err != nil {
			return nil, err
		}
		input.Comments = tree
	}
	return dto.NewReportView(input, principal), nil
}

func (s *ReportService) attachImage(ctx context.Context, reportID string, upload *FileUpload, caption string, isPrimary bool) error {
	_, err := s.storeImage(ctx, reportID, upload, caption, isPrimary)
	return err
}

func (s *ReportService) storeImage(ctx context.Context, reportID string, upload *FileUpload, caption string, isPrimary bool) (*models.ReportImage, error) {
	key := mediaKey("images", reportID, upload.Filename)
	ref, err := s.blobs.Store(ctx, key, upload.ContentType, upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image")
	}
	img := &models.ReportImage{
		ReportID:  reportID,
		FileRef:   ref,
		Caption:   caption,
		IsPrimary: isPrimary,
	}
	if upload.Size > 0 {
		img.Size = &upload.Size
	}
	if err := s.media.CreateImage(ctx, img); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save image")
	}
	return img, nil
}

func (s *ReportService) attachVideo(ctx context.Context, reportID string, upload *FileUpload, caption string, duration *int) error {
	_, err := s.storeVideo(ctx, reportID, upload, caption, duration)
	return err
}

func (s *ReportService) storeVideo(ctx context.Context, reportID string, upload *FileUpload, caption string, duration *int) (*models.ReportVideo, error) {
	key := mediaKey("videos", reportID, upload.Filename)
	ref, err := s.blobs.Store(ctx, key, upload.ContentType, upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store video")
	}
	vid := &models.ReportVideo{
		ReportID: reportID,
		FileRef:  ref,
		Caption:  caption,
		Duration: duration,
	}
	if upload.Size > 0 {
		vid.Size = &upload.Size
	}
	if err := s.media.CreateVideo(ctx, vid); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save video")
	}
	return vid, nil
}

func mediaKey(kind, reportID, filename string) string {
	ext := filepath.Ext(filename)
	return fmt.Sprintf("reports/%s/%s/%s%s", reportID, kind, uuid.NewString(), ext)
}

// parseCoordinate accepts a decimal string and normalises it to 6 fractional
// digits, matching the upstream fixed-point columns.
func parseCoordinate(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return math.Round(v*1e6) / 1e6, nil
}

func normalizeID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
