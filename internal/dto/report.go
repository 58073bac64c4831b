package dto

import (
	"time"

	"github.com/civiclens/civiclens-api/internal/models"
)

// CategoryView projects a category.
type CategoryView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCategoryView projects a category entity.
func NewCategoryView(c *models.Category) *CategoryView {
	if c == nil {
		return nil
	}
	return &CategoryView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
	}
}

// ReportImageView projects an attached image.
type ReportImageView struct {
	ID         string    `json:"id"`
	FileRef    string    `json:"image"`
	Caption    string    `json:"caption"`
	UploadedAt time.Time `json:"uploaded_at"`
	IsPrimary  bool      `json:"is_primary"`
	Size       *int64    `json:"size,omitempty"`
}

// NewReportImageView projects an image entity.
func NewReportImageView(img *models.ReportImage) *ReportImageView {
	return &ReportImageView{
		ID:         img.ID,
		FileRef:    img.FileRef,
		Caption:    img.Caption,
		UploadedAt: img.UploadedAt,
		IsPrimary:  img.IsPrimary,
		Size:       img.Size,
	}
}

// ReportVideoView projects an attached video.
type ReportVideoView struct {
	ID         string    `json:"id"`
	FileRef    string    `json:"video"`
	Caption    string    `json:"caption"`
	UploadedAt time.Time `json:"uploaded_at"`
	Size       *int64    `json:"size,omitempty"`
	Duration   *int      `json:"duration,omitempty"`
}

// NewReportVideoView projects a video entity.
func NewReportVideoView(vid *models.ReportVideo) *ReportVideoView {
	return &ReportVideoView{
		ID:         vid.ID,
		FileRef:    vid.FileRef,
		Caption:    vid.Caption,
		UploadedAt: vid.UploadedAt,
		Size:       vid.Size,
		Duration:   vid.Duration,
	}
}

// ReportView is the full projection of a report with nested relations.
type ReportView struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	LocationName       string                `json:"location_name"`
	Latitude           float64               `json:"latitude"`
	Longitude          float64               `json:"longitude"`
	Category           *CategoryView         `json:"category"`
	Reporter           *UserView             `json:"reporter"`
	Status             models.ReportStatus   `json:"status"`
	Severity           models.ReportSeverity `json:"severity"`
	Priority           int                   `json:"priority"`
	Verified           bool                  `json:"verified"`
	IsPublic           bool                  `json:"is_public"`
	ViewsCount         int                   `json:"views_count"`
	UpvoteCount        int                   `json:"upvote_count"`
	HasUpvoted         bool                  `json:"has_upvoted"`
	ResolvedAt         *time.Time            `json:"resolved_at,omitempty"`
	ResolutionTimeDays *int                  `json:"resolution_time_days,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
	Images             []*ReportImageView    `json:"images"`
	Videos             []*ReportVideoView    `json:"videos"`
	Comments           []*CommentView        `json:"comments,omitempty"`
}

// ReportViewInput bundles the pieces needed to project one report.
type ReportViewInput struct {
	Report   *models.Report
	Reporter *models.User
	Category *models.Category
	Images   []models.ReportImage
	Videos   []models.ReportVideo
	Upvoters []string
	Comments []*CommentView
}

// NewReportView builds the projection for the given principal.
func NewReportView(in ReportViewInput, principal *models.Principal) *ReportView {
	r := in.Report
	view := &ReportView{
		ID:                 r.ID,
		Title:              r.Title,
		Description:        r.Description,
		LocationName:       r.LocationName,
		Latitude:           r.Latitude,
		Longitude:          r.Longitude,
		Category:           NewCategoryView(in.Category),
		Reporter:           NewUserView(in.Reporter),
		Status:             r.Status,
		Severity:           r.Severity,
		Priority:           r.Priority,
		Verified:           r.Verified,
		IsPublic:           r.IsPublic,
		ViewsCount:         r.ViewsCount,
		UpvoteCount:        len(in.Upvoters),
		ResolvedAt:         r.ResolvedAt,
		ResolutionTimeDays: r.ResolutionTimeDays,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Images:             make([]*ReportImageView, 0, len(in.Images)),
		Videos:             make([]*ReportVideoView, 0, len(in.Videos)),
		Comments:           in.Comments,
	}
	for i := range in.Images {
		view.Images = append(view.Images, NewReportImageView(&in.Images[i]))
	}
	for i := range in.Videos {
		view.Videos = append(view.Videos, NewReportVideoView(&in.Videos[i]))
	}
	if principal != nil {
		for _, voter := range in.Upvoters {
			if voter == principal.UserID {
				view.HasUpvoted = true
				break
			}
		}
	}
	return view
}
