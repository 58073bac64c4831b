package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civiclens/civiclens-api/internal/models"
	"github.com/civiclens/civiclens-api/internal/service"
	appErrors "github.com/civiclens/civiclens-api/pkg/errors"
	"github.com/civiclens/civiclens-api/pkg/response"
)

// ReportHandler wires HTTP endpoints to the report service.
type ReportHandler struct {
	service *service.ReportService
	stats   *service.StatsService
	metrics *service.MetricsService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService, stats *service.StatsService, metrics *service.MetricsService) *ReportHandler {
	return &ReportHandler{service: svc, stats: stats, metrics: metrics}
}

// List godoc
// @Summary List reports
// @Description List reports with filtering, search and pagination
// @Tags Reports
// @Produce json
// @Param search query string false "Search in title, description and location"
// @Param status query string false "Filter by status"
// @Param severity query string false "Filter by severity"
// @Param category query string false "Filter by category id"
// @Param reporter query string false "Filter by reporter id"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param sort_by query string false "Sort column"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	filter := reportFilterFromQuery(c)
	views, pagination, err := h.service.List(c.Request.Context(), principalFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, pagination)
}

// Create godoc
// @Summary File a report
// @Description Create a report, optionally attaching an image and a video
// @Tags Reports
// @Accept mpfd
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	principal := principalFromContext(c)

	var req service.CreateReportRequest
	var image, video *service.FileUpload

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
			return
		}
		if header, err := c.FormFile("image"); err == nil {
			upload, closeFn, err := fileUploadFromHeader(header)
			if err != nil {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable image upload"))
				return
			}
			defer closeFn()
			image = upload
		}
		if header, err := c.FormFile("video"); err == nil {
			upload, closeFn, err := fileUploadFromHeader(header)
			if err != nil {
				response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable video upload"))
				return
			}
			defer closeFn()
			video = upload
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	view, err := h.service.Create(c.Request.Context(), principal, req, image, video)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ReportCreated()
	response.Created(c, view)
}

// Get godoc
// @Summary Get a report
// @Description Fetch a report with media and comment thread
// @Tags Reports
// @Produce json
// @Param id path string true "Report id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Update godoc
// @Summary Update a report
// @Description Partially update a report; reporter or staff only
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [patch]
func (h *ReportHandler) Update(c *gin.Context) {
	var req service.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	view, err := h.service.Update(c.Request.Context(), principalFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Delete godoc
// @Summary Delete a report
// @Description Delete a report and its media; reporter or staff only
// @Tags Reports
// @Param id path string true "Report id"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), principalFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddImage godoc
// @Summary Attach an image
// @Description Attach an image to an existing report
// @Tags Reports
// @Accept mpfd
// @Produce json
// @Param id path string true "Report id"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/{id}/add_image [post]
func (h *ReportHandler) AddImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image file is required"))
		return
	}
	upload, closeFn, err := fileUploadFromHeader(header)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable image upload"))
		return
	}
	defer closeFn()

	req := service.AddImageRequest{
		Caption:   c.PostForm("caption"),
		IsPrimary: c.PostForm("is_primary") == "true",
		Upload:    upload,
	}
	view, err := h.service.AddImage(c.Request.Context(), principalFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// AddVideo godoc
// @Summary Attach a video
// @Description Attach a video to an existing report
// @Tags Reports
// @Accept mpfd
// @Produce json
// @Param id path string true "Report id"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/{id}/add_video [post]
func (h *ReportHandler) AddVideo(c *gin.Context) {
	header, err := c.FormFile("video")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "video file is required"))
		return
	}
	upload, closeFn, err := fileUploadFromHeader(header)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable video upload"))
		return
	}
	defer closeFn()

	req := service.AddVideoRequest{
		Caption: c.PostForm("caption"),
		Upload:  upload,
	}
	if raw := c.PostForm("duration"); raw != "" {
		if duration, err := strconv.Atoi(raw); err == nil {
			req.Duration = &duration
		}
	}
	view, err := h.service.AddVideo(c.Request.Context(), principalFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// ToggleUpvote godoc
// @Summary Toggle report upvote
// @Description Add or withdraw the caller's upvote
// @Tags Reports
// @Produce json
// @Param id path string true "Report id"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/toggle_upvote [post]
func (h *ReportHandler) ToggleUpvote(c *gin.Context) {
	view, err := h.service.ToggleUpvote(c.Request.Context(), principalFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Export godoc
// @Summary Export reports
// @Description Export the current reports as CSV or PDF; staff only
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	data, contentType, err := h.service.Export(c.Request.Context(), principalFromContext(c), format, reportFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "reports." + format
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// DashboardStats godoc
// @Summary Dashboard headline stats
// @Description Total, resolved and pending counts with the five newest reports
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/dashboard_stats [get]
func (h *ReportHandler) DashboardStats(c *gin.Context) {
	stats, err := h.stats.DashboardStats(c.Request.Context(), principalFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// DashboardStatistics godoc
// @Summary 30-day dashboard rollup
// @Description Trailing 30-day counts grouped by category and severity
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/dashboard_statistics [get]
func (h *ReportHandler) DashboardStatistics(c *gin.Context) {
	stats, err := h.stats.DashboardStatistics(c.Request.Context(), principalFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Statistics godoc
// @Summary Report statistics
// @Description Status counts, a trailing 7-day count and category/severity groupings
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/statistics [get]
func (h *ReportHandler) Statistics(c *gin.Context) {
	stats, err := h.stats.ReportStatistics(c.Request.Context(), principalFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

func reportFilterFromQuery(c *gin.Context) models.ReportFilter {
	filter := models.ReportFilter{
		Search:     c.Query("search"),
		CategoryID: c.Query("category"),
		ReporterID: c.Query("reporter"),
		SortBy:     c.Query("sort_by"),
		SortOrder:  c.Query("sort_order"),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ReportStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("severity"); raw != "" {
		severity := models.ReportSeverity(raw)
		filter.Severity = &severity
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil {
		filter.PageSize = size
	}
	return filter
}
