package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/civiclens/civiclens-api/internal/middleware"
	"github.com/civiclens/civiclens-api/internal/models"
	"github.com/civiclens/civiclens-api/internal/service"
)

func TestCommentRoutesIntegration(t *testing.T) {
	router, comments := buildCommentRouter()

	t.Run("post comment success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/reports/r1/comments", bytes.NewBufferString(`{"content":"Still broken this morning."}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", "u1")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), `"content":"Still broken this morning."`)
	})

	t.Run("post comment unknown report", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/reports/missing/comments", bytes.NewBufferString(`{"content":"hello"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", "u1")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("staff reply is flagged", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/comments/c1/reply", bytes.NewBufferString(`{"content":"Crew dispatched."}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", "staff1")
		req.Header.Set("X-Test-Staff", "true")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), `"is_staff_response":true`)
	})

	t.Run("moderate unauthenticated", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/comments/c1/moderate", bytes.NewBufferString(`{"action":"hide"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("moderate forbidden for residents", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/comments/c1/moderate", bytes.NewBufferString(`{"action":"hide"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", "u1")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("moderate hide success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/comments/c1/moderate", bytes.NewBufferString(`{"action":"hide"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-User", "staff1")
		req.Header.Set("X-Test-Staff", "true")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"is_hidden":true`)
		require.True(t, comments.items["c1"].IsHidden)
	})

	t.Run("list comment tree", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/reports/r1/comments", nil)
		req.Header.Set("X-Test-User", "u1")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"replies"`)
	})
}

func buildCommentRouter() (*gin.Engine, *commentRepoIntegrationMock) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID := c.GetHeader("X-Test-User"); userID != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
				UserID:   userID,
				Username: userID,
				IsStaff:  c.GetHeader("X-Test-Staff") == "true",
			})
		}
		c.Next()
	})

	now := time.Now().UTC()
	comments := &commentRepoIntegrationMock{items: map[string]*models.Comment{
		"c1": {ID: "c1", ReportID: "r1", UserID: "u1", Content: "First sighting.", CreatedAt: now, UpdatedAt: now},
	}}
	reports := &reportReaderIntegrationMock{items: map[string]*models.Report{
		"r1": {ID: "r1", Title: "Pothole on Elm", ReporterID: "u1", Status: models.StatusPending, CreatedAt: now},
	}}
	users := &userReaderIntegrationMock{items: map[string]*models.User{
		"u1":     {ID: "u1", Username: "u1", Active: true},
		"staff1": {ID: "staff1", Username: "staff1", IsStaff: true, Active: true},
	}}

	svc := service.NewCommentService(comments, reports, users, nil, nil, nil)
	h := NewCommentHandler(svc, nil)

	router.POST("/reports/:id/comments", h.CreateForReport)
	router.GET("/reports/:id/comments", h.ListForReport)
	router.POST("/comments/:id/reply", h.Reply)
	router.POST("/comments/:id/moderate", internalmiddleware.RequireStaff(), h.Moderate)
	return router, comments
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type commentRepoIntegrationMock struct {
	items map[string]*models.Comment
}

func (m *commentRepoIntegrationMock) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	comment, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *comment
	return &copied, nil
}

func (m *commentRepoIntegrationMock) ListByReport(ctx context.Context, reportID string) ([]models.Comment, error) {
	var out []models.Comment
	for _, comment := range m.items {
		if comment.ReportID == reportID {
			out = append(out, *comment)
		}
	}
	return out, nil
}

func (m *commentRepoIntegrationMock) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = "generated"
	}
	copied := *comment
	m.items[comment.ID] = &copied
	return nil
}

func (m *commentRepoIntegrationMock) UpdateContent(ctx context.Context, id, content string) error {
	m.items[id].Content = content
	m.items[id].Edited = true
	return nil
}

func (m *commentRepoIntegrationMock) UpdateVisibility(ctx context.Context, id string, hidden bool) error {
	m.items[id].IsHidden = hidden
	return nil
}

func (m *commentRepoIntegrationMock) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *commentRepoIntegrationMock) ListVoters(ctx context.Context, commentID string) ([]string, error) {
	return nil, nil
}

func (m *commentRepoIntegrationMock) ListVotersByReport(ctx context.Context, reportID string) (map[string][]string, error) {
	return map[string][]string{}, nil
}

func (m *commentRepoIntegrationMock) HasVote(ctx context.Context, commentID, userID string) (bool, error) {
	return false, nil
}

func (m *commentRepoIntegrationMock) AddVote(ctx context.Context, commentID, userID string) error {
	return nil
}

func (m *commentRepoIntegrationMock) RemoveVote(ctx context.Context, commentID, userID string) error {
	return nil
}

type reportReaderIntegrationMock struct {
	items map[string]*models.Report
}

func (m *reportReaderIntegrationMock) FindByID(ctx context.Context, id string) (*models.Report, error) {
	report, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *report
	return &copied, nil
}

type userReaderIntegrationMock struct {
	items map[string]*models.User
}

func (m *userReaderIntegrationMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (m *userReaderIntegrationMock) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if user, ok := m.items[id]; ok {
			out[id] = *user
		}
	}
	return out, nil
}
