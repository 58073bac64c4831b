package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/civiclens/civiclens-api/internal/middleware"
	"github.com/civiclens/civiclens-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth          *AuthHandler
	Reports       *ReportHandler
	Comments      *CommentHandler
	Categories    *CategoryHandler
	Subscriptions *SubscriptionHandler
}

// RegisterRoutes mounts the API surface under the given prefix. Everything
// except registration, login and refresh requires a valid access token.
func RegisterRoutes(r *gin.Engine, prefix string, authSvc *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), h.Auth.Logout)
		auth.GET("/me", middleware.JWT(authSvc), h.Auth.Me)
	}

	reports := api.Group("/reports", middleware.JWT(authSvc))
	{
		reports.GET("", h.Reports.List)
		reports.POST("", h.Reports.Create)
		reports.GET("/dashboard_stats", h.Reports.DashboardStats)
		reports.GET("/dashboard_statistics", h.Reports.DashboardStatistics)
		reports.GET("/statistics", h.Reports.Statistics)
		reports.GET("/export", middleware.RequireStaff(), h.Reports.Export)
		reports.GET("/:id", h.Reports.Get)
		reports.PATCH("/:id", h.Reports.Update)
		reports.PUT("/:id", h.Reports.Update)
		reports.DELETE("/:id", h.Reports.Delete)
		reports.POST("/:id/add_image", h.Reports.AddImage)
		reports.POST("/:id/add_video", h.Reports.AddVideo)
		reports.POST("/:id/toggle_upvote", h.Reports.ToggleUpvote)
		reports.GET("/:id/comments", h.Comments.ListForReport)
		reports.POST("/:id/comments", h.Comments.CreateForReport)
		reports.POST("/:id/subscribe", h.Subscriptions.Subscribe)
		reports.DELETE("/:id/subscribe", h.Subscriptions.Unsubscribe)
	}

	comments := api.Group("/comments", middleware.JWT(authSvc))
	{
		comments.POST("", h.Comments.Create)
		comments.PATCH("/:id", h.Comments.Update)
		comments.PUT("/:id", h.Comments.Update)
		comments.DELETE("/:id", h.Comments.Delete)
		comments.POST("/:id/reply", h.Comments.Reply)
		comments.POST("/:id/toggle_helpful", h.Comments.ToggleHelpful)
		comments.POST("/:id/moderate", middleware.RequireStaff(), h.Comments.Moderate)
	}

	categories := api.Group("/categories", middleware.JWT(authSvc))
	{
		categories.GET("", h.Categories.List)
		categories.POST("", h.Categories.Create)
		categories.GET("/:id", h.Categories.Get)
		categories.PATCH("/:id", h.Categories.Update)
		categories.PUT("/:id", h.Categories.Update)
		categories.DELETE("/:id", h.Categories.Delete)
	}

	api.GET("/subscriptions", middleware.JWT(authSvc), h.Subscriptions.ListMine)
}
