package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/restoflow/internal/handler"
	"github.com/user/restoflow/internal/middleware"
	"github.com/user/restoflow/internal/model"
)

// New 创建 gin 引擎并注册中间件和路由
func New(h *handler.Handler) *gin.Engine {
	if h.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 设置 Session 中间件
	store := cookie.NewStore([]byte(h.Config.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(h.Config.JWTExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.Config.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("restoflow_session", store))

	RegisterRoutes(r, h)
	return r
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== 认证 ====================
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}

	secret := h.Config.AppSecret

	// ==================== 顾客反馈 ====================
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(secret))
	{
		api.POST("/feedback", h.SubmitFeedback)
	}

	// ==================== 员工 ====================
	staff := r.Group("/api")
	staff.Use(middleware.RequireAuth(secret))
	{
		staff.GET("/me", h.Me)
		staff.POST("/feedback/analyze", h.AnalyzeFeedback)
	}

	frontDesk := r.Group("/api/feedback")
	frontDesk.Use(middleware.RequireAuth(secret))
	frontDesk.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCashier))
	{
		frontDesk.GET("", h.ListFeedback)
		frontDesk.GET("/:id", h.GetFeedback)
	}

	// ==================== 管理后台 ====================
	admin := r.Group("/api")
	admin.Use(middleware.RequireAuth(secret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/reports/feedback", h.FeedbackReport)
		admin.GET("/reports/feedback/ratings", h.FeedbackRatingBreakdown)
		admin.GET("/admin/users", h.AdminListUsers)
		admin.POST("/admin/users", h.AdminCreateUser)
	}
}
