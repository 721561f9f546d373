package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sharath018/workshop-checkin-backend/config"
	"github.com/sharath018/workshop-checkin-backend/internal/auditlog"
	"github.com/sharath018/workshop-checkin-backend/internal/auth"
	"github.com/sharath018/workshop-checkin-backend/internal/checkin"
	"github.com/sharath018/workshop-checkin-backend/internal/metrics"
	"github.com/sharath018/workshop-checkin-backend/internal/reports"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"github.com/sharath018/workshop-checkin-backend/middleware"

	_ "github.com/sharath018/workshop-checkin-backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Deps are the services built in main and shared by every route.
type Deps struct {
	Log       *slog.Logger
	DB        *gorm.DB
	Redis     *redis.Client
	Metrics   *metrics.Metrics
	Auth      auth.Service
	Audit     auditlog.Service
	Workshops *workshop.Service
	Engine    *checkin.Engine
}

func Setup(r *gin.Engine, cfg *config.Config, d Deps) error {
	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DB_UNAVAILABLE"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", d.Metrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limiter, err := middleware.RateLimiter(cfg.RateLimitPerMinute, d.Redis)
	if err != nil {
		return err
	}

	api := r.Group("/api/v1")
	api.Use(limiter)
	api.Use(middleware.AuditMiddleware())
	api.Use(middleware.AuthMiddleware(d.Log, d.Auth))

	admin := middleware.RBACMiddleware(auth.RoleAdmin)

	authHandler := auth.NewHandler(d.Auth)
	auditHandler := auditlog.NewHandler(d.Audit)
	workshopHandler := workshop.NewHandler(d.Workshops)
	checkinHandler := checkin.NewHandler(d.Engine)
	reportsHandler := reports.NewHandler(d.Workshops, d.Engine, reports.NewRosterExporter(nil), cfg.BaseURL)

	// ========== Users ==========
	users := api.Group("/users/me")
	{
		users.GET("", authHandler.Me)
		users.GET("/checkins", checkinHandler.MyCheckins)
	}

	// ========== Workshops ==========
	workshops := api.Group("/workshops")
	{
		workshops.GET("", workshopHandler.List)
		workshops.GET("/:id", workshopHandler.Get)
		workshops.GET("/:id/qr", reportsHandler.QRCode)

		workshops.POST("", admin, workshopHandler.Create)
		workshops.PATCH("/:id", admin, workshopHandler.Update)
		workshops.POST("/:id/activate", admin, workshopHandler.Activate)
		workshops.POST("/:id/deactivate", admin, workshopHandler.Deactivate)
		workshops.PUT("/:id/image", admin, workshopHandler.SetImage)
		workshops.DELETE("/:id", admin, workshopHandler.Delete)

		workshops.POST("/import", admin, reportsHandler.Import)
		workshops.GET("/import/template", admin, reportsHandler.ImportTemplate)
	}

	// ========== Check-ins ==========
	{
		workshops.POST("/:id/checkin", checkinHandler.CheckIn)
		workshops.GET("/:id/checkin", checkinHandler.Status)
		workshops.POST("/:id/checkout", checkinHandler.CheckOut)
		workshops.GET("/:id/checkins", admin, checkinHandler.WorkshopCheckins)
		workshops.GET("/:id/checkins/export", admin, reportsHandler.ExportRoster)
	}

	// ========== Audit Logs (Admin Only) ==========
	auditRoutes := api.Group("/auditlogs", admin)
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}

	return nil
}
