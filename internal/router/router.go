package router

import (
	"github.com/Jiffye-m/chatapp/internal/config"
	"github.com/Jiffye-m/chatapp/internal/handler"
	"github.com/Jiffye-m/chatapp/internal/middleware"
	"github.com/Jiffye-m/chatapp/internal/realtime"
	"github.com/Jiffye-m/chatapp/internal/upload"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter wires middleware, the REST surface and the websocket endpoint.
func SetupRouter(cfg *config.Config, db *gorm.DB, hub *realtime.Hub, up upload.Uploader, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// the frontend runs on another origin and sends the session cookie
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// locally stored uploads; S3 serves its own URLs
	if cfg.Upload.Driver == "" || cfg.Upload.Driver == "local" {
		r.Static("/uploads", cfg.Upload.Dir)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	jwtSecret := cfg.JWT.Secret

	// ====== API ======
	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours,
		cfg.Security.BcryptCost, cfg.Server.SecureCookie, up, logger)
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtSecret, db))

	protected.GET("/auth/check-auth", authHandler.CheckAuth)
	protected.PUT("/auth/update-profile", authHandler.UpdateProfile)

	messageHandler := handler.NewMessageHandler(db, hub, up, cfg.Security.EncryptionKey, logger)
	protected.GET("/messages/users", messageHandler.GetUsers)
	protected.GET("/messages/:id", messageHandler.GetMessages)
	protected.POST("/messages/:id", messageHandler.SendMessage)

	exportHandler := handler.NewExportHandler(db, cfg.Security.EncryptionKey)
	protected.GET("/messages/:id/export", exportHandler.Export)

	// websocket endpoint authenticates its own handshake
	r.GET("/ws", realtime.ServeWS(hub, jwtSecret, cfg.Server.CORSOrigin))

	return r
}
