package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-board-api/internal/database"
	"library-board-api/internal/handler"
	"library-board-api/internal/metrics"
	"library-board-api/internal/middleware"
	"library-board-api/internal/repository"
	"library-board-api/internal/service"
	"library-board-api/internal/storage"
)

// Config holds router configuration
type Config struct {
	DB             *gorm.DB
	Logger         *zap.Logger
	JWTSecret      string
	BasePath       string
	Store          *storage.FileStore
	Ranker         service.ViewRanker
	Metrics        *metrics.Metrics
	AllowedOrigins []string
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.BasePath != "" {
		r.GET(cfg.BasePath+"/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Health check route. When the router was built before an async DB
	// connect finished, the probe consults the global connection instead.
	r.GET("/healthz", func(c *gin.Context) {
		if cfg.DB == nil {
			if database.IsConnected() {
				c.JSON(200, gin.H{"status": "healthy", "service": "library-board-api"})
			} else {
				c.JSON(503, gin.H{"status": "not ready", "service": "library-board-api"})
			}
			return
		}
		sqlDB, err := cfg.DB.DB()
		if err != nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "library-board-api"})
			return
		}
		if err := sqlDB.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "not ready", "service": "library-board-api"})
			return
		}
		c.JSON(200, gin.H{"status": "healthy", "service": "library-board-api"})
	})

	// Initialize repositories
	postRepo := repository.NewPostRepository(cfg.DB)
	commentRepo := repository.NewCommentRepository(cfg.DB)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB)
	memberRepo := repository.NewMemberRepository(cfg.DB)

	// Initialize services
	postService := service.NewPostService(cfg.DB, postRepo, commentRepo, attachmentRepo, memberRepo, cfg.Store, cfg.Ranker, cfg.Metrics, cfg.Logger)
	commentService := service.NewCommentService(commentRepo, postRepo, memberRepo, cfg.Metrics, cfg.Logger)
	fileService := service.NewFileService(attachmentRepo, cfg.Store, cfg.Metrics, cfg.Logger)

	// Initialize handlers
	postHandler := handler.NewPostHandler(postService, cfg.Logger)
	commentHandler := handler.NewCommentHandler(commentService, cfg.Logger)
	fileHandler := handler.NewFileHandler(fileService, cfg.Logger)

	authMiddleware := middleware.Auth(cfg.JWTSecret)

	api := r.Group(cfg.BasePath + "/api/v1")

	// ============================================================
	// Post routes
	// ============================================================
	posts := api.Group("/posts")
	{
		// Public reads
		posts.GET("", postHandler.ListPosts)
		posts.GET("/popular", postHandler.ListPopularPosts)
		posts.GET("/:id", postHandler.GetPost)
		posts.GET("/:id/comments", commentHandler.ListComments)

		// Authenticated writes
		posts.POST("", authMiddleware, postHandler.CreatePost)
		posts.GET("/:id/edit", authMiddleware, postHandler.GetPostForEdit)
		posts.PUT("/:id", authMiddleware, postHandler.UpdatePost)
		posts.DELETE("/:id", authMiddleware, postHandler.DeletePost)
		posts.POST("/:id/comments", authMiddleware, commentHandler.CreateComment)
	}

	// ============================================================
	// Comment routes
	// ============================================================
	comments := api.Group("/comments")
	comments.Use(authMiddleware)
	{
		comments.PUT("/:id", commentHandler.UpdateComment)
		comments.DELETE("/:id", commentHandler.DeleteComment)
	}

	// ============================================================
	// File routes
	// ============================================================
	files := api.Group("/files")
	{
		files.GET("/:id/download", fileHandler.DownloadAttachment)
	}

	return r
}
