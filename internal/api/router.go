package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/reviewdeck/reviewdeck/internal/api/handler"
	"github.com/reviewdeck/reviewdeck/internal/api/middleware"
	"github.com/reviewdeck/reviewdeck/internal/core/policy"
	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

// Services groups the core services the router wires into handlers.
type Services struct {
	Auth    ports.AuthService
	Users   ports.UserService
	Catalog ports.CatalogService
	Reviews ports.ReviewService
}

// NewRouter builds and returns the Echo instance with all routes
// registered. Request-level authorization is attached per route group; the
// object-level decisions live in the services.
func NewRouter(svc Services, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("reviewdeck"))

	authRequired := middleware.Auth(svc.Auth, true)
	authOptional := middleware.Auth(svc.Auth, false)

	// --- Auth routes (anonymous) ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/token", authHandler.Token)

	// --- Self profile ---
	userHandler := handler.NewUserHandler(svc.Users)
	me := e.Group("/users/me", authRequired, middleware.Authorize(policy.SelfProfile))
	me.GET("", userHandler.Me)
	me.PATCH("", userHandler.UpdateMe)

	// --- User management (admin only, both verbs) ---
	users := e.Group("/users", authRequired, middleware.Authorize(policy.UserAdmin))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:username", userHandler.Get)
	users.PATCH("/:username", userHandler.Update)
	users.DELETE("/:username", userHandler.Delete)

	// --- Catalog (reads open, writes admin) ---
	catalogHandler := handler.NewCatalogHandler(svc.Catalog)
	categories := e.Group("/categories", authOptional, middleware.Authorize(policy.Catalog))
	categories.GET("", catalogHandler.ListCategories)
	categories.POST("", catalogHandler.CreateCategory)
	categories.DELETE("/:slug", catalogHandler.DeleteCategory)

	genres := e.Group("/genres", authOptional, middleware.Authorize(policy.Catalog))
	genres.GET("", catalogHandler.ListGenres)
	genres.POST("", catalogHandler.CreateGenre)
	genres.DELETE("/:slug", catalogHandler.DeleteGenre)

	titleHandler := handler.NewTitleHandler(svc.Catalog)
	titles := e.Group("/titles", authOptional, middleware.Authorize(policy.Catalog))
	titles.GET("", titleHandler.List)
	titles.POST("", titleHandler.Create)
	titles.GET("/:title_id", titleHandler.Get)
	titles.PATCH("/:title_id", titleHandler.Update)
	titles.DELETE("/:title_id", titleHandler.Delete)

	// --- Reviews and comments (reads open, writes authenticated;
	//     ownership decided at the object level) ---
	reviewHandler := handler.NewReviewHandler(svc.Reviews)
	reviews := e.Group("/titles/:title_id/reviews", authOptional, middleware.Authorize(policy.Contribution))
	reviews.GET("", reviewHandler.List)
	reviews.POST("", reviewHandler.Create)
	reviews.GET("/:review_id", reviewHandler.Get)
	reviews.PATCH("/:review_id", reviewHandler.Update)
	reviews.DELETE("/:review_id", reviewHandler.Delete)

	commentHandler := handler.NewCommentHandler(svc.Reviews)
	comments := e.Group("/titles/:title_id/reviews/:review_id/comments", authOptional, middleware.Authorize(policy.Contribution))
	comments.GET("", commentHandler.List)
	comments.POST("", commentHandler.Create)
	comments.GET("/:comment_id", commentHandler.Get)
	comments.PATCH("/:comment_id", commentHandler.Update)
	comments.DELETE("/:comment_id", commentHandler.Delete)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
