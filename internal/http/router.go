package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/bnvdash/user-directory/internal/config"
	"github.com/bnvdash/user-directory/internal/http/handlers"
	"github.com/bnvdash/user-directory/internal/http/middlewares"
	"github.com/bnvdash/user-directory/internal/observability"
	"github.com/bnvdash/user-directory/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterDeps carries everything the router wires into handlers. DB, Prom and
// PromRegistry may be nil (tests run without a store or metrics).
type RouterDeps struct {
	Users        handlers.UserService
	DB           *mongo.Database
	Prom         *observability.Prom
	PromRegistry *prometheus.Registry
}

func NewRouter(cfg config.Config, log *slog.Logger, deps RouterDeps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.SetDevMode(cfg.Env == "dev")

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware("user-directory"))
	r.Use(middlewares.RequestLogger(log))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinMiddleware())
	}

	r.Use(middlewares.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxUploadBytes))

	ping := func() error {
		if deps.DB == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.DB.Client().Ping(ctx, nil)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.PromRegistry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{})))
	}

	// uploaded profile images are served outside the API prefix
	r.Static(storage.URLPrefix, cfg.UploadDir)

	uh := handlers.NewUsersHandler(deps.Users, log)

	limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	writeLimit := limiter.Middleware(middlewares.KeyByIP)

	api := r.Group("/api/users")
	{
		// the literal export route must be registered before the :id routes
		api.GET("/export/csv", uh.ExportCSV)

		api.GET("", uh.List)
		api.POST("", writeLimit, uh.Create)
		api.GET("/:id", uh.Get)
		api.PUT("/:id", writeLimit, uh.Update)
		api.DELETE("/:id", writeLimit, uh.Delete)
	}

	return r
}
