package router

import (
	"fmt"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/config"
	"github.com/InventorsDev/inventor-backend-sub000/internal/handler"
	"github.com/InventorsDev/inventor-backend-sub000/internal/middleware"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/metrics"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/pool"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Handlers groups every module handler mounted under /api/v1.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Post    *handler.PostHandler
	Event   *handler.EventHandler
	Lead    *handler.LeadHandler
	DataLog *handler.DataLogHandler
	Webhook *handler.WebhookHandler
	Health  *handler.HealthHandler
}

// Audit wires the request audit trail. A nil Recorder disables it.
type Audit struct {
	Recorder middleware.AuditRecorder
	Workers  *pool.Pool
}

type Router struct {
	h       Handlers
	jwtMw   *middleware.JWTMiddleware
	audit   Audit
	metrics *metrics.Metrics
	config  *config.Config
	log     *logger.Logger
}

func NewRouter(h Handlers, jwtMw *middleware.JWTMiddleware, audit Audit, m *metrics.Metrics, cfg *config.Config, log *logger.Logger) *Router {
	return &Router{
		h:       h,
		jwtMw:   jwtMw,
		audit:   audit,
		metrics: m,
		config:  cfg,
		log:     log,
	}
}

func (r *Router) SetupRoutes() (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	if r.config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.Recovery(r.log))
	router.Use(middleware.RequestContext())
	router.Use(middleware.Logging(r.log))
	if r.metrics != nil {
		router.Use(middleware.Metrics(r.metrics))
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}
	router.Use(middleware.CORS(r.config.App.AllowedOrigins))

	api := router.Group("/api")
	{
		api.GET("/health", r.h.Health.HealthCheck)
		api.GET("/health/live", r.h.Health.BasicHealth)

		v1 := api.Group("/v1")
		{
			if r.config.App.Timeout > 0 {
				v1.Use(middleware.Timeout(r.config.App.Timeout))
			}
			v1.Use(middleware.RateLimit(r.config.RateLimit.Request, seconds(r.config.RateLimit.Duration), r.log))
			if r.audit.Recorder != nil && r.audit.Workers != nil {
				v1.Use(middleware.Audit(r.audit.Recorder, r.audit.Workers, r.metrics, r.log))
			}

			r.authRoutes(v1)
			r.userRoutes(v1)
			r.postRoutes(v1)
			r.eventRoutes(v1)
			r.leadRoutes(v1)
			r.dataLogRoutes(v1)
			r.webhookRoutes(v1)
		}
	}

	return router, nil
}

// strict is the tighter limiter for credential and public form endpoints.
func (r *Router) strict() gin.HandlerFunc {
	return middleware.RateLimit(r.config.RateLimit.AuthRequest, seconds(r.config.RateLimit.AuthDuration), r.log)
}

func (r *Router) admin() []gin.HandlerFunc {
	return []gin.HandlerFunc{r.jwtMw.RequireAuth(), middleware.RequireRoles(model.RoleAdmin)}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
