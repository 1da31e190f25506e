package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/drfrankproulx-cmd/OProom/internal/handler/auth"
	"github.com/drfrankproulx-cmd/OProom/internal/handler/health"
	"github.com/drfrankproulx-cmd/OProom/internal/middleware"
	"github.com/drfrankproulx-cmd/OProom/pkg/metrics"
)

// Handler mounts its routes on an authenticated group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit      rate.Limit
	RateBurst      int
	CORSConfig     middleware.CORSConfig
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	authH   *auth.Handler
	healthH *health.Handler
	api     []Handler
	limiter *middleware.RateLimiter
}

func NewRouter(
	authMW *middleware.AuthMiddleware,
	authH *auth.Handler,
	healthH *health.Handler,
	m *metrics.Metrics,
	logger *zerolog.Logger,
	config Config,
	handlers ...Handler,
) *Router {
	engine := gin.New()

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.ErrorHandler(logger),
		middleware.Metrics(m),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(sizeLimit),
		middleware.Timeout(config.RequestTimeout),
	)

	return &Router{
		engine:  engine,
		auth:    authMW,
		authH:   authH,
		healthH: healthH,
		api:     handlers,
		limiter: middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		}),
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api")
	r.healthH.RegisterRoutes(api)

	public := api.Group("", r.limiter.RateLimit())
	protected := api.Group("", r.auth.Authenticate(), r.limiter.RateLimit())

	r.authH.RegisterRoutes(public, protected)
	for _, h := range r.api {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
