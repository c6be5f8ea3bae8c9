package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/pawhub/petcare-api/internal/handler"
	appointmentHandler "github.com/pawhub/petcare-api/internal/handler/appointment"
	authHandler "github.com/pawhub/petcare-api/internal/handler/auth"
	availabilityHandler "github.com/pawhub/petcare-api/internal/handler/availability"
	prometheusHandler "github.com/pawhub/petcare-api/internal/handler/prometheus"
	professionalHandler "github.com/pawhub/petcare-api/internal/handler/professional"
	refundHandler "github.com/pawhub/petcare-api/internal/handler/refund"
	"github.com/pawhub/petcare-api/internal/middleware"
)

type Config struct {
	RateLimit  rate.Limit
	RateBurst  int
	CORSConfig middleware.CORSConfig
	Timeout    time.Duration
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	authH         *authHandler.Handler
	professionalH *professionalHandler.Handler
	availabilityH *availabilityHandler.Handler
	appointmentH  *appointmentHandler.Handler
	refundH       *refundHandler.Handler
	prometheusH   *prometheusHandler.Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authHandler.Handler,
	professionalH *professionalHandler.Handler,
	availabilityH *availabilityHandler.Handler,
	appointmentH *appointmentHandler.Handler,
	refundH *refundHandler.Handler,
	prometheusH *prometheusHandler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		authH:         authH,
		professionalH: professionalH,
		availabilityH: availabilityH,
		appointmentH:  appointmentH,
		refundH:       refundH,
		prometheusH:   prometheusH,
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = middleware.DefaultTimeoutConfig().Duration
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Validation(middleware.DefaultValidationConfig()),
		prometheusH.Middleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: timeout}),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/health", handler.HealthCheck)
	r.engine.GET("/metrics", r.prometheusH.Handler())

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.authH.RegisterRoutes(api)
	r.professionalH.RegisterRoutes(api, r.auth)
	r.availabilityH.RegisterRoutes(api, r.auth)
	r.appointmentH.RegisterRoutes(api, r.auth)
	r.refundH.RegisterRoutes(api, r.auth)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
