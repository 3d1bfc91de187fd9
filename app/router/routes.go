// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/usbest/usbest-backend/app/dto"
	"github.com/usbest/usbest-backend/app/handlers"
	"github.com/usbest/usbest-backend/app/middleware"
	"github.com/usbest/usbest-backend/config"
	"github.com/usbest/usbest-backend/utils"
	"go.uber.org/zap"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// HealthCheck checks one dependency; a nil error means healthy
type HealthCheck func(ctx context.Context) error

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Auth          handlers.AuthHandlerInterface
	Ad            handlers.AdHandlerInterface
	Participation handlers.ParticipationHandlerInterface
	Tester        handlers.TesterHandlerInterface
	Adoption      handlers.AdoptionHandlerInterface
	Console       handlers.ConsoleHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	cfg            *config.ProductionConfig
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	healthChecks   map[string]HealthCheck
	logger         *zap.Logger
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	healthChecks map[string]HealthCheck,
	log *zap.Logger,
) *FiberRouter {
	r := &FiberRouter{
		cfg:            cfg,
		handlers:       h,
		authMiddleware: authMiddleware,
		healthChecks:   healthChecks,
		logger:         log,
	}

	// c.IP() honours ProxyHeader only for requests arriving from a trusted proxy
	r.app = fiber.New(fiber.Config{
		AppName:          "UsBest API",
		ServerHeader:     "UsBest",
		ErrorHandler:     r.errorHandler,
		BodyLimit:        cfg.Server.BodyLimit,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		IdleTimeout:      cfg.Server.IdleTimeout,
		JSONEncoder:      json.Marshal,
		JSONDecoder:      json.Unmarshal,
		TrustProxy:       len(cfg.Server.TrustedProxies) > 0,
		TrustProxyConfig: fiber.TrustProxyConfig{Proxies: cfg.Server.TrustedProxies},
		ProxyHeader:      cfg.Server.ProxyHeader,
	})

	return r
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")
	api.Get("/health", r.healthCheck)

	if env := r.cfg.Deployment.Environment; env == "development" || env == "local" {
		api.Get("/docs", r.getAPIDocumentation)
	}

	api.Use(r.rateLimiter(r.cfg.Security.GlobalRateLimit, func(c fiber.Ctx) bool {
		return c.Path() == "/api/v1/health"
	}))

	auth := api.Group("/auth")
	auth.Use(r.rateLimiter(r.cfg.Security.WriteRateLimit, nil))
	auth.Post("/refresh", r.handlers.Auth.Refresh)

	user := r.authMiddleware.Authenticate()
	advertiser := r.authMiddleware.AdvertiserAuthenticate()
	writes := r.rateLimiter(r.cfg.Security.WriteRateLimit, nil)

	// Public reads
	ads := api.Group("/ads")
	ads.Get("/", r.handlers.Ad.ListAds)
	ads.Get("/:id", r.handlers.Ad.GetAd)
	ads.Get("/:id/comments", r.handlers.Ad.ListComments)
	ads.Get("/:id/ugc", r.handlers.Ad.ListUGC)
	ads.Get("/:id/survey", r.handlers.Ad.GetSurvey)
	ads.Get("/:id/tester", r.handlers.Tester.GetOpenCampaign)

	// Participation
	ads.Post("/:id/comments", user, writes, r.handlers.Participation.CreateComment)
	ads.Post("/:id/ugc/init", user, writes, r.handlers.Participation.InitUGCUpload)
	ads.Post("/:id/ugc", user, writes, r.handlers.Participation.CreateUGC)
	ads.Post("/:id/survey", user, writes, r.handlers.Participation.SubmitSurveyAnswers)
	ads.Post("/:id/tester", user, writes, r.handlers.Tester.Apply)

	api.Post("/tester/reports", user, writes, r.handlers.Tester.SubmitReport)

	me := api.Group("/me", user)
	me.Get("/participation", r.handlers.Ad.MyParticipation)
	me.Get("/rewards", r.handlers.Adoption.ListMyRewards)
	me.Get("/applications", r.handlers.Tester.ListMyApplications)

	// Advertiser moderation
	adv := api.Group("/advertiser", advertiser)
	adv.Post("/comments/:id/actions", r.handlers.Adoption.CommentAction)
	adv.Post("/ugc/:id/adopt", r.handlers.Adoption.AdoptUGC)
	adv.Post("/rewards/reissue", r.handlers.Adoption.ReissueReward)
	adv.Post("/tester/applicants/:id/select", r.handlers.Tester.SelectApplicant)
	adv.Get("/tester/campaigns/:id/applicants.xlsx", r.handlers.Tester.ExportApplicants)

	// Advertiser console
	adv.Get("/console", r.handlers.Console.GetConsole)
	adv.Get("/tester/campaigns/:id/applicants", r.handlers.Console.ListCampaignApplicants)

	r.app.Use(r.notFoundHandler)

	r.logger.Info("routes configured")
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: uuid.NewString,
	}))

	sec := r.cfg.Security
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        sec.XContentTypeOptions,
		XFrameOptions:             sec.XFrameOptions,
		HSTSMaxAge:                sec.HSTSMaxAge,
		HSTSExcludeSubdomains:     !sec.HSTSIncludeSubDoms,
		HSTSPreloadEnabled:        sec.HSTSPreload,
		ContentSecurityPolicy:     sec.CSPPolicy,
		ReferrerPolicy:            sec.ReferrerPolicy,
		CrossOriginResourcePolicy: "cross-origin",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     sec.AllowedOrigins,
		AllowMethods:     sec.AllowedMethods,
		AllowHeaders:     sec.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: sec.AllowCredentials,
		MaxAge:           sec.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
			Next: func(c fiber.Ctx) bool {
				// xlsx is already zipped
				return strings.HasSuffix(c.Path(), ".xlsx")
			},
		}))
	}

	if r.cfg.Server.EnableMetrics {
		r.app.Use(middleware.Metrics())
	}

	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","request_id":"${respHeader:X-Request-ID}","method":"${method}","path":"${path}","ip":"${ip}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/health" || c.Path() == r.cfg.Metrics.Path
			},
		}))
	}

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.logger.Error("panic recovered",
				zap.Any("panic", e),
				zap.String("request_id", c.GetRespHeader("X-Request-ID")),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("ip", c.IP()),
			)
		},
	}))
}

func (r *FiberRouter) rateLimiter(limit int, next func(c fiber.Ctx) bool) fiber.Handler {
	window := r.cfg.Security.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: next,
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	r.logger.Info("starting server", zap.String("address", address))
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	status := fiber.StatusOK
	checks := make(fiber.Map, len(r.healthChecks))
	for name, check := range r.healthChecks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	data := fiber.Map{
		"status":    "ok",
		"timestamp": utils.UTCNow().Unix(),
		"version":   r.cfg.Deployment.Version,
		"commit":    r.cfg.Deployment.CommitHash,
		"built_at":  r.cfg.Deployment.BuildTime,
		"service":   "usbest-api",
		"checks":    checks,
	}
	if status != fiber.StatusOK {
		data["status"] = "degraded"
		return c.Status(status).JSON(dto.APIResponse{
			Success: false,
			Message: "Service is degraded",
			Data:    data,
			Error:   dto.ErrorDetail{Code: "DEPENDENCY_UNAVAILABLE"},
		})
	}

	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data:    data,
	})
}

// getAPIDocumentation lists the mounted routes
func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	routes := make([]fiber.Map, 0)
	for _, route := range r.app.GetRoutes(true) {
		if route.Method == fiber.MethodHead {
			continue
		}
		routes = append(routes, fiber.Map{"method": route.Method, "path": route.Path})
	}
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":     "UsBest API",
			"version":   r.cfg.Deployment.Version,
			"endpoints": routes,
		},
	})
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": c.GetRespHeader("X-Request-ID"),
			},
		},
	})
}

func (r *FiberRouter) errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errorCode := "INTERNAL_ERROR"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		if code < fiber.StatusInternalServerError {
			message = e.Message
			errorCode = "REQUEST_ERROR"
		}
	}

	r.logger.Error("unhandled request error", zap.Int("status", code), zap.String("path", c.Path()), zap.Error(err))

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errorCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": c.GetRespHeader("X-Request-ID"),
			},
		},
	})
}
