package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/turtlecode/tutor-api/docs"
	"github.com/turtlecode/tutor-api/internal/api/handler"
	"github.com/turtlecode/tutor-api/internal/api/middleware"
	"github.com/turtlecode/tutor-api/internal/core/ports"
)

const maxBodySize = "1M"

// Dependencies are the services and probes the router wires into handlers.
type Dependencies struct {
	Auth          ports.AuthService
	Conversations ports.ConversationService
	Guidance      ports.GuidanceService
	// Health lists readiness probes; the first entry is the primary store.
	Health      []handler.Dependency
	CORSOrigins []string
	// TrustProxyHeaders reads the client IP from X-Forwarded-For; otherwise
	// the socket address is used and forwarding headers are ignored.
	TrustProxyHeaders bool
	Logger            zerolog.Logger
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.IPExtractor = echo.ExtractIPDirect()
	if deps.TrustProxyHeaders {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	}

	registerer := deps.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.BodyLimit(maxBodySize))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Health...)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(deps.Auth)
	conversationHandler := handler.NewConversationHandler(deps.Conversations)
	aiHandler := handler.NewAIHandler(deps.Guidance)
	requireAuth := middleware.Auth(deps.Auth)

	api := e.Group("/api")

	// --- Auth routes ---
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/me", authHandler.Me, requireAuth)

	// --- Conversation routes ---
	conversations := api.Group("/conversations", requireAuth)
	conversations.POST("", conversationHandler.Create)
	conversations.GET("", conversationHandler.List)
	conversations.GET("/:id", conversationHandler.Get)
	conversations.DELETE("/:id", conversationHandler.Delete)

	messages := api.Group("/messages", requireAuth)
	messages.POST("/:conversationId", conversationHandler.AppendMessage)
	messages.GET("/:conversationId", conversationHandler.Messages)

	// --- Tutoring routes ---
	ai := api.Group("/ai", requireAuth)
	ai.POST("/tips/:level", aiHandler.Tips)
	ai.POST("/guidance", aiHandler.Guidance)
	ai.POST("/complete", aiHandler.Complete)
	ai.GET("/levels", aiHandler.Levels)

	return e
}
