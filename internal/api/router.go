package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/pawtrail/dogwalk-service/internal/api/handler"
	"github.com/pawtrail/dogwalk-service/internal/api/middleware"
	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

// Deps is everything the HTTP layer needs. Registerer and Gatherer default
// to the global Prometheus registry.
type Deps struct {
	Auth   ports.AuthService
	Walks  ports.WalkService
	Codec  *middleware.SessionCodec
	Checks map[string]handler.Check
	Log    zerolog.Logger

	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "dogwalk",
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))
	e.Use(middleware.Session(d.Codec, d.Auth))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Codec)
	walkHandler := handler.NewWalkHandler(d.Walks)
	eventHandler := handler.NewEventHandler(d.Walks)

	owner := middleware.RBAC(domain.RoleOwner)
	walker := middleware.RBAC(domain.RoleWalker)
	session := middleware.RequireSession()

	api := e.Group("/api")

	// --- Walk routes ---
	walks := api.Group("/walks")
	walks.GET("", walkHandler.ListOpen)
	walks.POST("", walkHandler.Create, owner)
	walks.GET("/myrequests", walkHandler.MyRequests, owner)
	walks.GET("/dogs", walkHandler.Dogs)
	walks.POST("/:id/apply", walkHandler.Apply, walker)
	walks.POST("/:id/complete", walkHandler.Complete, owner)
	walks.POST("/:id/cancel", walkHandler.Cancel, owner)
	walks.GET("/:id/history", eventHandler.History, session)

	api.GET("/walkers/summary", walkHandler.WalkerSummary)
	api.GET("/dogs", walkHandler.DogDirectory)

	// --- User routes ---
	users := api.Group("/users")
	users.GET("", authHandler.ListUsers)
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/logout", authHandler.Logout, session)
	users.GET("/me", authHandler.Me, session)
	users.GET("/me/dogs", walkHandler.MyDogs, owner)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks, d.Log)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
