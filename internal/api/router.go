package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/newsproof/validation-api/docs"
	"github.com/newsproof/validation-api/internal/api/handler"
	"github.com/newsproof/validation-api/internal/api/metrics"
	"github.com/newsproof/validation-api/internal/api/middleware"
	"github.com/newsproof/validation-api/internal/api/sessioncookie"
	"github.com/newsproof/validation-api/internal/core/ports"
)

const bodyLimit = "256K"

// Deps carries everything NewRouter wires into handlers.
type Deps struct {
	Accounts   ports.AccountService
	Sessions   ports.SessionService
	Validation ports.ValidationService

	Cookie      sessioncookie.Policy
	SessionTTL  time.Duration
	CORSOrigins []string

	// Readiness lists the dependencies probed by /health/ready.
	Readiness map[string]handler.PingFunc

	// Registry receives both the HTTP and the custom collectors and backs
	// /metrics.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	m := metrics.New(d.Registry)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "newsproof",
		Subsystem:  "http",
		Registerer: d.Registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	if len(d.CORSOrigins) > 0 {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType},
			AllowCredentials: true,
		}))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Accounts, d.Sessions, d.Cookie, d.SessionTTL, m, d.Log)
	validationHandler := handler.NewValidationHandler(d.Validation, m)
	session := middleware.Session(d.Sessions, d.Cookie, m)

	// --- API routes (session is optional everywhere) ---
	apiGroup := e.Group("/api", echomiddleware.BodyLimit(bodyLimit), session)

	auth := apiGroup.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/status", authHandler.Status)
	auth.POST("/logout", authHandler.Logout)

	apiGroup.POST("/validation/analyze", validationHandler.Analyze)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger feeds echo's request logger into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				evt = log.Error().Err(v.Error)
			case v.Error != nil:
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
