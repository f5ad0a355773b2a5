package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	WebHandler *WebHandler
	Sessions   echo.MiddlewareFunc
	Logger     *zap.Logger
}

// SetupRoutes configures middleware and the dashboard routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			// fragment re-renders are frequent and carry no new information
			return c.Request().Method == "GET" && c.Path() == "/dashboard/tables"
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	RegisterWebRoutes(e, config.WebHandler, config.Sessions)
}
