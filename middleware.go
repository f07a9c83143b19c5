package blogpodcast

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// NewPreviewServer returns an Echo instance serving p's preview routes.
// When gatherer is non-nil its metrics are exposed at /metrics.
func NewPreviewServer(p *Plugin, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = p.httpErrorHandler(e)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			p.logger.Info("preview request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(MetricsHandler(gatherer)))
	}
	p.RegisterRoutes(e)
	return e
}

func (p *Plugin) httpErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}
		code := http.StatusInternalServerError
		if errors.Is(err, ErrUnknownBlogTag) || errors.Is(err, ErrDocumentNotFound) {
			code = http.StatusNotFound
		}
		if code >= 500 {
			p.logger.Error("preview error", slog.String("uri", c.Request().RequestURI), slog.String("error", err.Error()))
		}
		_ = c.JSON(code, map[string]string{"error": err.Error()})
	}
}
