package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogging logs HTTP requests. 5xx responses are logged as errors and requests
// slower than slowThreshold as warnings.
func RequestLogging(slowThreshold time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status below is final.
				c.Error(err)
			}

			res := c.Response()
			latency := time.Since(start)

			var event *zerolog.Event
			switch {
			case res.Status >= 500:
				event = log.Error().Err(err)
			case slowThreshold > 0 && latency >= slowThreshold:
				event = log.Warn()
			default:
				event = log.Debug()
			}
			event.
				Str("request_id", RequestIDFrom(c)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote", c.RealIP()).
				Int("status", res.Status).
				Int64("bytes", res.Size).
				Dur("latency", latency).
				Msg("HTTP request")

			return nil
		}
	}
}
