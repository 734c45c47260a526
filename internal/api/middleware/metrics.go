package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// RequestObserver receives request measurements.
type RequestObserver interface {
	RequestStarted() func()
	ObserveRequest(route, method string, status int, duration time.Duration, size int64)
}

// Metrics records request count, latency and size per templated route.
func Metrics(obs RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			done := obs.RequestStarted()
			defer done()

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			// c.Path() is the route template, which keeps label cardinality low.
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			obs.ObserveRequest(route, c.Request().Method, c.Response().Status, time.Since(start), c.Response().Size)
			return nil
		}
	}
}
