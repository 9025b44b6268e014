package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// Logging writes one key=value line per request. The route is the matched
// pattern, and subject is set only for authenticated admin calls.
func Logging(logger *log.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = log.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			rid, _ := c.Get(ContextKeyRequestID).(string)
			subject, _ := c.Get(ContextKeySubject).(string)
			route := c.Path()
			if route == "" {
				route = "-"
			}
			if subject == "" {
				subject = "-"
			}
			logger.Printf("request_id=%s method=%s route=%s path=%s query=%q subject=%s status=%d bytes=%d ip=%s latency=%s",
				rid, req.Method, route, req.URL.Path, req.URL.RawQuery, subject, c.Response().Status, c.Response().Size, c.RealIP(), latency)

			return err
		}
	}
}
