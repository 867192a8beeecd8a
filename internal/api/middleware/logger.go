package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github/chapool/hw-bridge/internal/util"
)

// Logger attaches a request-scoped zerolog logger (carrying the request ID
// assigned by the RequestID middleware) to the request context and emits a
// single line per completed request.
func Logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := log.With().
				Str("request_id", id).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Logger()

			ctx := util.LogToContext(req.Context(), &l)
			ctx = util.RequestIDToContext(ctx, id)
			c.SetRequest(req.WithContext(ctx))

			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			l.Info().
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("duration", time.Since(start)).
				Msg("Handled request")

			return err
		}
	}
}
