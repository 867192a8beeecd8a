package hw

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/util"
)

func GetEventsRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.GET("/events", getEventsHandler(s))
}

// getEventsHandler streams lifecycle events as server-sent events. Each
// subscriber gets an independent buffered feed; a consumer that stops reading
// loses events instead of slowing the core down.
func getEventsHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		res := c.Response()
		flusher, ok := res.Writer.(http.Flusher)
		if !ok {
			return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
		}

		res.Header().Set(echo.HeaderContentType, "text/event-stream")
		res.Header().Set(echo.HeaderCacheControl, "no-store")
		res.Header().Set(echo.HeaderConnection, "keep-alive")
		res.WriteHeader(http.StatusOK)
		flusher.Flush()

		events, unsubscribe := s.HW.Subscribe()
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, open := <-events:
				if !open {
					// Notifier shut down, the stream ends with the server.
					return nil
				}

				data, err := json.Marshal(eventItem(event))
				if err != nil {
					log.Error().Err(err).Msg("Failed to marshal event")
					continue
				}

				if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
					log.Debug().Err(err).Msg("Event stream consumer went away")
					return nil
				}

				flusher.Flush()
			}
		}
	}
}
