package hw

import (
	"net/http"

	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/types"
	"github/chapool/hw-bridge/internal/util"
)

func PostTrimSigningHistoryRoute(s *api.Server) *echo.Route {
	return s.Router.APIV1HW.POST("/signing-requests/trim", postTrimSigningHistoryHandler(s))
}

// postTrimSigningHistoryHandler drops terminal signing requests older than
// the configured retention window. Explicit trimming is the only request GC;
// pending requests are never touched.
func postTrimSigningHistoryHandler(s *api.Server) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		log := util.LogFromContext(ctx)

		cutoff := s.Clock.Now().Add(-s.Config.HW.TrimHistoryAfter)
		removed := s.HW.TrimHistory(cutoff)

		log.Info().Int("removed", removed).Time("cutoff", cutoff).Msg("Trimmed signing request history")

		response := &types.PostTrimSigningHistoryResponse{
			Removed: swag.Int64(int64(removed)),
		}

		return util.ValidateAndReturn(c, http.StatusOK, response)
	}
}
