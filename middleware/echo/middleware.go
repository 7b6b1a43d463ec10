package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/relaxavro"
	"github.com/reoring/relaxavro/middleware"
)

// DecodeJSON decodes the request body with d and stores the record in the
// request context, or responds 400 when decoding fails.
func DecodeJSON(d *relaxavro.Decoder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rec, err := d.DecodeReader(c.Request().Context(), c.Request().Body)
			if err != nil {
				return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(err))
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithRecord(c.Request().Context(), rec)))
			return next(c)
		}
	}
}

// GetRecord fetches the decoded record from echo.Context.
func GetRecord(c echo.Context) (*relaxavro.Record, bool) {
	return middleware.RecordFromContext(c.Request().Context())
}
