package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/relaxavro"
	"github.com/reoring/relaxavro/middleware"
)

// DecodeJSON decodes the request body with d, stores the record in the request
// context and aborts with 400 when decoding fails.
func DecodeJSON(d *relaxavro.Decoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := d.DecodeReader(c.Request.Context(), c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithRecord(c.Request.Context(), rec))
		c.Next()
	}
}

// GetRecord fetches the decoded record from gin.Context.
func GetRecord(c *gin.Context) (*relaxavro.Record, bool) {
	return middleware.RecordFromContext(c.Request.Context())
}
