package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/httputil"
)

// ErrorHandler logs errors attached with c.Error. It writes a response only
// when the handler has not already written one.
func ErrorHandler(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		for _, e := range c.Errors {
			logger.Error().
				Err(e.Err).
				Str("request_id", RequestIDFrom(c)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Interface("meta", e.Meta).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}
		last := c.Errors.Last().Err
		c.JSON(errors.HTTPStatus(last), httputil.NewErrorResponse(errors.PublicMessage(last)))
	}
}
