package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/mybook/internal/errs"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// AbortWithError records err for ErrorHandlingMiddleware and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandlingMiddleware turns the last handler error into a status code and a generic body.
// 5xx details go to the log only.
func ErrorHandlingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		last := c.Errors.Last()
		if last == nil {
			return
		}

		status, body := mapError(last.Err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.Error(last.Err),
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.Int("status", status),
			)
		} else {
			log.Debug("request rejected", zap.Error(last.Err), zap.Int("status", status))
		}
		c.AbortWithStatusJSON(status, body)
	}
}

func mapError(err error) (int, errorBody) {
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Message: "unauthenticated", Code: "unauthenticated"}
	case errors.Is(err, errs.ErrInvalidArgument):
		return http.StatusBadRequest, errorBody{Message: "invalid request", Code: "invalid_argument"}
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, errorBody{Message: "book not purchased", Code: "forbidden"}
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, errorBody{Message: "not found", Code: "not_found"}
	case errors.Is(err, errs.ErrAlreadyPurchased):
		return http.StatusConflict, errorBody{Message: "book already purchased", Code: "already_purchased"}
	case errors.Is(err, errs.ErrUpstream):
		return http.StatusBadGateway, errorBody{Message: "books service unavailable", Code: "upstream_error"}
	default:
		return http.StatusInternalServerError, errorBody{Message: "internal server error", Code: "internal_error"}
	}
}
