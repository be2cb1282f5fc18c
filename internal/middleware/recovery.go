package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/pkg"
)

// Recovery turns a panic in a later handler into a 500 failure envelope
// ({"responseCode":"96","responseDescription":"internal error"}) and logs the
// panic value with its stack trace.
//
// http.ErrAbortHandler is re-panicked so net/http can drop the connection.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			log.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				pkg.NewErrorResult(domain.CodeInternal, domain.ErrInternal.Message))
		}()
		c.Next()
	}
}
