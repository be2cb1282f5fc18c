package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/pkg"
)

const operatorContextKey = "operator"

// TokenVerifier validates a bearer token and returns the operator it was
// issued to.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

var (
	errMissingToken = domain.NewAppError(domain.CodeUnauthorized, "missing bearer token", nil)
	errInvalidToken = domain.NewAppError(domain.CodeUnauthorized, "invalid or expired token", nil)
)

// Auth rejects requests without a valid bearer token with a 401 envelope.
// Paths listed in publicPaths are matched exactly and skip verification.
// The authenticated operator is stored on the gin.Context and attached to the
// logging context.
func Auth(v TokenVerifier, publicPaths []string) gin.HandlerFunc {
	if v == nil {
		panic("middleware.Auth: verifier must not be nil")
	}
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := public[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			pkg.Abort(c, errMissingToken)
			return
		}
		operator, err := v.VerifyToken(token)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "token rejected", slog.String("error", err.Error()))
			pkg.Abort(c, errInvalidToken)
			return
		}

		c.Set(operatorContextKey, operator)
		ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("operator", operator))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetOperator returns the operator set by Auth, or "".
func GetOperator(c *gin.Context) string {
	return c.GetString(operatorContextKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
