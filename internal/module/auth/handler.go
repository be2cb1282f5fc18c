package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pension/internal/pkg"
)

// TokenIssuer exchanges operator credentials for a token.
type TokenIssuer interface {
	IssueToken(ctx context.Context, username, password string) (*TokenResponse, error)
}

// AuthHandler handles REST API requests for authentication.
type AuthHandler struct {
	svc TokenIssuer
}

// NewHandler creates a new AuthHandler with the given issuer.
func NewHandler(svc TokenIssuer) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Token handles POST /api/v1/auth/token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.IssueToken(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, resp)
}
