package account

import "github.com/gin-gonic/gin"

// AccountModule implements the app.Module interface for the account domain.
type AccountModule struct {
	handler *AccountHandler
}

// NewModule creates a new AccountModule with the given handler.
// Panics if h is nil.
func NewModule(h *AccountHandler) *AccountModule {
	if h == nil {
		panic("account.NewModule: handler must not be nil")
	}
	return &AccountModule{handler: h}
}

// RegisterRoutes registers account API routes.
func (m *AccountModule) RegisterRoutes(api *gin.RouterGroup) {
	accounts := api.Group("/accounts")
	accounts.POST("", m.handler.Open)
	accounts.GET("", m.handler.List)
	accounts.GET("/:id", m.handler.Get)
	accounts.DELETE("/:id", m.handler.Close)
	accounts.GET("/:id/statement", m.handler.Statement)
}
