package transaction

import "github.com/gin-gonic/gin"

// TransactionModule implements the app.Module interface for transactions.
type TransactionModule struct {
	handler *TransactionHandler
}

// NewModule creates a new TransactionModule with the given handler.
// Panics if h is nil.
func NewModule(h *TransactionHandler) *TransactionModule {
	if h == nil {
		panic("transaction.NewModule: handler must not be nil")
	}
	return &TransactionModule{handler: h}
}

// RegisterRoutes registers transaction API routes. Posting and listing are
// nested under the owning account.
func (m *TransactionModule) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/accounts/:id/transactions", m.handler.Post)
	api.GET("/accounts/:id/transactions", m.handler.List)
	api.GET("/transactions/:id", m.handler.Get)
}
