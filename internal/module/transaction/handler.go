package transaction

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/pkg"
)

// TransactionHandler handles REST API requests for account transactions.
type TransactionHandler struct {
	svc   domain.TransactionService
	pages pkg.PageOptions
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc domain.TransactionService, pages pkg.PageOptions) *TransactionHandler {
	return &TransactionHandler{svc: svc, pages: pages}
}

// Post handles POST /api/v1/accounts/:id/transactions.
func (h *TransactionHandler) Post(c *gin.Context) {
	var req PostTransactionRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	txn, err := h.svc.PostTransaction(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, toResponse(*txn))
}

// List handles GET /api/v1/accounts/:id/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	page, err := h.svc.ListTransactions(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, domain.Project(page, toResponse))
}

// Get handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	txn, err := h.svc.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, toResponse(*txn))
}
