package account

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/pkg"
)

// HolderLookup resolves the member printed on a statement.
type HolderLookup interface {
	GetMember(ctx context.Context, id string) (*domain.Member, error)
}

// AccountHandler handles REST API requests for the account resource.
type AccountHandler struct {
	svc     domain.AccountService
	holders HolderLookup
	pages   pkg.PageOptions
	now     func() time.Time
}

// NewAccountHandler creates a new AccountHandler. holders may be nil, in which
// case statements are printed without the holder name.
func NewAccountHandler(svc domain.AccountService, holders HolderLookup, pages pkg.PageOptions) *AccountHandler {
	return &AccountHandler{svc: svc, holders: holders, pages: pages, now: time.Now}
}

// Open handles POST /api/v1/accounts.
func (h *AccountHandler) Open(c *gin.Context) {
	var req OpenAccountRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	a, err := h.svc.OpenAccount(c.Request.Context(), req.MemberID, domain.AccountType(req.Type), req.Currency)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, toResponse(*a))
}

// Get handles GET /api/v1/accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	a, err := h.svc.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, toResponse(*a))
}

// List handles GET /api/v1/accounts. The member_id query parameter narrows
// the result to one member.
func (h *AccountHandler) List(c *gin.Context) {
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	page, err := h.svc.ListAccounts(c.Request.Context(), c.Query("member_id"), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, domain.Project(page, toResponse))
}

// Close handles DELETE /api/v1/accounts/:id.
func (h *AccountHandler) Close(c *gin.Context) {
	if err := h.svc.CloseAccount(c.Request.Context(), c.Param("id")); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, "account closed")
}

// Statement handles GET /api/v1/accounts/:id/statement and streams a PDF.
func (h *AccountHandler) Statement(c *gin.Context) {
	ctx := c.Request.Context()
	a, txns, err := h.svc.Statement(ctx, c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	data := StatementData{Account: *a, Transactions: txns, GeneratedAt: h.now()}
	if h.holders != nil {
		if m, err := h.holders.GetMember(ctx, a.MemberID); err == nil {
			data.Holder = m.FullName()
		}
	}

	var buf bytes.Buffer
	if err := RenderStatement(&buf, data); err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeInternal, "render statement", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%s.pdf"`, a.AccountID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
