package member

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/pkg"
)

// MemberHandler handles REST API requests for the member resource.
type MemberHandler struct {
	svc   domain.MemberService
	pages pkg.PageOptions
}

// NewMemberHandler creates a new MemberHandler. pages bounds list requests.
func NewMemberHandler(svc domain.MemberService, pages pkg.PageOptions) *MemberHandler {
	return &MemberHandler{svc: svc, pages: pages}
}

// Create handles POST /api/v1/members.
func (h *MemberHandler) Create(c *gin.Context) {
	var req MemberRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	m, err := h.svc.CreateMember(c.Request.Context(), req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, toResponse(*m))
}

// Get handles GET /api/v1/members/:id.
func (h *MemberHandler) Get(c *gin.Context) {
	m, err := h.svc.GetMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, toResponse(*m))
}

// List handles GET /api/v1/members.
func (h *MemberHandler) List(c *gin.Context) {
	req, err := pkg.ParsePageRequest(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	page, err := h.svc.ListMembers(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, domain.Project(page, toResponse))
}

// Update handles PUT /api/v1/members/:id.
func (h *MemberHandler) Update(c *gin.Context) {
	var req MemberRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	m, err := h.svc.UpdateMember(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, toResponse(*m))
}

// ChangeStatus handles PATCH /api/v1/members/:id/status.
func (h *MemberHandler) ChangeStatus(c *gin.Context) {
	var req StatusRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	m, err := h.svc.ChangeMemberStatus(c.Request.Context(), c.Param("id"), domain.Status(req.Status))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, toResponse(*m))
}

// Delete handles DELETE /api/v1/members/:id.
func (h *MemberHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteMember(c.Request.Context(), c.Param("id")); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.OK(c, "member deleted")
}
