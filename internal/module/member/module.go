package member

import "github.com/gin-gonic/gin"

// MemberModule implements the app.Module interface for the member domain.
type MemberModule struct {
	handler *MemberHandler
}

// NewModule creates a new MemberModule with the given handler.
// Panics if h is nil.
func NewModule(h *MemberHandler) *MemberModule {
	if h == nil {
		panic("member.NewModule: handler must not be nil")
	}
	return &MemberModule{handler: h}
}

// RegisterRoutes registers member API routes.
func (m *MemberModule) RegisterRoutes(api *gin.RouterGroup) {
	members := api.Group("/members")
	members.POST("", m.handler.Create)
	members.GET("", m.handler.List)
	members.GET("/:id", m.handler.Get)
	members.PUT("/:id", m.handler.Update)
	members.PATCH("/:id/status", m.handler.ChangeStatus)
	members.DELETE("/:id", m.handler.Delete)
}
