package realtime

import (
	"github.com/gin-gonic/gin"

	"github.com/TestimonyAdegoke/montessa-sub006/auth"
	"github.com/TestimonyAdegoke/montessa-sub006/errors"
	"github.com/TestimonyAdegoke/montessa-sub006/server"
)

// StreamHandler serves the authenticated caller's event stream.
func StreamHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.FromContext(c.Request.Context())
		if !ok {
			server.RespondWithError(c, errors.Unauthorized(""))
			return
		}
		if err := m.Serve(c.Writer, c.Request, claims.UserID); err != nil {
			server.RespondWithError(c, err)
		}
	}
}

// activeUsersResponse is the diagnostics payload.
type activeUsersResponse struct {
	Users   []string `json:"users"`
	Handles int      `json:"handles"`
}

// ActiveUsersHandler lists users with at least one open stream.
func ActiveUsersHandler(r *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, handles := r.Count()
		server.RespondOK(c, activeUsersResponse{
			Users:   r.ActiveUsers(),
			Handles: handles,
		})
	}
}
