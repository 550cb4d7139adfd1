package handler

import (
	"net/http"

	"github.com/staffops/staffops-backend/pkg/actor"
	"github.com/staffops/staffops-backend/pkg/capability"
	"github.com/staffops/staffops-backend/pkg/errors"
	"github.com/staffops/staffops-backend/pkg/httputil"
)

// MeHandler exposes the authenticated actor and their capabilities so clients
// can build their UI from the same capability set the server enforces.
type MeHandler struct{}

// NewMeHandler creates a new me handler
func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

// Get returns the current actor and their capabilities
func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	a := actor.FromContext(r.Context())
	if a == nil {
		httputil.Error(w, errors.Unauthorized("authentication required"))
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"id":           a.ID,
		"display_name": a.DisplayName,
		"email":        a.Email,
		"role":         a.Role,
		"capabilities": capability.CapabilitiesFor(a.Role),
	})
}
