package admin

import "github.com/assinahub/assinahub/internal/provider"

// Handler serves the backoffice API.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
