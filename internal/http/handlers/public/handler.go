package public

import "github.com/assinahub/assinahub/internal/provider"

// Handler serves the storefront and member-facing API.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
