package app

import (
	"context"
	"errors"
	"net/http"
)

// HTTPService adapts an http.Server to the runner's Service contract.
type HTTPService struct {
	name   string
	server *http.Server
}

// NewHTTPService wraps the API handler in a runnable HTTP server.
func NewHTTPService(addr string, handler http.Handler) *HTTPService {
	return &HTTPService{
		name: "http",
		server: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
	}
}

// Name identifies the service in runner logs.
func (s *HTTPService) Name() string {
	if s == nil || s.name == "" {
		return "http"
	}
	return s.name
}

// Start serves until the listener closes. http.ErrServerClosed marks
// an orderly shutdown and is not an error.
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests within the context deadline.
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
