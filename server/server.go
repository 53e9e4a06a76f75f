package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/discogs-bridge/auth"
	"github.com/jrsteele09/discogs-bridge/discogs"
	"github.com/jrsteele09/discogs-bridge/internal/config"
	"github.com/rs/zerolog"
)

// Catalog is the slice of the Discogs client the proxy endpoints need.
type Catalog interface {
	Identity(ctx context.Context, access discogs.Access) (*discogs.Identity, error)
	Collection(ctx context.Context, access discogs.Access, username string) ([]string, error)
	Release(ctx context.Context, releaseID int64) (*discogs.ReleaseResult, error)
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	handshake *auth.Service
	catalog   Catalog
	logger    zerolog.Logger
}

func New(cfg config.Config, handshake *auth.Service, catalog Catalog, logger zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if handshake == nil {
		return nil, errors.New("[Server New] handshake service is required")
	}
	if catalog == nil {
		return nil, errors.New("[Server New] catalog client is required")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		handshake: handshake,
		catalog:   catalog,
		logger:    logger,
		env:       cfg.GetEnv(),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) initRoutes() {
	base := s.baseMiddleware()

	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), base...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), base...))
	s.RegisterRouteFunc("GET "+RouteCollection, ChainMiddleware(s.CollectionHandler(), base...))
	s.RegisterRouteFunc("GET "+RouteRelease, ChainMiddleware(s.ReleaseHandler(), base...))
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), base...))
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip route logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logger.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			s.logger.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
