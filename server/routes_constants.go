package server

const (
	RouteLogin      = "/auth/login"
	RouteCallback   = "/auth/callback"
	RouteCollection = "/me/collection"
	RouteRelease    = "/release/{releaseID}"
	RouteHealth     = "/healthz"
)
