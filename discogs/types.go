// Package discogs is the client adapter for the Discogs API: it signs
// OAuth 1.0a requests, runs the token-exchange legs of the handshake, and
// performs the authenticated and public catalog reads the service relays.
package discogs

// Consumer identifies this application to Discogs. Loaded once at startup and
// immutable for the process lifetime.
type Consumer struct {
	Key    string
	Secret string
}

// Access is the durable token pair issued at the end of a successful
// handshake. The service hands it to the caller and keeps no copy.
type Access struct {
	Token  string
	Secret string
}

// RequestTokenResult is the outcome of the first handshake leg.
type RequestTokenResult struct {
	Token        string
	Secret       string
	AuthorizeURL string
}

// Identity is the authenticated user's profile projection. Field tags match
// the Discogs user resource.
type Identity struct {
	Username    string `json:"username"`
	DisplayName string `json:"name"`
	Location    string `json:"location"`
}

// ReleaseResult is the tagged outcome of a public release lookup. A missing
// release is data, not a failure: Found is false and StatusCode carries the
// upstream status.
type ReleaseResult struct {
	Found      bool
	StatusCode int
	Body       []byte
}
