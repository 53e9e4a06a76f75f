package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jrsteele09/discogs-bridge/discogs"
)

type collectionResponse struct {
	Count  int      `json:"count"`
	Titles []string `json:"titles"`
}

// releaseErrorResponse mirrors the error object the original service
// returned for missed release lookups, but under the upstream's real status
// code rather than a 200.
type releaseErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// CollectionHandler fetches the authenticated user's collection. The caller
// presents the access pair issued by the callback on every request; no
// server-side session is involved.
func (s *Server) CollectionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		access := discogs.Access{
			Token:  query.Get("oauthToken"),
			Secret: query.Get("oauthSecret"),
		}
		if access.Token == "" || access.Secret == "" {
			writeJSONError(w, http.StatusUnauthorized, "oauthToken and oauthSecret query parameters are required")
			return
		}

		identity, err := s.catalog.Identity(r.Context(), access)
		if err != nil {
			s.upstreamFailure(w, r, err)
			return
		}

		titles, err := s.catalog.Collection(r.Context(), access, identity.Username)
		if err != nil {
			s.upstreamFailure(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, collectionResponse{Count: len(titles), Titles: titles})
	}
}

// ReleaseHandler proxies a public release lookup. The upstream body passes
// through verbatim on success; a miss keeps the upstream status code with a
// structured error object.
func (s *Server) ReleaseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		releaseID, err := strconv.ParseInt(r.PathValue("releaseID"), 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "release id must be an integer")
			return
		}

		result, err := s.catalog.Release(r.Context(), releaseID)
		if err != nil {
			s.upstreamFailure(w, r, err)
			return
		}

		if !result.Found {
			writeJSON(w, result.StatusCode, releaseErrorResponse{
				Error:      "Release not found",
				StatusCode: result.StatusCode,
			})
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Body)
	}
}

// upstreamFailure maps an adapter error onto the HTTP surface: rejected
// credentials become a 401, anything else a 502. The failure is never
// swallowed or retried.
func (s *Server) upstreamFailure(w http.ResponseWriter, r *http.Request, err error) {
	var ue *discogs.UpstreamError
	if errors.As(err, &ue) && (ue.StatusCode == http.StatusUnauthorized || ue.StatusCode == http.StatusForbidden) {
		writeJSONError(w, http.StatusUnauthorized, "the catalog service rejected the supplied credentials")
		return
	}

	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("upstream call failed")
	writeJSONError(w, http.StatusBadGateway, "upstream request failed")
}
