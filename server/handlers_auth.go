package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/discogs-bridge/auth"
	"github.com/jrsteele09/discogs-bridge/discogs"
)

// callbackResponse is handed to the caller on a completed handshake. The
// access pair is the caller's to keep; the service stores nothing.
type callbackResponse struct {
	Username          string `json:"username"`
	Name              string `json:"name"`
	Location          string `json:"location"`
	AccessToken       string `json:"accessToken"`
	AccessTokenSecret string `json:"accessTokenSecret"`
}

// LoginHandler starts a handshake: obtains a request token, binds the
// pending session to the browser via the signed cookie, and redirects to
// the upstream authorize page.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectURL, sessionID, err := s.handshake.BeginLogin(r.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("begin login failed")
			writeJSONError(w, http.StatusBadGateway, "could not start login with the catalog service")
			return
		}

		if err := s.setSessionCookie(w, r, sessionID); err != nil {
			s.logger.Error().Err(err).Msg("session cookie signing failed")
			writeJSONError(w, http.StatusInternalServerError, "could not create login session")
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// CallbackHandler completes the handshake when the upstream redirects the
// user back with a token and verifier.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := s.sessionIDFromCookie(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "missing or invalid login session cookie")
			return
		}

		oauthToken := r.URL.Query().Get("oauth_token")
		oauthVerifier := r.URL.Query().Get("oauth_verifier")

		login, err := s.handshake.CompleteLogin(r.Context(), sessionID, oauthToken, oauthVerifier)
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			writeJSONError(w, http.StatusBadRequest, "oauth_token parameter is required")
			return
		case errors.Is(err, auth.ErrMissingVerifier):
			writeJSONError(w, http.StatusBadRequest, "oauth_verifier parameter is required")
			return
		case errors.Is(err, auth.ErrTokenMismatch):
			writeJSONError(w, http.StatusBadRequest, "oauth_token does not belong to this login session")
			return
		case errors.Is(err, auth.ErrSessionExpired):
			writeJSONError(w, http.StatusBadRequest, "login session expired, start the login again")
			return
		case errors.Is(err, discogs.ErrVerifierRejected):
			writeJSONError(w, http.StatusBadRequest, "the catalog service rejected the oauth_verifier")
			return
		case err != nil:
			s.logger.Error().Err(err).Msg("complete login failed")
			writeJSONError(w, http.StatusBadGateway, "could not complete login with the catalog service")
			return
		}

		s.clearSessionCookie(w)
		writeJSON(w, http.StatusOK, callbackResponse{
			Username:          login.Identity.Username,
			Name:              login.Identity.DisplayName,
			Location:          login.Identity.Location,
			AccessToken:       login.AccessToken,
			AccessTokenSecret: login.AccessTokenSecret,
		})
	}
}
