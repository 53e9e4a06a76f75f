// Package auth orchestrates the three-legged OAuth 1.0a handshake: request
// token, user authorization redirect, access token exchange. It owns no
// transport and no storage, only the state machine that stitches the legs
// together through the session repository.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/discogs-bridge/auth/sessions"
	"github.com/jrsteele09/discogs-bridge/discogs"
)

// Upstream is the slice of the Discogs client the handshake needs.
type Upstream interface {
	RequestToken(ctx context.Context, callbackURL string) (*discogs.RequestTokenResult, error)
	AccessToken(ctx context.Context, requestToken, requestTokenSecret, verifier string) (discogs.Access, error)
	Identity(ctx context.Context, access discogs.Access) (*discogs.Identity, error)
}

// Login is the durable output of a completed handshake. The service keeps no
// copy; the caller presents the access pair on every later authenticated
// call.
type Login struct {
	Identity          discogs.Identity
	AccessToken       string
	AccessTokenSecret string
}

// Service runs the handshake state machine. It is safe for concurrent use;
// the session repository is the only shared state.
type Service struct {
	upstream     Upstream
	sessions     sessions.Repo
	callbackURL  string
	newSessionID func() string
	nowTime      func() time.Time
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithSessionIDFunc sets the session identifier source (primarily for testing).
func WithSessionIDFunc(f func() string) ServiceOption {
	return func(s *Service) {
		s.newSessionID = f
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(f func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = f
	}
}

// NewService initializes the handshake service with required dependencies.
func NewService(upstream Upstream, sessionRepo sessions.Repo, callbackURL string, options ...ServiceOption) (*Service, error) {
	if upstream == nil {
		return nil, errors.New("[NewService] upstream client is required")
	}
	if sessionRepo == nil {
		return nil, errors.New("[NewService] session repo is required")
	}
	if callbackURL == "" {
		return nil, errors.New("[NewService] callback URL is required")
	}

	s := &Service{
		upstream:     upstream,
		sessions:     sessionRepo,
		callbackURL:  callbackURL,
		newSessionID: uuid.NewString,
		nowTime:      time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// BeginLogin runs the first leg: it obtains a request token, stores the token
// pair under a fresh session identifier, and returns the authorize URL the
// caller must redirect the user to. Each call is a genuine new login attempt
// and gets its own session.
func (s *Service) BeginLogin(ctx context.Context) (redirectURL, sessionID string, err error) {
	res, err := s.upstream.RequestToken(ctx, s.callbackURL)
	if err != nil {
		return "", "", fmt.Errorf("request token leg: %w", err)
	}

	sessionID = s.newSessionID()
	record := sessions.Record{
		RequestToken:       res.Token,
		RequestTokenSecret: res.Secret,
		CreatedAt:          s.nowTime(),
	}
	if err := s.sessions.Upsert(ctx, sessionID, record); err != nil {
		return "", "", fmt.Errorf("store handshake session: %w", err)
	}

	return res.AuthorizeURL, sessionID, nil
}

// CompleteLogin runs the second leg. Both callback parameters are required;
// the callback token must match the one stored for the session, so a
// completed handshake cannot be stitched together from two different login
// attempts. The session record is consumed on success.
func (s *Service) CompleteLogin(ctx context.Context, sessionID, oauthToken, oauthVerifier string) (*Login, error) {
	if oauthToken == "" {
		return nil, ErrMissingToken
	}
	if oauthVerifier == "" {
		return nil, ErrMissingVerifier
	}

	record, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("load handshake session: %w", err)
	}

	if record.RequestToken != oauthToken {
		return nil, ErrTokenMismatch
	}

	access, err := s.upstream.AccessToken(ctx, record.RequestToken, record.RequestTokenSecret, oauthVerifier)
	if err != nil {
		return nil, fmt.Errorf("access token leg: %w", err)
	}

	// The record is one-shot; a failed delete only leaves a harmless stale
	// entry behind, so the login still succeeds.
	_ = s.sessions.Delete(ctx, sessionID)

	identity, err := s.upstream.Identity(ctx, access)
	if err != nil {
		return nil, fmt.Errorf("identity lookup: %w", err)
	}

	return &Login{
		Identity:          *identity,
		AccessToken:       access.Token,
		AccessTokenSecret: access.Secret,
	}, nil
}
