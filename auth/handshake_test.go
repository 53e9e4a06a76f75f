package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/discogs-bridge/auth"
	"github.com/jrsteele09/discogs-bridge/auth/sessions"
	"github.com/jrsteele09/discogs-bridge/discogs"
	"github.com/stretchr/testify/require"
)

const (
	testCallbackURL = "http://localhost:8000/auth/callback"
	testVerifier    = "v123"
)

// fakeUpstream is a test double for auth.Upstream. Unset funcs fall back to
// a well-behaved upstream that issues sequential tokens and grants any
// verifier equal to testVerifier.
type fakeUpstream struct {
	mu      sync.Mutex
	counter int

	requestTokenFunc func(ctx context.Context, callbackURL string) (*discogs.RequestTokenResult, error)
	accessTokenFunc  func(ctx context.Context, requestToken, requestTokenSecret, verifier string) (discogs.Access, error)
	identityFunc     func(ctx context.Context, access discogs.Access) (*discogs.Identity, error)
}

func (f *fakeUpstream) RequestToken(ctx context.Context, callbackURL string) (*discogs.RequestTokenResult, error) {
	if f.requestTokenFunc != nil {
		return f.requestTokenFunc(ctx, callbackURL)
	}
	f.mu.Lock()
	f.counter++
	n := f.counter
	f.mu.Unlock()
	token := fmt.Sprintf("req-token-%d", n)
	return &discogs.RequestTokenResult{
		Token:        token,
		Secret:       fmt.Sprintf("req-secret-%d", n),
		AuthorizeURL: "https://www.discogs.com/oauth/authorize?oauth_token=" + token,
	}, nil
}

func (f *fakeUpstream) AccessToken(ctx context.Context, requestToken, requestTokenSecret, verifier string) (discogs.Access, error) {
	if f.accessTokenFunc != nil {
		return f.accessTokenFunc(ctx, requestToken, requestTokenSecret, verifier)
	}
	if verifier != testVerifier {
		return discogs.Access{}, discogs.ErrVerifierRejected
	}
	return discogs.Access{Token: "access-" + requestToken, Secret: "access-secret-" + requestTokenSecret}, nil
}

func (f *fakeUpstream) Identity(ctx context.Context, access discogs.Access) (*discogs.Identity, error) {
	if f.identityFunc != nil {
		return f.identityFunc(ctx, access)
	}
	return &discogs.Identity{Username: "rodneyfool", DisplayName: "Rodney Fool", Location: "Portland"}, nil
}

type testFixture struct {
	upstream *fakeUpstream
	repo     *sessions.InMemoryRepo
	service  *auth.Service
}

func setupTestFixture(t *testing.T, options ...auth.ServiceOption) *testFixture {
	t.Helper()

	upstream := &fakeUpstream{}
	repo := sessions.NewInMemoryRepo(15 * time.Minute)

	service, err := auth.NewService(upstream, repo, testCallbackURL, options...)
	require.NoError(t, err)

	return &testFixture{upstream: upstream, repo: repo, service: service}
}

func TestNewService(t *testing.T) {
	upstream := &fakeUpstream{}
	repo := sessions.NewInMemoryRepo(time.Minute)

	_, err := auth.NewService(nil, repo, testCallbackURL)
	require.Error(t, err)

	_, err = auth.NewService(upstream, nil, testCallbackURL)
	require.Error(t, err)

	_, err = auth.NewService(upstream, repo, "")
	require.Error(t, err)
}

func TestBeginLogin(t *testing.T) {
	t.Run("returns authorize url and a session", func(t *testing.T) {
		f := setupTestFixture(t)

		redirectURL, sessionID, err := f.service.BeginLogin(context.Background())
		require.NoError(t, err)
		require.Contains(t, redirectURL, "oauth_token=req-token-1")
		require.NotEmpty(t, sessionID)

		record, err := f.repo.Get(context.Background(), sessionID)
		require.NoError(t, err)
		require.Equal(t, "req-token-1", record.RequestToken)
		require.Equal(t, "req-secret-1", record.RequestTokenSecret)
	})

	t.Run("surfaces upstream failure unchanged", func(t *testing.T) {
		f := setupTestFixture(t)
		wantErr := &discogs.UpstreamError{Endpoint: "/oauth/request_token", StatusCode: 503, Message: "down"}
		f.upstream.requestTokenFunc = func(ctx context.Context, callbackURL string) (*discogs.RequestTokenResult, error) {
			return nil, wantErr
		}

		_, _, err := f.service.BeginLogin(context.Background())
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("passes the configured callback to the upstream", func(t *testing.T) {
		f := setupTestFixture(t)
		var gotCallback string
		f.upstream.requestTokenFunc = func(ctx context.Context, callbackURL string) (*discogs.RequestTokenResult, error) {
			gotCallback = callbackURL
			return &discogs.RequestTokenResult{Token: "t", Secret: "s", AuthorizeURL: "http://a"}, nil
		}

		_, _, err := f.service.BeginLogin(context.Background())
		require.NoError(t, err)
		require.Equal(t, testCallbackURL, gotCallback)
	})
}

func TestCompleteLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("begin then complete yields identity and access pair", func(t *testing.T) {
		f := setupTestFixture(t)

		_, sessionID, err := f.service.BeginLogin(ctx)
		require.NoError(t, err)

		login, err := f.service.CompleteLogin(ctx, sessionID, "req-token-1", testVerifier)
		require.NoError(t, err)
		require.Equal(t, "rodneyfool", login.Identity.Username)
		require.Equal(t, "Rodney Fool", login.Identity.DisplayName)
		require.NotEmpty(t, login.AccessToken)
		require.NotEmpty(t, login.AccessTokenSecret)

		// The session record is consumed
		_, err = f.repo.Get(ctx, sessionID)
		require.ErrorIs(t, err, sessions.ErrNotFound)
	})

	t.Run("missing verifier", func(t *testing.T) {
		f := setupTestFixture(t)

		_, sessionID, err := f.service.BeginLogin(ctx)
		require.NoError(t, err)

		_, err = f.service.CompleteLogin(ctx, sessionID, "req-token-1", "")
		require.ErrorIs(t, err, auth.ErrMissingVerifier)
	})

	t.Run("missing token", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.CompleteLogin(ctx, "any-session", "", testVerifier)
		require.ErrorIs(t, err, auth.ErrMissingToken)
	})

	t.Run("session never produced by a begin", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.CompleteLogin(ctx, "made-up-session", "some-token", testVerifier)
		require.ErrorIs(t, err, auth.ErrSessionExpired)
	})

	t.Run("callback token from a different handshake is rejected", func(t *testing.T) {
		f := setupTestFixture(t)

		_, firstSession, err := f.service.BeginLogin(ctx)
		require.NoError(t, err)
		_, _, err = f.service.BeginLogin(ctx)
		require.NoError(t, err)

		// First session holds req-token-1; presenting the second handshake's
		// token under it must fail.
		_, err = f.service.CompleteLogin(ctx, firstSession, "req-token-2", testVerifier)
		require.ErrorIs(t, err, auth.ErrTokenMismatch)

		// The record survives for the legitimate completion
		login, err := f.service.CompleteLogin(ctx, firstSession, "req-token-1", testVerifier)
		require.NoError(t, err)
		require.Equal(t, "access-req-token-1", login.AccessToken)
	})

	t.Run("surfaces access token failure", func(t *testing.T) {
		f := setupTestFixture(t)
		wantErr := &discogs.UpstreamError{Endpoint: "/oauth/access_token", StatusCode: 500, Message: "boom"}
		f.upstream.accessTokenFunc = func(ctx context.Context, requestToken, requestTokenSecret, verifier string) (discogs.Access, error) {
			return discogs.Access{}, wantErr
		}

		_, sessionID, err := f.service.BeginLogin(ctx)
		require.NoError(t, err)

		_, err = f.service.CompleteLogin(ctx, sessionID, "req-token-1", testVerifier)
		require.ErrorIs(t, err, wantErr)
	})

	t.Run("exchange signs with the stored request token secret", func(t *testing.T) {
		f := setupTestFixture(t)
		var gotSecret string
		f.upstream.accessTokenFunc = func(ctx context.Context, requestToken, requestTokenSecret, verifier string) (discogs.Access, error) {
			gotSecret = requestTokenSecret
			return discogs.Access{Token: "a", Secret: "b"}, nil
		}

		_, sessionID, err := f.service.BeginLogin(ctx)
		require.NoError(t, err)

		_, err = f.service.CompleteLogin(ctx, sessionID, "req-token-1", testVerifier)
		require.NoError(t, err)
		require.Equal(t, "req-secret-1", gotSecret)
	})
}

func TestConcurrentHandshakes(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	const logins = 16
	sessionIDs := make([]string, logins)
	tokens := make([]string, logins)
	errs := make([]error, logins)

	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			redirectURL, sessionID, err := f.service.BeginLogin(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			sessionIDs[i] = sessionID
			tokens[i] = redirectURL[len("https://www.discogs.com/oauth/authorize?oauth_token="):]
		}(i)
	}
	wg.Wait()

	for i := 0; i < logins; i++ {
		require.NoError(t, errs[i])
	}

	// Every session completes only under its own identifier with its own token
	for i := 0; i < logins; i++ {
		login, err := f.service.CompleteLogin(ctx, sessionIDs[i], tokens[i], testVerifier)
		require.NoError(t, err)
		require.Equal(t, "access-"+tokens[i], login.AccessToken)
	}
}
