package discogs

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAPIBaseURL   = "https://api.discogs.com"
	defaultAuthorizeURL = "https://www.discogs.com/oauth/authorize"
	defaultUserAgent    = "HouseRecommenderApp/1.0"

	requestTokenEndpoint = "/oauth/request_token"
	accessTokenEndpoint  = "/oauth/access_token"
	identityEndpoint     = "/oauth/identity"

	requestTimeout = 10 * time.Second

	collectionPageSize = 100
	collectionPageCap  = 50
)

// Client issues signed requests to Discogs. It holds no per-call state and is
// safe for concurrent use.
type Client struct {
	consumer     Consumer
	httpClient   *http.Client
	apiBaseURL   string
	authorizeURL string
	userAgent    string
	nonce        func() string
	now          func() time.Time
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAPIBaseURL points the client at a different API host (primarily for
// testing against a local double).
func WithAPIBaseURL(u string) Option {
	return func(c *Client) {
		c.apiBaseURL = strings.TrimRight(u, "/")
	}
}

// WithAuthorizeURL replaces the user-facing authorize page URL.
func WithAuthorizeURL(u string) Option {
	return func(c *Client) {
		c.authorizeURL = u
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithNonceFunc sets the nonce source (primarily for testing).
func WithNonceFunc(f func() string) Option {
	return func(c *Client) {
		c.nonce = f
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(f func() time.Time) Option {
	return func(c *Client) {
		c.now = f
	}
}

// NewClient initializes a Client for the given consumer credentials.
func NewClient(consumer Consumer, options ...Option) (*Client, error) {
	if consumer.Key == "" || consumer.Secret == "" {
		return nil, errors.New("[NewClient] consumer key and secret are required")
	}

	c := &Client{
		consumer:     consumer,
		httpClient:   &http.Client{Timeout: requestTimeout},
		apiBaseURL:   defaultAPIBaseURL,
		authorizeURL: defaultAuthorizeURL,
		userAgent:    defaultUserAgent,
		nonce:        randomNonce,
		now:          time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func randomNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RequestToken runs the first handshake leg: an unauthenticated signed call
// (the signing key carries an empty token secret) that yields a temporary
// token pair and the authorize URL the user must be redirected to.
func (c *Client) RequestToken(ctx context.Context, callbackURL string) (*RequestTokenResult, error) {
	oauthParams := c.oauthParams("")
	oauthParams["oauth_callback"] = callbackURL

	values, err := c.tokenExchange(ctx, requestTokenEndpoint, oauthParams, "")
	if err != nil {
		return nil, err
	}

	token := values.Get("oauth_token")
	secret := values.Get("oauth_token_secret")
	if token == "" || secret == "" {
		return nil, &UpstreamError{Endpoint: requestTokenEndpoint, StatusCode: http.StatusOK, Message: "response missing token fields"}
	}
	if values.Get("oauth_callback_confirmed") != "true" {
		return nil, &UpstreamError{Endpoint: requestTokenEndpoint, StatusCode: http.StatusOK, Message: "callback not confirmed"}
	}

	return &RequestTokenResult{
		Token:        token,
		Secret:       secret,
		AuthorizeURL: c.authorizeURL + "?oauth_token=" + url.QueryEscape(token),
	}, nil
}

// AccessToken runs the second handshake leg, exchanging the authorized
// request token plus verifier for the durable access pair. The request is
// signed with the request token secret stored between the legs.
func (c *Client) AccessToken(ctx context.Context, requestToken, requestTokenSecret, verifier string) (Access, error) {
	if verifier == "" {
		return Access{}, ErrMissingVerifier
	}

	oauthParams := c.oauthParams(requestToken)
	oauthParams["oauth_verifier"] = verifier

	values, err := c.tokenExchange(ctx, accessTokenEndpoint, oauthParams, requestTokenSecret)
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) && ue.StatusCode == http.StatusUnauthorized {
			return Access{}, fmt.Errorf("%w: %s", ErrVerifierRejected, ue.Message)
		}
		return Access{}, err
	}

	token := values.Get("oauth_token")
	secret := values.Get("oauth_token_secret")
	if token == "" || secret == "" {
		return Access{}, &UpstreamError{Endpoint: accessTokenEndpoint, StatusCode: http.StatusOK, Message: "response missing token fields"}
	}

	return Access{Token: token, Secret: secret}, nil
}

// Identity fetches who the access pair belongs to: the identity endpoint for
// the username, then the user resource for the profile fields. Not cached.
func (c *Client) Identity(ctx context.Context, access Access) (*Identity, error) {
	var who struct {
		Username string `json:"username"`
	}
	if err := c.getJSON(ctx, identityEndpoint, access, &who); err != nil {
		return nil, err
	}

	ident := Identity{Username: who.Username}
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(who.Username), access, &ident); err != nil {
		return nil, err
	}
	if ident.Username == "" {
		ident.Username = who.Username
	}
	return &ident, nil
}

type collectionPage struct {
	Pagination struct {
		Page  int `json:"page"`
		Pages int `json:"pages"`
	} `json:"pagination"`
	Releases []struct {
		BasicInformation struct {
			Title string `json:"title"`
		} `json:"basic_information"`
	} `json:"releases"`
}

// Collection fetches every release title in the user's collection, following
// pagination until the upstream reports no further pages or the page cap is
// reached.
func (c *Client) Collection(ctx context.Context, access Access, username string) ([]string, error) {
	var titles []string

	for page := 1; page <= collectionPageCap; page++ {
		endpoint := fmt.Sprintf("/users/%s/collection/folders/0/releases?page=%d&per_page=%d",
			url.PathEscape(username), page, collectionPageSize)

		var payload collectionPage
		if err := c.getJSON(ctx, endpoint, access, &payload); err != nil {
			return nil, err
		}

		for _, release := range payload.Releases {
			titles = append(titles, release.BasicInformation.Title)
		}

		if page >= payload.Pagination.Pages {
			break
		}
	}

	return titles, nil
}

// Release looks up a public release by id, unauthenticated. A non-200 from
// the upstream is a result, not an error: callers decide how to report it.
// Only transport-level failures return an error.
func (c *Client) Release(ctx context.Context, releaseID int64) (*ReleaseResult, error) {
	endpoint := "/releases/" + strconv.FormatInt(releaseID, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBaseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build release request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &ReleaseResult{Found: false, StatusCode: resp.StatusCode}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	return &ReleaseResult{Found: true, StatusCode: resp.StatusCode, Body: body}, nil
}

// oauthParams returns the protocol parameters common to every signed call.
func (c *Client) oauthParams(token string) map[string]string {
	params := map[string]string{
		"oauth_consumer_key":     c.consumer.Key,
		"oauth_nonce":            c.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(c.now().Unix(), 10),
		"oauth_version":          "1.0",
	}
	if token != "" {
		params["oauth_token"] = token
	}
	return params
}

// signedRequest builds the request and attaches the OAuth Authorization
// header. The signature covers the query parameters as well as the oauth_*
// set; the base URL excludes the query string per RFC 5849.
func (c *Client) signedRequest(ctx context.Context, method, rawURL string, oauthParams map[string]string, tokenSecret string) (*http.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", rawURL, err)
	}

	signed := make(map[string]string, len(oauthParams)+4)
	for name, values := range u.Query() {
		if len(values) > 0 {
			signed[name] = values[0]
		}
	}
	for name, value := range oauthParams {
		signed[name] = value
	}

	base := signatureBaseString(method, u.Scheme+"://"+u.Host+u.Path, signed)

	header := make(map[string]string, len(oauthParams)+1)
	for name, value := range oauthParams {
		header[name] = value
	}
	header["oauth_signature"] = signBaseString(base, c.consumer.Secret, tokenSecret)

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", authorizationHeader(header))
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// tokenExchange performs a signed POST against a token endpoint and parses
// the URL-encoded response body.
func (c *Client) tokenExchange(ctx context.Context, endpoint string, oauthParams map[string]string, tokenSecret string) (url.Values, error) {
	req, err := c.signedRequest(ctx, http.MethodPost, c.apiBaseURL+endpoint, oauthParams, tokenSecret)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: snippet(body)}
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "malformed token response"}
	}
	return values, nil
}

// getJSON performs a signed GET and decodes a JSON response.
func (c *Client) getJSON(ctx context.Context, endpoint string, access Access, out any) error {
	req, err := c.signedRequest(ctx, http.MethodGet, c.apiBaseURL+endpoint, c.oauthParams(access.Token), access.Secret)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: snippet(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: "malformed json response"}
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		return "empty response body"
	}
	return s
}
