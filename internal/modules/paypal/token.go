package paypal

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// PayPal access tokens live ~9 minutes; refresh a minute early so an almost
// expired token is never sent with a gateway call.
const tokenExpirySkew = 60 * time.Second

// tokenSource exchanges the client id and secret for a bearer token and
// caches it process-wide until near expiry. Any 401 from a gateway call
// invalidates the cache.
type tokenSource struct {
	clientID string
	secret   string
	baseURL  string
	hc       *http.Client
	now      func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(clientID, secret, baseURL string, hc *http.Client) *tokenSource {
	return &tokenSource{
		clientID: clientID,
		secret:   secret,
		baseURL:  baseURL,
		hc:       hc,
		now:      time.Now,
	}
}

// Token returns the cached bearer token, exchanging credentials when the
// cache is empty or stale.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expiry) {
		return t.token, nil
	}
	if t.clientID == "" || t.secret == "" {
		return "", &AuthError{Body: "PAYPAL_CLIENT_ID and PAYPAL_SECRET must be set"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", &AuthError{Body: err.Error()}
	}
	req.SetBasicAuth(t.clientID, t.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.hc.Do(req)
	if err != nil {
		return "", &AuthError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{Status: resp.StatusCode, Body: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		return "", &AuthError{Status: resp.StatusCode, Body: "malformed token response: " + string(body)}
	}

	t.token = tr.AccessToken
	t.expiry = t.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenExpirySkew)
	return t.token, nil
}

// invalidate clears the cached token so the next call re-exchanges.
func (t *tokenSource) invalidate() {
	t.mu.Lock()
	t.token = ""
	t.expiry = time.Time{}
	t.mu.Unlock()
}
