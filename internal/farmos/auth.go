package farmos

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// grantKind enumerates the two supported OAuth2 flows. The set is closed
// and the kind is fixed when the client is constructed.
type grantKind int

const (
	grantClientCredentials grantKind = iota
	grantPassword
)

func (k grantKind) String() string {
	if k == grantPassword {
		return "password"
	}

	return "client_credentials"
}

// grantConfig holds the immutable parameters for the token exchange.
type grantConfig struct {
	kind         grantKind
	clientID     string
	clientSecret string
	username     string
	password     string
}

// form builds the form-encoded token request body for this grant.
func (g grantConfig) form() url.Values {
	v := url.Values{}
	v.Set("grant_type", g.kind.String())
	v.Set("client_id", g.clientID)

	if g.clientSecret != "" || g.kind == grantClientCredentials {
		v.Set("client_secret", g.clientSecret)
	}

	if g.kind == grantPassword {
		v.Set("username", g.username)
		v.Set("password", g.password)
	}

	return v
}

// tokenResponse is the JSON body of a successful token exchange.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// expirySkew is subtracted from expires_in so a token is judged expired
// slightly before the server would reject it.
const expirySkew = 10 * time.Second

// authenticate performs one token-endpoint exchange and returns the new
// token. It never retries; retry policy belongs to the request path.
func (c *Client) authenticate(ctx context.Context) (*Token, error) {
	c.logger.Info("fetching farmOS token",
		slog.String("grant", c.grant.kind.String()),
		slog.String("url", c.tokenURL),
	)

	body := c.grant.form().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(body))
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Status: resp.StatusCode, Body: sanitizeResponseBody(respBody)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(respBody, &tr); err != nil || tr.AccessToken == "" {
		return nil, &AuthError{Status: resp.StatusCode, Body: sanitizeResponseBody(respBody)}
	}

	tok := &Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - expirySkew),
	}

	c.logger.Debug("farmOS token acquired",
		slog.Time("expires_at", tok.ExpiresAt),
	)

	return tok, nil
}

// freshToken obtains a new token and installs it in the store. Concurrent
// callers are collapsed into a single exchange; every waiter observes the
// same resulting token.
func (c *Client) freshToken(ctx context.Context) (*Token, error) {
	v, err, _ := c.group.Do("token", func() (interface{}, error) {
		tok, err := c.authenticate(ctx)
		if err != nil {
			return nil, err
		}

		c.store.replace(tok)

		return tok, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Token), nil
}
