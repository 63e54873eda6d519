package farmos

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantForm_ClientCredentials(t *testing.T) {
	g := grantConfig{
		kind:         grantClientCredentials,
		clientID:     "farm",
		clientSecret: "s3cret",
	}

	form := g.form()

	assert.Equal(t, "client_credentials", form.Get("grant_type"))
	assert.Equal(t, "farm", form.Get("client_id"))
	assert.Equal(t, "s3cret", form.Get("client_secret"))
	assert.NotContains(t, form, "username")
	assert.NotContains(t, form, "password")
}

func TestGrantForm_Password(t *testing.T) {
	g := grantConfig{
		kind:         grantPassword,
		clientID:     "farm",
		clientSecret: "s3cret",
		username:     "alice",
		password:     "hunter2",
	}

	form := g.form()

	assert.Equal(t, "password", form.Get("grant_type"))
	assert.Equal(t, "farm", form.Get("client_id"))
	assert.Equal(t, "s3cret", form.Get("client_secret"))
	assert.Equal(t, "alice", form.Get("username"))
	assert.Equal(t, "hunter2", form.Get("password"))
}

// farmOS public clients have no secret; the field must then be omitted
// entirely from the password-grant body, not sent empty.
func TestGrantForm_PasswordWithoutSecret(t *testing.T) {
	g := grantConfig{
		kind:     grantPassword,
		clientID: "farm",
		username: "alice",
		password: "hunter2",
	}

	form := g.form()

	assert.NotContains(t, form, "client_secret")
}

func TestNew_SelectsPasswordGrantWhenCredentialsPresent(t *testing.T) {
	c := New(Options{BaseURL: "https://farm.example.com", ClientID: "farm", Username: "alice", Password: "hunter2"})
	assert.Equal(t, grantPassword, c.grant.kind)

	c = New(Options{BaseURL: "https://farm.example.com", ClientID: "farm"})
	assert.Equal(t, grantClientCredentials, c.grant.kind)

	// Username without password is not a usable password grant.
	c = New(Options{BaseURL: "https://farm.example.com", ClientID: "farm", Username: "alice"})
	assert.Equal(t, grantClientCredentials, c.grant.kind)
}

func TestAuthenticate_SendsFormEncodedBody(t *testing.T) {
	var (
		contentType string
		form        url.Values
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		form = r.PostForm

		fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	}))
	defer server.Close()

	c := New(Options{BaseURL: server.URL, ClientID: "farm", Username: "alice", Password: "hunter2"})

	tok, err := c.authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)

	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "password", form.Get("grant_type"))
	assert.Equal(t, "alice", form.Get("username"))
}

func TestAuthenticate_AppliesExpirySkew(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
	}))
	defer server.Close()

	c := New(Options{BaseURL: server.URL, ClientID: "farm"})

	before := time.Now()

	tok, err := c.authenticate(context.Background())
	require.NoError(t, err)

	want := before.Add(3600*time.Second - expirySkew)
	assert.WithinDuration(t, want, tok.ExpiresAt, 2*time.Second)
}

func TestTokenStore_CurrentRejectsExpired(t *testing.T) {
	var s tokenStore

	assert.Nil(t, s.current(), "empty store yields no token")

	s.replace(&Token{AccessToken: "stale", ExpiresAt: time.Now().Add(-time.Minute)})
	assert.Nil(t, s.current(), "expired token is never handed out")

	live := &Token{AccessToken: "live", ExpiresAt: time.Now().Add(time.Hour)}
	s.replace(live)
	assert.Equal(t, live, s.current())
}

func TestTokenStore_InvalidateOnlyClearsRejectedToken(t *testing.T) {
	var s tokenStore

	old := &Token{AccessToken: "old", ExpiresAt: time.Now().Add(time.Hour)}
	fresh := &Token{AccessToken: "fresh", ExpiresAt: time.Now().Add(time.Hour)}

	s.replace(old)
	s.invalidate(old)
	assert.Nil(t, s.current(), "rejected token is cleared")

	// A concurrent caller already swapped in a fresh token; a late 401 on
	// the old one must not wipe it.
	s.replace(fresh)
	s.invalidate(old)
	assert.Equal(t, fresh, s.current())
}
