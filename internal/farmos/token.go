package farmos

import (
	"sync"
	"time"
)

// Token is a bearer credential obtained from the farmOS token endpoint.
// ExpiresAt is absolute, computed at issuance from expires_in minus a
// safety skew so a token is never presented right at the boundary.
type Token struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	ExpiresAt    time.Time
}

// tokenStore holds the single live token for a client. Replacement is
// atomic: a failed fetch leaves the previous token untouched.
type tokenStore struct {
	mu  sync.Mutex
	tok *Token
}

// current returns the stored token if present and not expired by local
// clock comparison. No network call is ever made here.
func (s *tokenStore) current() *Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tok == nil || !time.Now().Before(s.tok.ExpiresAt) {
		return nil
	}

	return s.tok
}

// replace swaps in a newly obtained token.
func (s *tokenStore) replace(tok *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tok = tok
}

// invalidate clears the stored token, but only if it is still the one
// that was rejected. A concurrent request may already have refreshed the
// store; clearing a fresh token would force a pointless extra exchange.
func (s *tokenStore) invalidate(rejected *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tok != nil && rejected != nil && s.tok.AccessToken == rejected.AccessToken {
		s.tok = nil
	}
}
