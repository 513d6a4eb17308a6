package zippyshare

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"zippyfetch/internal"
	"zippyfetch/utils"
)

const (
	sessionNameCookie = "zipname"
	sessionHashCookie = "ziphash"
)

// Credential is a logged-in session. It is only meaningful to the site.
type Credential struct {
	hash string
	name string
}

// NewCredential builds a credential from known session cookie values
func NewCredential(hash, name string) Credential {
	return Credential{hash: hash, name: name}
}

// EmptyCredential returns the unauthenticated credential
func EmptyCredential() Credential {
	return Credential{}
}

// IsEmpty reports whether c lacks either session value
func (c Credential) IsEmpty() bool {
	return c.hash == "" || c.name == ""
}

// Hash returns the ziphash session value
func (c Credential) Hash() string {
	return c.hash
}

// Name returns the zipname session value
func (c Credential) Name() string {
	return c.name
}

// String keeps session values out of logs
func (c Credential) String() string {
	if c.IsEmpty() {
		return "Credential(empty)"
	}
	return "Credential(" + c.name + ", [REDACTED])"
}

// CookieSet accumulates cookies across responses, keeping first-seen order.
// A later cookie with the same name replaces the earlier value.
type CookieSet struct {
	order  []string
	values map[string]string
}

// NewCookieSet creates an empty cookie set
func NewCookieSet() *CookieSet {
	return &CookieSet{values: make(map[string]string)}
}

// Merge adds every well-formed Set-Cookie value in header
func (s *CookieSet) Merge(header http.Header) {
	for _, line := range header.Values("Set-Cookie") {
		cookie, err := http.ParseSetCookie(line)
		if err != nil {
			internal.LogDebug("Skipping malformed cookie: %v", err)
			continue
		}
		s.Set(cookie.Name, cookie.Value)
	}
}

// Set stores a cookie value
func (s *CookieSet) Set(name, value string) {
	if _, ok := s.values[name]; !ok {
		s.order = append(s.order, name)
	}
	s.values[name] = value
}

// Get returns a cookie value
func (s *CookieSet) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of distinct cookies
func (s *CookieSet) Len() int {
	return len(s.order)
}

// Header renders the set as a Cookie request header value
func (s *CookieSet) Header() string {
	pairs := make([]string, 0, len(s.order))
	for _, name := range s.order {
		pairs = append(pairs, name+"="+s.values[name])
	}
	return strings.Join(pairs, "; ")
}

// Authenticator performs the login handshake
type Authenticator struct {
	client Doer
}

// NewAuthenticator creates an authenticator that sends requests through client
func NewAuthenticator(client Doer) *Authenticator {
	return &Authenticator{client: client}
}

// Authenticate logs in and returns the session credential. Wrong username or
// password yields an ErrInvalidCredentials error.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (Credential, error) {
	// Set-Cookie on redirects must be seen, so nothing here follows them
	ctx = utils.WithoutRedirects(ctx)
	cookies := NewCookieSet()

	req, err := newRequest(ctx, "bootstrap", http.MethodPost, siteURL, nil)
	if err != nil {
		return Credential{}, err
	}
	resp, err := send(a.client, "bootstrap", req)
	if err != nil {
		return Credential{}, err
	}
	cookies.Merge(resp.Header)
	discard(resp)

	form := url.Values{}
	form.Set("login", username)
	form.Set("pass", password)

	req, err = newRequest(ctx, "login", http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookies.Len() > 0 {
		req.Header.Set("Cookie", cookies.Header())
	}

	resp, err = send(a.client, "login", req)
	if err != nil {
		return Credential{}, err
	}
	cookies.Merge(resp.Header)
	discard(resp)

	name, hasName := cookies.Get(sessionNameCookie)
	hash, hasHash := cookies.Get(sessionHashCookie)
	if !hasName || !hasHash || name == "" || hash == "" {
		return Credential{}, internal.NewInvalidCredentialsError()
	}

	internal.LogDebug("Logged in as %s", name)
	return NewCredential(hash, name), nil
}
