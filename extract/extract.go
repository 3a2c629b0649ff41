// Package extract resolves the token a request is presenting.
//
// Sources are consulted in a fixed order: the Authorization header, then the
// cookie named for the token kind, then the request body. A source disabled in
// settings is skipped even when populated. An Authorization header that is not
// a Bearer credential counts as absent and does not stop the search.
package extract

import (
	"net/http"
	"strings"

	apperrors "github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/settings"
	"github.com/kbukum/authkit/token"
)

// Source identifies where a candidate was found.
type Source string

const (
	SourceHeader Source = "header"
	SourceCookie Source = "cookie"
	SourceBody   Source = "body"
)

// Request is the transport-neutral view of an inbound request.
type Request struct {
	Header  http.Header
	Cookies map[string]string
	// Body is the token field of the request payload, if any.
	Body string
}

// FromHTTP builds a Request from r. body is the already-decoded token field
// of the payload; pass "" when the endpoint takes no body token.
func FromHTTP(r *http.Request, body string) Request {
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		if _, seen := cookies[c.Name]; !seen {
			cookies[c.Name] = c.Value
		}
	}
	return Request{Header: r.Header, Cookies: cookies, Body: body}
}

// Candidate is the token string chosen for verification.
type Candidate struct {
	Value  string
	Source Source
}

// Extractor applies the precedence rules for one Settings value.
type Extractor struct {
	acceptHeader  bool
	acceptCookie  bool
	cookieAccess  string
	cookieRefresh string
}

// New creates an extractor from settings.
func New(s settings.Settings) *Extractor {
	return &Extractor{
		acceptHeader:  s.AcceptHeader,
		acceptCookie:  s.AcceptCookie,
		cookieAccess:  s.CookieNameAccess,
		cookieRefresh: s.CookieNameRefresh,
	}
}

// Access extracts an access token candidate.
func (e *Extractor) Access(req Request) (Candidate, error) {
	return e.Extract(req, token.Access)
}

// Refresh extracts a refresh token candidate.
func (e *Extractor) Refresh(req Request) (Candidate, error) {
	return e.Extract(req, token.Refresh)
}

// Extract returns the first candidate for kind, or a NO_TOKEN_CANDIDATE error.
// It never inspects the token itself.
func (e *Extractor) Extract(req Request, kind token.Kind) (Candidate, error) {
	if e.acceptHeader {
		if v, ok := BearerToken(req.Header.Get("Authorization")); ok {
			return Candidate{Value: v, Source: SourceHeader}, nil
		}
	}
	if e.acceptCookie {
		if v := strings.TrimSpace(req.Cookies[e.cookieName(kind)]); v != "" {
			return Candidate{Value: v, Source: SourceCookie}, nil
		}
	}
	if v := strings.TrimSpace(req.Body); v != "" {
		return Candidate{Value: v, Source: SourceBody}, nil
	}
	return Candidate{}, apperrors.NoTokenCandidate(kind.String())
}

func (e *Extractor) cookieName(kind token.Kind) string {
	if kind == token.Refresh {
		return e.cookieRefresh
	}
	return e.cookieAccess
}

// BearerToken returns the credential of a "Bearer <token>" header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, credential, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", false
	}
	return credential, true
}
