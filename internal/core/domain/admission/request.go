package admission

import (
	"net/http"
	"net/url"
	"strings"
)

// Request carries the request metadata the admission pipeline inspects. It is
// a snapshot taken at the HTTP boundary so the services never touch the
// framework's request object directly.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	RemoteIP      string // direct peer address, no port
	ForwardedFor  string // raw X-Forwarded-For header value, may be empty
	UserAgent     string
	ContentType   string
	ContentLength int64
	BearerToken   string // raw token from the Authorization header, may be empty
	Header        http.Header
}

// NewRequest builds an admission Request from a raw HTTP request.
func NewRequest(r *http.Request) *Request {
	ip := r.RemoteAddr
	if i := strings.LastIndex(ip, ":"); i > 0 && !strings.HasSuffix(ip, "]") {
		ip = ip[:i]
	}
	ip = strings.Trim(ip, "[]")

	token := ""
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimSpace(auth[len("Bearer "):])
	}

	return &Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		RemoteIP:      ip,
		ForwardedFor:  r.Header.Get("X-Forwarded-For"),
		UserAgent:     r.UserAgent(),
		ContentType:   r.Header.Get("Content-Type"),
		ContentLength: r.ContentLength,
		BearerToken:   token,
		Header:        r.Header,
	}
}

// ClientIP returns the first address in the forwarded-for chain when present,
// otherwise the direct peer address.
func (r *Request) ClientIP() string {
	if r.ForwardedFor != "" {
		first := r.ForwardedFor
		if i := strings.Index(first, ","); i >= 0 {
			first = first[:i]
		}
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return r.RemoteIP
}
