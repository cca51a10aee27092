package admission

import "net/http"

// Standard rate limit headers attached to both allowed and denied responses.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// Decision is the terminal result of the admission pipeline for one request.
type Decision struct {
	Allowed bool
	Status  int               // HTTP status for denials; http.StatusOK otherwise
	Body    interface{}       // JSON body for denials, nil when allowed
	Headers map[string]string // response headers for both outcomes
}

// Allow builds an allowing decision carrying the given response headers.
func Allow(headers map[string]string) Decision {
	return Decision{Allowed: true, Status: http.StatusOK, Headers: headers}
}

// Deny builds a denying decision.
func Deny(status int, body interface{}, headers map[string]string) Decision {
	return Decision{Allowed: false, Status: status, Body: body, Headers: headers}
}

// RateLimitedBody is the JSON body of a 429 response.
type RateLimitedBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"` // seconds
}

// BlockedBody is the JSON body of a 403 response.
type BlockedBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationFailedBody is the JSON body of a 400 response.
type ValidationFailedBody struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// RateLimitResult reports the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   int64 // Unix seconds at the start of the next window
}
