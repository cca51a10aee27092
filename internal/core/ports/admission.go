package ports

import (
	"context"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
)

// IdentityResolver derives a stable client identity and trust tier from
// request metadata. Implementations are pure functions of the request.
type IdentityResolver interface {
	Resolve(r *admission.Request) admission.ClientIdentity
}

// RateLimiter applies tiered, per-category fixed-window rate limits.
//
// Fixed-window counting is an accepted approximation: a burst arriving
// exactly at a window boundary may be allowed up to twice the limit across
// the two windows.
type RateLimiter interface {
	// Check consumes one request unit and reports whether it is permitted
	// together with the limit headers to attach. Check never returns an
	// error: storage failures fail open.
	Check(ctx context.Context, identity admission.ClientIdentity, r *admission.Request) admission.RateLimitResult
}

// ThreatDetector evaluates a request against the IP blocklist, burst anomaly
// counters, bot signatures and attack patterns, in that order.
type ThreatDetector interface {
	Evaluate(ctx context.Context, identity admission.ClientIdentity, r *admission.Request) admission.ThreatVerdict
}

// RequestValidator performs structural request checks. Checks are independent
// and accumulate; an empty slice means the request is valid.
type RequestValidator interface {
	Validate(identity admission.ClientIdentity, r *admission.Request) []string
}

// AdmissionService composes the full pipeline into one terminal decision.
type AdmissionService interface {
	Admit(ctx context.Context, r *admission.Request) admission.Decision
}

// BlocklistAdmin exposes the operational view of the IP blocklist.
type BlocklistAdmin interface {
	GetBlock(ctx context.Context, ip string) (*admission.BlockRecord, error)
	Block(ctx context.Context, ip, reason string) (*admission.BlockRecord, error)
	Unblock(ctx context.Context, ip string) error
}
