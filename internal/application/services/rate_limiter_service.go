package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
	"github.com/launchboard/admission-gateway/internal/core/ports"
)

// RateLimiterService applies the tier×category policy table with fixed-window
// counting. All counter state lives in the cache store; the single atomic
// increment per check is what keeps concurrent callers from losing updates.
//
// Fixed-window counting admits up to 2×limit across a window boundary. That
// approximation is deliberate and covered by tests; see the policy notes in
// the repository documentation.
type RateLimiterService struct {
	store      ports.CacheStore
	cfg        *admission.Config
	violations ports.ViolationService
	logger     *logrus.Logger
	now        func() time.Time
}

func NewRateLimiterService(store ports.CacheStore, cfg *admission.Config, violations ports.ViolationService, logger *logrus.Logger) *RateLimiterService {
	return &RateLimiterService{store: store, cfg: cfg, violations: violations, logger: logger, now: time.Now}
}

func (s *RateLimiterService) Check(ctx context.Context, identity admission.ClientIdentity, r *admission.Request) admission.RateLimitResult {
	category := s.cfg.CategoryPrefixes.Resolve(r.Path)
	policy := s.cfg.Policies.Resolve(identity.Tier, category)

	now := s.now()
	bucket := now.UnixNano() / int64(policy.Window)
	resetAt := time.Unix(0, (bucket+1)*int64(policy.Window)).Unix()

	if policy.Limit <= 0 {
		return admission.RateLimitResult{Allowed: false, Limit: 0, Remaining: 0, ResetAt: resetAt}
	}

	key := fmt.Sprintf("ratelimit:%s:%s:%s:%d", identity.Tier, category, identity.Key(), bucket)
	count, err := s.store.IncrWithExpiry(ctx, key, policy.Window)
	if err != nil {
		// Fail open: availability of the API wins over strict enforcement
		// during a cache outage.
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"client": identity.Key(), "tier": identity.Tier, "category": category,
			}).WithError(err).Warn("rate limiter: cache store unavailable; allowing request")
		}
		return admission.RateLimitResult{Allowed: true, Limit: policy.Limit, Remaining: policy.Limit - 1, ResetAt: resetAt}
	}

	if count > int64(policy.Limit) {
		s.recordViolation(ctx, identity, r, int(count), policy.Limit, now)
		return admission.RateLimitResult{Allowed: false, Limit: policy.Limit, Remaining: 0, ResetAt: resetAt}
	}

	return admission.RateLimitResult{
		Allowed:   true,
		Limit:     policy.Limit,
		Remaining: policy.Limit - int(count),
		ResetAt:   resetAt,
	}
}

func (s *RateLimiterService) recordViolation(ctx context.Context, identity admission.ClientIdentity, r *admission.Request, observed, limit int, now time.Time) {
	if s.violations == nil {
		return
	}
	s.violations.Record(ctx, &admission.Violation{
		ClientKey:     identity.Key(),
		Tier:          identity.Tier,
		Path:          r.Path,
		Method:        r.Method,
		ObservedCount: observed,
		Limit:         limit,
		Timestamp:     now,
	})
}
