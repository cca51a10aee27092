package services

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
	"github.com/launchboard/admission-gateway/internal/core/ports"
)

// AdmissionService composes identity resolution, threat detection, rate
// limiting and validation into one terminal decision per request.
//
// The ordering is fixed: each stage assumes the prior stage's invariants
// (threat checks need the resolved IP, rate limit headers must reflect the
// caller's tier, validation runs only for requests that will otherwise be
// served).
type AdmissionService struct {
	identity  ports.IdentityResolver
	threats   ports.ThreatDetector
	limiter   ports.RateLimiter
	validator ports.RequestValidator
	cfg       *admission.Config
	logger    *logrus.Logger
	now       func() time.Time
}

func NewAdmissionService(identity ports.IdentityResolver, threats ports.ThreatDetector, limiter ports.RateLimiter, validator ports.RequestValidator, cfg *admission.Config, logger *logrus.Logger) *AdmissionService {
	return &AdmissionService{
		identity:  identity,
		threats:   threats,
		limiter:   limiter,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AdmissionService) Admit(ctx context.Context, r *admission.Request) admission.Decision {
	for _, p := range s.cfg.BypassPaths {
		if r.Path == p {
			return admission.Allow(nil)
		}
	}

	id := s.identity.Resolve(r)

	if verdict := s.threats.Evaluate(ctx, id, r); verdict.Blocked {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"ip": id.IP, "path": r.Path, "reason": verdict.Reason,
			}).Warn("request blocked")
		}
		return admission.Deny(http.StatusForbidden, admission.BlockedBody{
			Error:   "forbidden",
			Message: "request blocked",
			Code:    "BLOCKED",
		}, map[string]string{})
	}

	rl := s.limiter.Check(ctx, id, r)
	headers := map[string]string{
		admission.HeaderRateLimitLimit:     strconv.Itoa(rl.Limit),
		admission.HeaderRateLimitRemaining: strconv.Itoa(rl.Remaining),
		admission.HeaderRateLimitReset:     strconv.FormatInt(rl.ResetAt, 10),
	}
	if !rl.Allowed {
		retryAfter := rl.ResetAt - s.now().Unix()
		if retryAfter < 0 {
			retryAfter = 0
		}
		headers[admission.HeaderRetryAfter] = strconv.FormatInt(retryAfter, 10)
		return admission.Deny(http.StatusTooManyRequests, admission.RateLimitedBody{
			Error:      "rate_limit_exceeded",
			Message:    "rate limit exceeded",
			RetryAfter: int(retryAfter),
		}, headers)
	}

	if violations := s.validator.Validate(id, r); len(violations) > 0 {
		return admission.Deny(http.StatusBadRequest, admission.ValidationFailedBody{
			Error:   "validation_failed",
			Message: "request validation failed",
			Details: violations,
		}, map[string]string{})
	}

	// Rate limit headers ride along on success so clients can self-throttle.
	return admission.Allow(headers)
}
