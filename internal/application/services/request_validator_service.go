package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
)

// RequestValidatorService performs the structural request checks. Checks are
// independent and accumulate so callers see every problem at once.
type RequestValidatorService struct {
	cfg    *admission.Config
	logger *logrus.Logger
}

func NewRequestValidatorService(cfg *admission.Config, logger *logrus.Logger) *RequestValidatorService {
	return &RequestValidatorService{cfg: cfg, logger: logger}
}

func (s *RequestValidatorService) Validate(identity admission.ClientIdentity, r *admission.Request) []string {
	var violations []string

	if r.ContentLength > s.cfg.MaxPayloadBytes {
		violations = append(violations, fmt.Sprintf("payload size %d exceeds maximum of %d bytes", r.ContentLength, s.cfg.MaxPayloadBytes))
	}

	if r.ContentType != "" && !s.contentTypeAllowed(r.ContentType) {
		violations = append(violations, fmt.Sprintf("unsupported content type %q", r.ContentType))
	}

	for _, prefix := range s.cfg.ProtectedPaths {
		if strings.HasPrefix(r.Path, prefix) && !identity.Authenticated() {
			violations = append(violations, fmt.Sprintf("authentication required for %s", r.Path))
			break
		}
	}

	// Spoof-prone forwarding headers are logged for observability, not
	// rejected.
	for _, h := range s.cfg.SpoofHeaders {
		if v := r.Header.Get(h); v != "" && s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"ip": identity.IP, "path": r.Path, "header": h, "value": v,
			}).Info("request validator: spoof-prone header present")
		}
	}

	return violations
}

func (s *RequestValidatorService) contentTypeAllowed(contentType string) bool {
	// Strip parameters such as charset or multipart boundaries.
	base := contentType
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(strings.ToLower(base))
	for _, allowed := range s.cfg.AllowedContentTypes {
		if base == allowed {
			return true
		}
	}
	return false
}
