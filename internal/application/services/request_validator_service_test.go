package services

import (
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
)

func validatorConfig() *admission.Config {
	return &admission.Config{
		MaxPayloadBytes:     1024,
		AllowedContentTypes: []string{"application/json", "text/plain"},
		ProtectedPaths:      []string{"/api/v1/me", "/api/v1/uploads"},
		SpoofHeaders:        []string{"X-Forwarded-Host"},
	}
}

func validReq() *admission.Request {
	return &admission.Request{
		Method:        "POST",
		Path:          "/api/v1/posts",
		ContentType:   "application/json",
		ContentLength: 100,
		Header:        http.Header{},
	}
}

func TestValidate_CleanRequestHasNoViolations(t *testing.T) {
	svc := NewRequestValidatorService(validatorConfig(), logrus.New())
	id := admission.ClientIdentity{IP: "203.0.113.7", Tier: admission.TierAnonymous}

	require.Empty(t, svc.Validate(id, validReq()))
}

func TestValidate_OversizedPayloadFlagged(t *testing.T) {
	svc := NewRequestValidatorService(validatorConfig(), logrus.New())
	id := admission.ClientIdentity{IP: "203.0.113.7", Tier: admission.TierAnonymous}
	req := validReq()
	req.ContentLength = 2048

	violations := svc.Validate(id, req)
	require.Len(t, violations, 1)
	require.Contains(t, violations[0], "payload size")
}

func TestValidate_DisallowedContentTypeFlagged(t *testing.T) {
	svc := NewRequestValidatorService(validatorConfig(), logrus.New())
	id := admission.ClientIdentity{IP: "203.0.113.7", Tier: admission.TierAnonymous}
	req := validReq()
	req.ContentType = "application/xml"

	violations := svc.Validate(id, req)
	require.Len(t, violations, 1)
	require.Contains(t, violations[0], "unsupported content type")
}

func TestValidate_ContentTypeParametersIgnored(t *testing.T) {
	svc := NewRequestValidatorService(validatorConfig(), logrus.New())
	id := admission.ClientIdentity{IP: "203.0.113.7", Tier: admission.TierAnonymous}
	req := validReq()
	req.ContentType = "application/json; charset=utf-8"

	require.Empty(t, svc.Validate(id, req))
}

func TestValidate_MissingContentTypeIsNotFlagged(t *testing.T) {
	svc := NewRequestValidatorService(validatorConfig(), logrus.New())
	id := admission.ClientIdentity{IP: "203.0.113.7", Tier: admission.TierAnonymous}
	req := validReq()
	req.ContentType = ""

	require.Empty(t, svc.Validate(id, req))
}

func TestValidate_ProtectedPathRequiresAuth(t *testing.T) {
	svc := NewRequestValidatorService(validatorConfig(), logrus.New())
	req := validReq()
	req.Path = "/api/v1/me/profile"

	anon := admission.ClientIdentity{IP: "203.0.113.7", Tier: admission.TierAnonymous}
	violations := svc.Validate(anon, req)
	require.Len(t, violations, 1)
	require.Contains(t, violations[0], "authentication required")

	authed := admission.ClientIdentity{IP: "203.0.113.7", UserID: "u1", Tier: admission.TierAuthenticated}
	require.Empty(t, svc.Validate(authed, req))
}

func TestValidate_ViolationsAccumulate(t *testing.T) {
	svc := NewRequestValidatorService(validatorConfig(), logrus.New())
	anon := admission.ClientIdentity{IP: "203.0.113.7", Tier: admission.TierAnonymous}
	req := validReq()
	req.Path = "/api/v1/uploads/avatar"
	req.ContentType = "application/octet-stream"
	req.ContentLength = 4096

	violations := svc.Validate(anon, req)
	require.Len(t, violations, 3)
}

func TestValidate_SpoofHeaderIsLoggedNotRejected(t *testing.T) {
	svc := NewRequestValidatorService(validatorConfig(), logrus.New())
	id := admission.ClientIdentity{IP: "203.0.113.7", Tier: admission.TierAnonymous}
	req := validReq()
	req.Header.Set("X-Forwarded-Host", "evil.example")

	require.Empty(t, svc.Validate(id, req))
}
