package services

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
)

// gatewayClaims are the platform JWT claims the gateway cares about. The
// token is issued upstream; here it is only verified and read.
type gatewayClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Plan   string `json:"plan"`
	jwt.RegisteredClaims
}

// IdentityService resolves a ClientIdentity from request metadata. It has no
// side effects; an unverifiable token degrades to the anonymous tier rather
// than failing the request.
type IdentityService struct {
	jwtSecret []byte
	logger    *logrus.Logger
}

func NewIdentityService(jwtSecret string, logger *logrus.Logger) *IdentityService {
	return &IdentityService{jwtSecret: []byte(jwtSecret), logger: logger}
}

func (s *IdentityService) Resolve(r *admission.Request) admission.ClientIdentity {
	ip := r.ClientIP()
	if r.BearerToken == "" {
		return admission.ClientIdentity{IP: ip, Tier: admission.TierAnonymous}
	}

	claims := &gatewayClaims{}
	token, err := jwt.ParseWithClaims(r.BearerToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"ip": ip}).Debug("unverifiable bearer token; treating caller as anonymous")
		}
		return admission.ClientIdentity{IP: ip, Tier: admission.TierAnonymous}
	}

	tier := admission.TierAuthenticated
	switch {
	case claims.Role == "admin" || claims.Role == "super_admin":
		tier = admission.TierAdmin
	case claims.Plan == "premium":
		tier = admission.TierPremium
	}

	return admission.ClientIdentity{IP: ip, UserID: claims.UserID, Tier: tier}
}
