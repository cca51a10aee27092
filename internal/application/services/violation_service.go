package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
	"github.com/launchboard/admission-gateway/internal/core/ports"
)

// ViolationService records rate limit violations and raises one ops alert per
// client per hour bucket when the alert threshold is crossed. Everything here
// is best-effort: a failure is logged and swallowed, never propagated into
// the request path.
type ViolationService struct {
	repo           ports.ViolationRepository
	alerts         ports.AlertSender
	alertThreshold int
	logger         *logrus.Logger
}

func NewViolationService(repo ports.ViolationRepository, alerts ports.AlertSender, alertThreshold int, logger *logrus.Logger) *ViolationService {
	return &ViolationService{repo: repo, alerts: alerts, alertThreshold: alertThreshold, logger: logger}
}

func (s *ViolationService) Record(ctx context.Context, v *admission.Violation) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	if err := s.repo.Append(ctx, v); err != nil && s.logger != nil {
		s.logger.WithField("client", v.ClientKey).WithError(err).Warn("violation log append failed")
	}

	count, err := s.repo.CountHour(ctx, v.ClientKey)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("client", v.ClientKey).WithError(err).Warn("violation counter unavailable")
		}
		return
	}

	if s.alerts == nil || s.alertThreshold <= 0 || count < int64(s.alertThreshold) {
		return
	}

	first, err := s.repo.MarkAlerted(ctx, v.ClientKey)
	if err != nil {
		if s.logger != nil {
			s.logger.WithField("client", v.ClientKey).WithError(err).Warn("alert dedup marker failed")
		}
		return
	}
	if !first {
		return
	}
	if err := s.alerts.SendAbuseAlert(ctx, v.ClientKey, count); err != nil {
		if s.logger != nil {
			s.logger.WithField("client", v.ClientKey).WithError(err).Warn("abuse alert delivery failed")
		}
		return
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"client": v.ClientKey, "violations": count}).Warn("abuse alert sent")
	}
}

func (s *ViolationService) Recent(ctx context.Context, limit int) ([]*admission.Violation, error) {
	return s.repo.Recent(ctx, limit)
}
