package ports

import (
	"context"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
)

// ViolationRepository stores recent rate limit violations. The log is capped
// and time-boxed; entries expire on their own.
type ViolationRepository interface {
	// Append adds a violation to the recent log.
	Append(ctx context.Context, v *admission.Violation) error
	// Recent returns up to limit of the newest violations.
	Recent(ctx context.Context, limit int) ([]*admission.Violation, error)
	// CountHour atomically increments and returns the client's violation
	// count for the current hour bucket.
	CountHour(ctx context.Context, clientKey string) (int64, error)
	// MarkAlerted records that an alert fired for the client's current hour
	// bucket. Returns false when one already fired.
	MarkAlerted(ctx context.Context, clientKey string) (bool, error)
}

// ViolationService records violations and raises ops alerts when a client
// crosses the alert threshold. All operations are best-effort.
type ViolationService interface {
	Record(ctx context.Context, v *admission.Violation)
	Recent(ctx context.Context, limit int) ([]*admission.Violation, error)
}

// AlertSender delivers operational alerts (email, webhook, ...).
type AlertSender interface {
	SendAbuseAlert(ctx context.Context, clientKey string, count int64) error
}
