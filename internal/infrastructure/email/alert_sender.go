package email

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// AlertConfig holds alert sender configuration
type AlertConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	OpsEmail       string
}

// AlertSender delivers operational abuse alerts via SendGrid.
type AlertSender struct {
	config *AlertConfig
	logger *logrus.Logger
	client *sendgrid.Client
}

// NewAlertSender creates a SendGrid-backed alert sender.
func NewAlertSender(config *AlertConfig, logger *logrus.Logger) *AlertSender {
	return &AlertSender{
		config: config,
		logger: logger,
		client: sendgrid.NewSendClient(config.SendGridAPIKey),
	}
}

// SendAbuseAlert notifies the ops address that a client crossed the
// violations-per-hour threshold.
func (a *AlertSender) SendAbuseAlert(ctx context.Context, clientKey string, count int64) error {
	subject := fmt.Sprintf("[admission-gateway] abuse alert: %s", clientKey)
	body := fmt.Sprintf(
		"Client %s accumulated %d rate limit violations in the current hour (observed at %s).\n\nInspect /admin/violations and the blocklist for follow-up.\n",
		clientKey, count, time.Now().UTC().Format(time.RFC3339),
	)

	from := mail.NewEmail(a.config.FromName, a.config.FromEmail)
	to := mail.NewEmail("", a.config.OpsEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	response, err := a.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send abuse alert: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected abuse alert: status %d", response.StatusCode)
	}

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{"client": clientKey, "violations": count}).Info("abuse alert delivered")
	}
	return nil
}
