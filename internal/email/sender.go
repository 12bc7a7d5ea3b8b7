// Package email delivers transactional mail for the sales workflow.
package email

import (
	"context"
	"time"

	"salesops_backend/platform/config"
	"salesops_backend/platform/logger"
)

// Sender delivers the workflow notifications.
type Sender interface {
	SendFollowupScheduledEmail(ctx context.Context, toEmail, agentName, customerName, leadRef string, dueAt time.Time) error
	SendFollowupReminderEmail(ctx context.Context, toEmail, agentName, customerName, leadRef string, dueAt time.Time) error
	SendSaleRecordedEmail(ctx context.Context, toEmail, agentName, customerName, leadRef string, amountCents int64) error
	SendTargetAchievedEmail(ctx context.Context, toEmail, targetName string, achievedCents, goalCents int64) error
}

// NewSender returns the SMTP sender when email is enabled, otherwise a
// sender that only logs what it would have sent.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email disabled, notifications will be logged only")
		return &LogSender{log: log}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(), cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
	)
}

// LogSender stands in for a real sender in environments without SMTP.
type LogSender struct {
	log *logger.Logger
}

func (s *LogSender) SendFollowupScheduledEmail(_ context.Context, toEmail, _, customerName, leadRef string, dueAt time.Time) error {
	s.log.Info("email skipped", "type", "followup_scheduled", "to", toEmail, "lead", leadRef, "customer", customerName, "dueAt", dueAt)
	return nil
}

func (s *LogSender) SendFollowupReminderEmail(_ context.Context, toEmail, _, customerName, leadRef string, dueAt time.Time) error {
	s.log.Info("email skipped", "type", "followup_reminder", "to", toEmail, "lead", leadRef, "customer", customerName, "dueAt", dueAt)
	return nil
}

func (s *LogSender) SendSaleRecordedEmail(_ context.Context, toEmail, _, customerName, leadRef string, amountCents int64) error {
	s.log.Info("email skipped", "type", "sale_recorded", "to", toEmail, "lead", leadRef, "customer", customerName, "amountCents", amountCents)
	return nil
}

func (s *LogSender) SendTargetAchievedEmail(_ context.Context, toEmail, targetName string, achievedCents, goalCents int64) error {
	s.log.Info("email skipped", "type", "target_achieved", "to", toEmail, "target", targetName, "achievedCents", achievedCents, "goalCents", goalCents)
	return nil
}
