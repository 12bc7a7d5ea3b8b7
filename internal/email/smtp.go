package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendFollowupScheduledEmail(ctx context.Context, toEmail, agentName, customerName, leadRef string, dueAt time.Time) error {
	content, err := renderEmailTemplate("followup_scheduled.html", followupScheduledEmailData{
		baseEmailData: baseEmailData{
			Title:   "Follow-up scheduled",
			Heading: "Follow-up scheduled",
		},
		AgentName:    agentName,
		CustomerName: customerName,
		LeadRef:      leadRef,
		DueAt:        dueAt.Format("Mon, 02 Jan 2006 15:04"),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectFollowupScheduledFmt, leadRef), content)
}

func (s *SMTPSender) SendFollowupReminderEmail(ctx context.Context, toEmail, agentName, customerName, leadRef string, dueAt time.Time) error {
	content, err := renderEmailTemplate("followup_reminder.html", followupReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Follow-up due",
			Heading: "Follow-up due",
		},
		AgentName:    agentName,
		CustomerName: customerName,
		LeadRef:      leadRef,
		DueAt:        dueAt.Format("Mon, 02 Jan 2006 15:04"),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectFollowupReminderFmt, leadRef), content)
}

func (s *SMTPSender) SendSaleRecordedEmail(ctx context.Context, toEmail, agentName, customerName, leadRef string, amountCents int64) error {
	content, err := renderEmailTemplate("sale_recorded.html", saleRecordedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Sale recorded",
			Heading: "Sale recorded",
		},
		AgentName:       agentName,
		CustomerName:    customerName,
		LeadRef:         leadRef,
		AmountFormatted: formatCurrencyUSD(amountCents),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectSaleRecordedFmt, leadRef), content)
}

func (s *SMTPSender) SendTargetAchievedEmail(ctx context.Context, toEmail, targetName string, achievedCents, goalCents int64) error {
	content, err := renderEmailTemplate("target_achieved.html", targetAchievedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Target achieved",
			Heading: "Target achieved",
		},
		TargetName:        targetName,
		AchievedFormatted: formatCurrencyUSD(achievedCents),
		GoalFormatted:     formatCurrencyUSD(goalCents),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectTargetAchievedFmt, targetName), content)
}
