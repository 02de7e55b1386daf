package utils

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"vpcrm/config"
)

// ReminderData feeds the follow-up reminder template.
type ReminderData struct {
	EmployeeName string
	GroupName    string
	MobileNo     string
	LastStatus   string
	FollowUpDate string
	FollowUpTime string
}

var reminderTemplate = template.Must(template.New("followup").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Follow-up Reminder</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .lead { font-size: 18px; font-weight: bold; color: #3498db; margin: 16px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <h2 class="header">Follow-up due today</h2>
    <p>Hi {{.EmployeeName}},</p>
    <p class="lead">{{.GroupName}} ({{.MobileNo}})</p>
    <p>Last call outcome: <b>{{.LastStatus}}</b></p>
    <p>Scheduled for {{.FollowUpDate}} at {{.FollowUpTime}}.</p>
    <div class="footer">VP CRM — automated reminder, do not reply.</div>
</body>
</html>`))

// Mailer sends follow-up reminder mail over the configured SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer returns nil when SMTP is not configured; callers treat a nil
// mailer as "reminders disabled".
func NewMailer() *Mailer {
	cfg := config.AppConfig
	if cfg.SMTPHost == "" {
		return nil
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.FromEmail,
	}
}

// SendFollowUpReminder renders and sends one reminder to the assigned
// employee.
func (m *Mailer) SendFollowUpReminder(to string, data ReminderData) error {
	var body bytes.Buffer
	if err := reminderTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render reminder template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Follow-up due today: %s", data.GroupName))
	msg.SetBody("text/html", body.String())

	return m.dialer.DialAndSend(msg)
}
