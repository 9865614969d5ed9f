// Package notify delivers import reports by mail and Telegram.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"cybershield/internal/models"
	"cybershield/internal/service"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer mails the import report to a fixed recipient list.
type SMTPMailer struct {
	host       string
	port       string
	username   string
	password   string
	recipients []string
	sendMail   sendMailFunc
}

func NewSMTPMailer(host, port, username, password string, recipients []string) *SMTPMailer {
	return &SMTPMailer{
		host:       host,
		port:       port,
		username:   username,
		password:   password,
		recipients: recipients,
		sendMail:   smtp.SendMail,
	}
}

func (m *SMTPMailer) NotifyImport(_ context.Context, result *service.Result) error {
	if len(m.recipients) == 0 {
		return nil
	}
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	msg := reportMail(m.username, m.recipients, result)
	if err := m.sendMail(fmt.Sprintf("%s:%s", m.host, m.port), auth, m.username, m.recipients, msg); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func reportMail(from string, to []string, result *service.Result) []byte {
	subject := "Импорт данных конференции: успешно"
	if result.Run.Status == models.ImportFailed {
		subject = "Импорт данных конференции: ошибка"
	}
	return []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/plain; charset=\"UTF-8\";\r\n\r\n%s",
		from,
		strings.Join(to, ", "),
		subject,
		reportText(result),
	))
}

// reportText is the plain-text body shared by mail and Telegram.
func reportText(result *service.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Запуск %s (%s), источник %s, политика %s\n",
		result.Run.ID, result.Run.Trigger, result.Run.Source, result.Run.Policy)
	if result.Run.Status == models.ImportFailed {
		fmt.Fprintf(&b, "Ошибка: %s", result.Run.Error)
		return b.String()
	}
	b.WriteString(result.Report.String())
	return b.String()
}
