package service

import (
	"context"
	"crypto/tls"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/i18n"

	"gopkg.in/gomail.v2"
)

var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService 邮件发送服务
type EmailService struct {
	cfg       *config.EmailConfig
	newDialer func(cfg *config.EmailConfig) mailDialer
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg, newDialer: newGomailDialer}
}

// SendVerificationEmail 发送邮箱验证邮件，正文同时包含验证链接与展示码
func (s *EmailService) SendVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	subject, body := s.buildVerificationContent(msg, time.Now())
	return s.sendTextEmail(msg.Email, subject, body)
}

func (s *EmailService) buildVerificationContent(msg VerificationEmail, now time.Time) (string, string) {
	locale := i18n.NormalizeLocale(msg.Locale)
	minutes := int(msg.ExpiresAt.Sub(now).Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	link := buildVerifyLink(s.verifyURL(), msg.Token)
	subject := i18n.T(locale, "email.verification.subject")
	body := i18n.Sprintf(locale, "email.verification.body", link, msg.DisplayCode, minutes)
	return subject, body
}

func (s *EmailService) verifyURL() string {
	if s.cfg == nil {
		return ""
	}
	return strings.TrimSpace(s.cfg.VerifyURL)
}

func buildVerifyLink(prefix, token string) string {
	if prefix == "" {
		return token
	}
	return prefix + token
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.From, strings.TrimSpace(s.cfg.FromName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return normalizeEmailSendError(s.newDialer(s.cfg).DialAndSend(m))
}

func newGomailDialer(cfg *config.EmailConfig) mailDialer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.UseSSL
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	return d
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return err
}

func isEmailRecipientRejected(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	directKeywords := []string{
		"no such recipient",
		"no such user",
		"recipient not found",
		"recipient address rejected",
		"invalid recipient",
		"user unknown",
		"unknown user",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range directKeywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		hints := []string{"recipient", "user", "mailbox", "address", "rcpt"}
		for _, hint := range hints {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
