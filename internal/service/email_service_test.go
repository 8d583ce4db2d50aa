package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/i18n"

	"gopkg.in/gomail.v2"
)

type captureDialer struct {
	messages []*gomail.Message
	err      error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	d.messages = append(d.messages, m...)
	return d.err
}

func newTestEmailService(dialer *captureDialer) *EmailService {
	svc := NewEmailService(&config.EmailConfig{
		Enabled:   true,
		Host:      "smtp.example.com",
		Port:      587,
		From:      "noreply@example.com",
		FromName:  "JobDesk",
		VerifyURL: "https://app.example.com/verify-email?token=",
	})
	svc.newDialer = func(*config.EmailConfig) mailDialer { return dialer }
	return svc
}

func TestBuildVerificationContent(t *testing.T) {
	svc := newTestEmailService(&captureDialer{})
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name                string
		locale              string
		wantSubjectContains string
		wantBodyContains    []string
	}{
		{
			name:                "zh",
			locale:              i18n.LocaleZH,
			wantSubjectContains: "验证",
			wantBodyContains:    []string{"https://app.example.com/verify-email?token=abcdef0123", "ABCDEF01", "120 分钟"},
		},
		{
			name:                "tw",
			locale:              "zh-Hant",
			wantSubjectContains: "驗證",
			wantBodyContains:    []string{"ABCDEF01", "120 分鐘"},
		},
		{
			name:                "en",
			locale:              "en",
			wantSubjectContains: "Verify",
			wantBodyContains:    []string{"ABCDEF01", "120 minutes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := svc.buildVerificationContent(VerificationEmail{
				Email:       "a@example.com",
				Token:       "abcdef0123",
				DisplayCode: "ABCDEF01",
				Locale:      tt.locale,
				ExpiresAt:   now.Add(2 * time.Hour),
			}, now)
			if !strings.Contains(subject, tt.wantSubjectContains) {
				t.Fatalf("subject %q should contain %q", subject, tt.wantSubjectContains)
			}
			for _, want := range tt.wantBodyContains {
				if !strings.Contains(body, want) {
					t.Fatalf("body %q should contain %q", body, want)
				}
			}
		})
	}
}

func TestSendVerificationEmailUsesDialer(t *testing.T) {
	dialer := &captureDialer{}
	svc := newTestEmailService(dialer)

	err := svc.SendVerificationEmail(context.Background(), VerificationEmail{
		Email:       "user@example.com",
		Token:       "token",
		DisplayCode: "TOKEN123",
		ExpiresAt:   time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(dialer.messages) != 1 {
		t.Fatalf("want 1 message, got %d", len(dialer.messages))
	}
	if got := dialer.messages[0].GetHeader("To"); len(got) != 1 || got[0] != "user@example.com" {
		t.Fatalf("unexpected To header: %v", got)
	}
}

func TestSendVerificationEmailErrors(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := svc.SendVerificationEmail(context.Background(), VerificationEmail{Email: "a@example.com"}); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("want disabled error, got %v", err)
	}

	svc = NewEmailService(&config.EmailConfig{Enabled: true})
	if err := svc.SendVerificationEmail(context.Background(), VerificationEmail{Email: "a@example.com"}); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("want not configured error, got %v", err)
	}

	dialer := &captureDialer{err: errors.New("550 5.1.1 recipient address rejected")}
	svc = newTestEmailService(dialer)
	if err := svc.SendVerificationEmail(context.Background(), VerificationEmail{Email: "a@example.com"}); !errors.Is(err, ErrEmailRecipientRejected) {
		t.Fatalf("want recipient rejected, got %v", err)
	}
	if err := svc.SendVerificationEmail(context.Background(), VerificationEmail{Email: "not-an-email"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("want invalid email, got %v", err)
	}
}
