package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/models"
	"github.com/jobdesk-next/internal/repository"
	"github.com/jobdesk-next/internal/throttle"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "passw0rd-test"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []VerificationEmail
	err  error
}

func (m *recordingMailer) SendVerificationEmail(_ context.Context, msg VerificationEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *recordingMailer) last(t *testing.T) VerificationEmail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatalf("no verification email dispatched")
	}
	return m.sent[len(m.sent)-1]
}

type verificationFixture struct {
	svc    *EmailVerificationService
	auth   *UserAuthService
	repo   *repository.GormUserRepository
	hasher *PasswordHasher
	issuer *VerificationIssuer
	db     *gorm.DB
	mailer *recordingMailer
	clock  *testClock
}

func newTestConfig() *config.Config {
	return &config.Config{
		UserJWT: config.JWTConfig{SecretKey: "jwt-test-secret", ExpireHours: 24, RememberMeExpireHours: 168},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireLower: true, RequireNumber: true},
		},
		Verification: config.VerificationConfig{
			TokenSecret:            "verify-test-secret",
			ExpireMinutes:          120,
			MaxAttempts:            5,
			LockMinutes:            15,
			DispatchTimeoutSeconds: 5,
		},
	}
}

func setupVerificationTest(t *testing.T) *verificationFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:verification_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateSchema(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := newTestConfig()
	clock := newTestClock()
	pool := NewHashPool(2)
	hasher := NewPasswordHasher(bcrypt.MinCost, pool)
	issuer := NewVerificationIssuer(cfg.Verification.TokenSecret, 2*time.Hour, bcrypt.MinCost, pool)
	limiter := throttle.NewResendLimiter(throttle.NewMemoryStore(), 3, 10).WithClock(clock.Now)
	mailer := &recordingMailer{}
	repo := repository.NewUserRepository(db)

	svc := NewEmailVerificationService(cfg, repo, hasher, issuer, limiter, mailer)
	svc.now = clock.Now
	auth := NewUserAuthService(cfg, repo, hasher)
	auth.now = clock.Now

	return &verificationFixture{
		svc:    svc,
		auth:   auth,
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		db:     db,
		mailer: mailer,
		clock:  clock,
	}
}

// register 注册并返回最近一封验证邮件
func (f *verificationFixture) register(t *testing.T, email string) (*models.User, VerificationEmail) {
	t.Helper()
	user, err := f.svc.Register(context.Background(), RegisterInput{Email: email, Password: testPassword})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return user, f.waitLastEmail(t)
}

func (f *verificationFixture) waitLastEmail(t *testing.T) VerificationEmail {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.svc.WaitDispatch(ctx); err != nil {
		t.Fatalf("wait dispatch failed: %v", err)
	}
	return f.mailer.last(t)
}

func (f *verificationFixture) reload(t *testing.T, id uint) *models.User {
	t.Helper()
	user, err := f.repo.GetByID(id)
	if err != nil || user == nil {
		t.Fatalf("reload user %d failed: %v", id, err)
	}
	return user
}
