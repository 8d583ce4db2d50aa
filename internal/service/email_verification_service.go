package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/constants"
	"github.com/jobdesk-next/internal/logger"
	"github.com/jobdesk-next/internal/models"
	"github.com/jobdesk-next/internal/repository"
	"github.com/jobdesk-next/internal/throttle"

	"gorm.io/gorm"
)

const defaultDispatchTimeout = 15 * time.Second

// EmailVerificationService 注册、重发验证邮件与邮箱验证流程
type EmailVerificationService struct {
	cfg             *config.Config
	userRepo        repository.UserRepository
	hasher          *PasswordHasher
	issuer          *VerificationIssuer
	resend          *throttle.ResendLimiter
	lockout         throttle.Lockout
	mailer          VerificationMailer
	dispatchTimeout time.Duration
	dispatching     sync.WaitGroup
	now             func() time.Time
}

// NewEmailVerificationService 创建邮箱验证服务
func NewEmailVerificationService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	hasher *PasswordHasher,
	issuer *VerificationIssuer,
	resend *throttle.ResendLimiter,
	mailer VerificationMailer,
) *EmailVerificationService {
	return &EmailVerificationService{
		cfg:             cfg,
		userRepo:        userRepo,
		hasher:          hasher,
		issuer:          issuer,
		resend:          resend,
		lockout:         resolveLockout(cfg.Verification),
		mailer:          mailer,
		dispatchTimeout: resolveDispatchTimeout(cfg.Verification),
		now:             time.Now,
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Email    string
	Password string
	Locale   string
}

// VerifyEmailInput 邮箱验证输入，Token 可以是链接 token 或展示码；展示码需同时提供 Email
type VerifyEmailInput struct {
	Token string
	Email string
}

// VerifyEmailResult 邮箱验证结果
type VerifyEmailResult struct {
	UserID          uint
	Email           string
	AlreadyVerified bool
}

// VerificationStatus 已登录用户查询到的精确验证状态
type VerificationStatus struct {
	Verified         bool       `json:"verified"`
	VerifiedAt       *time.Time `json:"verified_at"`
	Pending          bool       `json:"pending"`
	ExpiresAt        *time.Time `json:"expires_at"`
	Locked           bool       `json:"locked"`
	MinutesRemaining int        `json:"minutes_remaining"`
	Attempts         int        `json:"attempts"`
}

// Register 创建未验证账号并签发验证挑战；挑战写入失败时账号一并回滚，发信失败不影响注册
func (s *EmailVerificationService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrEmailExists
	}

	passwordHash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	issued, err := s.issuer.Generate(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("generate verification: %w", err)
	}

	user := &models.User{
		Email:        normalized,
		PasswordHash: passwordHash,
		DisplayName:  resolveNicknameFromEmail(normalized),
		Locale:       normalizeLocale(input.Locale),
		Status:       constants.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.userRepo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.userRepo.WithTx(tx)
		if err := repoTx.Create(user); err != nil {
			return err
		}
		user.SetChallenge(&issued.Challenge)
		user.ResetVerifyAttempts()
		return repoTx.Update(user)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	refreshAuthState(ctx, user)

	s.dispatch(user, issued, user.Locale)
	return user, nil
}

// IssueVerification 为账号签发新挑战，旧挑战随之失效；返回明文 token 与过期时间
func (s *EmailVerificationService) IssueVerification(ctx context.Context, userID uint) (string, time.Time, error) {
	issued, _, err := s.issue(ctx, userID, false)
	if err != nil {
		return "", time.Time{}, err
	}
	return issued.Token, issued.Challenge.ExpiresAt, nil
}

// ResendVerification 匿名重发验证邮件
// 未注册、已验证、已锁定的邮箱与正常情况返回相同结果，只有邮箱格式错误、限流与内部错误会返回 error。
func (s *EmailVerificationService) ResendVerification(ctx context.Context, email, locale string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	decision, err := s.resend.Check(ctx, normalized)
	if err != nil {
		return fmt.Errorf("resend throttle: %w", err)
	}
	if !decision.Allowed {
		return newResendLimitedError(decision.RetryAfterSeconds())
	}

	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if user == nil || user.EmailVerified {
		return nil
	}
	if s.lockout.CheckLocked(user.VerifyLockedUntil, s.now()).Locked {
		return nil
	}

	issued, issuedUser, err := s.issue(ctx, user.ID, true)
	if err != nil {
		if errors.Is(err, ErrAlreadyVerified) || errors.Is(err, ErrVerifyLocked) || errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if strings.TrimSpace(issuedUser.Locale) != "" {
		locale = issuedUser.Locale
	}
	s.dispatch(issuedUser, issued, locale)
	return nil
}

// VerifyEmail 校验链接 token 或展示码
func (s *EmailVerificationService) VerifyEmail(ctx context.Context, input VerifyEmailInput) (*VerifyEmailResult, error) {
	presented := strings.TrimSpace(input.Token)
	if presented == "" {
		return nil, ErrTokenRequired
	}

	candidate, err := s.userRepo.GetByVerifyTokenHash(s.issuer.HashToken(presented))
	if err != nil {
		return nil, err
	}
	if candidate == nil && strings.TrimSpace(input.Email) != "" {
		normalized, err := normalizeEmail(input.Email)
		if err != nil {
			return nil, ErrInvalidToken
		}
		if candidate, err = s.userRepo.GetByEmail(normalized); err != nil {
			return nil, err
		}
	}
	if candidate == nil {
		return nil, ErrInvalidToken
	}

	var (
		result    *VerifyEmailResult
		verifyErr error
		verified  *models.User
	)
	err = s.userRepo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.userRepo.WithTx(tx)
		user, err := repoTx.GetByIDForUpdate(candidate.ID)
		if err != nil {
			return err
		}
		if user == nil {
			verifyErr = ErrInvalidToken
			return nil
		}

		now := s.now()
		dirty := false
		lock := s.lockout.CheckLocked(user.VerifyLockedUntil, now)
		if lock.Locked {
			verifyErr = newVerifyLockedError(lock.RetryAfterSeconds, lock.MinutesRemaining)
			return nil
		}
		if lock.Expired {
			user.ResetVerifyAttempts()
			dirty = true
		}

		challenge := user.Challenge()
		if challenge == nil || challenge.Expired(now) {
			verifyErr = ErrInvalidToken
			return s.saveIfDirty(repoTx, user, dirty, now)
		}

		matched, err := s.issuer.Match(ctx, challenge, presented)
		if err != nil {
			return err
		}
		if !matched {
			attempts, lockedUntil := s.lockout.RegisterFailure(user.VerifyAttempts, now)
			user.VerifyAttempts = attempts
			user.VerifyLockedUntil = lockedUntil
			verifyErr = ErrInvalidToken
			if lockedUntil != nil {
				logger.Warnw("email_verification_locked",
					"user_id", user.ID,
					"attempts", attempts,
					"locked_until", lockedUntil,
				)
			}
			return s.saveIfDirty(repoTx, user, true, now)
		}

		result = &VerifyEmailResult{UserID: user.ID, Email: user.Email, AlreadyVerified: user.EmailVerified}
		if user.EmailVerified {
			return s.saveIfDirty(repoTx, user, dirty, now)
		}
		user.MarkEmailVerified(now)
		verified = user
		return s.saveIfDirty(repoTx, user, true, now)
	})
	if err != nil {
		return nil, err
	}
	if verifyErr != nil {
		return nil, verifyErr
	}
	if verified != nil {
		refreshAuthState(ctx, verified)
	}
	return result, nil
}

// VerificationLink 链接 token 的只读检查结果
type VerificationLink struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InspectVerificationLink 只读检查链接 token 是否仍可用，不消耗 token 也不计入失败次数；
// 真正的验证需要客户端再以 POST 提交同一 token
func (s *EmailVerificationService) InspectVerificationLink(ctx context.Context, token string) (*VerificationLink, error) {
	presented := strings.TrimSpace(token)
	if presented == "" {
		return nil, ErrTokenRequired
	}
	user, err := s.userRepo.GetByVerifyTokenHash(s.issuer.HashToken(presented))
	if err != nil {
		return nil, err
	}
	if user == nil || user.EmailVerified {
		return nil, ErrInvalidToken
	}
	now := s.now()
	if lock := s.lockout.CheckLocked(user.VerifyLockedUntil, now); lock.Locked {
		return nil, newVerifyLockedError(lock.RetryAfterSeconds, lock.MinutesRemaining)
	}
	challenge := user.Challenge()
	if challenge == nil || challenge.Expired(now) {
		return nil, ErrInvalidToken
	}
	return &VerificationLink{Email: user.Email, ExpiresAt: challenge.ExpiresAt}, nil
}

// VerificationStatus 已登录用户查询自己的验证状态
func (s *EmailVerificationService) VerificationStatus(ctx context.Context, userID uint) (*VerificationStatus, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	now := s.now()
	status := &VerificationStatus{
		Verified:   user.EmailVerified,
		VerifiedAt: user.EmailVerifiedAt,
		Attempts:   user.VerifyAttempts,
	}
	if challenge := user.Challenge(); challenge != nil && !challenge.Expired(now) {
		expiresAt := challenge.ExpiresAt
		status.Pending = true
		status.ExpiresAt = &expiresAt
	}
	if lock := s.lockout.CheckLocked(user.VerifyLockedUntil, now); lock.Locked {
		status.Locked = true
		status.MinutesRemaining = lock.MinutesRemaining
	} else if lock.Expired {
		status.Attempts = 0
	}
	return status, nil
}

// WaitDispatch 等待进行中的发信完成，停机时调用
func (s *EmailVerificationService) WaitDispatch(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.dispatching.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// issue 写入新挑战并清零失败次数、解除锁定；respectLock 为 true 时锁定中的账号不签发
func (s *EmailVerificationService) issue(ctx context.Context, userID uint, respectLock bool) (*IssuedVerification, *models.User, error) {
	if userID == 0 {
		return nil, nil, ErrNotFound
	}
	issued, err := s.issuer.Generate(ctx, s.now())
	if err != nil {
		return nil, nil, fmt.Errorf("generate verification: %w", err)
	}

	var target *models.User
	err = s.userRepo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.userRepo.WithTx(tx)
		user, err := repoTx.GetByIDForUpdate(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotFound
		}
		if user.EmailVerified {
			return ErrAlreadyVerified
		}
		now := s.now()
		if respectLock && s.lockout.CheckLocked(user.VerifyLockedUntil, now).Locked {
			return ErrVerifyLocked
		}
		user.SetChallenge(&issued.Challenge)
		user.ResetVerifyAttempts()
		user.UpdatedAt = now
		if err := repoTx.Update(user); err != nil {
			return err
		}
		target = user
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return issued, target, nil
}

func (s *EmailVerificationService) saveIfDirty(repo repository.UserRepository, user *models.User, dirty bool, now time.Time) error {
	if !dirty {
		return nil
	}
	user.UpdatedAt = now
	return repo.Update(user)
}

// dispatch 异步投递验证邮件，失败只记录日志
func (s *EmailVerificationService) dispatch(user *models.User, issued *IssuedVerification, locale string) {
	if user == nil || issued == nil {
		return
	}
	if s.mailer == nil {
		logger.Warnw("verification_email_mailer_missing", "user_id", user.ID)
		return
	}
	msg := VerificationEmail{
		UserID:      user.ID,
		Email:       user.Email,
		Token:       issued.Token,
		DisplayCode: issued.DisplayCode,
		Locale:      resolveUserLocale(locale),
		ExpiresAt:   issued.Challenge.ExpiresAt,
	}
	s.dispatching.Add(1)
	go func() {
		defer s.dispatching.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.dispatchTimeout)
		defer cancel()
		if err := s.mailer.SendVerificationEmail(ctx, msg); err != nil {
			logger.Warnw("verification_email_dispatch_failed",
				"user_id", msg.UserID,
				"email", logger.MaskEmail(msg.Email),
				"error", err,
			)
			return
		}
		logger.Debugw("verification_email_dispatched",
			"user_id", msg.UserID,
			"email", logger.MaskEmail(msg.Email),
		)
	}()
}

func resolveLockout(cfg config.VerificationConfig) throttle.Lockout {
	return throttle.NewLockout(cfg.MaxAttempts, time.Duration(cfg.LockMinutes)*time.Minute)
}

func resolveDispatchTimeout(cfg config.VerificationConfig) time.Duration {
	if cfg.DispatchTimeoutSeconds <= 0 {
		return defaultDispatchTimeout
	}
	return time.Duration(cfg.DispatchTimeoutSeconds) * time.Second
}

func resolveUserLocale(locale string) string {
	if strings.TrimSpace(locale) == "" {
		return ""
	}
	return normalizeLocale(locale)
}
