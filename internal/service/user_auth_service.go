package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jobdesk-next/internal/cache"
	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/constants"
	"github.com/jobdesk-next/internal/i18n"
	"github.com/jobdesk-next/internal/logger"
	"github.com/jobdesk-next/internal/models"
	"github.com/jobdesk-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserAuthService 用户认证服务
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	hasher   *PasswordHasher
	now      func() time.Time
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, hasher *PasswordHasher) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
		hasher:   hasher,
		now:      time.Now,
	}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateUserJWT 生成用户 JWT Token
func (s *UserAuthService) GenerateUserJWT(user *models.User, expireHours int) (string, time.Time, error) {
	resolvedHours := expireHours
	if resolvedHours <= 0 {
		resolvedHours = resolveUserJWTExpireHours(s.cfg.UserJWT)
	}
	now := s.now()
	expiresAt := now.Add(time.Duration(resolvedHours) * time.Hour)
	claims := UserJWTClaims{
		UserID:       user.ID,
		Email:        user.Email,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// LoginInput 登录输入
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// Login 用户登录；命中旧版哈希时用同一明文重新哈希并写回
func (s *UserAuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if input.Password == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	result, err := s.hasher.Verify(ctx, input.Password, user.PasswordHash)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if !result.Valid {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if !user.EmailVerified {
		return nil, "", time.Time{}, ErrEmailNotVerified
	}

	if result.NeedsMigration {
		if err := s.migratePasswordHash(ctx, user, input.Password); err != nil {
			return nil, "", time.Time{}, err
		}
	}

	expireHours := resolveUserJWTExpireHours(s.cfg.UserJWT)
	if input.RememberMe {
		expireHours = resolveRememberMeExpireHours(s.cfg.UserJWT)
	}
	token, expiresAt, err := s.GenerateUserJWT(user, expireHours)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	user.LastLoginAt = &now

	return user, token, expiresAt, nil
}

// migratePasswordHash 在行锁内确认哈希未被并发修改后写入 bcrypt 哈希
// 锁内哈希已变化时本次登录按凭据无效处理；明文超过 bcrypt 上限时保留旧哈希
func (s *UserAuthService) migratePasswordHash(ctx context.Context, user *models.User, password string) error {
	legacyHash := user.PasswordHash
	upgraded, err := s.hasher.Hash(ctx, password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		logger.Warnw("password_hash_migration_skipped",
			"user_id", user.ID,
			"reason", "password_too_long",
		)
		return nil
	}
	if err != nil {
		return err
	}
	return s.userRepo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.userRepo.WithTx(tx)
		locked, err := repoTx.GetByIDForUpdate(user.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.PasswordHash != legacyHash {
			return ErrInvalidCredentials
		}
		locked.PasswordHash = upgraded
		locked.UpdatedAt = s.now()
		if err := repoTx.Update(locked); err != nil {
			return err
		}
		logger.Infow("password_hash_migrated",
			"user_id", locked.ID,
			"from", constants.PasswordSchemeLegacySHA256,
			"to", constants.PasswordSchemeBcrypt,
		)
		*user = *locked
		return nil
	})
}

// ChangePassword 登录态修改密码
func (s *UserAuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if userID == 0 {
		return ErrNotFound
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	result, err := s.hasher.Verify(ctx, oldPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !result.Valid {
		return ErrInvalidPassword
	}

	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	hashedPassword, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	now := s.now()
	user.UpdatedAt = now
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	refreshAuthState(ctx, user)
	return nil
}

// GetUserByID 获取用户信息
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.userRepo.GetByID(id)
}

// refreshAuthState 写入最新鉴权快照；写入失败时删除旧快照，中间件回源数据库
func refreshAuthState(ctx context.Context, user *models.User) {
	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("auth_state_refresh_failed", "user_id", user.ID, "error", err)
		_ = cache.DelUserAuthState(ctx, user.ID)
	}
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

func normalizeLocale(locale string) string {
	return i18n.NormalizeLocale(locale)
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

func resolveRememberMeExpireHours(cfg config.JWTConfig) int {
	if cfg.RememberMeExpireHours <= 0 {
		return resolveUserJWTExpireHours(cfg)
	}
	return cfg.RememberMeExpireHours
}

func resolveNicknameFromEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
