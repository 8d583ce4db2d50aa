package public

import (
	"strings"

	"github.com/jobdesk-next/internal/constants"
	"github.com/jobdesk-next/internal/http/response"
	"github.com/jobdesk-next/internal/i18n"
	"github.com/jobdesk-next/internal/models"
	"github.com/jobdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

const expiresAtLayout = "2006-01-02T15:04:05Z07:00"

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserRegister 用户注册，验证邮件异步发出
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recordBadRequest(c, constants.AuthEventRegister, req.Email, constants.AuthSourceWeb)
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	user, err := h.EmailVerificationService.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Locale:   i18n.ResolveLocale(c),
	})
	h.recordAuthEvent(c, constants.AuthEventRegister, req.Email, userIDOf(user), err, constants.AuthSourceWeb)
	if err != nil {
		respondWithMappedError(c, err, registerErrorRules, response.CodeInternal, "error.internal_error")
		return
	}

	// 未验证账号也可以持有 token，用于查询验证状态
	token, expiresAt, err := h.UserAuthService.GenerateUserJWT(user, 0)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.registered"), gin.H{
		"user":       userView(user),
		"token":      token,
		"expires_at": expiresAt.Format(expiresAtLayout),
	})
}

// ResendVerificationRequest 重发验证邮件请求
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResendVerification 匿名重发验证邮件，邮箱是否存在返回相同结果
func (h *Handler) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	err := h.EmailVerificationService.ResendVerification(c.Request.Context(), req.Email, i18n.ResolveLocale(c))
	h.recordAuthEvent(c, constants.AuthEventResendVerification, req.Email, 0, err, constants.AuthSourceWeb)
	if err != nil {
		respondWithMappedError(c, err, resendErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.verification_sent"), gin.H{"sent": true})
}

// VerifyEmailRequest 邮箱验证请求，token 可填链接 token 或展示码
type VerifyEmailRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
	Email string `json:"email"`
}

// VerifyEmail 使用 token 或展示码完成邮箱验证
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	presented, source := strings.TrimSpace(req.Token), constants.AuthSourceLink
	if presented == "" {
		presented, source = strings.TrimSpace(req.Code), constants.AuthSourceWeb
	}
	h.verifyEmail(c, service.VerifyEmailInput{Token: presented, Email: req.Email}, source)
}

// InspectVerificationLink 邮件链接落地时只检查 token，确认页再 POST 完成验证；
// 邮件扫描器预取 GET 链接不会消耗 token
func (h *Handler) InspectVerificationLink(c *gin.Context) {
	link, err := h.EmailVerificationService.InspectVerificationLink(c.Request.Context(), c.Query("token"))
	if err != nil {
		respondWithMappedError(c, err, verifyErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.Success(c, gin.H{
		"valid":      true,
		"email":      link.Email,
		"expires_at": link.ExpiresAt,
	})
}

func (h *Handler) verifyEmail(c *gin.Context, input service.VerifyEmailInput, source string) {
	result, err := h.EmailVerificationService.VerifyEmail(c.Request.Context(), input)
	if err != nil {
		h.recordAuthEvent(c, constants.AuthEventVerifyEmail, input.Email, 0, err, source)
		respondWithMappedError(c, err, verifyErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	h.recordAuthEvent(c, constants.AuthEventVerifyEmail, result.Email, result.UserID, nil, source)
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.email_verified"), gin.H{
		"user_id":          result.UserID,
		"email":            result.Email,
		"verified":         true,
		"already_verified": result.AlreadyVerified,
	})
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recordBadRequest(c, constants.AuthEventLogin, req.Email, constants.AuthSourceWeb)
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(c.Request.Context(), service.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	h.recordAuthEvent(c, constants.AuthEventLogin, req.Email, userIDOf(user), err, constants.AuthSourceWeb)
	if err != nil {
		respondWithMappedError(c, err, loginErrorRules, response.CodeInternal, "error.internal_error")
		return
	}

	response.Success(c, gin.H{
		"user":       userView(user),
		"token":      token,
		"expires_at": expiresAt.Format(expiresAtLayout),
	})
}

// GetCurrentUser 获取当前用户信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.UserAuthService.GetUserByID(id)
	if err != nil {
		respondWithMappedError(c, err, userFetchErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return
	}
	response.Success(c, userView(user))
}

// GetMyVerificationStatus 获取当前用户邮箱验证状态
func (h *Handler) GetMyVerificationStatus(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}
	status, err := h.EmailVerificationService.VerificationStatus(c.Request.Context(), id)
	if err != nil {
		respondWithMappedError(c, err, userFetchErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.Success(c, status)
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeUserPassword 修改密码，已签发的 token 全部失效
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	err := h.UserAuthService.ChangePassword(c.Request.Context(), id, req.OldPassword, req.NewPassword)
	h.recordAuthEvent(c, constants.AuthEventChangePassword, c.GetString("user_email"), id, err, constants.AuthSourceWeb)
	if err != nil {
		respondWithMappedError(c, err, changePasswordErrorRules, response.CodeInternal, "error.internal_error")
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "message.password_changed"), gin.H{"changed": true})
}

func userView(user *models.User) gin.H {
	return gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"display_name":      user.DisplayName,
		"locale":            user.Locale,
		"email_verified":    user.EmailVerified,
		"email_verified_at": user.EmailVerifiedAt,
		"created_at":        user.CreatedAt,
	}
}

func userIDOf(user *models.User) uint {
	if user == nil {
		return 0
	}
	return user.ID
}
