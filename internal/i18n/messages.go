package i18n

var catalog = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":              "请求参数错误",
		"error.unauthorized":             "未登录或登录已失效",
		"error.internal_error":           "服务器内部错误",
		"error.rate_limited":             "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":   "限流服务暂不可用，请稍后再试",
		"error.invalid_email":            "邮箱格式不正确",
		"error.email_exists":             "该邮箱已注册",
		"error.invalid_credentials":      "邮箱或密码错误",
		"error.email_not_verified":       "邮箱尚未验证，请先完成邮箱验证",
		"error.user_disabled":            "账号已被禁用",
		"error.user_not_found":           "用户不存在",
		"error.invalid_password":         "原密码错误",
		"error.password_min_length":      "密码长度不能少于 %d 位",
		"error.password_too_long":        "密码长度不能超过 %d 字节",
		"error.password_require_upper":   "密码必须包含大写字母",
		"error.password_require_lower":   "密码必须包含小写字母",
		"error.password_require_number":  "密码必须包含数字",
		"error.password_require_special": "密码必须包含特殊字符",
		"error.verify_token_invalid":     "验证链接或验证码无效或已过期",
		"error.verify_locked":            "验证失败次数过多，请 %d 分钟后再试",
		"error.token_invalid":            "登录凭证无效",
		"error.token_required":           "请提供验证链接或验证码",
		"error.already_verified":         "邮箱已完成验证",
		"error.auth_header_missing":      "缺少 Authorization 请求头",
		"error.auth_header_invalid":      "Authorization 格式错误",
		"error.jwt_secret_missing":       "服务端未配置 JWT 密钥",
		"error.token_revoked":            "登录凭证已失效，请重新登录",
		"error.login_too_many":           "登录尝试过于频繁，请 %d 秒后再试",
		"message.registered":             "注册成功，请查收验证邮件",
		"message.verification_sent":      "如果该邮箱已注册且尚未验证，我们已发送一封验证邮件",
		"message.email_verified":         "邮箱验证成功",
		"message.password_changed":       "密码修改成功",
		"email.verification.subject":     "请验证您的邮箱",
		"email.verification.body":        "您好，\n\n请点击以下链接完成邮箱验证：\n%s\n\n或在页面中输入验证码：%s\n\n链接与验证码将在 %d 分钟后失效。如非本人操作，请忽略本邮件。",
	},
	LocaleTW: {
		"error.bad_request":              "請求參數錯誤",
		"error.unauthorized":             "未登入或登入已失效",
		"error.internal_error":           "伺服器內部錯誤",
		"error.rate_limited":             "請求過於頻繁，請 %d 秒後再試",
		"error.rate_limit_unavailable":   "限流服務暫不可用，請稍後再試",
		"error.invalid_email":            "郵箱格式不正確",
		"error.email_exists":             "該郵箱已註冊",
		"error.invalid_credentials":      "郵箱或密碼錯誤",
		"error.email_not_verified":       "郵箱尚未驗證，請先完成郵箱驗證",
		"error.user_disabled":            "帳號已被停用",
		"error.user_not_found":           "使用者不存在",
		"error.invalid_password":         "原密碼錯誤",
		"error.password_min_length":      "密碼長度不能少於 %d 位",
		"error.password_too_long":        "密碼長度不能超過 %d 位元組",
		"error.password_require_upper":   "密碼必須包含大寫字母",
		"error.password_require_lower":   "密碼必須包含小寫字母",
		"error.password_require_number":  "密碼必須包含數字",
		"error.password_require_special": "密碼必須包含特殊字元",
		"error.verify_token_invalid":     "驗證連結或驗證碼無效或已過期",
		"error.verify_locked":            "驗證失敗次數過多，請 %d 分鐘後再試",
		"error.token_invalid":            "登入憑證無效",
		"error.token_required":           "請提供驗證連結或驗證碼",
		"error.already_verified":         "郵箱已完成驗證",
		"error.auth_header_missing":      "缺少 Authorization 請求標頭",
		"error.auth_header_invalid":      "Authorization 格式錯誤",
		"error.jwt_secret_missing":       "服務端未設定 JWT 金鑰",
		"error.token_revoked":            "登入憑證已失效，請重新登入",
		"error.login_too_many":           "登入嘗試過於頻繁，請 %d 秒後再試",
		"message.registered":             "註冊成功，請查收驗證郵件",
		"message.verification_sent":      "如果該郵箱已註冊且尚未驗證，我們已發送一封驗證郵件",
		"message.email_verified":         "郵箱驗證成功",
		"message.password_changed":       "密碼修改成功",
		"email.verification.subject":     "請驗證您的郵箱",
		"email.verification.body":        "您好，\n\n請點擊以下連結完成郵箱驗證：\n%s\n\n或在頁面中輸入驗證碼：%s\n\n連結與驗證碼將在 %d 分鐘後失效。如非本人操作，請忽略本郵件。",
	},
	LocaleEN: {
		"error.bad_request":              "Invalid request parameters",
		"error.unauthorized":             "Not signed in or session expired",
		"error.internal_error":           "Internal server error",
		"error.rate_limited":             "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiter unavailable, please retry later",
		"error.invalid_email":            "Invalid email address",
		"error.email_exists":             "Email already registered",
		"error.invalid_credentials":      "Incorrect email or password",
		"error.email_not_verified":       "Please verify your email before signing in",
		"error.user_disabled":            "Account disabled",
		"error.user_not_found":           "User not found",
		"error.invalid_password":         "Current password is incorrect",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_too_long":        "Password must be at most %d bytes",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a number",
		"error.password_require_special": "Password must contain a special character",
		"error.verify_token_invalid":     "The verification link or code is invalid or expired",
		"error.verify_locked":            "Too many failed attempts, please retry in %d minutes",
		"error.token_invalid":            "Invalid credentials",
		"error.token_required":           "A verification link or code is required",
		"error.already_verified":         "Email already verified",
		"error.auth_header_missing":      "Missing Authorization header",
		"error.auth_header_invalid":      "Malformed Authorization header",
		"error.jwt_secret_missing":       "JWT secret is not configured",
		"error.token_revoked":            "Session revoked, please sign in again",
		"error.login_too_many":           "Too many sign-in attempts, please retry in %d seconds",
		"message.registered":             "Registered, please check your inbox to verify your email",
		"message.verification_sent":      "If this email is registered and not yet verified, a verification email has been sent",
		"message.email_verified":         "Email verified",
		"message.password_changed":       "Password changed",
		"email.verification.subject":     "Verify your email address",
		"email.verification.body":        "Hello,\n\nOpen the link below to verify your email:\n%s\n\nOr enter this code on the verification page: %s\n\nThe link and code expire in %d minutes. If you did not request this, you can ignore this email.",
	},
}
