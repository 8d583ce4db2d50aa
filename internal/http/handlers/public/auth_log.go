package public

import (
	"strconv"

	"github.com/jobdesk-next/internal/constants"
	handlershared "github.com/jobdesk-next/internal/http/handlers/shared"
	"github.com/jobdesk-next/internal/http/response"
	"github.com/jobdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMyAuthLogs 获取当前用户认证日志
func (h *Handler) GetMyAuthLogs(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	logs, total, err := h.AuthAuditService.ListByUser(uid, c.Query("event"), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.SuccessWithPage(c, logs, response.NewPagination(page, pageSize, total))
}

// recordAuthEvent 写认证审计日志，失败只记日志不影响响应
func (h *Handler) recordAuthEvent(c *gin.Context, event, email string, userID uint, err error, source string) {
	h.writeAuthEvent(c, event, email, userID, service.FailReasonOf(err), source)
}

func (h *Handler) recordBadRequest(c *gin.Context, event, email, source string) {
	h.writeAuthEvent(c, event, email, 0, constants.AuthFailReasonBadRequest, source)
}

func (h *Handler) writeAuthEvent(c *gin.Context, event, email string, userID uint, failReason, source string) {
	if h == nil || h.AuthAuditService == nil {
		return
	}
	status := constants.AuthEventStatusSuccess
	if failReason != "" {
		status = constants.AuthEventStatusFailed
	}
	recordErr := h.AuthAuditService.Record(service.RecordAuthEventInput{
		UserID:     userID,
		Email:      email,
		Event:      event,
		Status:     status,
		FailReason: failReason,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Source:     source,
		RequestID:  getRequestID(c),
	})
	if recordErr != nil {
		handlershared.RequestLog(c).Warnw("auth_audit_record_failed", "event", event, "error", recordErr)
	}
}
