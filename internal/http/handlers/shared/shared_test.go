package shared

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jobdesk-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

func newTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return body
}

func TestRespondErrorTranslates(t *testing.T) {
	c, w := newTestContext("/x?lang=en-US")
	RespondError(c, response.CodeConflict, "error.email_exists", nil)

	body := decodeEnvelope(t, w)
	if body.StatusCode != response.CodeConflict {
		t.Fatalf("status_code want %d got %d", response.CodeConflict, body.StatusCode)
	}
	if body.Msg != "Email already registered" {
		t.Fatalf("unexpected msg: %s", body.Msg)
	}
}

func TestRespondRateLimited(t *testing.T) {
	c, w := newTestContext("/x?lang=en-US")
	RespondRateLimited(c, 42)

	if w.Header().Get("Retry-After") != "42" {
		t.Fatalf("Retry-After header missing")
	}
	body := decodeEnvelope(t, w)
	if body.StatusCode != response.CodeTooManyRequests || !strings.Contains(body.Msg, "42") {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetContextUintWithKeys(t *testing.T) {
	c, _ := newTestContext("/x")
	c.Set("user_id", uint(7))
	if id, ok := GetContextUintWithKeys(c, "user_id", "error.bad_request", "error.internal_error"); !ok || id != 7 {
		t.Fatalf("unexpected result: %d %v", id, ok)
	}

	c, w := newTestContext("/x")
	if _, ok := GetContextUintWithKeys(c, "user_id", "error.bad_request", "error.internal_error"); ok {
		t.Fatalf("missing key should fail")
	}
	if decodeEnvelope(t, w).StatusCode != response.CodeUnauthorized {
		t.Fatalf("missing key should respond unauthorized")
	}
}

func TestNormalizePagination(t *testing.T) {
	page, size := NormalizePagination(0, 500)
	if page != 1 || size != 100 {
		t.Fatalf("unexpected pagination: %d %d", page, size)
	}
	if _, size = NormalizePagination(2, 0); size != 20 {
		t.Fatalf("default page size want 20 got %d", size)
	}
}
