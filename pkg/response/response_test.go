package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestErrorAbortsWithStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, http.StatusConflict, CodeInsufficientFunds, "余额不足", gin.H{"balance": "1.00"})

	if w.Code != http.StatusConflict || !c.IsAborted() {
		t.Fatalf("status=%d aborted=%v", w.Code, c.IsAborted())
	}
	resp := decode(t, w)
	if resp.Code != CodeInsufficientFunds || resp.Message != "余额不足" || resp.Data == nil {
		t.Fatalf("resp=%+v", resp)
	}
}

func TestUnauthorizedSetsChallenge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Unauthorized(c, "需要登录")

	if w.Code != http.StatusUnauthorized || w.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("status=%d header=%q", w.Code, w.Header().Get("WWW-Authenticate"))
	}
}

func TestPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Page(c, []int{1, 2}, 5, 1, 2)

	var body struct {
		Code int      `json:"code"`
		Data PageData `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != CodeSuccess || body.Data.Total != 5 || body.Data.PageSize != 2 {
		t.Fatalf("body=%+v", body)
	}
}
