package security

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

func sendStoreError(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	SendStoreError(c, err, "Failed to load sessions")

	var resp ErrorResponse
	if uerr := json.Unmarshal(w.Body.Bytes(), &resp); uerr != nil {
		t.Fatalf("decode error body: %v", uerr)
	}
	return w.Code, resp
}

func TestSendStoreErrorUnreachableStore(t *testing.T) {
	code, resp := sendStoreError(t, &pq.Error{Code: "08006"})
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", code, http.StatusServiceUnavailable)
	}
	if resp.Code != CodeUnavailable {
		t.Fatalf("code = %q, want %q", resp.Code, CodeUnavailable)
	}
}

func TestSendStoreErrorStatementFailure(t *testing.T) {
	code, resp := sendStoreError(t, errors.New("syntax error"))
	if code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", code, http.StatusInternalServerError)
	}
	if resp.Code != CodeDatabaseError {
		t.Fatalf("code = %q, want %q", resp.Code, CodeDatabaseError)
	}
	if resp.Message != "Failed to load sessions" {
		t.Fatalf("message = %q, operation context lost", resp.Message)
	}
}
