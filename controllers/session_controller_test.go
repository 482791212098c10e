package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msafryx/carelum-backend/auth"
	"github.com/msafryx/carelum-backend/models"
	"github.com/msafryx/carelum-backend/security"
	"github.com/msafryx/carelum-backend/store"
)

type insertRecorder struct {
	store.Store
	inserted []store.Row
}

func (f *insertRecorder) Insert(ctx context.Context, table string, row store.Row) (store.Row, error) {
	f.inserted = append(f.inserted, row)
	return row, nil
}

func postSession(t *testing.T, fake *insertRecorder, user auth.CurrentUser, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("current_user", user)

	New(fake, nil, zap.NewNop()).CreateSession(c)
	return w
}

var parent = auth.CurrentUser{ID: "parent-1", Email: "p@example.com", Role: models.RoleParent}

func TestCreateSessionRejectsEmptyChildSet(t *testing.T) {
	fake := &insertRecorder{}
	w := postSession(t, fake, parent,
		`{"searchScope":"nationwide","startTime":"2026-03-10T09:00:00Z"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	var resp security.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != security.CodeValidationError {
		t.Fatalf("code = %q, want %q", resp.Code, security.CodeValidationError)
	}
	if len(fake.inserted) != 0 {
		t.Fatalf("session was stored despite missing children: %v", fake.inserted)
	}
}

func TestCreateSessionStoresSingleChildAsList(t *testing.T) {
	fake := &insertRecorder{}
	w := postSession(t, fake, parent,
		`{"childId":"child-1","searchScope":"nationwide","startTime":"2026-03-10T09:00:00Z"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(fake.inserted) != 1 {
		t.Fatalf("inserted %d rows, want 1", len(fake.inserted))
	}
	row := fake.inserted[0]
	if row["child_ids"] != `["child-1"]` {
		t.Fatalf("child_ids = %v, want the single child folded into the list", row["child_ids"])
	}
	if row["child_id"] != "child-1" {
		t.Fatalf("child_id = %v", row["child_id"])
	}
	if row["status"] != string(models.StatusRequested) {
		t.Fatalf("status = %v", row["status"])
	}
}

func TestCreateSessionKeepsChildOrder(t *testing.T) {
	fake := &insertRecorder{}
	w := postSession(t, fake, parent,
		`{"childIds":["c2","c1","c3"],"searchScope":"nationwide","startTime":"2026-03-10T09:00:00Z"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := fake.inserted[0]["child_ids"]; got != `["c2","c1","c3"]` {
		t.Fatalf("child_ids = %v, submitted order not preserved", got)
	}
}
