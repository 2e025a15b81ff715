package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shuttlesync/internal/session"

	"github.com/shopspring/decimal"
)

func customer() *session.Session {
	return &session.Session{UserID: "user-1", Role: session.RoleCustomer}
}

func admin() *session.Session {
	return &session.Session{UserID: "admin-1", Role: session.RoleAdmin}
}

func newRequest(t *testing.T, method, target string, body interface{}, sess *session.Session) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		req = req.WithContext(session.NewContext(context.Background(), sess))
	}
	return req
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
