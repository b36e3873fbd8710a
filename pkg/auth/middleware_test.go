package auth

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rhuss/gatehouse/pkg/api"
)

// identityRecorder is a handler that records the bound identity.
type identityRecorder struct {
	called bool
	id     Identity
	ok     bool
}

func (h *identityRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.id, h.ok = IdentityFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func newTestGate(t *testing.T, store UserLookup, logBuf *bytes.Buffer) *Gate {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	if logBuf != nil {
		logger = slog.New(slog.NewTextHandler(logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return NewGate(newTestAuthenticator(t, store), WithLogger(logger))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var body api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestGateScenarios(t *testing.T) {
	store := newFakeStore(
		&api.User{ID: "u1", Role: "user"},
		&api.User{ID: "u2", Role: "user"},
	)

	tests := []struct {
		name       string
		required   RoleSet
		prepare    func(t *testing.T, r *http.Request)
		wantStatus int
		wantMsg    string
		wantID     string
	}{
		{
			name:     "A: bearer header, role in set",
			required: NewRoleSet(RoleUser, RoleAdmin),
			prepare: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken(t, "u1"))
			},
			wantStatus: http.StatusOK,
			wantID:     "u1",
		},
		{
			name:     "B: cookie fallback, role in set",
			required: NewRoleSet(RoleUser, RoleAdmin),
			prepare: func(t *testing.T, r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "token", Value: validToken(t, "u1")})
			},
			wantStatus: http.StatusOK,
			wantID:     "u1",
		},
		{
			name:     "C: expired token",
			required: NewRoleSet(RoleUser, RoleAdmin),
			prepare: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+expiredToken(t, "u1"))
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    api.MessageUnauthorized,
		},
		{
			name:     "D: role not in set",
			required: NewRoleSet(RoleAdmin),
			prepare: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken(t, "u2"))
			},
			wantStatus: http.StatusForbidden,
			wantMsg:    api.MessageForbidden,
		},
		{
			name:     "E: wrong scheme is treated as absent",
			required: NewRoleSet(RoleUser, RoleAdmin),
			prepare: func(t *testing.T, r *http.Request) {
				r.Header.Set("Authorization", "Basic abc123")
			},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    api.MessageUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := newTestGate(t, store, nil)
			next := &identityRecorder{}
			handler := gate.Require(tt.required)(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			tt.prepare(t, req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				if !next.called || !next.ok {
					t.Fatal("handler should run with a bound identity")
				}
				if next.id.ID != tt.wantID {
					t.Errorf("bound identity = %q, want %q", next.id.ID, tt.wantID)
				}
				return
			}

			if next.called {
				t.Error("handler must not run for a rejected request")
			}
			body := decodeError(t, rec)
			if body.Success {
				t.Error("success = true on failure")
			}
			if body.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", body.Error, tt.wantMsg)
			}
		})
	}
}

func TestProtectNoCredentialSkipsStore(t *testing.T) {
	store := newFakeStore(&api.User{ID: "u1", Role: "admin"})
	gate := newTestGate(t, store, nil)
	next := &identityRecorder{}

	rec := httptest.NewRecorder()
	gate.Protect(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if store.calls.Load() != 0 {
		t.Errorf("store was called %d times for a request without credentials", store.calls.Load())
	}
	if next.called {
		t.Error("handler must not run")
	}
}

func TestProtectUnauthorizedMessagesCollapse(t *testing.T) {
	store := newFakeStore(&api.User{ID: "u1", Role: "admin"})

	headers := map[string]string{
		"missing":      "",
		"garbage":      "Bearer garbage",
		"expired":      "Bearer " + expiredToken(t, "u1"),
		"wrong secret": "Bearer " + signToken(t, []byte("nope"), "u1", timeNowPlusHour()),
		"unknown user": "Bearer " + validToken(t, "ghost"),
	}

	var bodies []string
	for name, header := range headers {
		gate := newTestGate(t, store, nil)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		gate.Protect(&identityRecorder{}).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}

	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("response bodies differ: %q vs %q", bodies[i], bodies[0])
		}
	}
}

func TestProtectStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.err = errBoom

	var logs bytes.Buffer
	gate := newTestGate(t, store, &logs)
	next := &identityRecorder{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+validToken(t, "u1"))
	rec := httptest.NewRecorder()
	gate.Protect(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != api.MessageStoreFailure {
		t.Errorf("error = %q, want %q", body.Error, api.MessageStoreFailure)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("internal cause leaked into response")
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Errorf("expected cause in logs, got %q", logs.String())
	}
	if next.called {
		t.Error("handler must not run")
	}
}

func TestProtectLogsRejectionCause(t *testing.T) {
	var logs bytes.Buffer
	gate := newTestGate(t, newFakeStore(), &logs)

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+expiredToken(t, "u1"))
	gate.Protect(&identityRecorder{}).ServeHTTP(httptest.NewRecorder(), req)

	out := logs.String()
	if !strings.Contains(out, "authentication failed") || !strings.Contains(out, "/secret") {
		t.Errorf("expected rejection log with path, got %q", out)
	}
}

func TestProtectCustomCookie(t *testing.T) {
	store := newFakeStore(&api.User{ID: "u1", Role: "user"})
	gate := NewGate(newTestAuthenticator(t, store), WithCookieName("session"), WithLogger(slog.New(slog.DiscardHandler)))
	next := &identityRecorder{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: validToken(t, "u1")})
	rec := httptest.NewRecorder()
	gate.Protect(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || next.id.ID != "u1" {
		t.Errorf("status = %d, identity = %+v", rec.Code, next.id)
	}
}

func TestRequireRolesWithoutIdentity(t *testing.T) {
	next := &identityRecorder{}
	rec := httptest.NewRecorder()

	RequireRoles(NewRoleSet(RoleAdmin))(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if next.called {
		t.Error("handler must not run without an identity")
	}
}

func TestRequireRolesWithIdentity(t *testing.T) {
	tests := []struct {
		role       Role
		wantStatus int
	}{
		{RoleAdmin, http.StatusOK},
		{RolePublisher, http.StatusOK},
		{RoleUser, http.StatusForbidden},
		{"", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(SetIdentity(req.Context(), Identity{ID: "u", Role: tt.role}))
			rec := httptest.NewRecorder()

			RequireRoles(NewRoleSet(RoleAdmin, RolePublisher))(&identityRecorder{}).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
