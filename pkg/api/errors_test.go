package api

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestAPIErrorInterface(t *testing.T) {
	var _ error = &APIError{}
}

func TestAPIErrorString(t *testing.T) {
	err := NewForbiddenError()
	want := "forbidden: " + MessageForbidden
	if got := err.Error(); got != want {
		t.Errorf("APIError.Error() = %q, want %q", got, want)
	}
}

func TestAPIErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want int
	}{
		{"unauthorized", NewUnauthorizedError(), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError(), http.StatusForbidden},
		{"not found", NewNotFoundError("user not found"), http.StatusNotFound},
		{"method not allowed", NewMethodNotAllowedError("POST", "/healthz"), http.StatusMethodNotAllowed},
		{"rate limited", NewTooManyRequestsError(), http.StatusTooManyRequests},
		{"server error", NewServerError(MessageStoreFailure), http.StatusInternalServerError},
		{"unknown type", &APIError{Type: "weird", Message: "x"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorEnvelopeJSON(t *testing.T) {
	data, err := json.Marshal(NewUnauthorizedError().Envelope())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"success":false,"error":"Not authorized to access this route"}`
	if string(data) != want {
		t.Errorf("envelope = %s, want %s", data, want)
	}
}
