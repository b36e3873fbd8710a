package auth

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/gatehouse/pkg/api"
	"github.com/rhuss/gatehouse/pkg/auth/jwt"
	"github.com/rhuss/gatehouse/pkg/storage"
)

var testSecret = []byte("test-signing-secret")

// fakeStore is a UserLookup that counts calls.
type fakeStore struct {
	users map[string]*api.User
	err   error
	calls atomic.Int32
}

func newFakeStore(users ...*api.User) *fakeStore {
	s := &fakeStore{users: make(map[string]*api.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeStore) GetUser(_ context.Context, id string) (*api.User, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

// signToken issues an HS256 token for subject valid until exp.
func signToken(t *testing.T, secret []byte, subject string, exp time.Time) string {
	t.Helper()
	claims := jwtlib.MapClaims{
		"id":  subject,
		"iat": time.Now().Add(-time.Minute).Unix(),
		"exp": exp.Unix(),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func validToken(t *testing.T, subject string) string {
	return signToken(t, testSecret, subject, time.Now().Add(time.Hour))
}

func expiredToken(t *testing.T, subject string) string {
	return signToken(t, testSecret, subject, time.Now().Add(-time.Hour))
}

func newTestAuthenticator(t *testing.T, store UserLookup) *Authenticator {
	t.Helper()
	v, err := jwt.New(jwt.Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("creating verifier: %v", err)
	}
	return NewAuthenticator(v, store)
}

var errBoom = errors.New("connection refused")

func timeNowPlusHour() time.Time {
	return time.Now().Add(time.Hour)
}
