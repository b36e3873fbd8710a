package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rhuss/gatehouse/pkg/api"
	"github.com/rhuss/gatehouse/pkg/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(context.Background(), Config{
		Path:           filepath.Join(t.TempDir(), "data", "users.db"),
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 4, 5, 6, 7, 8000, time.UTC)
	u := &api.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: "admin", CreatedAt: created}
	if err := s.SaveUser(ctx, u); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	got, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Name != "Ada" || got.Email != "ada@example.com" || got.Role != "admin" {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNullEmail(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.SaveUser(ctx, &api.User{ID: "a", Role: "user"})
	// A second user without email must not trip the UNIQUE constraint.
	if err := s.SaveUser(ctx, &api.User{ID: "b", Role: "user"}); err != nil {
		t.Fatalf("SaveUser without email failed: %v", err)
	}

	got, _ := s.GetUser(ctx, "a")
	if got.Email != "" {
		t.Errorf("Email = %q, want empty", got.Email)
	}
}

func TestDuplicates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	s.SaveUser(ctx, &api.User{ID: "u1", Email: "x@example.com", Role: "user"})

	if err := s.SaveUser(ctx, &api.User{ID: "u1", Role: "user"}); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate id: expected ErrConflict, got %v", err)
	}
	if err := s.SaveUser(ctx, &api.User{ID: "u2", Email: "x@example.com", Role: "user"}); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate email: expected ErrConflict, got %v", err)
	}
}

func TestListOrdered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SaveUser(ctx, &api.User{ID: "late", Role: "user", CreatedAt: base.Add(10 * time.Second)})
	s.SaveUser(ctx, &api.User{ID: "early", Role: "user", CreatedAt: base.Add(900 * time.Millisecond)})
	s.SaveUser(ctx, &api.User{ID: "first", Role: "user", CreatedAt: base})

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}

	want := []string{"first", "early", "late"}
	if len(users) != len(want) {
		t.Fatalf("len = %d, want %d", len(users), len(want))
	}
	for i, id := range want {
		if users[i].ID != id {
			t.Errorf("users[%d] = %q, want %q", i, users[i].ID, id)
		}
	}
}

func TestListEmpty(t *testing.T) {
	s := openTestStore(t)

	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if users == nil || len(users) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", users)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	ctx := context.Background()

	s, err := New(ctx, Config{Path: path, MigrateOnStart: true})
	if err != nil {
		t.Fatal(err)
	}
	s.SaveUser(ctx, &api.User{ID: "u1", Role: "publisher"})
	s.Close()

	s, err = New(ctx, Config{Path: path, MigrateOnStart: true})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	got, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser after reopen failed: %v", err)
	}
	if got.Role != "publisher" {
		t.Errorf("Role = %q, want publisher", got.Role)
	}
}

func TestGetCancelledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetUser(ctx, "u1")
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected context error, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	s := openTestStore(t)
	if err := s.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
