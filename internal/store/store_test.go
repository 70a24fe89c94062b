package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/marlowe/talenttrack/internal/apperr"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "talenttrack-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	s, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "Alice Smith", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == 0 {
		t.Error("expected non-zero id")
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Name != "Alice Smith" || got.Email != "alice@example.com" {
		t.Errorf("got %+v", got)
	}
	if got.PasswordHash != "" {
		t.Error("GetUser should not expose the password hash")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "Alice", "dup@example.com", "h"); err != nil {
		t.Fatal(err)
	}
	_, err := s.CreateUser(ctx, "Other Alice", "dup@example.com", "h")
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate email err = %v, want ErrAlreadyExists", err)
	}
}

func TestGetUserByEmail_IncludesHash(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "Bob", "bob@example.com", "secret-hash"); err != nil {
		t.Fatal(err)
	}
	u, err := s.GetUserByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u.PasswordHash != "secret-hash" {
		t.Errorf("hash = %q", u.PasswordHash)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing user err = %v, want ErrNotFound", err)
	}
}

func TestListUsers_OrderedByID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, u := range []struct{ name, email string }{
		{"Zed", "zed@example.com"},
		{"Alice", "alice@example.com"},
		{"Mid", "mid@example.com"},
	} {
		if _, err := s.CreateUser(ctx, u.name, u.email, "h"); err != nil {
			t.Fatal(err)
		}
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 {
		t.Fatalf("len = %d, want 3", len(users))
	}
	for i := 1; i < len(users); i++ {
		if users[i].ID <= users[i-1].ID {
			t.Errorf("users not ordered by id: %v", users)
		}
	}
}

func TestCandidateLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "Creator", "creator@example.com", "h")
	if err != nil {
		t.Fatal(err)
	}

	c, err := s.CreateCandidate(ctx, "Jane Doe", "jane@example.com", u.ID)
	if err != nil {
		t.Fatalf("CreateCandidate: %v", err)
	}

	got, err := s.GetCandidate(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCandidate: %v", err)
	}
	if got.Name != "Jane Doe" || got.CreatedBy != u.ID {
		t.Errorf("got %+v", got)
	}

	if _, err := s.GetCandidate(ctx, 9999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing candidate err = %v, want ErrNotFound", err)
	}

	list, err := s.ListCandidates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("len = %d, want 1", len(list))
	}
}

func TestInsertAndListNotes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, "Author", "author@example.com", "h")
	c, _ := s.CreateCandidate(ctx, "Jane", "jane@example.com", u.ID)

	n1, err := s.InsertNote(ctx, c.ID, u.ID, "first note", []int64{7, 8})
	if err != nil {
		t.Fatalf("InsertNote: %v", err)
	}
	if len(n1.Tags) != 2 {
		t.Errorf("tags = %v", n1.Tags)
	}

	// nil tags stored as empty array, not null
	n2, err := s.InsertNote(ctx, c.ID, u.ID, "second note", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n2.Tags == nil || len(n2.Tags) != 0 {
		t.Errorf("nil tags should round-trip as empty slice, got %v", n2.Tags)
	}

	notes, err := s.ListNotes(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2", len(notes))
	}
	if notes[0].ID != n1.ID || notes[1].ID != n2.ID {
		t.Errorf("notes not in thread order: %v then %v", notes[0].ID, notes[1].ID)
	}
	if notes[0].AuthorName != "Author" {
		t.Errorf("author name = %q", notes[0].AuthorName)
	}
	if len(notes[0].Tags) != 2 || notes[0].Tags[0] != 7 {
		t.Errorf("tags did not round-trip: %v", notes[0].Tags)
	}
}
