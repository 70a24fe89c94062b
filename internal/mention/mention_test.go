package mention

import (
	"reflect"
	"testing"

	"github.com/marlowe/talenttrack/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Mention
	}{
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "no mentions",
			text: "just a plain note",
			want: nil,
		},
		{
			name: "single mention",
			text: "ping @alice about this",
			want: []Mention{{Token: "alice", Start: 5, End: 11}},
		},
		{
			name: "multiple mentions in order",
			text: "@bob then @alice",
			want: []Mention{
				{Token: "bob", Start: 0, End: 4},
				{Token: "alice", Start: 10, End: 16},
			},
		},
		{
			name: "duplicates kept",
			text: "@alice and again @alice",
			want: []Mention{
				{Token: "alice", Start: 0, End: 6},
				{Token: "alice", Start: 17, End: 23},
			},
		},
		{
			name: "trailing at degrades to no match",
			text: "weird @",
			want: nil,
		},
		{
			name: "double at matches after second",
			text: "@@alice",
			want: []Mention{{Token: "alice", Start: 1, End: 7}},
		},
		{
			name: "token stops at punctuation",
			text: "thanks @alice!",
			want: []Mention{{Token: "alice", Start: 7, End: 13}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func testUsers() []models.User {
	return []models.User{
		{ID: 1, Name: "Alice Smith"},
		{ID: 2, Name: "Bob Jones"},
		{ID: 3, Name: "Alicia Keys"},
	}
}

func TestResolve(t *testing.T) {
	users := testUsers()

	tests := []struct {
		name   string
		token  string
		wantID int64
		wantOK bool
	}{
		{"case-insensitive substring", "ALICE", 1, true},
		{"exact-ish match", "bob", 2, true},
		{"first match wins on ambiguity", "ali", 1, true},
		{"no match", "zzz", 0, false},
		{"empty token never matches", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := Resolve(tt.token, users)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.token, ok, tt.wantOK)
			}
			if ok && u.ID != tt.wantID {
				t.Errorf("Resolve(%q) id = %d, want %d", tt.token, u.ID, tt.wantID)
			}
		})
	}
}

func TestResolve_EmptyDirectory(t *testing.T) {
	if _, ok := Resolve("alice", nil); ok {
		t.Error("Resolve against empty directory should not match")
	}
}

func TestResolveAll(t *testing.T) {
	users := testUsers()

	tests := []struct {
		name    string
		text    string
		exclude int64
		want    []int64
	}{
		{"no tokens", "plain note", 0, nil},
		{"duplicates collapse", "@alice and @alice again", 0, []int64{1}},
		{"self-mention excluded", "review @alice please", 1, nil},
		{"mixed resolution order", "@bob check with @alice", 0, []int64{2, 1}},
		{"unresolved token dropped", "@zzz and @bob", 0, []int64{2}},
		{"two tokens one user", "@alice aka @ALICE", 0, []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveAll(tt.text, users, tt.exclude)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveAll(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
