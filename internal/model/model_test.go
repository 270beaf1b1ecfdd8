package model

import (
	"strings"
	"testing"
)

func TestUserIdentity(t *testing.T) {
	u := &User{ID: 42}

	// *User must satisfy Identifiable — checked at compile time here too.
	var id Identifiable = u
	if id.Identity() != 42 {
		t.Errorf("Identity() = %d, want 42", id.Identity())
	}
}

func TestGravatarURL_NormalisesEmail(t *testing.T) {
	a := &User{Email: "  Alice@Example.com "}
	b := &User{Email: "alice@example.com"}

	if a.GravatarURL(100) != b.GravatarURL(100) {
		t.Errorf("GravatarURL() differs for equivalent emails:\n%s\n%s", a.GravatarURL(100), b.GravatarURL(100))
	}
	// md5("alice@example.com")
	if !strings.Contains(b.GravatarURL(100), "c160f8cc69a4f0bf2b0362752353d060") {
		t.Errorf("GravatarURL() = %q, missing expected hash", b.GravatarURL(100))
	}
	if !strings.HasSuffix(b.GravatarURL(80), "?s=80&r=g&d=retro") {
		t.Errorf("GravatarURL() = %q, wrong query", b.GravatarURL(80))
	}
}

func TestListOwnedBy(t *testing.T) {
	l := &List{ID: 1, AuthorID: 7}

	tests := []struct {
		name  string
		owner Identifiable
		want  bool
	}{
		{"author", &User{ID: 7}, true},
		{"someone else", &User{ID: 8}, false},
		{"nil owner", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.OwnedBy(tt.owner); got != tt.want {
				t.Errorf("OwnedBy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListTotal(t *testing.T) {
	l := &List{}
	if l.Total() != 0 {
		t.Errorf("Total() with NULL = %d, want 0", l.Total())
	}
	n := 3
	l.TotalTasks = &n
	if l.Total() != 3 {
		t.Errorf("Total() = %d, want 3", l.Total())
	}
}
