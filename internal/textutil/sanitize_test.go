package textutil

import (
	"testing"
	"testing/quick"
)

func TestSanitizeProjectName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"my_song", "my_song"},
		{"My Song 2", "My_Song_2"},
		{"rock-n-roll!", "rock_n_roll_"},
		{"Café Olé", "Caf__Ol_"},
		{"Cafe\u0301", "Caf_"},
		{"歌", "_"},
		{"a/b\\c", "a_b_c"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeProjectName(tc.in); got != tc.want {
			t.Fatalf("SanitizeProjectName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeProjectNameIsIdempotentAndRestricted(t *testing.T) {
	property := func(name string) bool {
		once := SanitizeProjectName(name)
		if SanitizeProjectName(once) != once {
			return false
		}
		for _, r := range once {
			if !IsProjectNameRune(r) {
				return false
			}
		}
		return true
	}
	if err := quick.Check(property, &quick.Config{MaxCount: 500}); err != nil {
		t.Fatalf("property failed: %v", err)
	}
}

func TestIsProjectName(t *testing.T) {
	if IsProjectName("") {
		t.Fatal("empty name must not be valid")
	}
	if !IsProjectName("abc_123") {
		t.Fatal("expected sanitized name to be valid")
	}
	if IsProjectName("../etc") {
		t.Fatal("expected traversal to be invalid")
	}
}
