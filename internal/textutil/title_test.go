package textutil

import "testing"

func TestTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"probe-a", "Probe A"},
		{"session_2024.06.01", "Session 2024 06 01"},
		{"  tetrode  shank2 ", "Tetrode Shank2"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Title(tc.in); got != tc.want {
			t.Errorf("Title(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTernary(t *testing.T) {
	if got := Ternary(true, "a", "b"); got != "a" {
		t.Fatalf("Ternary(true) = %q", got)
	}
	if got := Ternary(false, 1, 2); got != 2 {
		t.Fatalf("Ternary(false) = %d", got)
	}
}
