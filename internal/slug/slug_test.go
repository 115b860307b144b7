package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World!", "hello-world"},
		{"  spaced  out  ", "spaced-out"},
		{"Already-Slugged", "already-slugged"},
		{"Numbers 123 OK", "numbers-123-ok"},
		{"---leading & trailing---", "leading-trailing"},
		{"UPPER", "upper"},
		{"français café", "fran-ais-caf"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Make(tc.title); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestMakeIdempotent(t *testing.T) {
	titles := []string{"Hello World", "A  B  C", "Mixed_Case Title 42", "éé--éé"}
	for _, title := range titles {
		once := Make(title)
		if twice := Make(once); twice != once {
			t.Errorf("Make not idempotent for %q: %q != %q", title, twice, once)
		}
	}
}

func TestMakeCharset(t *testing.T) {
	titles := []string{"Hello, World!", "  &&& 42 ###  ", "a_b_c", "日本語 post"}
	for _, title := range titles {
		got := Make(title)
		if strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-") {
			t.Errorf("Make(%q) = %q has leading/trailing separator", title, got)
		}
		if strings.Contains(got, "--") {
			t.Errorf("Make(%q) = %q has consecutive separators", title, got)
		}
		for _, r := range got {
			if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
				t.Errorf("Make(%q) = %q contains %q", title, got, r)
			}
		}
	}
}
