package frontmatter

import (
	"testing"
	"time"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	meta := Meta{
		Title:    "Hello World",
		Date:     time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Draft:    true,
		Slug:     "hello-world",
		Excerpt:  "a short summary",
		Category: "news",
		Tags:     []string{"go", "blogging"},
		Author:   "user-42",
	}
	body := "# Hello\n\nSome *markdown* body.\n"

	data, err := Encode(meta, body)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, gotBody, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Title != meta.Title || got.Slug != meta.Slug || got.Draft != meta.Draft {
		t.Errorf("meta mismatch: %+v", got)
	}
	if !got.Date.Equal(meta.Date) {
		t.Errorf("date = %v, want %v", got.Date, meta.Date)
	}
	if got.Excerpt != meta.Excerpt || got.Category != meta.Category || got.Author != meta.Author {
		t.Errorf("optional fields mismatch: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" || got.Tags[1] != "blogging" {
		t.Errorf("tags = %v", got.Tags)
	}
	if gotBody != body {
		t.Errorf("body = %q, want %q", gotBody, body)
	}
}

func TestBodyReturnedVerbatim(t *testing.T) {
	// Whatever the caller stores must come back byte for byte: no added
	// trailing newline, no stripped leading newlines.
	bodies := []string{
		"body text",
		"no trailing newline",
		"trailing newline\n",
		"\nstarts with a blank line\n",
		"ends in several\n\n\n",
	}
	for _, body := range bodies {
		data, err := Encode(Meta{Title: "t", Slug: "t"}, body)
		if err != nil {
			t.Fatalf("Encode(%q): %v", body, err)
		}
		_, got, err := Parse(data)
		if err != nil {
			t.Fatalf("Parse(%q): %v", body, err)
		}
		if got != body {
			t.Errorf("body = %q, want %q", got, body)
		}
	}
}

func TestParseHandwrittenWithoutBlankLine(t *testing.T) {
	// Files written by hand may omit the blank line after the front matter.
	meta, body, err := Parse([]byte("---\ntitle: x\n---\nbody\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if meta.Title != "x" {
		t.Errorf("title = %q", meta.Title)
	}
	if body != "body\n" {
		t.Errorf("body = %q", body)
	}
}

func TestParseMissingFrontmatter(t *testing.T) {
	if _, _, err := Parse([]byte("# just a heading\n")); err == nil {
		t.Error("expected error for content without front matter")
	}
}

func TestParseUnclosedFrontmatter(t *testing.T) {
	if _, _, err := Parse([]byte("---\ntitle: x\n")); err == nil {
		t.Error("expected error for unclosed front matter")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, _, err := Parse([]byte("---\ntitle: [unbalanced\n---\nbody\n")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestParseEmptyBody(t *testing.T) {
	data, err := Encode(Meta{Title: "t", Slug: "t"}, "")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, body, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if body != "" {
		t.Errorf("body = %q, want empty", body)
	}
}
