package blog

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestTruncateRuneBoundary(t *testing.T) {
	s := strings.Repeat("ä", 10)
	got := Truncate(s, 4)
	if got != "ääää" {
		t.Fatalf("truncated to %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune: %q", got)
	}
	if Truncate("abc", 10) != "abc" {
		t.Fatal("short strings must pass through")
	}
	if Truncate("abc", 0) != "" {
		t.Fatal("zero limit must yield empty string")
	}
}

func TestShortClone(t *testing.T) {
	long := strings.Repeat("x", 500)
	a := Article{AID: 1, Title: "T", Body: long}
	short := a.ShortClone()
	if short.Body != "" {
		t.Fatal("short clone keeps body")
	}
	if len(short.Description) != DescriptionLimit {
		t.Fatalf("description is %d chars", len(short.Description))
	}
	// an explicit description wins over the body
	b := Article{AID: 2, Title: "T", Body: long, Description: "summary"}
	if got := b.ShortClone().Description; got != "summary" {
		t.Fatalf("description is %q", got)
	}
	if a.Body != long {
		t.Fatal("clone mutated the original")
	}
}

func TestCloneIndependentTags(t *testing.T) {
	a := Article{AID: 1, Tags: []string{"rust", "go"}}
	c := a.Clone()
	c.Tags[0] = "changed"
	if a.Tags[0] != "rust" {
		t.Fatal("clone shares tag storage with the original")
	}
}

func TestHasTag(t *testing.T) {
	a := Article{Tags: []string{"Rust", "webdev"}}
	if !a.HasTag("rust") || !a.HasTag("RUST") {
		t.Fatal("tag matching must be case-insensitive")
	}
	if a.HasTag("go") {
		t.Fatal("unexpected tag match")
	}
}

func TestPermalink(t *testing.T) {
	a := Article{AID: 42, Title: "Hello World", Posted: time.Now()}
	got := a.Permalink("https://example.com/")
	want := "https://example.com/article/42/Hello%20World"
	if got != want {
		t.Fatalf("permalink is %q, want %q", got, want)
	}
}
