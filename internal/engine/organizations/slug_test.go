package organizations

import (
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple", "Acme", "acme-1700000000000"},
		{"Whitespace Runs", "  Acme   Corp  ", "acme-corp-1700000000000"},
		{"Punctuation", "Q&A: Friday!", "q-a-friday-1700000000000"},
		{"Non ASCII Only", "日本", "org-1700000000000"},
		{"Empty", "", "org-1700000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.in, 1700000000000); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	long := Slug(strings.Repeat("a", 200), 1)
	if len(long) > maxSlugBase+2 {
		t.Errorf("Expected truncated slug, got %d chars", len(long))
	}
}
