package organizations

import (
	"strconv"
	"strings"
	"unicode"
)

const maxSlugBase = 48

// Slug derives a shareable identifier from name and the creation instant in
// Unix milliseconds. Uniqueness comes from the timestamp suffix.
func Slug(name string, createdAtMs int64) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugBase {
			break
		}
	}

	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "org"
	}
	return base + "-" + strconv.FormatInt(createdAtMs, 10)
}
