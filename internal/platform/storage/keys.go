package storage

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// SanitizeFilename folds accents and replaces anything outside [A-Za-z0-9._-].
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	safe := unsafeName.ReplaceAllString(b.String(), "_")
	return strings.Trim(safe, "_")
}

// ObjectKey joins the sanitized prefix segments with "<unix millis>-<filename>".
// A filename that sanitizes to nothing is replaced by a random UUID.
func ObjectKey(now time.Time, filename string, prefix ...string) string {
	name := SanitizeFilename(filename)
	if name == "" {
		name = uuid.NewString() + ".pdf"
	}
	parts := make([]string, 0, len(prefix)+1)
	for _, p := range prefix {
		if p = strings.Trim(unsafeName.ReplaceAllString(p, "_"), "_"); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, strconv.FormatInt(now.UnixMilli(), 10)+"-"+name)
	return strings.Join(parts, "/")
}
