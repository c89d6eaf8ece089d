package pdfrender

import (
	"path/filepath"
	"strings"
	"unicode"
)

// sanitizeBaseName strips the extension and replaces every character outside
// [A-Za-z0-9 ._] with an underscore, trimming trailing whitespace. The
// result is safe as a filesystem and storage key component.
func sanitizeBaseName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	var b strings.Builder
	b.Grow(len(base))
	for _, c := range base {
		if unicode.IsLetter(c) && c <= unicode.MaxASCII || unicode.IsDigit(c) && c <= unicode.MaxASCII || c == ' ' || c == '.' || c == '_' {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}
	return strings.TrimRight(b.String(), " \t")
}
