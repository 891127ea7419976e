package upload

import (
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	keyPrefix      = "pdfs"
	maxBaseNameLen = 100

	// fallbackBaseName is used when sanitization leaves nothing usable.
	fallbackBaseName = "upload.pdf"
)

// KeyGenerator produces storage keys of the form
// "pdfs/<uuid>_<sanitized-name>". The random token makes keys unique even
// for identical original filenames; the sanitized base keeps them readable.
type KeyGenerator struct {
	prefix string
}

// NewKeyGenerator returns a generator using the default key prefix.
func NewKeyGenerator() KeyGenerator {
	return KeyGenerator{prefix: keyPrefix}
}

// Generate builds a unique storage key for the given original filename.
// It never fails; hostile or empty names fall back to a placeholder.
func (g KeyGenerator) Generate(originalName string) string {
	return g.prefix + "/" + uuid.NewString() + "_" + SanitizeFilename(originalName)
}

// SanitizeFilename strips directory components and maps every character
// outside [A-Za-z0-9._-] to underscore. The result is capped in length and
// never empty.
func SanitizeFilename(name string) string {
	// Windows clients send backslash-separated paths.
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		default:
			return '_'
		}
	}, name)

	// A name of only separators, dots, or replaced runes is useless.
	if strings.Trim(name, "._-") == "" {
		return fallbackBaseName
	}

	if len(name) > maxBaseNameLen {
		ext := path.Ext(name)
		if len(ext) >= maxBaseNameLen {
			ext = ""
		}
		name = name[:maxBaseNameLen-len(ext)] + ext
	}
	return name
}
