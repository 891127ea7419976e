package upload_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfdrop/service/internal/upload"
)

func TestKeyGeneratorUniqueness(t *testing.T) {
	g := upload.NewKeyGenerator()

	a := g.Generate("report.pdf")
	b := g.Generate("report.pdf")

	assert.NotEqual(t, a, b, "identical original names must yield distinct keys")
	assert.True(t, strings.HasPrefix(a, "pdfs/"))
	assert.True(t, strings.HasSuffix(a, "_report.pdf"))
}

func TestKeyGeneratorHostileNames(t *testing.T) {
	g := upload.NewKeyGenerator()

	tests := []string{"", "...", "///", "../../etc/passwd"}
	for _, name := range tests {
		key := g.Generate(name)
		require.True(t, strings.HasPrefix(key, "pdfs/"))
		assert.NotContains(t, key[len("pdfs/"):], "/")
		assert.NotContains(t, key, "..")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "a.pdf", "a.pdf"},
		{"spaces replaced", "my report final.pdf", "my_report_final.pdf"},
		{"directory stripped", "uploads/2024/report.pdf", "report.pdf"},
		{"traversal stripped", "../../etc/passwd", "passwd"},
		{"windows path stripped", `C:\Users\me\report.pdf`, "report.pdf"},
		{"unsafe runes replaced", "invoice(final)!.pdf", "invoice_final__.pdf"},
		{"non-ascii replaced", "résumé.pdf", "r_sum_.pdf"},
		{"empty falls back", "", "upload.pdf"},
		{"dots only fall back", "...", "upload.pdf"},
		{"separators only fall back", "///", "upload.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, upload.SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilenameCapsLength(t *testing.T) {
	long := strings.Repeat("a", 150) + ".pdf"

	got := upload.SanitizeFilename(long)

	assert.Len(t, got, 100)
	assert.True(t, strings.HasSuffix(got, ".pdf"), "extension survives the cap")
}
