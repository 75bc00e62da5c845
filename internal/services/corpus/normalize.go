package corpus

import (
	"path/filepath"
	"strings"
)

// knownExtensions are stripped from source names before indexing
var knownExtensions = []string{".docx", ".doc", ".pdf", ".md", ".markdown", ".txt", ".html", ".htm"}

// NormalizeID turns a source name into a document identifier: the directory
// and one known file extension are stripped, whitespace trimmed, and the
// result lowercased.
func NormalizeID(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}

	lower := strings.ToLower(base)
	for _, ext := range knownExtensions {
		if strings.HasSuffix(lower, ext) {
			base = base[:len(base)-len(ext)]
			break
		}
	}

	return strings.ToLower(strings.TrimSpace(base))
}
