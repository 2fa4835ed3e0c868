package extract

import (
	"path/filepath"
	"strings"
)

// forbidden removes characters that are not allowed in a path segment on
// common host filesystems, plus the full-width asterisk the catalog uses.
var forbidden = strings.NewReplacer(
	":", "",
	"?", "",
	"/", "",
	"|", "",
	"\\", "",
	"<", "",
	">", "",
	"*", "",
	`"`, "",
	"＊", "",
)

// SanitizeSegment returns s with every forbidden character removed.
// Nothing is replaced, truncated or trimmed, and reserved device names are
// left alone. Removal never produces a new forbidden character, so the
// function is idempotent.
func SanitizeSegment(s string) string {
	return forbidden.Replace(s)
}

// ValidatePath ensures the path is within the expected root directory.
// Returns ErrPathTraversal if the path would escape the root.
func ValidatePath(path, expectedRoot string) error {
	cleanPath := filepath.Clean(path)
	cleanRoot := filepath.Clean(expectedRoot)

	rootPrefix := cleanRoot
	if !strings.HasSuffix(rootPrefix, string(filepath.Separator)) {
		rootPrefix += string(filepath.Separator)
	}

	if cleanPath != cleanRoot && !strings.HasPrefix(cleanPath, rootPrefix) {
		return ErrPathTraversal
	}
	return nil
}

// sourceBase returns the final element of a catalog path. Catalog paths
// are recorded on Windows hosts, so both separators are honored.
func sourceBase(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// replaceExt swaps the extension of name for ext (without a dot).
func replaceExt(name, ext string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return stem + "." + ext
}
