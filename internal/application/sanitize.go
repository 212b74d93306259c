package application

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameRE = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename reduces a client-supplied filename to a safe basename:
// path components are dropped, unsafe runes collapse to underscores, and
// leading dots are stripped so the result can never escape the working
// directory or hide as a dotfile.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = filepath.Base(name)
	name = unsafeFilenameRE.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, "._")
	if name == "" {
		return "workbook.xlsx"
	}
	return name
}
