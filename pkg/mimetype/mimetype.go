// Package mimetype infers a response Content-Type from a file path.
package mimetype

import (
	"sort"
	"strings"
)

// Default is returned for paths without a known extension.
const Default = "text/plain"

var byExt = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

// FromPath returns the MIME type for path based on everything from its last
// '.' onward. Matching is case-sensitive. The result is never empty.
func FromPath(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return Default
	}
	if t, ok := byExt[path[i:]]; ok {
		return t
	}
	return Default
}

// Entry is a single extension mapping.
type Entry struct {
	Ext  string
	Type string
}

// Table returns a copy of the extension table sorted by extension.
func Table() []Entry {
	entries := make([]Entry, 0, len(byExt))
	for ext, t := range byExt {
		entries = append(entries, Entry{Ext: ext, Type: t})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Ext < entries[j].Ext })
	return entries
}
