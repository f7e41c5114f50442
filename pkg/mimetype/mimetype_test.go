package mimetype_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apoxy-dev/apoxy-static/pkg/mimetype"
)

func TestFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"./f.html", "text/html"},
		{"./f.css", "text/css"},
		{"./f.js", "application/javascript"},
		{"./f.json", "application/json"},
		{"./f.png", "image/png"},
		{"./f.jpg", "image/jpeg"},
		{"./f.jpeg", "image/jpeg"},
		{"./f.gif", "image/gif"},
		{"./f.svg", "image/svg+xml"},
		{"./f.xyz", "text/plain"},
		{"Makefile", "text/plain"},
		{"", "text/plain"},
		// Case-sensitive.
		{"./F.HTML", "text/plain"},
		// Only the last dot counts.
		{"./bundle.min.js", "application/javascript"},
		{"./archive.html.gz", "text/plain"},
		// The leading "./" of a resolved path is a dot too.
		{"./README", "text/plain"},
		{"./assets/logo", "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, mimetype.FromPath(tt.path))
		})
	}
}

func TestTable(t *testing.T) {
	entries := mimetype.Table()
	want := []mimetype.Entry{
		{Ext: ".css", Type: "text/css"},
		{Ext: ".gif", Type: "image/gif"},
		{Ext: ".html", Type: "text/html"},
		{Ext: ".jpeg", Type: "image/jpeg"},
		{Ext: ".jpg", Type: "image/jpeg"},
		{Ext: ".js", Type: "application/javascript"},
		{Ext: ".json", Type: "application/json"},
		{Ext: ".png", Type: "image/png"},
		{Ext: ".svg", Type: "image/svg+xml"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("Table() mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, entries, 9)

	for _, e := range entries {
		assert.Equal(t, e.Type, mimetype.FromPath("f"+e.Ext))
	}

	// Mutating the copy must not affect lookups.
	entries[0].Type = "text/x-changed"
	assert.Equal(t, "text/css", mimetype.FromPath("f.css"))
}
