// Package docroot maps request targets onto a document root and loads the
// files they name.
package docroot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDir is the document root used when none is configured.
	DefaultDir = "."
	// DefaultIndex is served for the target "/".
	DefaultIndex = "index.html"
)

var (
	// ErrNotFound means the resolved path does not name a stat-able entry.
	ErrNotFound = errors.New("resource not found")
	// ErrReadFailure means the entry exists but could not be opened or read.
	ErrReadFailure = errors.New("resource read failure")
)

// Option configures a Root.
type Option func(*Root)

// WithIndex sets the document served for "/".
func WithIndex(name string) Option {
	return func(r *Root) {
		r.index = name
	}
}

// WithStrictReads makes a read that returns fewer bytes than stat reported
// fail with ErrReadFailure. By default the bytes that were read are served.
func WithStrictReads(strict bool) Option {
	return func(r *Root) {
		r.strictReads = strict
	}
}

// WithConfinement cleans resolved paths and rejects any that land outside
// the document root. Without it targets are appended verbatim, so ".."
// segments can walk out of the root.
func WithConfinement(confine bool) Option {
	return func(r *Root) {
		r.confine = confine
	}
}

// Root is an immutable document root. It is safe for concurrent use.
type Root struct {
	dir         string
	index       string
	strictReads bool
	confine     bool

	open func(name string) (io.ReadCloser, error)
}

// New returns a Root serving files from dir.
func New(dir string, opts ...Option) *Root {
	if dir == "" {
		dir = DefaultDir
	}
	r := &Root{
		dir:   dir,
		index: DefaultIndex,
		open: func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the document root directory.
func (r *Root) Dir() string { return r.dir }

// Resolve computes the filesystem path for target. The target "/" maps to
// the index document; anything else is appended to the root as is.
func (r *Root) Resolve(target string) (string, error) {
	if target == "/" {
		target = "/" + r.index
	}
	if !r.confine {
		return r.dir + target, nil
	}

	root := filepath.Clean(r.dir)
	p := filepath.Join(root, target)
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes document root", ErrNotFound, target)
	}
	return p, nil
}

// Content is a file loaded in full. It is owned by the caller.
type Content struct {
	Data []byte
}

// Len returns the number of bytes loaded.
func (c *Content) Len() int { return len(c.Data) }

// Load reads the whole file at path into memory.
func (r *Root) Load(path string) (*Content, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrReadFailure, path)
	}

	f, err := r.open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailure, err)
	}
	defer f.Close()

	data := make([]byte, fi.Size())
	n, err := io.ReadFull(f, data)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		if r.strictReads {
			return nil, fmt.Errorf("%w: short read of %s (%d of %d bytes)", ErrReadFailure, path, n, len(data))
		}
		data = data[:n]
	default:
		return nil, fmt.Errorf("%w: %w", ErrReadFailure, err)
	}

	return &Content{Data: data}, nil
}
