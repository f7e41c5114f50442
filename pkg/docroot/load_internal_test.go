package docroot

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shortFile struct {
	io.Reader
}

func (shortFile) Close() error { return nil }

func TestLoadShortRead(t *testing.T) {
	p := filepath.Join(t.TempDir(), "app.js")
	require.NoError(t, os.WriteFile(p, []byte("console.log(1);"), 0o644))

	// The file shrinks between stat and read.
	truncated := func(string) (io.ReadCloser, error) {
		return shortFile{strings.NewReader("console")}, nil
	}

	t.Run("Lenient", func(t *testing.T) {
		r := New(t.TempDir())
		r.open = truncated

		c, err := r.Load(p)
		require.NoError(t, err)
		assert.Equal(t, "console", string(c.Data))
	})

	t.Run("Strict", func(t *testing.T) {
		r := New(t.TempDir(), WithStrictReads(true))
		r.open = truncated

		_, err := r.Load(p)
		require.ErrorIs(t, err, ErrReadFailure)
	})

	t.Run("Nothing read", func(t *testing.T) {
		r := New(t.TempDir())
		r.open = func(string) (io.ReadCloser, error) {
			return shortFile{strings.NewReader("")}, nil
		}

		c, err := r.Load(p)
		require.NoError(t, err)
		assert.Zero(t, c.Len())
	})

	t.Run("Open failure", func(t *testing.T) {
		r := New(t.TempDir())
		r.open = func(string) (io.ReadCloser, error) {
			return nil, os.ErrPermission
		}

		_, err := r.Load(p)
		require.ErrorIs(t, err, ErrReadFailure)
		assert.ErrorIs(t, err, os.ErrPermission)
	})

	t.Run("Read failure", func(t *testing.T) {
		r := New(t.TempDir())
		r.open = func(string) (io.ReadCloser, error) {
			return shortFile{io.MultiReader(strings.NewReader("con"), errReader{})}, nil
		}

		_, err := r.Load(p)
		require.ErrorIs(t, err, ErrReadFailure)
	})
}

var errIO = errors.New("input/output error")

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errIO }
