package fileserver

import (
	"time"

	"github.com/apoxy-dev/apoxy-static/pkg/docroot"
)

const (
	DefaultListenAddr     = ":8080"
	DefaultReadBufferSize = 8192
	DefaultMaxConnections = 10
)

// Options is the immutable server configuration. It is copied into the
// server on construction.
type Options struct {
	// Address to listen on.
	ListenAddr string
	// Directory that request targets are resolved against.
	DocRoot string
	// Document served for "/".
	Index string
	// Size of the single read that receives a request. Longer requests are truncated.
	ReadBufferSize int
	// Maximum number of connections served at once. Accept waits while the limit is reached.
	MaxConnections int
	// Optional deadline for receiving the request. Zero disables it.
	ReadTimeout time.Duration
	// Treat a short file read as a read failure.
	StrictReads bool
	// Reject targets that resolve outside DocRoot.
	ConfineToRoot bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ListenAddr:     DefaultListenAddr,
		DocRoot:        docroot.DefaultDir,
		Index:          docroot.DefaultIndex,
		ReadBufferSize: DefaultReadBufferSize,
		MaxConnections: DefaultMaxConnections,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ListenAddr == "" {
		o.ListenAddr = d.ListenAddr
	}
	if o.DocRoot == "" {
		o.DocRoot = d.DocRoot
	}
	if o.Index == "" {
		o.Index = d.Index
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = d.ReadBufferSize
	}
	if o.MaxConnections <= 0 {
		o.MaxConnections = d.MaxConnections
	}
	return o
}

func (o Options) docRoot() *docroot.Root {
	return docroot.New(o.DocRoot,
		docroot.WithIndex(o.Index),
		docroot.WithStrictReads(o.StrictReads),
		docroot.WithConfinement(o.ConfineToRoot),
	)
}
