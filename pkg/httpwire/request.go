// Package httpwire implements the minimal HTTP/1.1 wire format used by the
// file server: request-line parsing and fixed-shape response framing.
package httpwire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
)

// Per-token limits for the request line.
const (
	MaxMethodLen  = 16
	MaxTargetLen  = 256
	MaxVersionLen = 16
)

var (
	// ErrRequestLineTooLong is returned when a request-line token exceeds its limit.
	ErrRequestLineTooLong = errors.New("request line too long")
	// ErrMalformedRequest is returned when the request line has fewer than three tokens.
	ErrMalformedRequest = errors.New("malformed request line")
)

// Request is a parsed request line. Target is taken verbatim from the wire.
type Request struct {
	Method  string
	Target  string
	Version string
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %s %s", r.Method, r.Target, r.Version)
}

// ParseRequest extracts method, target and version from the first three
// whitespace-delimited tokens of buf. Input stops at the first NUL byte.
// Nothing past the third token is examined.
func ParseRequest(buf []byte) (*Request, error) {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}

	limits := [3]int{MaxMethodLen, MaxTargetLen, MaxVersionLen}
	var tokens [3]string

	s := bufio.NewScanner(bytes.NewReader(buf))
	s.Split(scanASCIIWords)
	n := 0
	for n < len(tokens) && s.Scan() {
		tok := s.Bytes()
		if len(tok) > limits[n] {
			return nil, fmt.Errorf("%w: token %d is %d bytes (max %d)", ErrRequestLineTooLong, n, len(tok), limits[n])
		}
		tokens[n] = string(tok)
		n++
	}
	if err := s.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: %v", ErrRequestLineTooLong, err)
		}
		return nil, fmt.Errorf("failed to scan request line: %w", err)
	}
	if n < len(tokens) {
		return nil, fmt.Errorf("%w: got %d of 3 tokens", ErrMalformedRequest, n)
	}

	return &Request{
		Method:  tokens[0],
		Target:  tokens[1],
		Version: tokens[2],
	}, nil
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// scanASCIIWords is bufio.ScanWords restricted to ASCII whitespace, so
// multi-byte characters never split a token.
func scanASCIIWords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	start := 0
	for start < len(data) && isASCIISpace(data[start]) {
		start++
	}
	for i := start; i < len(data); i++ {
		if isASCIISpace(data[i]) {
			return i + 1, data[start:i], nil
		}
	}
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}
	return start, nil, nil
}
