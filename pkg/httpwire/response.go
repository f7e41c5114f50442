package httpwire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// MaxHeaderSize bounds the framed status line and header block.
const MaxHeaderSize = 8192

// ErrHeaderTooLarge is returned when the header block would exceed MaxHeaderSize.
var ErrHeaderTooLarge = errors.New("response header too large")

const htmlType = "text/html"

// Response is a single response. Every response closes its connection.
type Response struct {
	StatusCode  int
	Reason      string
	ContentType string
	Body        []byte
}

// OK returns a 200 response carrying body.
func OK(contentType string, body []byte) *Response {
	return &Response{
		StatusCode:  200,
		Reason:      "OK",
		ContentType: contentType,
		Body:        body,
	}
}

func canned(code int, reason string) *Response {
	return &Response{
		StatusCode:  code,
		Reason:      reason,
		ContentType: htmlType,
		Body:        []byte(fmt.Sprintf("<html><body><h1>%d %s</h1></body></html>", code, reason)),
	}
}

// BadRequest is sent when the request line cannot be parsed.
func BadRequest() *Response { return canned(400, "Bad Request") }

// NotFound is sent when the resolved path does not exist.
func NotFound() *Response { return canned(404, "Not Found") }

// InternalServerError is sent when an existing file cannot be read.
func InternalServerError() *Response { return canned(500, "Internal Server Error") }

// NotImplemented is sent for any method other than GET.
func NotImplemented() *Response { return canned(501, "Not Implemented") }

// WriteResponse frames res onto w. The header block always carries
// Content-Type, Content-Length and "Connection: close", in that order.
func WriteResponse(w io.Writer, res *Response) error {
	var hdr bytes.Buffer
	fmt.Fprintf(&hdr, "HTTP/1.1 %d %s\r\n", res.StatusCode, res.Reason)
	fmt.Fprintf(&hdr, "Content-Type: %s\r\n", res.ContentType)
	fmt.Fprintf(&hdr, "Content-Length: %d\r\n", len(res.Body))
	fmt.Fprintf(&hdr, "Connection: close\r\n")
	fmt.Fprintf(&hdr, "\r\n")
	if hdr.Len() > MaxHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, hdr.Len())
	}

	if _, err := w.Write(hdr.Bytes()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if len(res.Body) > 0 {
		if _, err := w.Write(res.Body); err != nil {
			return fmt.Errorf("failed to write body: %w", err)
		}
	}
	return nil
}
