// Package express shapes outgoing HTTP responses: it wraps a payload with a
// content type, a cache TTL, and a negotiated compression method, and
// performs the actual encode step immediately before responding.
package express

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultTTL is the cache lifetime in seconds used when none is set.
// 3600 is one hour; 43200 is half a day; 86400 is a day.
const DefaultTTL = 3600

const htmlContentType = "text/html; charset=utf-8"

// ErrAlreadySent is returned when Send is called on a consumed envelope.
var ErrAlreadySent = errors.New("express: response already sent")

// payload is one of several heterogeneous response data sources.
// A payload is materialized at most once, at send time.
type payload interface {
	contentType() string
	contents() ([]byte, error)
}

type dataBytes []byte

func (dataBytes) contentType() string { return htmlContentType }
func (d dataBytes) contents() ([]byte, error) {
	return d, nil
}

type dataString string

func (dataString) contentType() string { return htmlContentType }
func (d dataString) contents() ([]byte, error) {
	return []byte(d), nil
}

// dataRendered is the output of the template layer, already HTML.
type dataRendered string

func (dataRendered) contentType() string { return htmlContentType }
func (d dataRendered) contents() ([]byte, error) {
	return []byte(d), nil
}

type dataFile string

func (d dataFile) contentType() string { return typeFromExtension(string(d)) }
func (d dataFile) contents() ([]byte, error) {
	return os.ReadFile(string(d))
}

// dataNamed wraps an already opened file. The file is consumed and closed
// when the payload is materialized.
type dataNamed struct {
	f *os.File
}

func (d dataNamed) contentType() string { return typeFromExtension(d.f.Name()) }
func (d dataNamed) contents() ([]byte, error) {
	defer d.f.Close()
	return io.ReadAll(d.f)
}

// typeFromExtension derives a content type from a file extension, falling
// back to plain text when the extension is unrecognized.
func typeFromExtension(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "text/plain; charset=utf-8"
}

// Express is a response envelope. It is built once per request with the
// fluent With* methods and consumed exactly once by Send.
type Express struct {
	data        payload
	method      Method
	contentType string
	ttl         int
	streamed    bool
	sent        bool
}

func newExpress(data payload) Express {
	return Express{
		data:        data,
		method:      Identity,
		contentType: data.contentType(),
		ttl:         DefaultTTL,
		streamed:    true,
	}
}

// NewBytes wraps a raw byte payload; the default content type is HTML.
func NewBytes(b []byte) Express {
	return newExpress(dataBytes(b))
}

// NewString wraps a string payload; the default content type is HTML.
func NewString(s string) Express {
	return newExpress(dataString(s))
}

// NewRendered wraps the output of the template layer.
func NewRendered(html string) Express {
	return newExpress(dataRendered(html))
}

// NewFile wraps a file path payload. The content type is derived from the
// file extension.
func NewFile(path string) Express {
	return newExpress(dataFile(path))
}

// NewNamed wraps an already opened file. The file is read and closed at
// send time.
func NewNamed(f *os.File) Express {
	return newExpress(dataNamed{f: f})
}

// Compress negotiates the compression method from the client's parsed
// Accept-Encoding preference. Without a stated preference no compression is
// applied.
func (e Express) Compress(accept AcceptEncoding) Express {
	e.method = accept.Preferred()
	return e
}

// WithCompression sets a specific compression method.
func (e Express) WithCompression(m Method) Express {
	e.method = m
	return e
}

// ResetCompression clears the compression method.
func (e Express) ResetCompression() Express {
	e.method = Identity
	return e
}

// WithTTL sets the Cache-Control max-age in seconds.
func (e Express) WithTTL(seconds int) Express {
	e.ttl = seconds
	return e
}

// WithContentType sets an explicit content type; the last call wins.
func (e Express) WithContentType(ct string) Express {
	e.contentType = ct
	return e
}

// Streamed toggles between a streamed body and a sized buffer.
func (e Express) Streamed(streamed bool) Express {
	e.streamed = streamed
	return e
}

// Send materializes the payload, applies the negotiated compression, emits
// headers, and writes the body. It is the single Unsent-to-Sent transition:
// a second call fails with ErrAlreadySent.
//
// Headers are only written after compression has succeeded, so a failed
// encode leaves the connection untouched and the caller free to serve an
// error response instead.
func (e *Express) Send(w http.ResponseWriter) error {
	if e.sent {
		return ErrAlreadySent
	}
	e.sent = true

	body, err := e.data.contents()
	if err != nil {
		return fmt.Errorf("express: materializing payload: %w", err)
	}
	encoded, err := encode(body, e.method)
	if err != nil {
		return fmt.Errorf("express: %s encode: %w", e.method, err)
	}

	h := w.Header()
	h.Set("Content-Type", e.contentType)
	h.Set("Cache-Control", fmt.Sprintf("max-age=%d, must-revalidate", e.ttl))
	if name := e.method.token(); name != "" {
		h.Set("Content-Encoding", name)
	}
	if !e.streamed {
		h.Set("Content-Length", strconv.Itoa(len(encoded)))
	}
	w.WriteHeader(http.StatusOK)

	if e.streamed {
		_, err = io.Copy(w, bytes.NewReader(encoded))
	} else {
		_, err = w.Write(encoded)
	}
	return err
}
