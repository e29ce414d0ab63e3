package express

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
)

func TestPreferredNoHeader(t *testing.T) {
	if got := ParseAcceptEncoding("").Preferred(); got != Identity {
		t.Fatalf("preferred is %s", got)
	}
}

func TestPreferredClientOrder(t *testing.T) {
	cases := []struct {
		header string
		want   Method
	}{
		{"br, gzip", Brotli},
		{"gzip, br", Gzip},
		{"deflate", Deflate},
		{"zstd, snappy", Identity},
		{"zstd, gzip", Gzip},
		{"GZIP", Gzip},
		{"br;q=0, gzip", Gzip},
		{"gzip;q=0.5, br", Gzip},
	}
	for _, c := range cases {
		if got := ParseAcceptEncoding(c.header).Preferred(); got != c.want {
			t.Fatalf("header %q prefers %s, want %s", c.header, got, c.want)
		}
	}
}

func TestChecked(t *testing.T) {
	accept := ParseAcceptEncoding("br, gzip")
	if got := accept.Checked(Gzip); got != Gzip {
		t.Fatalf("checked gzip is %s", got)
	}
	if got := accept.Checked(Deflate); got != Identity {
		t.Fatalf("checked deflate is %s", got)
	}
}

func TestSendUncompressed(t *testing.T) {
	rr := httptest.NewRecorder()
	ex := NewString("hello").Compress(ParseAcceptEncoding(""))
	if err := ex.Send(rr); err != nil {
		t.Fatal(err)
	}
	res := rr.Result()
	if got := res.Header.Get("Content-Encoding"); got != "" {
		t.Fatalf("Content-Encoding is %q for identity", got)
	}
	if got := res.Header.Get("Cache-Control"); got != "max-age=3600, must-revalidate" {
		t.Fatalf("Cache-Control is %q", got)
	}
	if got := res.Header.Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("Content-Type is %q", got)
	}
	if rr.Body.String() != "hello" {
		t.Fatalf("body is %q", rr.Body.String())
	}
}

func TestSendBrotli(t *testing.T) {
	rr := httptest.NewRecorder()
	ex := NewString("hello brotli").Compress(ParseAcceptEncoding("br, gzip"))
	if err := ex.Send(rr); err != nil {
		t.Fatal(err)
	}
	if got := rr.Result().Header.Get("Content-Encoding"); got != "br" {
		t.Fatalf("Content-Encoding is %q", got)
	}
	decoded, err := io.ReadAll(brotli.NewReader(rr.Body))
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "hello brotli" {
		t.Fatalf("decoded body is %q", decoded)
	}
}

func TestSendGzip(t *testing.T) {
	rr := httptest.NewRecorder()
	ex := NewBytes([]byte("hello gzip")).Compress(ParseAcceptEncoding("gzip"))
	if err := ex.Send(rr); err != nil {
		t.Fatal(err)
	}
	if got := rr.Result().Header.Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("Content-Encoding is %q", got)
	}
	zr, err := gzip.NewReader(rr.Body)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "hello gzip" {
		t.Fatalf("decoded body is %q", decoded)
	}
}

func TestSendDeflate(t *testing.T) {
	rr := httptest.NewRecorder()
	ex := NewString("hello deflate").Compress(ParseAcceptEncoding("deflate"))
	if err := ex.Send(rr); err != nil {
		t.Fatal(err)
	}
	if got := rr.Result().Header.Get("Content-Encoding"); got != "deflate" {
		t.Fatalf("Content-Encoding is %q", got)
	}
	decoded, err := io.ReadAll(flate.NewReader(rr.Body))
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "hello deflate" {
		t.Fatalf("decoded body is %q", decoded)
	}
}

func TestContentTypeLastWins(t *testing.T) {
	rr := httptest.NewRecorder()
	ex := NewString("{}").
		WithContentType("text/plain").
		WithContentType("application/json")
	if err := ex.Send(rr); err != nil {
		t.Fatal(err)
	}
	if got := rr.Result().Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type is %q", got)
	}
}

func TestDoubleSend(t *testing.T) {
	ex := NewString("once")
	if err := ex.Send(httptest.NewRecorder()); err != nil {
		t.Fatal(err)
	}
	if err := ex.Send(httptest.NewRecorder()); err != ErrAlreadySent {
		t.Fatalf("second send returned %v", err)
	}
}

func TestWithTTL(t *testing.T) {
	rr := httptest.NewRecorder()
	ex := NewString("cached").WithTTL(60)
	if err := ex.Send(rr); err != nil {
		t.Fatal(err)
	}
	if got := rr.Result().Header.Get("Cache-Control"); got != "max-age=60, must-revalidate" {
		t.Fatalf("Cache-Control is %q", got)
	}
}

func TestSizedBody(t *testing.T) {
	rr := httptest.NewRecorder()
	ex := NewString("sized").Streamed(false)
	if err := ex.Send(rr); err != nil {
		t.Fatal(err)
	}
	if got := rr.Result().Header.Get("Content-Length"); got != "5" {
		t.Fatalf("Content-Length is %q", got)
	}
}

func TestFileContentType(t *testing.T) {
	dir := t.TempDir()
	cssPath := filepath.Join(dir, "style.css")
	if err := os.WriteFile(cssPath, []byte("body { margin: 0 }"), 0644); err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	ex := NewFile(cssPath)
	if err := ex.Send(rr); err != nil {
		t.Fatal(err)
	}
	if ct := rr.Result().Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Fatalf("Content-Type is %q", ct)
	}

	// unknown extensions fall back to plain text
	binPath := filepath.Join(dir, "data.zzz")
	if err := os.WriteFile(binPath, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	rr = httptest.NewRecorder()
	ex = NewFile(binPath)
	if err := ex.Send(rr); err != nil {
		t.Fatal(err)
	}
	if ct := rr.Result().Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("Content-Type is %q", ct)
	}
}

func TestMissingFileAbortsBeforeHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	ex := NewFile(filepath.Join(t.TempDir(), "missing.txt"))
	if err := ex.Send(rr); err == nil {
		t.Fatal("missing file did not error")
	}
	if len(rr.Result().Header) != 0 {
		t.Fatalf("headers written despite failure: %v", rr.Result().Header)
	}
}

func TestNamedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<p>hi</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	ex := NewNamed(f)
	if err := ex.Send(rr); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rr.Body.Bytes(), []byte("<p>hi</p>")) {
		t.Fatalf("body is %q", rr.Body.String())
	}
	if ct := rr.Result().Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Content-Type is %q", ct)
	}
}
