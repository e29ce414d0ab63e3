package express

import (
	"bytes"
	"compress/flate"
	"compress/gzip"

	"github.com/andybalholm/brotli"
)

// Brotli parameters match the envelope's tuning for pre-sized text payloads.
const (
	brotliQuality = 9
	brotliWindow  = 22
)

// encode compresses data with the given method. Identity returns the input
// unchanged. Any error means no output may be sent: the caller has not yet
// written headers and must abort the response.
func encode(data []byte, m Method) ([]byte, error) {
	switch m {
	case Brotli:
		var buf bytes.Buffer
		buf.Grow(len(data)/2 + 200)
		w := brotli.NewWriterOptions(&buf, brotli.WriterOptions{
			Quality: brotliQuality,
			LGWin:   brotliWindow,
		})
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case Gzip:
		var buf bytes.Buffer
		buf.Grow(len(data)/2 + 200)
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case Deflate:
		var buf bytes.Buffer
		buf.Grow(len(data)/2 + 200)
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return data, nil
}
