package express

import (
	"net/http"
	"strings"
)

// Method is a response compression algorithm.
type Method int

const (
	// Identity means no compression and no Content-Encoding header.
	Identity Method = iota
	Brotli
	Gzip
	Deflate
)

func (m Method) String() string {
	switch m {
	case Brotli:
		return "brotli"
	case Gzip:
		return "gzip"
	case Deflate:
		return "deflate"
	}
	return "identity"
}

// token returns the Content-Encoding header value, empty for Identity.
func (m Method) token() string {
	switch m {
	case Brotli:
		return "br"
	case Gzip:
		return "gzip"
	case Deflate:
		return "deflate"
	}
	return ""
}

// AcceptEncoding is a client's parsed Accept-Encoding preference: the
// supported algorithms in the order the client stated them.
type AcceptEncoding struct {
	order []Method
}

// ParseAcceptEncoding parses an Accept-Encoding header value.
// Codings the server does not support are dropped; quality values are
// ignored beyond q=0 rejections, since order already expresses preference.
func ParseAcceptEncoding(header string) AcceptEncoding {
	var accept AcceptEncoding
	for _, part := range strings.Split(header, ",") {
		coding := part
		rejected := false
		if i := strings.Index(part, ";"); i != -1 {
			coding = part[:i]
			params := strings.ReplaceAll(part[i+1:], " ", "")
			if strings.HasPrefix(params, "q=0") && !strings.HasPrefix(params, "q=0.") {
				rejected = true
			}
		}
		if rejected {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(coding)) {
		case "br":
			accept.order = append(accept.order, Brotli)
		case "gzip":
			accept.order = append(accept.order, Gzip)
		case "deflate":
			accept.order = append(accept.order, Deflate)
		}
	}
	return accept
}

// FromRequest parses the request's Accept-Encoding header.
func FromRequest(r *http.Request) AcceptEncoding {
	return ParseAcceptEncoding(r.Header.Get("Accept-Encoding"))
}

// Preferred resolves the preference to exactly one method: the first
// algorithm the client listed that the server supports. A client that
// states no usable preference gets Identity, never a guess.
func (a AcceptEncoding) Preferred() Method {
	if len(a.order) == 0 {
		return Identity
	}
	return a.order[0]
}

// Supports reports whether the client listed the given method.
func (a AcceptEncoding) Supports(m Method) bool {
	for _, have := range a.order {
		if have == m {
			return true
		}
	}
	return false
}

// Checked returns m if the client listed it, Identity otherwise.
// Use it to force a specific algorithm without ever violating the client's
// stated encodings.
func (a AcceptEncoding) Checked(m Method) Method {
	if a.Supports(m) {
		return m
	}
	return Identity
}
