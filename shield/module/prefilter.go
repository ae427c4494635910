package module

import (
	"net/url"
	"strings"
)

// MinPathLength urls without a query need a longer escaped path than this
// to be offered to the module
const MinPathLength = 20

func isWebScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// Eligible reports if u should be offered to the module at all. Only http(s)
// urls with a query or a long enough path qualify.
func Eligible(u *url.URL) bool {
	if !isWebScheme(u) || u.Host == "" {
		return false
	}
	return u.RawQuery != "" || len(u.EscapedPath()) > MinPathLength
}

// Filterable reports if u may be handed to the module's filter
func Filterable(u *url.URL) bool {
	return isWebScheme(u) && u.Host != "" && u.RawQuery != ""
}

// DecodeURL percent decodes every valid %XX escape in the url so the module
// matches against readable text. Malformed escapes are copied through as is
// and do not stop the rest of the url from being decoded.
func DecodeURL(u *url.URL) string {
	return unescapeTolerant(u.String())
}

func unescapeTolerant(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	}
	return c - 'A' + 10
}
