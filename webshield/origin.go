package webshield

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Origin is the scheme, host and port of a url. Paths, queries and fragments
// never take part in origin comparisons.
type Origin struct {
	Scheme string
	Host   string
	Port   string
}

// OriginOf a url, the host is converted to its ASCII (punycode) form and
// the port is made explicit for http and https.
func OriginOf(u *url.URL) Origin {
	if u == nil {
		return Origin{}
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	port := u.Port()
	if port == "" {
		port = defaultPort(scheme)
	}
	return Origin{Scheme: scheme, Host: host, Port: port}
}

// IsZero reports if the origin could not be derived
func (o Origin) IsZero() bool {
	return o.Scheme == "" || o.Host == ""
}

// String serializes the origin, omitting default ports
func (o Origin) String() string {
	if o.IsZero() {
		return "null"
	}
	host := o.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if o.Port == "" || o.Port == defaultPort(o.Scheme) {
		return o.Scheme + "://" + host
	}
	return o.Scheme + "://" + net.JoinHostPort(o.Host, o.Port)
}

func defaultPort(scheme string) string {
	switch scheme {
	case "http", "ws":
		return "80"
	case "https", "wss":
		return "443"
	}
	return ""
}
