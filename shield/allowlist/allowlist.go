package allowlist

import (
	"net/url"

	"gitlab.com/webshield/webshield"
)

// List of origins the user approved in one container. Approving a url
// approves its whole origin. Lists are owned by the interaction runner and
// are not safe for concurrent use.
type List struct {
	origins map[webshield.Origin]struct{}
}

// New empty list
func New() *List {
	return &List{origins: make(map[webshield.Origin]struct{})}
}

// Contains reports if origin was approved
func (l *List) Contains(origin webshield.Origin) bool {
	_, ok := l.origins[origin]
	return ok
}

// Insert origin, inserting twice is a no-op
func (l *List) Insert(origin webshield.Origin) {
	if origin.IsZero() {
		return
	}
	l.origins[origin] = struct{}{}
}

// ContainsURL reports if the origin of u was approved
func (l *List) ContainsURL(u *url.URL) bool {
	return l.Contains(webshield.OriginOf(u))
}

// Len of the list
func (l *List) Len() int {
	return len(l.origins)
}

