package allowlist

import (
	"net/url"

	"gitlab.com/webshield/webshield"
)

// Registry of lists keyed by container ID. A container gets a list on its
// first insert and loses it when the container is forgotten.
type Registry struct {
	lists map[string]*List
}

// NewRegistry of allow lists
func NewRegistry() *Registry {
	return &Registry{lists: make(map[string]*List)}
}

// Get the list for a container, nil if nothing was inserted yet
func (r *Registry) Get(containerID string) *List {
	return r.lists[containerID]
}

// Contains reports if the container approved the origin of u
func (r *Registry) Contains(containerID string, u *url.URL) bool {
	list, ok := r.lists[containerID]
	if !ok {
		return false
	}
	return list.ContainsURL(u)
}

// Insert the origin of u into the container's list, creating it if needed
func (r *Registry) Insert(containerID string, u *url.URL) {
	list, ok := r.lists[containerID]
	if !ok {
		list = New()
		r.lists[containerID] = list
	}
	list.Insert(webshield.OriginOf(u))
}

// Forget a destroyed container
func (r *Registry) Forget(containerID string) {
	delete(r.lists, containerID)
}

// Len number of containers with a list
func (r *Registry) Len() int {
	return len(r.lists)
}
