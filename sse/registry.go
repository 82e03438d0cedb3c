package sse

import (
	"slices"
	"sync"
)

// Registry maps tenants to their live subscriber channels. A tenant key is
// present only while its set is non-empty. The lock is held for the map
// operation alone, never while sending.
type Registry struct {
	mu      sync.RWMutex
	tenants map[string]map[*Channel]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tenants: make(map[string]map[*Channel]struct{})}
}

// Register adds ch to tenant's set. Registering the same channel twice is a
// no-op. An empty tenant is a programming error and panics.
func (r *Registry) Register(tenant string, ch *Channel) {
	if tenant == "" {
		panic("sse: register with empty tenant")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.tenants[tenant]
	if !ok {
		set = make(map[*Channel]struct{})
		r.tenants[tenant] = set
	}
	set[ch] = struct{}{}
}

// Unregister removes ch from tenant's set and drops the tenant once its set
// is empty. Unknown tenants or channels are ignored.
func (r *Registry) Unregister(tenant string, ch *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.tenants[tenant]
	if !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(r.tenants, tenant)
	}
}

// ChannelsFor returns a snapshot of tenant's channels.
func (r *Registry) ChannelsFor(tenant string) []*Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.tenants[tenant]
	out := make([]*Channel, 0, len(set))
	for ch := range set {
		out = append(out, ch)
	}
	return out
}

// Tenants returns the tenants with at least one channel, sorted.
func (r *Registry) Tenants() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.tenants))
	for t := range r.tenants {
		out = append(out, t)
	}
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Len returns the number of tenants and channels.
func (r *Registry) Len() (tenants, channels int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, set := range r.tenants {
		channels += len(set)
	}
	return len(r.tenants), channels
}

// drain empties the registry and returns every channel it held.
func (r *Registry) drain() []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Channel
	for tenant, set := range r.tenants {
		for ch := range set {
			out = append(out, ch)
		}
		delete(r.tenants, tenant)
	}
	return out
}
