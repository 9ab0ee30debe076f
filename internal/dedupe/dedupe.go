// Package dedupe tracks which listings a run has already seen. A Resolver
// is seeded once from the store's existing link keys and consulted before
// any extraction work; the store's unique index stays the authoritative
// backstop for races the set cannot see.
package dedupe

import (
	"net/url"
	"strings"
)

// Resolver is an in-memory key set. It is explicitly constructed and owned
// by the caller so runs stay independent; it is not safe for concurrent
// use and does not need to be, adapters run one at a time.
type Resolver struct {
	keys map[string]struct{}
}

// NewResolver seeds the set. Empty seed strings are ignored.
func NewResolver(seed []string) *Resolver {
	r := &Resolver{keys: make(map[string]struct{}, len(seed))}
	for _, k := range seed {
		if k != "" {
			r.keys[k] = struct{}{}
		}
	}
	return r
}

// IsDuplicate reports whether key was seeded or registered earlier. The
// empty key is never a duplicate; candidates without a key are handled
// upstream as malformed.
func (r *Resolver) IsDuplicate(key string) bool {
	if key == "" {
		return false
	}
	_, ok := r.keys[key]
	return ok
}

// Register records a key right after its listing is saved, so later
// candidates in the same run see it.
func (r *Resolver) Register(key string) {
	if key == "" {
		return
	}
	r.keys[key] = struct{}{}
}

// Len returns the number of known keys.
func (r *Resolver) Len() int { return len(r.keys) }

// RelativeKey normalizes a listing URL into the source-relative path used
// as the primary dedupe key: origin stripped, query dropped, one trailing
// slash removed (the root path keeps its slash).
func RelativeKey(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	} else if i := strings.IndexByte(raw, '?'); i >= 0 {
		path = raw[:i]
	}
	if path == "" {
		return "/"
	}
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
