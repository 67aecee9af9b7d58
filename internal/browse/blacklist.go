package browse

import (
	"strings"
	"sync"
)

// Filter decides whether a link must be skipped.
type Filter interface {
	// Matches reports whether link contains a blocked substring.
	Matches(link string) bool
}

// Blacklist is an append-only set of substrings. A link containing any
// entry is never followed. Entries are kept in insertion order and are
// never removed for the lifetime of the run.
type Blacklist struct {
	mu      sync.RWMutex
	entries []string
	seen    map[string]struct{}
}

// NewBlacklist creates a Blacklist seeded with the given entries.
// Empty strings are ignored; they would match every link.
func NewBlacklist(seed []string) *Blacklist {
	b := &Blacklist{
		entries: make([]string, 0, len(seed)),
		seen:    make(map[string]struct{}, len(seed)),
	}
	for _, entry := range seed {
		b.Add(entry)
	}
	return b
}

// Add appends entry and reports whether it was new.
func (b *Blacklist) Add(entry string) bool {
	if entry == "" {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.seen[entry]; ok {
		return false
	}
	b.seen[entry] = struct{}{}
	b.entries = append(b.entries, entry)
	return true
}

// Matches reports whether link contains any blacklist entry.
func (b *Blacklist) Matches(link string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, entry := range b.entries {
		if strings.Contains(link, entry) {
			return true
		}
	}
	return false
}

// Len returns the number of entries.
func (b *Blacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Entries returns a copy of the entries in insertion order.
func (b *Blacklist) Entries() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.entries...)
}
