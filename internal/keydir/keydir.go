package keydir

import (
	"sort"

	"github.com/ananthvk/memkv/internal/resp"
)

// Entry is a stored value together with its absolute expiry time in unix
// milliseconds. ExpiresAtMs is only meaningful when Expires is set.
type Entry struct {
	Value       resp.Value
	ExpiresAtMs int64
	Expires     bool
}

// HasExpiry reports whether an expiry time is set
func (e *Entry) HasExpiry() bool {
	return e.Expires
}

// SetExpiry makes the entry expire at atMs
func (e *Entry) SetExpiry(atMs int64) {
	e.ExpiresAtMs = atMs
	e.Expires = true
}

// ClearExpiry makes the entry persistent
func (e *Entry) ClearExpiry() {
	e.ExpiresAtMs = 0
	e.Expires = false
}

// IsExpired reports whether the entry is due at nowMs
func (e *Entry) IsExpired(nowMs int64) bool {
	return e.HasExpiry() && e.ExpiresAtMs <= nowMs
}

// Keydir maps keys to entries. It applies no expiry policy and is not safe for
// concurrent use.
type Keydir struct {
	mp map[string]*Entry
}

// NewKeydir initializes a new Keydir
func NewKeydir() *Keydir {
	return &Keydir{
		mp: make(map[string]*Entry),
	}
}

// Put inserts or replaces the entry for key
func (k *Keydir) Put(key string, entry *Entry) {
	k.mp[key] = entry
}

// Get retrieves the entry for key. The returned entry may be modified in place.
func (k *Keydir) Get(key string) (*Entry, bool) {
	entry, exists := k.mp[key]
	return entry, exists
}

// Delete removes key and reports whether it was present
func (k *Keydir) Delete(key string) bool {
	if _, ok := k.mp[key]; !ok {
		return false
	}
	delete(k.mp, key)
	return true
}

// Range calls fn for every key until fn returns false. fn may delete the key it is given.
func (k *Keydir) Range(fn func(key string, entry *Entry) bool) {
	for key, entry := range k.mp {
		if !fn(key, entry) {
			return
		}
	}
}

// GetAllKeys retrieves all keys in the Keydir in sorted order
func (k *Keydir) GetAllKeys() []string {
	keys := make([]string, 0, len(k.mp))
	for key := range k.mp {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes every entry
func (k *Keydir) Clear() {
	clear(k.mp)
}

// Size returns the number of entries, expired ones included
func (k *Keydir) Size() int {
	return len(k.mp)
}
