package memkv

import (
	"math"

	"github.com/ananthvk/memkv/internal/keydir"
	"github.com/ananthvk/memkv/internal/resp"
)

// NoExpiry is returned by TTL for keys that never expire
const NoExpiry int64 = -1

// Store is an in-memory key value store with per-key expiry. Expired keys are
// removed lazily: any operation that looks at a key first drops it if it is due,
// there is no background sweep.
//
// A Store is not safe for concurrent use, callers must serialize access to it.
type Store struct {
	keydir *keydir.Keydir
	clock  Clock
}

type Option func(*Store)

// WithClock makes the store read time from clock instead of the wall clock
func WithClock(clock Clock) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		keydir: keydir.NewKeydir(),
		clock:  SystemClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lookup returns the live entry for key, deleting it first if it has expired
func (s *Store) lookup(key string) (*keydir.Entry, bool) {
	entry, ok := s.keydir.Get(key)
	if !ok {
		return nil, false
	}
	if entry.IsExpired(s.clock.NowMs()) {
		s.keydir.Delete(key)
		return nil, false
	}
	return entry, true
}

// Get returns the value stored at key. The second return value is false if the key
// does not exist or has expired.
func (s *Store) Get(key string) (resp.Value, bool) {
	entry, ok := s.lookup(key)
	if !ok {
		return resp.Value{}, false
	}
	return entry.Value, true
}

// Set stores value at key, replacing any previous value and clearing any expiry
func (s *Store) Set(key string, value resp.Value) {
	s.keydir.Put(key, &keydir.Entry{Value: value})
}

// SetWithTTL stores value at key and makes it expire ttlMs milliseconds from now.
// It fails with ErrInvalidTTL, storing nothing, if the expiry time does not fit in an int64.
func (s *Store) SetWithTTL(key string, value resp.Value, ttlMs int64) error {
	expiresAt, err := s.expiryAfter(ttlMs)
	if err != nil {
		return err
	}
	entry := &keydir.Entry{Value: value}
	entry.SetExpiry(expiresAt)
	s.keydir.Put(key, entry)
	return nil
}

// Del removes key and reports whether a live key was removed. Deleting a missing key is not an error.
func (s *Store) Del(key string) bool {
	if _, ok := s.lookup(key); !ok {
		return false
	}
	return s.keydir.Delete(key)
}

// Exists reports whether key holds a live value
func (s *Store) Exists(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

// Incr increments the integer at key by one and returns the new value.
// A missing key starts from zero.
func (s *Store) Incr(key string) (int64, error) {
	return s.incrBy(key, 1)
}

// Decr decrements the integer at key by one and returns the new value.
// A missing key starts from zero.
func (s *Store) Decr(key string) (int64, error) {
	return s.incrBy(key, -1)
}

func (s *Store) incrBy(key string, delta int64) (int64, error) {
	entry, ok := s.lookup(key)
	if !ok {
		s.keydir.Put(key, &keydir.Entry{Value: resp.Integer(delta)})
		return delta, nil
	}

	current, err := integerOf(entry.Value)
	if err != nil {
		return 0, err
	}
	if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
		return 0, ErrOverflow
	}
	current += delta
	// In place, so the expiry survives
	entry.Value = resp.Integer(current)
	return current, nil
}

// Expire makes key expire the given number of seconds from now
func (s *Store) Expire(key string, seconds int64) error {
	entry, ok := s.lookup(key)
	if !ok {
		return ErrKeyNotFound
	}
	if seconds > math.MaxInt64/1000 || seconds < math.MinInt64/1000 {
		return ErrInvalidTTL
	}
	expiresAt, err := s.expiryAfter(seconds * 1000)
	if err != nil {
		return err
	}
	entry.SetExpiry(expiresAt)
	return nil
}

// expiryAfter returns now + deltaMs, or ErrInvalidTTL if the sum overflows
func (s *Store) expiryAfter(deltaMs int64) (int64, error) {
	now := s.clock.NowMs()
	if (deltaMs > 0 && now > math.MaxInt64-deltaMs) || (deltaMs < 0 && now < math.MinInt64-deltaMs) {
		return 0, ErrInvalidTTL
	}
	return now + deltaMs, nil
}

// TTL returns the number of seconds until key expires, rounded to the nearest second.
// It returns NoExpiry if the key has no expiry and 0 if it is about to expire.
func (s *Store) TTL(key string) (int64, error) {
	entry, ok := s.lookup(key)
	if !ok {
		return 0, ErrKeyNotFound
	}
	if !entry.HasExpiry() {
		return NoExpiry, nil
	}
	remaining := entry.ExpiresAtMs - s.clock.NowMs()
	if remaining <= 0 {
		return 0, nil
	}
	return remaining/1000 + (remaining%1000+500)/1000, nil
}

// Persist removes the expiry from key and reports whether there was one to remove
func (s *Store) Persist(key string) (bool, error) {
	entry, ok := s.lookup(key)
	if !ok {
		return false, ErrKeyNotFound
	}
	hadExpiry := entry.HasExpiry()
	entry.ClearExpiry()
	return hadExpiry, nil
}

// Rename moves the value and expiry of oldKey to newKey, overwriting newKey if it exists
func (s *Store) Rename(oldKey, newKey string) error {
	entry, ok := s.lookup(oldKey)
	if !ok {
		return ErrKeyNotFound
	}
	if oldKey == newKey {
		return nil
	}
	s.keydir.Delete(oldKey)
	s.keydir.Put(newKey, entry)
	return nil
}

// RenameNX is like Rename but fails with ErrKeyExists if newKey already exists
func (s *Store) RenameNX(oldKey, newKey string) error {
	entry, ok := s.lookup(oldKey)
	if !ok {
		return ErrKeyNotFound
	}
	if _, exists := s.lookup(newKey); exists {
		return ErrKeyExists
	}
	s.keydir.Delete(oldKey)
	s.keydir.Put(newKey, entry)
	return nil
}

// Append appends text to the value at key, creating the key if needed, and returns
// the length of the resulting value
func (s *Store) Append(key string, text []byte) (int, error) {
	entry, ok := s.lookup(key)
	if !ok {
		s.keydir.Put(key, &keydir.Entry{Value: resp.BulkString(clone(text))})
		return len(text), nil
	}

	current, err := textOf(entry.Value)
	if err != nil {
		return 0, err
	}
	if int64(len(text)) > resp.MaxBulkLen-int64(len(current)) {
		return 0, ErrTooLarge
	}
	updated := make([]byte, 0, len(current)+len(text))
	updated = append(updated, current...)
	updated = append(updated, text...)
	entry.Value = resp.BulkString(updated)
	return len(updated), nil
}

// GetRange returns the bytes of the value at key in the half-open range [start, end).
// Negative bounds are treated as zero and end is capped at the length of the value.
func (s *Store) GetRange(key string, start, end int64) ([]byte, error) {
	entry, ok := s.lookup(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	text, err := textOf(entry.Value)
	if err != nil {
		return nil, err
	}

	start = max(start, 0)
	end = min(max(end, 0), int64(len(text)))
	if start >= end {
		return []byte{}, nil
	}
	return clone(text[start:end]), nil
}

// SetRange overwrites the value at key starting at offset, padding with spaces if
// offset lies past the end of the current value. A missing key is treated as an
// empty value. A negative offset is treated as zero. It returns the new length, or
// ErrTooLarge if the result would be longer than the largest bulk string.
func (s *Store) SetRange(key string, offset int64, text []byte) (int, error) {
	offset = max(offset, 0)
	if offset > resp.MaxBulkLen-int64(len(text)) {
		return 0, ErrTooLarge
	}

	var current []byte
	entry, ok := s.lookup(key)
	if ok {
		var err error
		if current, err = textOf(entry.Value); err != nil {
			return 0, err
		}
	}

	size := max(int64(len(current)), offset+int64(len(text)))
	updated := make([]byte, size)
	copy(updated, current)
	for i := int64(len(current)); i < offset; i++ {
		updated[i] = ' '
	}
	copy(updated[offset:], text)

	if ok {
		entry.Value = resp.BulkString(updated)
	} else {
		s.keydir.Put(key, &keydir.Entry{Value: resp.BulkString(updated)})
	}
	return len(updated), nil
}

// GetSet replaces the value at key with text and returns the previous value.
// The key must already exist; its expiry is cleared.
func (s *Store) GetSet(key string, text []byte) (resp.Value, error) {
	entry, ok := s.lookup(key)
	if !ok {
		return resp.Value{}, ErrKeyNotFound
	}
	s.keydir.Put(key, &keydir.Entry{Value: resp.BulkString(clone(text))})
	return entry.Value, nil
}

// Type returns the kind of value stored at key, or "none" if there is no such key
func (s *Store) Type(key string) string {
	entry, ok := s.lookup(key)
	if !ok {
		return "none"
	}
	switch entry.Value.Type {
	case resp.ValueTypeSimpleString:
		return "string"
	case resp.ValueTypeInteger:
		return "integer"
	case resp.ValueTypeArray:
		return "array"
	case resp.ValueTypeSimpleError:
		return "error"
	}
	return "bulk_string"
}

// Keys returns all live keys in sorted order, dropping expired keys along the way
func (s *Store) Keys() []string {
	s.purgeExpired()
	return s.keydir.GetAllKeys()
}

// Size returns the number of live keys
func (s *Store) Size() int {
	s.purgeExpired()
	return s.keydir.Size()
}

// Flush removes every key
func (s *Store) Flush() {
	s.keydir.Clear()
}

func (s *Store) purgeExpired() {
	now := s.clock.NowMs()
	s.keydir.Range(func(key string, entry *keydir.Entry) bool {
		if entry.IsExpired(now) {
			s.keydir.Delete(key)
		}
		return true
	})
}

// textOf returns the bytes of a text value. A null bulk string counts as empty text.
func textOf(v resp.Value) ([]byte, error) {
	switch v.Type {
	case resp.ValueTypeBulkString, resp.ValueTypeSimpleString:
		return v.Buffer, nil
	case resp.ValueTypeNull:
		return nil, nil
	}
	return nil, ErrWrongType
}

// integerOf returns the value of an Integer frame. Any other shape, text holding
// digits included, is ErrNotInteger.
func integerOf(v resp.Value) (int64, error) {
	if v.Type != resp.ValueTypeInteger {
		return 0, ErrNotInteger
	}
	return v.Integer, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
