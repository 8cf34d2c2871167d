package memkv

import (
	"strconv"
	"testing"

	"github.com/ananthvk/memkv/internal/resp"
)

func BenchmarkRead(b *testing.B) {
	store := NewStore()
	store.Set("small key", resp.BulkStringFromString("The quick brown fox jumps over the lazy dogs"))
	for b.Loop() {
		store.Get("small key")
	}
}

func BenchmarkWriteLargeData(b *testing.B) {
	store := NewStore()

	value := make([]byte, 999*999) // 1 MB value
	for i := range value {
		value[i] = byte(i % 256)
	}
	v := resp.BulkString(value)

	for b.Loop() {
		store.Set("large", v)
	}
}

func BenchmarkReadWithExpiry(b *testing.B) {
	store := NewStore()
	for i := range 1000 {
		store.SetWithTTL("key"+strconv.Itoa(i), resp.Integer(int64(i)), 60_000)
	}
	i := 0
	for b.Loop() {
		store.Get("key" + strconv.Itoa(i%1000))
		i++
	}
}
