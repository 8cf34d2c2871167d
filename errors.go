package memkv

import "errors"

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrKeyExists   = errors.New("key already exists")
	ErrWrongType   = errors.New("operation against a key holding the wrong kind of value")
	ErrNotInteger  = errors.New("value is not an integer")
	ErrOverflow    = errors.New("increment or decrement would overflow")
	ErrInvalidTTL  = errors.New("invalid expire time")
	ErrTooLarge    = errors.New("string exceeds maximum allowed size")
)
