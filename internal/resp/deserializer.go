package resp

import (
	"bytes"
	"strconv"
	"unicode/utf8"
)

// Protocol limits, anything above them is rejected as malformed
const (
	MaxBulkLen    = 512 * 1024 * 1024
	MaxArrayLen   = 1024 * 1024
	MaxDepth      = 128
	maxHeaderSize = 32 // longest valid integer / length line, sign and digits included
)

// Decode decodes exactly one frame from the start of buf and returns it along with the
// number of bytes it occupied on the wire. If buf holds only a prefix of a frame,
// ErrIncomplete is returned and the caller should retry once more bytes are available.
// Errors wrapping ErrProtocolError mean the input can never become a valid frame.
//
// A negative array count decodes to an empty array, so the null array and the
// empty array are indistinguishable after decoding.
func Decode(buf []byte) (Value, int, error) {
	return decode(buf, 0)
}

func decode(buf []byte, depth int) (Value, int, error) {
	if len(buf) == 0 {
		return Value{}, 0, ErrIncomplete
	}
	switch buf[0] {
	case '+':
		line, n, err := readLine(buf[1:], -1)
		if err != nil {
			return Value{}, 0, err
		}
		if !utf8.Valid(line) {
			return Value{}, 0, ErrInvalidText
		}
		return Value{Type: ValueTypeSimpleString, Buffer: clone(line)}, 1 + n, nil
	case '-':
		line, n, err := readLine(buf[1:], -1)
		if err != nil {
			return Value{}, 0, err
		}
		if !utf8.Valid(line) {
			return Value{}, 0, ErrInvalidText
		}
		return Value{Type: ValueTypeSimpleError, Buffer: clone(line)}, 1 + n, nil
	case ':':
		integer, n, err := readInteger(buf[1:], ErrInvalidInteger)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Type: ValueTypeInteger, Integer: integer}, 1 + n, nil
	case '$':
		return decodeBulkString(buf)
	case '*':
		return decodeArray(buf, depth)
	}
	return Value{}, 0, ErrUnknownValueType
}

func decodeBulkString(buf []byte) (Value, int, error) {
	length, n, err := readInteger(buf[1:], ErrInvalidLength)
	if err != nil {
		return Value{}, 0, err
	}
	header := 1 + n
	if length < 0 {
		return Value{Type: ValueTypeNull}, header, nil
	}
	if length > MaxBulkLen {
		return Value{}, 0, ErrTooLarge
	}

	total := header + int(length) + 2
	if len(buf) < total {
		return Value{}, 0, ErrIncomplete
	}
	data := buf[header : header+int(length)]
	if buf[total-2] != '\r' || buf[total-1] != '\n' {
		return Value{}, 0, ErrMissingTerminator
	}
	if !utf8.Valid(data) {
		return Value{}, 0, ErrInvalidText
	}
	return Value{Type: ValueTypeBulkString, Buffer: clone(data)}, total, nil
}

func decodeArray(buf []byte, depth int) (Value, int, error) {
	count, n, err := readInteger(buf[1:], ErrInvalidLength)
	if err != nil {
		return Value{}, 0, err
	}
	offset := 1 + n
	if count < 0 {
		return Value{Type: ValueTypeArray, Array: []Value{}}, offset, nil
	}
	if count > MaxArrayLen {
		return Value{}, 0, ErrTooLarge
	}
	if depth >= MaxDepth {
		return Value{}, 0, ErrNestingTooDeep
	}

	// Every element takes at least three bytes, so the remaining input bounds the allocation
	values := make([]Value, 0, min(int(count), (len(buf)-offset)/3))
	for range count {
		value, consumed, err := decode(buf[offset:], depth+1)
		if err != nil {
			return Value{}, 0, err
		}
		values = append(values, value)
		offset += consumed
	}
	return Value{Type: ValueTypeArray, Array: values}, offset, nil
}

// readLine returns the bytes before the first CRLF and the number of bytes consumed
// including the CRLF. A positive limit bounds how long the line may get.
func readLine(buf []byte, limit int) ([]byte, int, error) {
	idx := bytes.Index(buf, crlf)
	if idx == -1 {
		if limit > 0 && len(buf) > limit {
			return nil, 0, ErrInvalidLength
		}
		return nil, 0, ErrIncomplete
	}
	if limit > 0 && idx > limit {
		return nil, 0, ErrInvalidLength
	}
	return buf[:idx], idx + 2, nil
}

func readInteger(buf []byte, invalid error) (int64, int, error) {
	line, n, err := readLine(buf, maxHeaderSize)
	if err != nil {
		if err == ErrInvalidLength {
			return 0, 0, invalid
		}
		return 0, 0, err
	}
	value, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		return 0, 0, invalid
	}
	return value, n, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
