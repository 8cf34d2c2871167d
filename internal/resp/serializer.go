package resp

import (
	"bufio"
	"strconv"
)

var crlf = []byte("\r\n")

func AppendSimpleString(dst []byte, buf []byte) []byte {
	dst = append(dst, '+')
	dst = append(dst, buf...)
	return append(dst, crlf...)
}

func AppendSimpleError(dst []byte, buf []byte) []byte {
	dst = append(dst, '-')
	dst = append(dst, buf...)
	return append(dst, crlf...)
}

func AppendInteger(dst []byte, value int64) []byte {
	dst = append(dst, ':')
	dst = strconv.AppendInt(dst, value, 10)
	return append(dst, crlf...)
}

func AppendBulkString(dst []byte, buf []byte) []byte {
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(buf)), 10)
	dst = append(dst, crlf...)
	dst = append(dst, buf...)
	return append(dst, crlf...)
}

func AppendNullBulkString(dst []byte) []byte {
	return append(dst, "$-1\r\n"...)
}

func AppendArray(dst []byte, values []Value) []byte {
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(len(values)), 10)
	dst = append(dst, crlf...)
	for _, v := range values {
		dst = AppendValue(dst, v)
	}
	return dst
}

// AppendValue appends the wire form of value to dst. It never fails: a zero
// Value is written as the null bulk string.
func AppendValue(dst []byte, value Value) []byte {
	switch value.Type {
	case ValueTypeSimpleString:
		return AppendSimpleString(dst, value.Buffer)
	case ValueTypeSimpleError:
		return AppendSimpleError(dst, value.Buffer)
	case ValueTypeInteger:
		return AppendInteger(dst, value.Integer)
	case ValueTypeBulkString:
		return AppendBulkString(dst, value.Buffer)
	case ValueTypeArray:
		return AppendArray(dst, value.Array)
	}
	return AppendNullBulkString(dst)
}

// Encode returns the wire form of value
func Encode(value Value) []byte {
	return AppendValue(nil, value)
}

// Serialize writes the wire form of value to w. The caller is responsible for flushing.
func Serialize(value Value, w *bufio.Writer) error {
	_, err := w.Write(Encode(value))
	return err
}
