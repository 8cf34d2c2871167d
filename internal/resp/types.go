package resp

import (
	"bytes"
	"strconv"
	"strings"
)

type ValueType int

const (
	ValueTypeNil ValueType = iota
	ValueTypeSimpleString
	ValueTypeSimpleError
	ValueTypeInteger
	ValueTypeBulkString
	ValueTypeArray
	// ValueTypeNull is the absent bulk string, written as $-1 on the wire
	ValueTypeNull
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeSimpleString:
		return "SimpleString"
	case ValueTypeSimpleError:
		return "Error"
	case ValueTypeInteger:
		return "Integer"
	case ValueTypeBulkString, ValueTypeNull:
		return "BulkString"
	case ValueTypeArray:
		return "Array"
	}
	return "Nil"
}

// Value is a single protocol frame. Only the fields relevant to Type are set:
// Buffer for simple strings, errors and bulk strings, Integer for integers and
// Array for arrays.
type Value struct {
	Type    ValueType
	Buffer  []byte
	Array   []Value
	Integer int64
}

func SimpleString(s string) Value {
	return Value{Type: ValueTypeSimpleString, Buffer: []byte(s)}
}

func Error(s string) Value {
	return Value{Type: ValueTypeSimpleError, Buffer: []byte(s)}
}

func Integer(n int64) Value {
	return Value{Type: ValueTypeInteger, Integer: n}
}

func BulkString(b []byte) Value {
	return Value{Type: ValueTypeBulkString, Buffer: b}
}

func BulkStringFromString(s string) Value {
	return Value{Type: ValueTypeBulkString, Buffer: []byte(s)}
}

func NullBulkString() Value {
	return Value{Type: ValueTypeNull}
}

func Array(values ...Value) Value {
	if values == nil {
		values = []Value{}
	}
	return Value{Type: ValueTypeArray, Array: values}
}

// IsNull reports whether v is the null bulk string
func (v Value) IsNull() bool {
	return v.Type == ValueTypeNull
}

// IsText reports whether v carries text, i.e. it is a non-null bulk string or a simple string
func (v Value) IsText() bool {
	return v.Type == ValueTypeBulkString || v.Type == ValueTypeSimpleString
}

// Equal compares two frames structurally. A nil and an empty payload are the
// same non-null bulk string, and a nil and an empty array are the same array.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValueTypeSimpleString, ValueTypeSimpleError, ValueTypeBulkString:
		return bytes.Equal(v.Buffer, other.Buffer)
	case ValueTypeInteger:
		return v.Integer == other.Integer
	case ValueTypeArray:
		if len(v.Array) != len(other.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	}
	return true
}

func (v Value) String() string {
	switch v.Type {
	case ValueTypeSimpleString:
		return "SimpleString(" + string(v.Buffer) + ")"
	case ValueTypeSimpleError:
		return "Error(" + string(v.Buffer) + ")"
	case ValueTypeInteger:
		return "Integer(" + strconv.FormatInt(v.Integer, 10) + ")"
	case ValueTypeBulkString:
		return "BulkString(" + string(v.Buffer) + ")"
	case ValueTypeNull:
		return "BulkString(None)"
	case ValueTypeArray:
		items := make([]string, len(v.Array))
		for i, item := range v.Array {
			items[i] = item.String()
		}
		return "Array([" + strings.Join(items, ", ") + "])"
	}
	return "Nil"
}
