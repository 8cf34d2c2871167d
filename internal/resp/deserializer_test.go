package resp

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{
			name:  "simple string",
			input: "+OK\r\n",
			want:  SimpleString("OK"),
		},
		{
			name:  "empty simple string",
			input: "+\r\n",
			want:  SimpleString(""),
		},
		{
			name:  "error keeps the whole line",
			input: "-ERR this is an error message\r\n",
			want:  Error("ERR this is an error message"),
		},
		{
			name:  "integer",
			input: ":42\r\n",
			want:  Integer(42),
		},
		{
			name:  "negative integer",
			input: ":-42\r\n",
			want:  Integer(-42),
		},
		{
			name:  "integer with plus sign",
			input: ":+42\r\n",
			want:  Integer(42),
		},
		{
			name:  "huge integer",
			input: ":-9223372036854775808\r\n",
			want:  Integer(-9223372036854775808),
		},
		{
			name:  "bulk string",
			input: "$5\r\nhello\r\n",
			want:  BulkStringFromString("hello"),
		},
		{
			name:  "empty bulk string",
			input: "$0\r\n\r\n",
			want:  BulkStringFromString(""),
		},
		{
			name:  "bulk string containing CRLF",
			input: "$12\r\nhello\r\nworld\r\n",
			want:  BulkStringFromString("hello\r\nworld"),
		},
		{
			name:  "bulk string containing emojis",
			input: "$8\r\n😀🎉\r\n",
			want:  BulkStringFromString("😀🎉"),
		},
		{
			name:  "null bulk string",
			input: "$-1\r\n",
			want:  NullBulkString(),
		},
		{
			name:  "any negative bulk length is null",
			input: "$-7\r\n",
			want:  NullBulkString(),
		},
		{
			name:  "empty array",
			input: "*0\r\n",
			want:  Array(),
		},
		{
			name:  "null array decodes as empty array",
			input: "*-1\r\n",
			want:  Array(),
		},
		{
			name:  "array",
			input: "*4\r\n+one\r\n:-42\r\n+two\r\n$5\r\nthree\r\n",
			want: Array(
				SimpleString("one"),
				Integer(-42),
				SimpleString("two"),
				BulkStringFromString("three"),
			),
		},
		{
			name:  "nested array",
			input: "*2\r\n*2\r\n:1\r\n:2\r\n$-1\r\n",
			want:  Array(Array(Integer(1), Integer(2)), NullBulkString()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
			if n != len(tt.input) {
				t.Errorf("Decode() consumed %d bytes, want %d", n, len(tt.input))
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "unknown type",
			input:   "?unknown\r\n",
			wantErr: ErrUnknownValueType,
		},
		{
			name:    "RESP3 null is not supported",
			input:   "_\r\n",
			wantErr: ErrUnknownValueType,
		},
		{
			name:    "integer with letters",
			input:   ":12a34\r\n",
			wantErr: ErrInvalidInteger,
		},
		{
			name:    "empty integer",
			input:   ":\r\n",
			wantErr: ErrInvalidInteger,
		},
		{
			name:    "integer overflow",
			input:   ":9223372036854775808\r\n",
			wantErr: ErrInvalidInteger,
		},
		{
			name:    "integer line too long without CRLF",
			input:   ":" + strings.Repeat("1", 40),
			wantErr: ErrInvalidInteger,
		},
		{
			name:    "bulk length not a number",
			input:   "$abc\r\nabc\r\n",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "bulk string without terminator",
			input:   "$3\r\nabcde\r\n",
			wantErr: ErrMissingTerminator,
		},
		{
			name:    "bulk string with invalid utf-8",
			input:   "$2\r\n\xff\xfe\r\n",
			wantErr: ErrInvalidText,
		},
		{
			name:    "bulk string too large",
			input:   "$999999999999\r\n",
			wantErr: ErrTooLarge,
		},
		{
			name:    "simple string with invalid utf-8",
			input:   "+\xff\r\n",
			wantErr: ErrInvalidText,
		},
		{
			name:    "array count not a number",
			input:   "*x\r\n",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "array too large",
			input:   "*99999999\r\n",
			wantErr: ErrTooLarge,
		},
		{
			name:    "malformed element inside array",
			input:   "*2\r\n:1\r\n?\r\n",
			wantErr: ErrUnknownValueType,
		},
		{
			name:    "arrays nested too deeply",
			input:   strings.Repeat("*1\r\n", MaxDepth+1) + ":1\r\n",
			wantErr: ErrNestingTooDeep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.input))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrProtocolError) {
				t.Errorf("Decode() error = %v, want it to wrap %v", err, ErrProtocolError)
			}
			if errors.Is(err, ErrIncomplete) {
				t.Errorf("Decode() error = %v, malformed input reported as incomplete", err)
			}
		})
	}
}

var sampleFrames = []Value{
	SimpleString("OK"),
	SimpleString(""),
	Error("Unknown command: FOO"),
	Integer(0),
	Integer(-9223372036854775808),
	Integer(9223372036854775807),
	BulkStringFromString("hello"),
	BulkStringFromString(""),
	BulkStringFromString("line\r\nbreak"),
	NullBulkString(),
	Array(),
	Array(BulkStringFromString("SET"), BulkStringFromString("key"), BulkStringFromString("value")),
	Array(Integer(1), Array(SimpleString("a"), NullBulkString()), Error("e"), Array()),
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, frame := range sampleFrames {
		t.Run(frame.String(), func(t *testing.T) {
			encoded := Encode(frame)
			got, n, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode(Encode()) error = %v", err)
			}
			if !got.Equal(frame) {
				t.Errorf("Decode(Encode()) = %v, want %v", got, frame)
			}
			if n != len(encoded) {
				t.Errorf("Decode(Encode()) consumed %d bytes, want %d", n, len(encoded))
			}
		})
	}
}

func TestDecodePrefixIsIncomplete(t *testing.T) {
	for _, frame := range sampleFrames {
		encoded := Encode(frame)
		for i := 0; i < len(encoded); i++ {
			_, _, err := Decode(encoded[:i])
			if !errors.Is(err, ErrIncomplete) {
				t.Errorf("Decode(%q) error = %v, want %v", encoded[:i], err, ErrIncomplete)
			}
			if errors.Is(err, ErrProtocolError) {
				t.Errorf("Decode(%q) reported a valid prefix as malformed", encoded[:i])
			}
		}
	}
}

func TestDecodePipelined(t *testing.T) {
	first := Array(BulkStringFromString("PING"))
	second := Array(BulkStringFromString("ECHO"), BulkStringFromString("x"))
	buf := append(Encode(first), Encode(second)...)

	got1, n1, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() first frame error = %v", err)
	}
	if !got1.Equal(first) {
		t.Errorf("Decode() first frame = %v, want %v", got1, first)
	}

	got2, n2, err := Decode(buf[n1:])
	if err != nil {
		t.Fatalf("Decode() second frame error = %v", err)
	}
	if !got2.Equal(second) {
		t.Errorf("Decode() second frame = %v, want %v", got2, second)
	}
	if n1+n2 != len(buf) {
		t.Errorf("Decode() consumed %d bytes in total, want %d", n1+n2, len(buf))
	}
}

func TestDecodeDoesNotAliasInput(t *testing.T) {
	buf := []byte("$5\r\nhello\r\n")
	got, _, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	copy(buf, "$5\r\nworld\r\n")
	if string(got.Buffer) != "hello" {
		t.Errorf("Decode() result changed with its input: got %q", got.Buffer)
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null equals null", NullBulkString(), NullBulkString(), true},
		{"null differs from empty bulk", NullBulkString(), BulkStringFromString(""), false},
		{"nil and empty bulk payloads", BulkString(nil), BulkString([]byte{}), true},
		{"simple string differs from bulk", SimpleString("a"), BulkStringFromString("a"), false},
		{"nil and empty arrays", Value{Type: ValueTypeArray}, Array(), true},
		{"arrays differ by element", Array(Integer(1)), Array(Integer(2)), false},
		{"arrays differ by length", Array(Integer(1)), Array(Integer(1), Integer(1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	got := Array(BulkStringFromString("a"), NullBulkString(), Integer(3)).String()
	want := "Array([BulkString(a), BulkString(None), Integer(3)])"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func BenchmarkDecodeCommand(b *testing.B) {
	buf := Encode(Array(
		BulkStringFromString("SET"),
		BulkStringFromString("user:1234"),
		BulkStringFromString(strings.Repeat("x", 512)),
	))
	for b.Loop() {
		if _, _, err := Decode(buf); err != nil {
			b.Fatal(err)
		}
	}
}
