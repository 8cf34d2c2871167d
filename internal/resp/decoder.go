package resp

import (
	"errors"
	"io"
)

const (
	DefaultMaxBufferSize = 64 * 1024 * 1024
	readChunkSize        = 4096

	maxConsecutiveEmptyReads = 100
)

// Decoder reads frames from a byte stream. It is the only place that knows where
// one frame ends and the next begins: a single read may carry part of a frame,
// several frames, or a frame may be spread over any number of reads.
type Decoder struct {
	r       io.Reader
	buf     []byte
	start   int
	maxSize int
}

func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderSize(r, DefaultMaxBufferSize)
}

// NewDecoderSize returns a Decoder that gives up with ErrBufferFull once an
// incomplete frame occupies more than maxSize bytes
func NewDecoderSize(r io.Reader, maxSize int) *Decoder {
	if maxSize <= 0 {
		maxSize = DefaultMaxBufferSize
	}
	return &Decoder{
		r:       r,
		buf:     make([]byte, 0, readChunkSize),
		maxSize: maxSize,
	}
}

// Buffered returns the number of bytes read from the stream but not yet decoded
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.start
}

// Next returns the next frame. io.EOF is returned when the stream ends on a frame
// boundary and io.ErrUnexpectedEOF when it ends in the middle of a frame.
func (d *Decoder) Next() (Value, error) {
	for {
		if d.Buffered() > 0 {
			value, n, err := Decode(d.buf[d.start:])
			if err == nil {
				d.start += n
				return value, nil
			}
			if !errors.Is(err, ErrIncomplete) {
				return Value{}, err
			}
			if d.Buffered() >= d.maxSize {
				return Value{}, ErrBufferFull
			}
		}
		if err := d.fill(); err != nil {
			if errors.Is(err, io.EOF) && d.Buffered() > 0 {
				return Value{}, io.ErrUnexpectedEOF
			}
			return Value{}, err
		}
	}
}

// fill compacts the buffer and performs a single read from the underlying reader
func (d *Decoder) fill() error {
	if d.start > 0 {
		n := copy(d.buf, d.buf[d.start:])
		d.buf = d.buf[:n]
		d.start = 0
	}
	if cap(d.buf)-len(d.buf) < readChunkSize {
		grown := make([]byte, len(d.buf), 2*cap(d.buf)+readChunkSize)
		copy(grown, d.buf)
		d.buf = grown
	}

	for range maxConsecutiveEmptyReads {
		n, err := d.r.Read(d.buf[len(d.buf):cap(d.buf)])
		d.buf = d.buf[:len(d.buf)+n]
		if n > 0 {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return io.ErrNoProgress
}
