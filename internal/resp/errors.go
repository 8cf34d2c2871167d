package resp

import (
	"errors"
	"fmt"
)

// ErrIncomplete means the buffer holds a valid prefix of a frame and more bytes are needed
var ErrIncomplete = errors.New("incomplete frame")

// ErrProtocolError means the bytes can never form a valid frame
var ErrProtocolError = errors.New("protocol error")

var ErrUnknownValueType = fmt.Errorf("%w: unknown value type", ErrProtocolError)

var ErrInvalidLength = fmt.Errorf("%w: invalid length", ErrProtocolError)

var ErrInvalidInteger = fmt.Errorf("%w: invalid integer", ErrProtocolError)

var ErrInvalidText = fmt.Errorf("%w: invalid utf-8 text", ErrProtocolError)

var ErrMissingTerminator = fmt.Errorf("%w: missing CRLF terminator", ErrProtocolError)

var ErrTooLarge = fmt.Errorf("%w: length too large", ErrProtocolError)

var ErrNestingTooDeep = fmt.Errorf("%w: arrays nested too deeply", ErrProtocolError)

// ErrBufferFull is returned by Decoder when an incomplete frame outgrows the read buffer limit
var ErrBufferFull = errors.New("read buffer limit exceeded")
