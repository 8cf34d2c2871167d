package memkv

import "time"

// Clock supplies the current time in unix milliseconds. Expiry decisions are
// always made against it, which lets tests move time forward without sleeping.
type Clock interface {
	NowMs() int64
}

type systemClock struct{}

func (systemClock) NowMs() int64 {
	return time.Now().UnixMilli()
}

// SystemClock returns a Clock backed by the wall clock
func SystemClock() Clock {
	return systemClock{}
}
