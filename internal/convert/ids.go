package convert

import (
	"fmt"
	"sync/atomic"
	"time"
)

var (
	lastStamp atomic.Int64
	clock     = time.Now
)

// SynthesizeID returns "<name>-<unix millis>". Stamps are strictly increasing
// within the process, so two ids synthesized for the same name in the same
// millisecond still differ.
func SynthesizeID(name string) string {
	ts := clock().UnixMilli()
	for {
		prev := lastStamp.Load()
		next := ts
		if next <= prev {
			next = prev + 1
		}
		if lastStamp.CompareAndSwap(prev, next) {
			return fmt.Sprintf("%s-%d", name, next)
		}
	}
}
