package payments

import (
	"fmt"
	"sync/atomic"
	"time"
)

// OrderIDGenerator issues PREFIX_<epoch-millis> identifiers. Identifiers are
// strictly increasing within a process: when the clock has not moved past the
// last issued millisecond the next millisecond is used instead.
type OrderIDGenerator struct {
	last atomic.Int64
	now  func() time.Time
}

func NewOrderIDGenerator() *OrderIDGenerator {
	return &OrderIDGenerator{now: time.Now}
}

func (g *OrderIDGenerator) Next(prefix string) string {
	now := g.now().UnixMilli()
	for {
		last := g.last.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if g.last.CompareAndSwap(last, next) {
			return fmt.Sprintf("%s_%d", prefix, next)
		}
	}
}
