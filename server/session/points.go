package session

import "sync/atomic"

// PointAllocator hands out decision point ids starting at 1. Each session
// owns one; ids are unique within the session until Reset.
type PointAllocator struct {
	last atomic.Int64
}

func (p *PointAllocator) Next() int64 { return p.last.Add(1) }

// Last is the most recently issued id, 0 if none.
func (p *PointAllocator) Last() int64 { return p.last.Load() }

func (p *PointAllocator) Reset() { p.last.Store(0) }
