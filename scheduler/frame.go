// Package scheduler drives the per-frame world update.
package scheduler

import (
	"sync/atomic"
	"time"

	"github.com/automoto/retrorealms/logging"
	"go.uber.org/zap"
)

// Frame runs one frame at a time: it reads the clock, ticks the world and then
// calls the render hook. A Step issued while another is still running is dropped.
type Frame struct {
	clock  func() time.Time
	tick   func(now time.Time)
	render func(now time.Time)
	log    *zap.SugaredLogger

	running atomic.Bool
	frames  atomic.Uint64
	dropped atomic.Uint64
}

// NewFrame builds a frame scheduler. render may be nil when drawing happens
// elsewhere; a nil clock means time.Now.
func NewFrame(tick, render func(now time.Time), clock func() time.Time, log *zap.SugaredLogger) *Frame {
	if clock == nil {
		clock = time.Now
	}
	return &Frame{
		clock:  clock,
		tick:   tick,
		render: render,
		log:    logging.OrNop(log),
	}
}

// Step runs a single frame. It reports false when the call overlapped a frame in progress.
func (f *Frame) Step() bool {
	if !f.running.CompareAndSwap(false, true) {
		n := f.dropped.Add(1)
		f.log.Debugw("frame dropped, previous still running", "dropped", n)
		return false
	}
	defer f.running.Store(false)

	now := f.clock()
	if f.tick != nil {
		f.tick(now)
	}
	if f.render != nil {
		f.render(now)
	}
	f.frames.Add(1)
	return true
}

// Frames is the number of completed frames.
func (f *Frame) Frames() uint64 {
	return f.frames.Load()
}

// Dropped is the number of overlapping Step calls that were ignored.
func (f *Frame) Dropped() uint64 {
	return f.dropped.Load()
}
