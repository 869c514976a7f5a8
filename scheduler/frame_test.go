package scheduler

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestStepOrder(t *testing.T) {
	base := time.Unix(1000, 0)
	var calls []string
	var tickAt, drawAt time.Time
	f := NewFrame(
		func(now time.Time) { calls = append(calls, "tick"); tickAt = now },
		func(now time.Time) { calls = append(calls, "render"); drawAt = now },
		func() time.Time { return base },
		zaptest.NewLogger(t).Sugar(),
	)

	if !f.Step() {
		t.Fatal("Step reported a dropped frame")
	}
	if len(calls) != 2 || calls[0] != "tick" || calls[1] != "render" {
		t.Fatalf("calls = %v, want [tick render]", calls)
	}
	if !tickAt.Equal(base) || !drawAt.Equal(base) {
		t.Fatalf("tick at %v, render at %v, want %v", tickAt, drawAt, base)
	}
	if f.Frames() != 1 {
		t.Fatalf("Frames = %d, want 1", f.Frames())
	}
}

func TestStepDropsReentrantCall(t *testing.T) {
	var f *Frame
	ticks := 0
	nested := true
	f = NewFrame(func(time.Time) {
		ticks++
		nested = f.Step()
	}, nil, nil, nil)

	if !f.Step() {
		t.Fatal("outer Step dropped")
	}
	if nested {
		t.Fatal("nested Step was not dropped")
	}
	if ticks != 1 {
		t.Fatalf("ticks = %d, want 1", ticks)
	}
	if f.Dropped() != 1 || f.Frames() != 1 {
		t.Fatalf("dropped=%d frames=%d, want 1 and 1", f.Dropped(), f.Frames())
	}

	// The guard is released afterwards.
	if !f.Step() {
		t.Fatal("Step after a completed frame was dropped")
	}
}

func TestStepReleasesGuardAfterPanic(t *testing.T) {
	f := NewFrame(func(time.Time) { panic("boom") }, nil, nil, nil)
	func() {
		defer func() { _ = recover() }()
		f.Step()
	}()
	f.tick = nil
	if !f.Step() {
		t.Fatal("guard still held after a panicking frame")
	}
}
