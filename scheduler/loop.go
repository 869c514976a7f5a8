package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/automoto/retrorealms/logging"
	"go.uber.org/zap"
)

var ErrInvalidRate = errors.New("invalid frame rate")

// Loop paces a Frame with a ticker when there is no display to do it, e.g. headless runs.
type Loop struct {
	frame    *Frame
	tickRate int
	log      *zap.SugaredLogger

	stopOnce sync.Once
	stopChan chan struct{}
}

func NewLoop(frame *Frame, tickRate int, log *zap.SugaredLogger) (*Loop, error) {
	if tickRate <= 0 {
		return nil, ErrInvalidRate
	}
	return &Loop{
		frame:    frame,
		tickRate: tickRate,
		log:      logging.OrNop(log),
		stopChan: make(chan struct{}),
	}, nil
}

// Run steps the frame tickRate times per second until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.tickRate))
	defer ticker.Stop()

	l.log.Infow("frame loop started", "tps", l.tickRate)

	for {
		select {
		case <-ctx.Done():
			l.log.Infow("frame loop stopped", "frames", l.frame.Frames(), "reason", ctx.Err())
			return ctx.Err()
		case <-l.stopChan:
			l.log.Infow("frame loop stopped", "frames", l.frame.Frames())
			return nil
		case <-ticker.C:
			l.frame.Step()
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
}
