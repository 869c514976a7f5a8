package world

import (
	"errors"
	"time"

	"github.com/automoto/retrorealms/logging"
	"github.com/automoto/retrorealms/shared/netconfig"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MoveRequester issues movement requests for the local player.
type MoveRequester interface {
	RequestMoveStart(dir netconfig.Direction) error
	RequestMoveStop() error
}

// Intent forwards changes of the held movement direction to the server.
// Only changes are sent, and no faster than the limiter allows; a change
// that is held back is sent by a later Sync.
type Intent struct {
	req     MoveRequester
	limiter *rate.Limiter
	log     *zap.SugaredLogger

	moving    bool
	sent      netconfig.Direction
	throttled int
}

func NewIntent(req MoveRequester, every time.Duration, burst int, log *zap.SugaredLogger) *Intent {
	if burst < 1 {
		burst = 1
	}
	return &Intent{
		req:     req,
		limiter: rate.NewLimiter(rate.Every(every), burst),
		log:     logging.OrNop(log),
	}
}

// Sync sends a request if the held direction differs from the last one sent.
// It reports whether a request went out.
func (i *Intent) Sync(now time.Time, dir netconfig.Direction, held bool) bool {
	if held == i.moving && (!held || dir == i.sent) {
		return false
	}
	if !i.limiter.AllowN(now, 1) {
		i.throttled++
		return false
	}

	var err error
	if held {
		err = i.req.RequestMoveStart(dir)
	} else {
		err = i.req.RequestMoveStop()
	}
	if err != nil {
		if !errors.Is(err, ErrNotConnected) {
			i.log.Warnw("move request failed", "dir", dir, "moving", held, "error", err)
		}
		return false
	}
	i.moving, i.sent = held, dir
	return true
}

// Reset forgets what was last sent.
func (i *Intent) Reset() {
	i.moving = false
}

// Throttled is the number of changes the limiter has held back.
func (i *Intent) Throttled() int {
	return i.throttled
}
