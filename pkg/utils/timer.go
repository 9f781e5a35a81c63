package utils

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Timer calls callback once duration has passed since the last Start or
// Reset, unless stopped first.
type Timer struct {
	duration time.Duration
	callback func()
	timer    *time.Timer
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewTimer(duration time.Duration, callback func(), logger *zap.Logger) *Timer {
	return &Timer{
		duration: duration,
		callback: callback,
		logger:   logger,
	}
}

func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.timer = time.AfterFunc(t.duration, func() {
		t.logger.Debug("Timer expired", zap.Duration("duration", t.duration))
		t.callback()
	})
}

func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.logger.Debug("Timer stopped", zap.Duration("duration", t.duration))
	}
}

// Reset restarts the countdown, even if the timer already fired.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Reset(t.duration)
	}
}
