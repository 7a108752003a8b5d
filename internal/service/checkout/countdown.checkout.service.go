package checkout

import (
	"sync"
	"time"
)

const (
	defaultResendCooldown = 60
	defaultTickInterval   = time.Second
)

// resendCountdown rate-limits the resend action: once started it disables
// resend, counts down second by second and re-enables at zero. Stop must be
// called on session teardown so the ticker never fires against a closed
// session.
type resendCountdown struct {
	mu       sync.Mutex
	cooldown int
	interval time.Duration
	seconds  int
	disabled bool
	stop     chan struct{}
}

func newResendCountdown(cooldown int, interval time.Duration) *resendCountdown {
	if cooldown <= 0 {
		cooldown = defaultResendCooldown
	}
	if interval <= 0 {
		interval = defaultTickInterval
	}
	return &resendCountdown{
		cooldown: cooldown,
		interval: interval,
		seconds:  cooldown,
	}
}

// Start arms the countdown. It reports false when the countdown is already
// running, in which case nothing changes.
func (r *resendCountdown) Start() bool {
	r.mu.Lock()
	if r.disabled {
		r.mu.Unlock()
		return false
	}

	r.disabled = true
	r.seconds = r.cooldown
	r.stop = make(chan struct{})
	stop := r.stop
	r.mu.Unlock()

	go r.run(stop)
	return true
}

func (r *resendCountdown) run(stop chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			if !r.disabled {
				r.mu.Unlock()
				return
			}
			r.seconds--
			if r.seconds <= 0 {
				r.disabled = false
				r.seconds = r.cooldown
				r.mu.Unlock()
				return
			}
			r.mu.Unlock()
		}
	}
}

func (r *resendCountdown) Disabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disabled
}

func (r *resendCountdown) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.disabled {
		return 0
	}
	return r.seconds
}

// Stop cancels the ticker and resets the countdown to its idle state.
func (r *resendCountdown) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
	r.disabled = false
	r.seconds = r.cooldown
}
