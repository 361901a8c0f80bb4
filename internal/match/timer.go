package match

// Countdown is the per-question clock. It is a pure counter: the shell owns
// the actual tick scheduling and calls Tick once per elapsed second, passing
// back the generation token it got from Start. A tick carrying a stale
// generation is ignored, so re-subscriptions cannot decrement twice and a
// stopped timer can never expire late.
type Countdown struct {
	duration  int
	remaining int
	gen       int
	running   bool
}

// NewCountdown creates a countdown with a fixed per-question duration in
// seconds.
func NewCountdown(duration int) *Countdown {
	return &Countdown{duration: duration}
}

// Start resets the clock to the full duration and returns the generation
// token ticks must carry. Any previously issued generation becomes stale.
func (c *Countdown) Start() int {
	c.gen++
	c.remaining = c.duration
	c.running = true
	return c.gen
}

// Stop halts the clock immediately. Ticks from the stopped generation are
// discarded.
func (c *Countdown) Stop() {
	c.running = false
	c.gen++
}

// Tick consumes one second for the given generation. It returns the
// remaining time and whether this tick caused expiry. ok is false when the
// tick was stale and must be ignored entirely. Expiry is delivered at most
// once: the expiring tick stops the clock.
func (c *Countdown) Tick(gen int) (remaining int, expired bool, ok bool) {
	if !c.running || gen != c.gen {
		return 0, false, false
	}
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.running = false
		return 0, true, true
	}
	return c.remaining, false, true
}

// Remaining returns the seconds left for display. Zero when stopped.
func (c *Countdown) Remaining() int {
	if !c.running {
		return 0
	}
	return c.remaining
}

// Running reports whether the clock is counting.
func (c *Countdown) Running() bool {
	return c.running
}
