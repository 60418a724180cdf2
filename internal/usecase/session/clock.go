package session

import (
	"time"
)

// tickerClock is a domain.Clock backed by a time.Ticker. It must only be
// driven from the goroutine that runs the session.
type tickerClock struct {
	ticker *time.Ticker
}

func newTickerClock() *tickerClock {
	t := time.NewTicker(time.Hour)
	t.Stop()
	return &tickerClock{ticker: t}
}

func (c *tickerClock) Reschedule(interval time.Duration) {
	c.ticker.Reset(interval)
}

func (c *tickerClock) Stop() {
	c.ticker.Stop()
}

func (c *tickerClock) C() <-chan time.Time {
	return c.ticker.C
}
