package core

import "time"

// Clock measures elapsed time for a single generation request.
type Clock struct {
	StartTime time.Time
	Elapsed   time.Duration
}

func (c *Clock) Start() {
	c.StartTime = time.Now()
	c.Elapsed = 0
}

func (c *Clock) Update() {
	if !c.StartTime.IsZero() {
		c.Elapsed = time.Since(c.StartTime)
	}
}

func (c *Clock) Stop() {
	c.Update()
	c.StartTime = time.Time{}
}

// ElapsedMS returns the elapsed time in milliseconds.
func (c *Clock) ElapsedMS() float64 {
	return float64(c.Elapsed) / float64(time.Millisecond)
}
