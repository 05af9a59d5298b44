package testutil

import (
	"sync"
	"time"
)

// MockClock is a frozen clock that only moves when the test advances
// it.
type MockClock struct {
	mutex sync.Mutex
	now   time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (c *MockClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *MockClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}
