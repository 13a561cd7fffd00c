// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"sync"
	"time"
)

// Cooldown rejects a repeat action on the same key until the window has
// passed. Claim and cancel requests are keyed by caller and item.
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	until  map[string]time.Time
	now    func() time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{
		window: window,
		until:  make(map[string]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether key may act now and, if so, starts its window.
// When it may not, the remaining wait is returned.
func (c *Cooldown) Allow(key string) (bool, time.Duration) {
	if c.window <= 0 {
		return true, 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if until, ok := c.until[key]; ok && now.Before(until) {
		return false, until.Sub(now)
	}
	c.until[key] = now.Add(c.window)

	// Drop expired entries now and then so the map stays small
	if len(c.until) > 1024 {
		for k, u := range c.until {
			if !now.Before(u) {
				delete(c.until, k)
			}
		}
	}
	return true, 0
}
