package tui

import (
	"context"
	"sync"
)

// Confirmer answers the list view's delete prompt with the choice the user
// made on the y/n screen. An unarmed Confirmer declines.
type Confirmer struct {
	mu     sync.Mutex
	armed  bool
	answer bool
}

func NewConfirmer() *Confirmer {
	return &Confirmer{}
}

// Arm sets the answer for the next prompt only.
func (c *Confirmer) Arm(answer bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.armed = true
	c.answer = answer
}

func (c *Confirmer) Confirm(_ context.Context, _ string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	answer := c.armed && c.answer
	c.armed = false
	c.answer = false
	return answer
}
