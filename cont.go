// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import "sync"

// Continuation is the one-shot resumption handle a handler receives for a
// suspended effect.
//
// Each suspension point holds a single pending resumption slot: calling
// Resume or Terminate a second time is a protocol violation, reported
// through the diagnostic logger, and only the first call takes effect.
// Resume on a non-resumable effect is fatal to the run.
//
// A handler may settle the continuation before returning, or hold on to it
// and settle later from an external completion signal; the latter suspends
// the run and requires [RunAsync].
type Continuation struct {
	m      *machine
	effect *Effect
	target scopeTarget
	label  string

	mu       sync.Mutex
	invoking bool
	settled  bool
	action   int
	value    any
	fatal    error
}

const (
	actionNone = iota
	actionResumed
	actionTerminated
)

func actionName(action int) string {
	if action == actionTerminated {
		return "terminated"
	}
	return "resumed"
}

// Effect returns the descriptor that caused the suspension.
func (c *Continuation) Effect() *Effect { return c.effect }

// Resume continues the suspended program with the given value.
//
// Fatal to the run if the effect is non-resumable. A repeated settlement is
// ignored apart from a diagnostic warning.
func (c *Continuation) Resume(v any) {
	c.mu.Lock()
	if c.settled {
		first, firstValue := c.action, c.value
		c.mu.Unlock()
		warnMultipleHandling(c.label, c.effect, actionName(actionResumed), v, actionName(first), firstValue)
		return
	}
	c.settled = true
	c.action = actionResumed
	c.value = v
	if !c.effect.resumable {
		c.fatal = &NonResumableError{Effect: c.effect}
	}
	inv := c.invoking
	c.mu.Unlock()
	if !inv {
		c.deliver()
	}
}

// Terminate short-circuits: the program this handler was attached to
// completes immediately with the given value, skipping every step between
// the suspension point and the attachment. A repeated settlement is ignored
// apart from a diagnostic warning.
func (c *Continuation) Terminate(v any) {
	c.mu.Lock()
	if c.settled {
		first, firstValue := c.action, c.value
		c.mu.Unlock()
		warnMultipleHandling(c.label, c.effect, actionName(actionTerminated), v, actionName(first), firstValue)
		return
	}
	c.settled = true
	c.action = actionTerminated
	c.value = v
	inv := c.invoking
	c.mu.Unlock()
	if !inv {
		c.deliver()
	}
}

// deliver re-enters the parked driver with the settlement. It is a no-op
// unless the machine is still parked on this continuation; a settlement
// arriving after the run was abandoned is dropped.
func (c *Continuation) deliver() {
	m := c.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != stateParked || m.pending != c {
		return
	}
	m.pending = nil
	m.state = stateActive
	m.unsettled--
	if c.fatal != nil {
		m.finish(childOutcome{kind: outcomeFailed, err: c.fatal})
		return
	}
	if c.action == actionResumed {
		m.work = nil
		m.value = c.value
		m.drive()
		return
	}
	if m.applyTerminate(c.target, c.value) {
		m.drive()
	}
}

// snapshot reads the settlement state after the handler callback returned,
// clearing the invocation flag so a later external settlement re-enters the
// driver itself.
func (c *Continuation) snapshot() (settled bool, action int, value any, fatal error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invoking = false
	return c.settled, c.action, c.value, c.fatal
}
