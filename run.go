// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import (
	"fmt"
	"sync"
)

// RunSync drives the program to completion within the caller's control
// flow. Every handler must settle its continuation before returning: a
// deferred settlement fails the run with [*SyncModeError].
//
// Unhandled effects and protocol violations surface as the returned error;
// nothing is retried.
func RunSync[A any](p *Effected[A]) (A, error) {
	m := acquireMachine(modeSync, new(sync.Mutex))
	var out childOutcome
	m.done = func(o childOutcome) { out = o }
	m.mu.Lock()
	m.work = p.node
	m.drive()
	releasable := m.state == stateDone && m.unsettled == 0
	m.mu.Unlock()
	if releasable {
		releaseMachine(m)
	}
	if out.kind == outcomeFailed {
		var zero A
		return zero, out.err
	}
	return coerceResult[A](out.value)
}

// RunAsync drives the program under the deferred engine and returns a
// [Task] handle immediately. Handlers may hold their continuation and
// settle it later from an external completion signal; the run suspends at
// such a handler and re-enters when the settlement arrives.
//
// A program whose handlers all settle synchronously completes before
// RunAsync returns, with the same outcome [RunSync] would produce.
func RunAsync[A any](p *Effected[A]) *Task[A] {
	t := &Task[A]{ch: make(chan struct{})}
	m := acquireMachine(modeAsync, new(sync.Mutex))
	m.done = func(o childOutcome) {
		if o.kind == outcomeFailed {
			t.err = o.err
		} else {
			t.value, t.err = coerceResult[A](o.value)
		}
		close(t.ch)
	}
	m.mu.Lock()
	m.work = p.node
	m.drive()
	m.mu.Unlock()
	return t
}

// Task is the deferred handle for a run started with [RunAsync].
type Task[A any] struct {
	ch    chan struct{}
	value A
	err   error
}

// Done returns a channel closed when the run reaches its terminal outcome.
func (t *Task[A]) Done() <-chan struct{} { return t.ch }

// Wait blocks until the run completes and returns its outcome.
//
// There is no cancellation: if a handler accepted an effect and never
// settles the continuation, Wait blocks forever.
func (t *Task[A]) Wait() (A, error) {
	<-t.ch
	return t.value, t.err
}

// coerceResult recovers the typed result from the untyped driver value.
func coerceResult[A any](v any) (A, error) {
	var zero A
	if v == nil {
		return zero, nil
	}
	a, ok := v.(A)
	if !ok {
		return zero, fmt.Errorf("effected: run produced a %T where a %T was expected", v, zero)
	}
	return a, nil
}
