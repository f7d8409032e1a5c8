// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

// Error-effect handling sugar.
//
// Error effects (see [Raise]) are non-resumable: a handler can only
// terminate the program they are attached to. Catch and CatchAll produce the
// replacement value directly; CatchAndThrow and CatchAllAndThrow instead
// cross from the effect world into ordinary failure propagation by failing
// the whole run with an [*EffectError].

// EffectError is the fatal form of an error effect: the error returned by a
// run when a raised effect was converted with [Effected.CatchAndThrow] or
// [Effected.CatchAllAndThrow].
type EffectError struct {
	Label    string
	Payloads []any
}

func (e *EffectError) Error() string {
	if len(e.Payloads) == 0 {
		return e.Label
	}
	if msg, ok := e.Payloads[0].(string); ok && len(e.Payloads) == 1 {
		return e.Label + ": " + msg
	}
	return e.Label + ": " + formatPayloads(e.Payloads)
}

// Catch attaches a handler for the error effect with the given label that
// terminates the program with fn(payloads...).
func (m *Effected[A]) Catch(label string, fn func(payloads ...any) any) *Effected[A] {
	return m.Handle(MatchName(ErrorName(label)), func(c *Continuation, payloads ...any) {
		c.Terminate(fn(payloads...))
	})
}

// CatchAll attaches a handler for every error effect; fn receives the error
// label followed by the payloads.
func (m *Effected[A]) CatchAll(fn func(label string, payloads ...any) any) *Effected[A] {
	return m.Handle(matchErrors(), func(c *Continuation, payloads ...any) {
		c.Terminate(fn(c.Effect().Name().Label(), payloads...))
	})
}

// CatchAndThrow converts the error effect with the given label into a fatal
// failure: the run returns an [*EffectError] instead of a value.
func (m *Effected[A]) CatchAndThrow(label string) *Effected[A] {
	return m.Handle(MatchName(ErrorName(label)), throwCaught)
}

// CatchAllAndThrow converts every error effect into a fatal failure.
func (m *Effected[A]) CatchAllAndThrow() *Effected[A] {
	return m.Handle(matchErrors(), throwCaught)
}

func matchErrors() Matcher {
	return MatchFunc("error effects", func(n Name) bool { return n.ns == nsError })
}

// throwCaught panics with the effect's fatal form; the driver recovers error
// panics into the run's failure outcome.
func throwCaught(c *Continuation, payloads ...any) {
	panic(&EffectError{Label: c.Effect().Name().Label(), Payloads: payloads})
}
