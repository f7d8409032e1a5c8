// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import "github.com/google/uuid"

// Handler attachment.
//
// Every attachment operator returns a new program value wrapping the source;
// handler tables are persistent and structurally shared, never mutated, so
// attaching handlers preserves the programs-are-values contract.
//
// Resolution order at a suspension point: most recently attached first,
// falling back toward the program's origin; handlers attached directly to an
// inner program are consulted before those attached around the enclosing
// composition. If nothing matches, the descriptor's own default handler is
// used; if there is none, the run fails with [*UnhandledEffectError].

// HandlerFunc receives an intercepted effect: the one-shot continuation
// bundle plus the effect's payloads spread as arguments.
//
// A HandlerFunc must call [Continuation.Resume] or [Continuation.Terminate]
// at most once, either before returning (synchronous handling) or later from
// an external completion signal (deferred handling, [RunAsync] only).
type HandlerFunc func(c *Continuation, payloads ...any)

// Matcher decides which effect names a handler entry intercepts.
// The label is used in diagnostics only.
type Matcher struct {
	label string
	fn    func(Name) bool
}

// MatchName matches exactly the given name token.
func MatchName(n Name) Matcher {
	return Matcher{label: n.String(), fn: func(m Name) bool { return m == n }}
}

// MatchLabel matches any non-fresh name whose namespace-qualified label
// equals label, e.g. "add42" or "error:raise". Fresh names are deliberately
// excluded: they are only reachable through their token (see [FreshName]).
func MatchLabel(label string) Matcher {
	return Matcher{label: label, fn: func(n Name) bool {
		return n.id == uuid.Nil && n.qualified() == label
	}}
}

// MatchFunc matches by predicate. The label identifies the matcher in
// diagnostics.
func MatchFunc(label string, fn func(Name) bool) Matcher {
	return Matcher{label: label, fn: fn}
}

// handlerEntry is one (matcher, behavior) pair in a handler table.
// Exactly one of fn and splice is set: fn is an ordinary callback, splice is
// a program whose result satisfies the effect (ProvideFrom).
type handlerEntry struct {
	match  Matcher
	fn     HandlerFunc
	splice node
}

func (m *Effected[A]) attach(entry *handlerEntry) *Effected[A] {
	return &Effected[A]{node: handleNode{src: m.node, entry: entry}}
}

// Handle attaches a general handler: fn receives the continuation bundle and
// decides whether to resume, terminate, or defer.
func (m *Effected[A]) Handle(match Matcher, fn HandlerFunc) *Effected[A] {
	return m.attach(&handlerEntry{match: match, fn: fn})
}

// Resume attaches a handler that always resumes the program with
// fn(payloads...).
func (m *Effected[A]) Resume(label string, fn func(payloads ...any) any) *Effected[A] {
	return m.Handle(MatchLabel(label), func(c *Continuation, payloads ...any) {
		c.Resume(fn(payloads...))
	})
}

// Terminate attaches a handler that always terminates the program with
// fn(payloads...). The terminal value becomes the result of the program this
// handler is attached to; steps between the suspension point and the
// attachment are skipped.
func (m *Effected[A]) Terminate(label string, fn func(payloads ...any) any) *Effected[A] {
	return m.Handle(MatchLabel(label), func(c *Continuation, payloads ...any) {
		c.Terminate(fn(payloads...))
	})
}

// Provide satisfies the dependency effect with the given label by resuming
// every request with a constant value.
func (m *Effected[A]) Provide(label string, value any) *Effected[A] {
	return m.Handle(MatchName(DependencyName(label)), func(c *Continuation, _ ...any) {
		c.Resume(value)
	})
}

// ProvideBy satisfies the dependency effect with the given label by resuming
// each request with a freshly supplied value.
func (m *Effected[A]) ProvideBy(label string, supply func() any) *Effected[A] {
	return m.Handle(MatchName(DependencyName(label)), func(c *Continuation, _ ...any) {
		c.Resume(supply())
	})
}

// ProvideFrom satisfies the dependency effect with the given label by
// running dep and resuming with its result. dep runs once per request, and
// its own effects resolve against the handlers enclosing this attachment.
func ProvideFrom[A, D any](m *Effected[A], label string, dep *Effected[D]) *Effected[A] {
	return m.attach(&handlerEntry{
		match:  MatchName(DependencyName(label)),
		splice: dep.node,
	})
}

// With applies a reusable bundle of handler attachments. It is plain
// function application, kept as a method so prepackaged handler sets chain
// like the primitive operators:
//
//	program.With(testHandlers).Resume("now", clock)
func (m *Effected[A]) With(apply func(*Effected[A]) *Effected[A]) *Effected[A] {
	return apply(m)
}
