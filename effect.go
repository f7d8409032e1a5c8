// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

// Effect is an immutable descriptor for one requested operation instance:
// a name, an ordered payload list, a resumability marker, and an optional
// default handler used when no attached handler matches.
//
// Descriptors are created per effect request and are disposable once the
// handler has produced its resumption.
type Effect struct {
	name           Name
	payloads       []any
	resumable      bool
	defaultHandler HandlerFunc
}

// NewEffect creates an effect descriptor with the given name and payloads.
// Effects are resumable by default; error-namespace effects are forced
// non-resumable.
func NewEffect(name Name, payloads ...any) *Effect {
	return &Effect{
		name:      name,
		payloads:  payloads,
		resumable: name.ns != nsError,
	}
}

// Name returns the effect's identity token.
func (e *Effect) Name() Name { return e.name }

// Payloads returns the effect's argument list. The returned slice must not
// be mutated.
func (e *Effect) Payloads() []any { return e.payloads }

// Resumable reports whether a handler may resume the suspended program with
// a value. Handlers of non-resumable effects may only terminate.
func (e *Effect) Resumable() bool { return e.resumable }

// NonResumable returns a copy of the descriptor whose handlers may only
// terminate.
func (e *Effect) NonResumable() *Effect {
	c := *e
	c.resumable = false
	return &c
}

// WithDefault returns a copy of the descriptor carrying a default handler,
// invoked when no attached handler matches the effect. A default handler
// that terminates completes the whole run with the terminal value, since it
// has no attachment scope of its own.
func (e *Effect) WithDefault(fn HandlerFunc) *Effect {
	c := *e
	c.defaultHandler = fn
	return &c
}

// Perform creates a program that yields a single plain effect and completes
// with whatever value the eventual handler resumes it with.
func Perform[A any](label string, payloads ...any) *Effected[A] {
	return PerformEffect[A](NewEffect(NameOf(label), payloads...))
}

// PerformNamed is [Perform] for a pre-constructed name token, typically one
// from [FreshName] or a reserved-namespace constructor.
func PerformNamed[A any](name Name, payloads ...any) *Effected[A] {
	return PerformEffect[A](NewEffect(name, payloads...))
}

// PerformEffect creates a program that yields the given descriptor and
// completes with the handler's resume value.
func PerformEffect[A any](e *Effect) *Effected[A] {
	return &Effected[A]{node: effectNode{effect: e}}
}

// Raise creates a program that yields a non-resumable error effect.
// By convention the first payload is the error message; [Effected.Catch]
// and friends unwrap it.
//
// The result type A is free because the program never completes normally:
// an error effect can only be terminated, so a Raise can stand in for a
// program of any type.
func Raise[A any](label string, payloads ...any) *Effected[A] {
	return PerformEffect[A](NewEffect(ErrorName(label), payloads...))
}

// Ask creates a program that reads a contextual dependency: a zero-argument
// effect in the dependency namespace, satisfied by [Effected.Provide],
// [Effected.ProvideBy] or [ProvideFrom].
func Ask[A any](label string) *Effected[A] {
	return PerformEffect[A](NewEffect(DependencyName(label)))
}

// Await lifts a callback-style asynchronous operation into an effected
// program. The effect carries a default handler that starts the operation
// and resumes the program from its completion callback, so an Await needs no
// attached handler (though one may still intercept it by name).
//
// If start invokes complete before returning, the program runs under
// [RunSync]; otherwise the run must use [RunAsync] and suspends until
// complete is called. complete must be called exactly once.
func Await[A any](label string, start func(complete func(A))) *Effected[A] {
	e := NewEffect(NameOf(label)).WithDefault(func(c *Continuation, _ ...any) {
		start(func(v A) { c.Resume(v) })
	})
	return PerformEffect[A](e)
}
