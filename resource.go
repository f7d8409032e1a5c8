// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

// Resource safety primitives for error-effect-safe resource management.

// attempt carries the outcome of a guarded program: a value, or the caught
// form of a raised error effect.
type attempt struct {
	value any
	err   *EffectError
}

// guard catches every error effect raised by m into an attempt value.
func guard[A any](m *Effected[A]) *Effected[attempt] {
	return Map(m, func(a A) attempt { return attempt{value: a} }).
		CatchAll(func(label string, payloads ...any) any {
			return attempt{err: &EffectError{Label: label, Payloads: payloads}}
		})
}

// Bracket provides error-effect-safe resource acquisition and release:
// acquire → use → release, where release runs whether use completed or
// raised an error effect. A raised error is re-raised after release, so
// enclosing handlers still observe it.
func Bracket[R, A any](
	acquire *Effected[R],
	release func(R) *Effected[struct{}],
	use func(R) *Effected[A],
) *Effected[A] {
	return FlatMap(acquire, func(resource R) *Effected[A] {
		return FlatMap(guard(use(resource)), func(at attempt) *Effected[A] {
			return FlatMap(release(resource), func(struct{}) *Effected[A] {
				if at.err != nil {
					return Raise[A](at.err.Label, at.err.Payloads...)
				}
				return Of(at.value.(A))
			})
		})
	})
}

// OnError runs cleanup only if the body raises an error effect, then
// re-raises it.
func OnError[A any](
	body *Effected[A],
	cleanup func(*EffectError) *Effected[struct{}],
) *Effected[A] {
	return FlatMap(guard(body), func(at attempt) *Effected[A] {
		if at.err == nil {
			return Of(at.value.(A))
		}
		return FlatMap(cleanup(at.err), func(struct{}) *Effected[A] {
			return Raise[A](at.err.Label, at.err.Payloads...)
		})
	})
}
