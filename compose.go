// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

// Transformation combinators.
//
// Minimal definition: Of (unit) and FlatMap are necessary and sufficient.
// Map is kept as an optimization to avoid the intermediate pure program a
// FlatMap-of-Of encoding would allocate per step. None of these run
// anything: they build new program trees sharing structure with their
// sources.
//
// Type-changing combinators are free functions because Go methods cannot
// introduce type parameters; same-type operations live as methods on
// [Effected].

// Map applies a pure function to the result of a program.
func Map[A, B any](m *Effected[A], f func(A) B) *Effected[B] {
	return &Effected[B]{node: mapNode{
		src: m.node,
		f:   func(v any) any { return f(v.(A)) },
	}}
}

// FlatMap sequences two programs: it runs m, then feeds the result into f to
// obtain the continuation program. Handlers attached around the composition
// see the effects of both parts.
func FlatMap[A, B any](m *Effected[A], f func(A) *Effected[B]) *Effected[B] {
	return &Effected[B]{node: bindNode{
		src: m.node,
		f:   func(v any) node { return f(v.(A)).node },
	}}
}

// AndThen is FlatMap under its sequencing-first name. For the pure variant
// use [Map].
func AndThen[A, B any](m *Effected[A], f func(A) *Effected[B]) *Effected[B] {
	return FlatMap(m, f)
}

// Tap runs the program produced by f for its effects only, discarding its
// result and completing with m's original value.
func Tap[A, B any](m *Effected[A], f func(A) *Effected[B]) *Effected[A] {
	return FlatMap(m, func(a A) *Effected[A] {
		return Map(f(a), func(B) A { return a })
	})
}

// Pair is a two-element tuple.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip runs m then n, combining their results with f.
func Zip[A, B, C any](m *Effected[A], n *Effected[B], f func(A, B) C) *Effected[C] {
	return FlatMap(m, func(a A) *Effected[C] {
		return Map(n, func(b B) C { return f(a, b) })
	})
}

// ZipPair runs m then n and completes with the pair of results.
func ZipPair[A, B any](m *Effected[A], n *Effected[B]) *Effected[Pair[A, B]] {
	return Zip(m, n, func(a A, b B) Pair[A, B] {
		return Pair[A, B]{First: a, Second: b}
	})
}

// Pipe applies the given transformations left to right.
//
// Small arities are unrolled; longer chains fall back to a loop.
func (m *Effected[A]) Pipe(fns ...func(*Effected[A]) *Effected[A]) *Effected[A] {
	switch len(fns) {
	case 0:
		return m
	case 1:
		return fns[0](m)
	case 2:
		return fns[1](fns[0](m))
	case 3:
		return fns[2](fns[1](fns[0](m)))
	}
	out := m
	for _, f := range fns {
		out = f(out)
	}
	return out
}
