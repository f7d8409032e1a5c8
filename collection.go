// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import (
	"maps"
	"slices"
)

// Collection combinators.
//
// AllSeq drives each program to completion before starting the next; All
// starts every program in enumeration order and interleaves the ones that
// defer, so later items' asynchronous work overlaps earlier items'. When no
// effect defers, the two produce identical results.
//
// Both preserve the container shape: a slice of programs yields a slice of
// results, a map yields a map with the same keys. Map enumeration is by
// sorted key, since Go maps carry no insertion order.

// AllSeq runs the programs one at a time, in index order, collecting the
// results. The first fatal failure aborts the collection; earlier items
// have already run to completion.
func AllSeq[A any](programs []*Effected[A]) *Effected[[]A] {
	result := Of[[]A](nil)
	for _, p := range programs {
		p := p
		result = FlatMap(result, func(vs []A) *Effected[[]A] {
			return Map(p, func(v A) []A { return append(vs, v) })
		})
	}
	return result
}

// AllSeqMap runs the programs one at a time, in sorted key order,
// collecting the results under the same keys.
func AllSeqMap[A any](programs map[string]*Effected[A]) *Effected[map[string]A] {
	keys := slices.Sorted(maps.Keys(programs))
	result := From(func() map[string]A {
		return make(map[string]A, len(keys))
	})
	for _, k := range keys {
		k := k
		p := programs[k]
		result = FlatMap(result, func(out map[string]A) *Effected[map[string]A] {
			return Map(p, func(v A) map[string]A {
				out[k] = v
				return out
			})
		})
	}
	return result
}

// All starts every program in index order and drives them with interleaved
// scheduling: an item that defers parks while the next items start, and
// completions arrive in whatever order the external signals fire. The
// collection completes when every item has, or fails on the first fatal
// failure.
func All[A any](programs []*Effected[A]) *Effected[[]A] {
	items := make([]node, len(programs))
	for i, p := range programs {
		items[i] = p.node
	}
	return &Effected[[]A]{node: mapNode{
		src: collectNode{items: items},
		f: func(v any) any {
			vs := v.([]any)
			out := make([]A, len(vs))
			for i, x := range vs {
				if x != nil {
					out[i] = x.(A)
				}
			}
			return out
		},
	}}
}

// AllMap is [All] over a named collection, started in sorted key order and
// collected under the same keys.
func AllMap[A any](programs map[string]*Effected[A]) *Effected[map[string]A] {
	keys := slices.Sorted(maps.Keys(programs))
	items := make([]node, len(keys))
	for i, k := range keys {
		items[i] = programs[k].node
	}
	return &Effected[map[string]A]{node: mapNode{
		src: collectNode{items: items, keys: keys},
		f: func(v any) any {
			vs := v.(map[string]any)
			out := make(map[string]A, len(vs))
			for k, x := range vs {
				if x != nil {
					out[k] = x.(A)
				}
			}
			return out
		},
	}}
}
