// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

// Program representation.
//
// An effected program is an immutable, defunctionalized tree of tagged nodes
// rather than a captured host-stack suspension. Running a program evaluates
// the tree afresh on an explicit trampoline (see machine.go), so the same
// program value can be run any number of times, each run with independent
// per-run state.

// node is the marker interface for program tree nodes.
// Dispatch uses type switches, not tags — node is a pure marker interface.
type node interface {
	programNode() // unexported marker method
}

// pureNode completes immediately with a value.
type pureNode struct{ value any }

func (pureNode) programNode() {}

// lazyNode completes with the value produced by calling f.
// f runs once per run, giving each run its own local state.
type lazyNode struct{ f func() any }

func (lazyNode) programNode() {}

// effectNode yields a single effect descriptor and completes with the value
// the handler resumes with.
type effectNode struct{ effect *Effect }

func (effectNode) programNode() {}

// bindNode sequences src into the program produced by f.
type bindNode struct {
	src node
	f   func(any) node
}

func (bindNode) programNode() {}

// mapNode applies a pure transformation to the result of src.
type mapNode struct {
	src node
	f   func(any) any
}

func (mapNode) programNode() {}

// handleNode attaches one handler entry around src.
// Attachment is persistent: the source tree is shared, never mutated.
type handleNode struct {
	src   node
	entry *handlerEntry
}

func (handleNode) programNode() {}

// seqNode wraps a restartable raw sequence. The factory is called once per
// run to produce a fresh drivable instance.
type seqNode struct{ factory func() Stepper }

func (seqNode) programNode() {}

// collectNode runs every item with interleaved scheduling and collects the
// results. keys is nil for slice-shaped collections.
type collectNode struct {
	items []node
	keys  []string
}

func (collectNode) programNode() {}

// Effected is a suspended computation that may perform effects and
// eventually completes with a value of type A.
//
// Effected values are immutable. Combinators and handler attachments return
// new program values sharing structure with their sources; nothing executes
// until the program is given to [RunSync] or [RunAsync].
type Effected[A any] struct {
	node node
}

// Of lifts a pure value into an effected program.
func Of[A any](value A) *Effected[A] {
	return &Effected[A]{node: pureNode{value: value}}
}

// From lifts a lazy value into an effected program.
// The getter runs once per run, when the run reaches it.
func From[A any](getter func() A) *Effected[A] {
	return &Effected[A]{node: lazyNode{f: func() any { return getter() }}}
}

// Stepper drives one instance of a raw effected sequence.
//
// Next advances the sequence. input is the previous step's resumption value
// (nil on the first call). done reports completion, in which case value is
// the final result; otherwise item is the yielded item, which must be an
// [*Effect] — yielding anything else fails the run with
// [*InvalidProgramError].
type Stepper interface {
	Next(input any) (item any, value any, done bool)
}

// Sequence creates a program from a restartable raw sequence. The factory
// must produce a fresh, independent [Stepper] on every call; it is invoked
// once per run.
//
// Sequence is the low-level escape hatch under the combinators: it is how
// external code plugs arbitrary suspension-capable computations into the
// engine. Programs built only from the package's own constructors never
// yield invalid items.
func Sequence[A any](factory func() Stepper) *Effected[A] {
	return &Effected[A]{node: seqNode{factory: factory}}
}
