// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import "sync"

// The driver.
//
// A machine evaluates one program instance on an explicit trampoline: a
// frame stack instead of host recursion, so arbitrarily deep compositions
// drive in constant Go stack space. Handler scopes are frames too, which
// gives terminate its unwinding semantics directly: dropping every frame
// above the handler's attachment point.
//
// Scheduling is cooperative and serialized: every entry into a driver —
// the initial run and each deferred settlement — holds the run's single
// mutex, so exactly one step of one machine advances at a time. Collection
// machines interleave by parking; they never run simultaneously.

// frame is the marker interface for continuation frames.
type frame interface {
	frame() // unexported marker method
}

// bindFrame applies f to the returning value and evaluates the produced
// program.
type bindFrame struct{ f func(any) node }

func (*bindFrame) frame() {}

// mapFrame applies a pure transformation to the returning value.
type mapFrame struct{ f func(any) any }

func (*mapFrame) frame() {}

// scopeFrame marks a handler attachment. It is transparent to returning
// values; its position is the unwind target for Terminate.
//
// run identifies the attachment chain the frame came from: handlers stacked
// directly on the same program share a run. Resolution needs the chain
// identity, not stack adjacency — frames from different nesting levels can
// become adjacent once the frames between them pop.
type scopeFrame struct {
	entry *handlerEntry
	run   int
}

func (*scopeFrame) frame() {}

// seqFrame drives a raw sequence instance; returning values feed its Next.
type seqFrame struct{ st Stepper }

func (*seqFrame) frame() {}

// scopeTarget identifies the scope a Terminate unwinds to.
// idx < 0 means the whole run (default handlers have no attachment scope).
type scopeTarget struct {
	m   *machine
	idx int
}

const (
	modeSync = iota
	modeAsync
)

const (
	stateActive = iota
	stateParked
	stateDone
)

const (
	outcomeCompleted = iota
	outcomeFailed
	outcomeTerminated
)

// childOutcome is how a machine reports its terminal state to its owner:
// the run entry point for the root, the enclosing collection otherwise.
type childOutcome struct {
	kind   int
	value  any
	err    error
	target scopeTarget
}

type machine struct {
	mu     *sync.Mutex
	mode   int
	parent *machine

	frames []frame
	work   node // next node to evaluate; nil while a value is returning
	value  any

	state     int
	pending   *Continuation // bundle awaited while parked on an effect
	collect   *collectState // children awaited while parked on a collection
	unsettled int           // bundles created but not yet consumed
	runSeq    int           // next attachment-chain id for scope frames

	done func(childOutcome)
}

// drive advances the machine until it completes, fails, or parks.
// The caller must hold the run mutex.
func (m *machine) drive() {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				m.finish(childOutcome{kind: outcomeFailed, err: err})
			} else {
				m.finish(childOutcome{kind: outcomeFailed, err: &HandlerPanicError{Value: r}})
			}
		}
	}()
	for m.state == stateActive {
		if m.work != nil {
			n := m.work
			m.work = nil
			switch n := n.(type) {
			case pureNode:
				m.value = n.value
			case lazyNode:
				m.value = n.f()
			case effectNode:
				if !m.dispatch(n.effect) {
					return
				}
			case bindNode:
				m.frames = append(m.frames, &bindFrame{f: n.f})
				m.work = n.src
			case mapNode:
				m.frames = append(m.frames, &mapFrame{f: n.f})
				m.work = n.src
			case handleNode:
				// Unwrap the whole attachment chain at once so its frames
				// share a run id. The outermost attachment is the most
				// recent and lands at the lowest index of the chain.
				run := m.runSeq
				m.runSeq++
				h := n
				for {
					m.frames = append(m.frames, &scopeFrame{entry: h.entry, run: run})
					inner, ok := h.src.(handleNode)
					if !ok {
						break
					}
					h = inner
				}
				m.work = h.src
			case seqNode:
				m.frames = append(m.frames, &seqFrame{st: n.factory()})
				m.value = nil
			case collectNode:
				if !m.startCollect(n) {
					return
				}
			default:
				panic("effected: unknown program node")
			}
			if m.work != nil {
				continue
			}
		}

		// A value is returning through the frame stack.
		if len(m.frames) == 0 {
			m.finish(childOutcome{kind: outcomeCompleted, value: m.value})
			return
		}
		switch f := m.frames[len(m.frames)-1].(type) {
		case *bindFrame:
			m.frames = m.frames[:len(m.frames)-1]
			m.work = f.f(m.value)
		case *mapFrame:
			m.frames = m.frames[:len(m.frames)-1]
			m.value = f.f(m.value)
		case *scopeFrame:
			// The handled program completed; its scope ends here.
			m.frames = m.frames[:len(m.frames)-1]
		case *seqFrame:
			item, final, done := f.st.Next(m.value)
			if done {
				m.frames = m.frames[:len(m.frames)-1]
				m.value = final
				continue
			}
			e, ok := item.(*Effect)
			if !ok {
				m.finish(childOutcome{kind: outcomeFailed, err: &InvalidProgramError{Value: item}})
				return
			}
			// The seqFrame stays on top: the resumption value feeds Next.
			m.value = nil
			if !m.dispatch(e) {
				return
			}
		default:
			panic("effected: unknown frame type")
		}
	}
}

// resolved is the outcome of handler resolution for one suspension.
// A nil entry means the descriptor's default handler.
type resolved struct {
	entry  *handlerEntry
	target scopeTarget
	label  string
}

// resolve finds the handler for an effect: scopes of this machine and its
// ancestors, most recently attached first, falling back toward the
// program's origin, then the descriptor's default handler.
//
// Scope frames sharing a run id form one attachment chain (handlers stacked
// directly on the same program); within a chain the outermost attachment is
// the most recent, so chains are scanned bottom-up while distinct chains
// are visited innermost-first.
func (m *machine) resolve(e *Effect) (resolved, bool) {
	for mm := m; mm != nil; mm = mm.parent {
		frames := mm.frames
		i := len(frames) - 1
		for i >= 0 {
			sf, ok := frames[i].(*scopeFrame)
			if !ok {
				i--
				continue
			}
			j := i
			for j > 0 {
				prev, ok := frames[j-1].(*scopeFrame)
				if !ok || prev.run != sf.run {
					break
				}
				j--
			}
			for k := j; k <= i; k++ {
				entry := frames[k].(*scopeFrame).entry
				if entry.match.fn(e.name) {
					return resolved{
						entry:  entry,
						target: scopeTarget{m: mm, idx: k},
						label:  entry.match.label,
					}, true
				}
			}
			i = j - 1
		}
	}
	if e.defaultHandler != nil {
		root := m
		for root.parent != nil {
			root = root.parent
		}
		return resolved{target: scopeTarget{m: root, idx: -1}, label: e.name.Label()}, true
	}
	return resolved{}, false
}

// dispatch resolves and invokes the handler for one suspension. It returns
// true when the driver loop should continue, false when the machine parked
// or finished.
func (m *machine) dispatch(e *Effect) bool {
	r, ok := m.resolve(e)
	if !ok {
		m.finish(childOutcome{kind: outcomeFailed, err: &UnhandledEffectError{Effect: e}})
		return false
	}
	if r.entry != nil && r.entry.splice != nil {
		// Provision by program: the dependency program runs in place and
		// its result becomes the resumption value.
		m.work = r.entry.splice
		return true
	}
	fn := e.defaultHandler
	if r.entry != nil {
		fn = r.entry.fn
	}
	c := &Continuation{m: m, effect: e, target: r.target, label: r.label, invoking: true}
	m.unsettled++
	fn(c, e.payloads...)
	settled, action, value, fatal := c.snapshot()
	if fatal != nil {
		m.unsettled--
		m.finish(childOutcome{kind: outcomeFailed, err: fatal})
		return false
	}
	if !settled {
		if m.mode == modeSync {
			m.finish(childOutcome{kind: outcomeFailed, err: &SyncModeError{}})
			return false
		}
		m.state = stateParked
		m.pending = c
		return false
	}
	m.unsettled--
	if action == actionResumed {
		m.value = value
		return true
	}
	return m.applyTerminate(c.target, value)
}

// applyTerminate unwinds to the given scope with the terminal value.
// When the target lives in an ancestor machine, this machine finishes with a
// terminate outcome that propagates through the collection hooks; the
// return value then tells the caller to stop driving.
func (m *machine) applyTerminate(t scopeTarget, v any) bool {
	if t.m != m {
		m.finish(childOutcome{kind: outcomeTerminated, value: v, target: t})
		return false
	}
	if t.idx < 0 {
		m.frames = m.frames[:0]
	} else {
		m.frames = m.frames[:t.idx]
	}
	m.work = nil
	m.value = v
	return true
}

// finish moves the machine to its terminal state and notifies the owner.
func (m *machine) finish(o childOutcome) {
	if m.state == stateDone {
		return
	}
	m.state = stateDone
	m.pending = nil
	if cs := m.collect; cs != nil {
		m.collect = nil
		cs.abandon()
	}
	done := m.done
	m.done = nil
	if done != nil {
		done(o)
	}
}

// collectState coordinates the children of one collection suspension.
type collectState struct {
	owner    *machine
	children []*machine
	results  []any
	keys     []string // nil for slice shape
	total    int
	complete int

	starting   bool
	finished   bool
	failErr    error
	terminated bool
	termValue  any
	termTarget scopeTarget
}

// startCollect begins driving every item of a collection in enumeration
// order. Items run to their first deferral point in turn; parked children
// are left pending so later items start before earlier ones complete.
// Returns true when the collection finished synchronously and the driver
// loop should continue.
func (m *machine) startCollect(n collectNode) bool {
	cs := &collectState{
		owner:    m,
		children: make([]*machine, len(n.items)),
		results:  make([]any, len(n.items)),
		keys:     n.keys,
		total:    len(n.items),
		starting: true,
	}
	for i := range n.items {
		child := acquireMachine(m.mode, m.mu)
		child.parent = m
		i := i
		child.done = func(o childOutcome) { cs.onChild(i, o) }
		cs.children[i] = child
	}
	for i, item := range n.items {
		if cs.finished {
			break
		}
		child := cs.children[i]
		child.work = item
		child.drive()
	}
	cs.starting = false
	switch {
	case cs.failErr != nil:
		m.finish(childOutcome{kind: outcomeFailed, err: cs.failErr})
		return false
	case cs.terminated:
		return m.applyTerminate(cs.termTarget, cs.termValue)
	case cs.complete == cs.total:
		m.value = cs.shape()
		return true
	default:
		m.state = stateParked
		m.collect = cs
		return false
	}
}

// onChild records one child's terminal outcome and, once the collection is
// decided after the start pass, re-enters the owner.
func (cs *collectState) onChild(i int, o childOutcome) {
	if cs.finished {
		return
	}
	owner := cs.owner
	switch o.kind {
	case outcomeCompleted:
		cs.results[i] = o.value
		cs.complete++
		if cs.complete < cs.total {
			return
		}
		cs.finished = true
		if cs.starting {
			return
		}
		owner.collect = nil
		owner.state = stateActive
		owner.work = nil
		owner.value = cs.shape()
		owner.drive()
	case outcomeFailed:
		cs.finished = true
		cs.abandon()
		if cs.starting {
			cs.failErr = o.err
			return
		}
		owner.collect = nil
		owner.state = stateActive
		owner.finish(childOutcome{kind: outcomeFailed, err: o.err})
	case outcomeTerminated:
		cs.finished = true
		cs.abandon()
		if cs.starting {
			cs.terminated = true
			cs.termValue = o.value
			cs.termTarget = o.target
			return
		}
		owner.collect = nil
		owner.state = stateActive
		if owner.applyTerminate(o.target, o.value) {
			owner.drive()
		}
	}
}

// abandon marks every undecided child done. Their pending continuations
// become inert: a settlement arriving later is dropped by deliver.
func (cs *collectState) abandon() {
	for _, child := range cs.children {
		if child.state != stateDone {
			child.state = stateDone
			child.pending = nil
			child.done = nil
			if inner := child.collect; inner != nil {
				child.collect = nil
				inner.abandon()
			}
		}
	}
}

// shape assembles the results into the collection's original container
// shape: a []any for slices, a map[string]any for maps.
func (cs *collectState) shape() any {
	if cs.keys == nil {
		return cs.results
	}
	out := make(map[string]any, len(cs.keys))
	for i, k := range cs.keys {
		out[k] = cs.results[i]
	}
	return out
}
