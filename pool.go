// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import "sync"

// Machine pool.
//
// Machines are acquired per run and per collection child. Only root
// machines that finished with every continuation consumed are returned to
// the pool (see RunSync): collection children stay referenced by their
// collectState and by outstanding continuations, so recycling them could
// hand a live reference to an unrelated run.

var machinePool = sync.Pool{New: func() any { return new(machine) }}

func acquireMachine(mode int, mu *sync.Mutex) *machine {
	m := machinePool.Get().(*machine)
	m.mu = mu
	m.mode = mode
	m.state = stateActive
	return m
}

// releaseMachine zeroes the machine and returns it to the pool, keeping the
// frame stack's backing array.
func releaseMachine(m *machine) {
	clear(m.frames)
	m.frames = m.frames[:0]
	m.mu = nil
	m.parent = nil
	m.work = nil
	m.value = nil
	m.state = stateDone
	m.pending = nil
	m.collect = nil
	m.unsettled = 0
	m.runSeq = 0
	m.done = nil
	machinePool.Put(m)
}
