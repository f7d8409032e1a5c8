// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSeqCollectsInOrder(t *testing.T) {
	var started []int
	items := make([]*Effected[int], 3)
	for i := range items {
		i := i
		items[i] = From(func() int {
			started = append(started, i)
			return i * 10
		})
	}
	got, err := RunSync(AllSeq(items))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20}, got)
	assert.Equal(t, []int{0, 1, 2}, started)
}

func TestAllSeqEmpty(t *testing.T) {
	got, err := RunSync(AllSeq[int](nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAllSeqStopsAtFirstFailure(t *testing.T) {
	ran := []string{}
	items := []*Effected[int]{
		Tap(Of(1), func(int) *Effected[int] { ran = append(ran, "a"); return Of(0) }),
		Raise[int]("boom", "second failed"),
		Tap(Of(3), func(int) *Effected[int] { ran = append(ran, "c"); return Of(0) }),
	}
	_, err := RunSync(AllSeq(items))
	var ue *UnhandledEffectError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"a"}, ran, "items after the failure should never start")
}

func TestAllSeqMapPreservesShape(t *testing.T) {
	programs := map[string]*Effected[int]{
		"a": Of(1),
		"b": Of(2),
		"c": Of(3),
	}
	got, err := RunSync(AllSeqMap(programs))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, got)
}

func TestAllCollectsInOrder(t *testing.T) {
	items := []*Effected[int]{Of(1), Of(2), Of(3)}
	got, err := RunSync(All(items))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestAllMatchesAllSeqWithoutDeferral(t *testing.T) {
	build := func() []*Effected[int] {
		items := make([]*Effected[int], 4)
		for i := range items {
			i := i
			items[i] = Map(Perform[int]("base"), func(b int) int { return b + i })
		}
		return items
	}
	handle := func(m *Effected[[]int]) *Effected[[]int] {
		return m.Resume("base", func(...any) any { return 100 })
	}
	seqGot, seqErr := RunSync(handle(AllSeq(build())))
	allGot, allErr := RunSync(handle(All(build())))
	require.NoError(t, seqErr)
	require.NoError(t, allErr)
	assert.Equal(t, seqGot, allGot)
}

func TestAllItemsSeeEnclosingHandlers(t *testing.T) {
	items := []*Effected[int]{
		Perform[int]("ask"),
		Map(Perform[int]("ask"), func(x int) int { return x * 2 }),
	}
	program := All(items).Resume("ask", func(...any) any { return 5 })
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 10}, got,
		"handlers attached around the collection should cover every item")
}

func TestAllItemHandlersAreLocal(t *testing.T) {
	items := []*Effected[int]{
		Perform[int]("ask").Resume("ask", func(...any) any { return 1 }),
		Perform[int]("ask").Resume("ask", func(...any) any { return 2 }),
	}
	got, err := RunSync(All(items))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}

func TestAllInterleavesDeferredItems(t *testing.T) {
	var mu sync.Mutex
	var events []string
	note := func(s string) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	}
	items := []*Effected[int]{
		Await("slow", func(complete func(int)) {
			note("slow started")
			go func() {
				time.Sleep(20 * time.Millisecond)
				complete(1)
			}()
		}),
		Await("fast", func(complete func(int)) {
			note("fast started")
			go func() {
				time.Sleep(5 * time.Millisecond)
				complete(2)
			}()
		}),
	}
	got, err := RunAsync(All(items)).Wait()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got, "results stay in enumeration order")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"slow started", "fast started"}, events,
		"the second item should start while the first is suspended")
}

func TestAllSeqDoesNotInterleave(t *testing.T) {
	var mu sync.Mutex
	var events []string
	note := func(s string) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	}
	item := func(name string, d time.Duration) *Effected[int] {
		return Await(name, func(complete func(int)) {
			note(name + " started")
			go func() {
				time.Sleep(d)
				note(name + " completed")
				complete(0)
			}()
		})
	}
	items := []*Effected[int]{
		item("first", 10*time.Millisecond),
		item("second", time.Millisecond),
	}
	_, err := RunAsync(AllSeq(items)).Wait()
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t,
		[]string{"first started", "first completed", "second started", "second completed"},
		events, "allSeq should finish each item before starting the next")
}

func TestAllMapDeferred(t *testing.T) {
	programs := map[string]*Effected[int]{
		"x": Await("x", func(complete func(int)) {
			go func() {
				time.Sleep(10 * time.Millisecond)
				complete(1)
			}()
		}),
		"y": Of(2),
	}
	got, err := RunAsync(AllMap(programs)).Wait()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"x": 1, "y": 2}, got)
}

func TestAllFailureAborts(t *testing.T) {
	items := []*Effected[int]{
		Of(1),
		Raise[int]("boom"),
		Of(3),
	}
	_, err := RunSync(All(items))
	var ue *UnhandledEffectError
	require.ErrorAs(t, err, &ue)
}

func TestAllTerminatePropagates(t *testing.T) {
	items := []*Effected[int]{
		Of(1),
		Perform[int]("stop"),
	}
	program := All(items).Terminate("stop", func(...any) any { return []int{99} })
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, []int{99}, got,
		"a terminate targeting a scope around the collection should abort it")
}

func TestNestedCollections(t *testing.T) {
	inner := All([]*Effected[int]{Of(1), Of(2)})
	outer := All([]*Effected[[]int]{inner, Of([]int{3})})
	got, err := RunSync(outer)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3}}, got)
}
