// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerPrecedenceMostRecentWins(t *testing.T) {
	program := Perform[string]("which").
		Resume("which", func(...any) any { return "A" }).
		Resume("which", func(...any) any { return "B" })
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, "B", got, "the later attachment should intercept first")
}

func TestHandlerPrecedenceInnerBeforeOuter(t *testing.T) {
	inner := Perform[string]("which").
		Resume("which", func(...any) any { return "inner" })
	program := FlatMap(Of(0), func(int) *Effected[string] { return inner }).
		Resume("which", func(...any) any { return "outer" })
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, "inner", got,
		"a handler attached directly to the inner program should win over the enclosing one")
}

func TestHandlerFallbackToOuter(t *testing.T) {
	inner := Perform[string]("which").
		Resume("other", func(...any) any { return "wrong" })
	program := FlatMap(Of(0), func(int) *Effected[string] { return inner }).
		Resume("which", func(...any) any { return "outer" })
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, "outer", got)
}

func TestHandlerScopeEnds(t *testing.T) {
	handled := Perform[int]("ask").Resume("ask", func(...any) any { return 1 })
	// The second ask happens outside the first one's attachment.
	program := FlatMap(handled, func(int) *Effected[int] {
		return Perform[int]("ask")
	})
	_, err := RunSync(program)
	var ue *UnhandledEffectError
	require.ErrorAs(t, err, &ue, "the attachment should not cover effects performed after it ends")
}

func TestHandleReceivesPayloads(t *testing.T) {
	var got []any
	program := Perform[int]("log", "msg", 7).
		Handle(MatchLabel("log"), func(c *Continuation, payloads ...any) {
			got = payloads
			c.Resume(0)
		})
	_, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, []any{"msg", 7}, got)
}

func TestTerminateSkipsRemainingSteps(t *testing.T) {
	steps := 0
	program := FlatMap(Perform[int]("stop"), func(x int) *Effected[int] {
		steps++
		return Of(x + 1)
	}).Terminate("stop", func(...any) any { return 99 })
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, 99, got)
	assert.Zero(t, steps, "steps between the suspension and the attachment should be skipped")
}

func TestTerminateScopedToAttachment(t *testing.T) {
	inner := FlatMap(Perform[int]("stop"), func(x int) *Effected[int] {
		return Of(x + 1)
	}).Terminate("stop", func(...any) any { return 10 })
	// The Map sits outside the attachment: it still runs on the terminal value.
	program := Map(inner, func(x int) int { return x * 2 })
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, 20, got, "terminate should complete the attached program, not the whole run")
}

func TestDefaultHandlerTerminateCompletesRun(t *testing.T) {
	e := NewEffect(NameOf("halt")).WithDefault(func(c *Continuation, _ ...any) {
		c.Terminate(7)
	})
	program := Map(PerformEffect[int](e), func(x int) int { return x * 1000 })
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, 7, got, "a default handler has no attachment scope, so terminate ends the run")
}

func TestProvideFrom(t *testing.T) {
	calls := 0
	dep := From(func() int {
		calls++
		return calls * 10
	})
	program := ProvideFrom(
		FlatMap(Ask[int]("conn"), func(a int) *Effected[int] {
			return Map(Ask[int]("conn"), func(b int) int { return a + b })
		}),
		"conn", dep,
	)
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, 30, got, "the dependency program should run once per request")
}

func TestProvideFromEffectsResolveOutside(t *testing.T) {
	dep := Perform[int]("base")
	program := ProvideFrom(Ask[int]("conn"), "conn", dep).
		Resume("base", func(...any) any { return 5 })
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, 5, got,
		"effects of the dependency program should resolve against enclosing handlers")
}

func TestWith(t *testing.T) {
	testHandlers := func(m *Effected[int]) *Effected[int] {
		return m.
			Resume("now", func(...any) any { return 1234 }).
			Provide("env", "test")
	}
	program := Zip(
		Perform[int]("now"),
		Ask[string]("env"),
		func(now int, env string) int {
			if env == "test" {
				return now
			}
			return 0
		},
	).With(testHandlers)
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, 1234, got)
}

func TestMatchFuncHandler(t *testing.T) {
	var labels []string
	program := FlatMap(Perform[int]("metric.a", 1), func(int) *Effected[int] {
		return Perform[int]("metric.b", 2)
	}).Handle(MatchFunc("metrics", func(n Name) bool {
		return len(n.Label()) > 7 && n.Label()[:7] == "metric."
	}), func(c *Continuation, payloads ...any) {
		labels = append(labels, c.Effect().Name().Label())
		c.Resume(payloads[0])
	})
	got, err := RunSync(program)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, []string{"metric.a", "metric.b"}, labels)
}

func TestHandlerAttachmentDoesNotMutate(t *testing.T) {
	base := Perform[int]("ask")
	handled := base.Resume("ask", func(...any) any { return 1 })

	_, err := RunSync(base)
	var ue *UnhandledEffectError
	require.ErrorAs(t, err, &ue, "attaching a handler should not mutate the source program")

	got, err := RunSync(handled)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}
