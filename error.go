// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package effected

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Failure taxonomy.
//
// Nothing is retried anywhere in the engine: every failure below surfaces as
// the terminal outcome of the run that produced it. The one non-fatal
// protocol violation — settling a continuation twice — is reported through
// the diagnostic logger instead (see [SetLogger]).

// UnhandledEffectError reports an effect for which no attached handler
// matched and no default handler existed.
type UnhandledEffectError struct {
	Effect *Effect
}

func (e *UnhandledEffectError) Error() string {
	return "Unhandled effect: " + formatEffect(e.Effect)
}

// NonResumableError reports a handler resuming an effect whose descriptor
// forbids resumption.
type NonResumableError struct {
	Effect *Effect
}

func (e *NonResumableError) Error() string {
	return "Cannot resume non-resumable effect: " + formatEffect(e.Effect)
}

// InvalidProgramError reports a raw sequence yielding something other than
// an effect descriptor.
type InvalidProgramError struct {
	Value any
}

func (e *InvalidProgramError) Error() string {
	return "Invalid effected program: an effected program should yield only effects (received " +
		formatValue(e.Value) + ")"
}

// SyncModeError reports a handler deferring its settlement under the
// immediate engine, which cannot suspend.
type SyncModeError struct{}

func (e *SyncModeError) Error() string {
	return "Cannot run an asynchronous effected program with `runSync`, use `runAsync` instead"
}

// HandlerPanicError wraps a non-error panic value recovered from a handler
// callback or a program transformation; the panic fails the whole run.
type HandlerPanicError struct {
	Value any
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("effected: handler panicked: %v", e.Value)
}

// diagLogger is the sink for non-fatal protocol diagnostics.
var diagLogger atomic.Pointer[slog.Logger]

func init() {
	diagLogger.Store(slog.Default())
}

// SetLogger replaces the logger that receives non-fatal protocol
// diagnostics, such as the multiple-handling warning. Safe for concurrent
// use.
func SetLogger(l *slog.Logger) {
	diagLogger.Store(l)
}

// warnMultipleHandling reports a second Resume/Terminate on a continuation
// whose slot was already consumed. First invocation wins; the message names
// the matcher and both settlements.
func warnMultipleHandling(label string, e *Effect, secondAction string, secondValue any, firstAction string, firstValue any) {
	diagLogger.Load().Warn(fmt.Sprintf(
		"Effect %s has been handled multiple times (received `%s %s with %s` after it has been %s with %s). Only the first handler will be used.",
		label, secondAction, formatEffect(e), formatValue(secondValue), firstAction, formatValue(firstValue),
	))
}
