// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package effected provides an algebraic-effect interpreter in Go.
//
// A computation declares abstract operations — effects — it needs performed
// without committing to how they are carried out: logging, reading a
// dependency, raising a domain error, awaiting an external result. Handlers
// attached later supply the behavior, and can resume the suspended program
// with a value, terminate it early, or defer its resumption to an external
// completion signal.
//
// # Design Philosophy
//
// effected provides:
//   - Programs as immutable values: composition and handler attachment build
//     new program trees, and nothing executes until a run is requested
//   - Defunctionalized evaluation: programs are tagged trees driven by an
//     explicit trampoline with a frame stack, not captured host stacks
//   - One engine, two modes: the immediate and deferred runners share the
//     driver and produce identical outcomes whenever no effect defers
//
// # Effects
//
// An effect kind is identified by a [Name]: a comparable token carrying a
// namespace and a label. Two names constructed independently with the same
// label are the same kind — that is what lets handlers intercept effects
// across module boundaries — while [FreshName] mints tokens that cannot
// collide.
//
//   - [Perform]: yield a plain effect, complete with the handler's value
//   - [Raise]: yield a non-resumable error effect
//   - [Ask]: read a contextual dependency
//   - [Await]: lift a callback-style asynchronous operation
//   - [NewEffect], [PerformEffect]: build descriptors explicitly, with
//     [Effect.WithDefault] and [Effect.NonResumable] options
//
// # Programs
//
//   - [Of], [From]: lift pure and lazy values
//   - [Map], [FlatMap], [AndThen]: sequence and transform
//   - [Tap], [Zip], [ZipPair], [Effected.Pipe]: derived combinators
//   - [Sequence]: plug a raw restartable sequence into the engine
//
// # Handlers
//
// Attachment operators return new program values; handler tables are
// persistent and structurally shared. Resolution is most-recently-attached
// first, falling back toward the program's origin, then the descriptor's
// default handler, then failure.
//
//   - [Effected.Handle]: full control via the [Continuation] bundle
//   - [Effected.Resume], [Effected.Terminate]: always-resume/terminate sugar
//   - [Effected.Provide], [Effected.ProvideBy], [ProvideFrom]: dependencies
//   - [Effected.Catch], [Effected.CatchAll]: error effects as values
//   - [Effected.CatchAndThrow], [Effected.CatchAllAndThrow]: error effects
//     as fatal run failures
//   - [Effected.With]: reusable attachment bundles
//
// Continuations are one-shot: settling one twice is reported through the
// diagnostic logger ([SetLogger]) and the first settlement wins.
//
// # Running
//
//   - [RunSync]: immediate mode; deferring handlers are a fatal error
//   - [RunAsync]: deferred mode; returns a [Task] handle immediately
//
// Scheduling is cooperative and single-threaded: deferred settlements
// re-enter the driver one at a time under the run's mutex. There is no
// cancellation — an accepted effect whose continuation is never settled
// leaves the run pending forever.
//
// # Collections
//
//   - [AllSeq], [AllSeqMap]: strict sequential runs, container shape kept
//   - [All], [AllMap]: interleaved starts in enumeration order, no
//     completion-order guarantee when effects defer
//
// # Resource Safety
//
//   - [Bracket]: acquire-use-release with release guaranteed on raised
//     error effects
//   - [OnError]: cleanup only on a raised error effect, then re-raise
//
// # Example
//
//	program := effected.FlatMap(
//		effected.Perform[int]("add42", 42),
//		func(x int) *effected.Effected[string] {
//			return effected.Map(
//				effected.Ask[string]("greeting"),
//				func(g string) string { return fmt.Sprintf("%s %d", g, x) },
//			)
//		},
//	).Resume("add42", func(payloads ...any) any {
//		return payloads[0].(int) + 42
//	}).Provide("greeting", "hello")
//
//	result, err := effected.RunSync(program)
//	// result == "hello 84"
package effected
