// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package exch provides flow-controlled bidirectional exchanges driven by
// algebraic-effect decisions on [code.hybscloud.com/kont].
//
// An [Exchange] pairs a read [Source] with a write [Sink]. A decision races
// the exchange's inputs, writes back through a bounded [Queue], and emits a
// merged downstream stream.
//
// # Architecture
//
//   - Transport: Lock-free SPSC rings via [code.hybscloud.com/lfq] back [Queue] and [Loopback] pairs.
//   - Non-blocking: Operations return [code.hybscloud.com/iox.ErrWouldBlock] on backpressure; [Queue] capacity selects bounded, synchronous-handoff, or unbounded buffering.
//   - Execution: Dual-world API supporting closure-based (Cont-world) and defunctionalized (Expr-world) evaluation.
//   - Error Handling: Flow operations are non-blocking, while error operations short-circuit; a failed merge pins [*ReadError], [*WriteError], or [*DecisionError].
//
// # API Topologies
//
//   - Combinators: [MapO], [MapW], [PipeO], [PipeW], [PipeBoth], [Through] rewrite the sides without touching transport.
//   - Operations: [AwaitL], [AwaitR], [AwaitAny], [Push], [Yield].
//   - Cont-world: [AwaitLBind], [AwaitRBind], [AwaitAnyBranch], [PushThen], [YieldThen], [Halt], [Fail].
//   - Expr-world: Zero-allocation variants like [ExprAwaitLBind], [ExprPushThen], etc. Bridge via [Reify] and [Reflect].
//   - Recursive: [Loop] and [ExprLoop] for trampoline-based iterative decisions.
//
// # Integration
//
//   - Polling: [Merge.Next] advances the decision and the write drain one step at a time, making a merge easy to integrate with a proactor loop.
//   - Strategies: [Interleave] stays on the calling goroutine; [Spawn] moves the write drain to a dedicated goroutine.
//   - Blocking: [Collect] and [Feed] wait past boundaries using adaptive backoff.
//
// # Example
//
//	src := exch.SourceOf(1, 2, 3, 4)
//	var sent []int
//	x := exch.Exchange[int, int]{Read: src, Write: exch.SinkFunc[int](func(v int) error {
//		sent = append(sent, v)
//		return nil
//	})}
//	m := exch.RunWriter(x, func(i int) (kont.Either[int, int], error) {
//		if i%2 == 0 {
//			return kont.Left[int, int](i), nil // write back
//		}
//		return kont.Right[int, int](i), nil // emit downstream
//	})
//	odds, _ := exch.Collect[int](m) // [1 3], sent == [2 4]
package exch
