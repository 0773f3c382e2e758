// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import (
	"code.hybscloud.com/kont"
)

// AwaitL is the effect operation for awaiting the left inputs.
// Perform(AwaitL[I]{}) races the write-side depth feed against the
// exchange's read side: Left(depth) reports a depth change, Right(i)
// delivers an element read from the exchange.
type AwaitL[I any] struct {
	kont.Phantom[kont.Either[int, I]]
}

// DispatchFlow handles AwaitL on the flow engine.
// Non-blocking: returns iox.ErrWouldBlock when neither left input is
// ready. Polling order alternates between the two inputs so a busy
// depth feed cannot starve reads.
func (AwaitL[I]) DispatchFlow(ctx *flowContext) (kont.Resumed, error) {
	return pollLeft[I](ctx)
}

// AwaitR is the effect operation for awaiting the auxiliary input.
// Perform(AwaitR[A]{}) delivers the next element of the auxiliary
// source.
type AwaitR[A any] struct {
	kont.Phantom[A]
}

// DispatchFlow handles AwaitR on the flow engine.
// Non-blocking: returns iox.ErrWouldBlock while the auxiliary source
// has nothing ready.
func (AwaitR[A]) DispatchFlow(ctx *flowContext) (kont.Resumed, error) {
	v, err := pollAux(ctx)
	if err != nil {
		return nil, err
	}
	return v.(A), nil
}

// AwaitAny is the effect operation for racing all inputs.
// Perform(AwaitAny[I, A]{}) delivers Left(left input) or
// Right(auxiliary element), whichever side is ready first.
type AwaitAny[I, A any] struct {
	kont.Phantom[kont.Either[kont.Either[int, I], A]]
}

// DispatchFlow handles AwaitAny on the flow engine.
// Non-blocking: returns iox.ErrWouldBlock when no input is ready.
// Polling order alternates between the left pair and the auxiliary
// side so neither can starve the other.
func (AwaitAny[I, A]) DispatchFlow(ctx *flowContext) (kont.Resumed, error) {
	return pollAny[I, A](ctx)
}

// Push is the effect operation for writing to the exchange.
// Perform(Push[O]{Value: v}) enqueues v on the write queue; the drain
// loop forwards it to the exchange's write side.
type Push[O any] struct {
	kont.Phantom[struct{}]
	Value O
}

// DispatchFlow handles Push on the flow engine.
// Non-blocking: returns iox.ErrWouldBlock when the write queue is
// full or mid-handoff. Pushing to a closed queue halts the decision.
func (p Push[O]) DispatchFlow(ctx *flowContext) (kont.Resumed, error) {
	if err := ctx.push(p.Value); err != nil {
		if err == ErrClosed {
			return nil, errHalt
		}
		return nil, err
	}
	return struct{}{}, nil
}

// Yield is the effect operation for emitting a downstream element.
// Perform(Yield[B]{Value: v}) hands v to the consumer of the merged
// output.
type Yield[B any] struct {
	kont.Phantom[struct{}]
	Value B
}

// DispatchFlow handles Yield on the flow engine.
// Never blocks: the engine surfaces the staged element from Next
// before advancing the decision again.
func (y Yield[B]) DispatchFlow(ctx *flowContext) (kont.Resumed, error) {
	ctx.out = y.Value
	ctx.hasOut = true
	return struct{}{}, nil
}
