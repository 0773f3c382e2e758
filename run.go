// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// muteDepth is the depth port for Run merges: never ready, never
// exhausted. Run decisions receive no Left(depth) events.
func muteDepth() (int, error) {
	return 0, iox.ErrWouldBlock
}

// Run starts a Cont-world decision over the exchange with an
// unbounded write queue and a silent depth feed: AwaitL delivers only
// Right(element) and Push always accepts. Decisions that must react
// to write backpressure use Flow with a bounded capacity instead.
func Run[B, I, O, A, R any](x Exchange[I, O], aux Source[A], y kont.Eff[R], strategy ...Strategy) *Merge[B, R] {
	return RunExpr[B](x, aux, kont.Reify(y), strategy...)
}

// RunExpr starts an Expr-world decision over the exchange.
// See Run.
func RunExpr[B, I, O, A, R any](x Exchange[I, O], aux Source[A], y kont.Expr[R], strategy ...Strategy) *Merge[B, R] {
	m := FlowExpr[B](x, -1, aux, y, strategy...)
	m.ctx.depth = muteDepth
	return m
}

// RunWriter starts a classifying relay over the exchange: every
// element read from x is passed to wf, Left(o) is written back to x,
// Right(b) is emitted downstream, and an error from wf fails the
// merge with *DecisionError. The merge ends when the read side is
// exhausted.
func RunWriter[I, O, B any](x Exchange[I, O], wf func(I) (kont.Either[O, B], error), strategy ...Strategy) *Merge[B, struct{}] {
	again := kont.Pure(kont.Left[struct{}, struct{}](struct{}{}))
	y := Loop(struct{}{}, func(struct{}) kont.Eff[kont.Either[struct{}, struct{}]] {
		return AwaitLBind[I](func(e kont.Either[int, I]) kont.Eff[kont.Either[struct{}, struct{}]] {
			i, ok := e.GetRight()
			if !ok {
				return again
			}
			out, err := wf(i)
			if err != nil {
				return Fail[kont.Either[struct{}, struct{}]](err)
			}
			if o, ok := out.GetLeft(); ok {
				return PushThen(o, again)
			}
			b, _ := out.GetRight()
			return YieldThen(b, again)
		})
	})
	return Run[B](x, SourceOf[struct{}](), y, strategy...)
}
