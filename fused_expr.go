// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import (
	"code.hybscloud.com/kont"
)

// exprReturnFrame is the pre-allocated terminal frame shared by all
// Expr constructors, avoiding a heap escape per fused step.
var exprReturnFrame kont.Frame = kont.ReturnFrame{}

// identityResume is the identity resume function for EffectFrame construction.
// Named function produces a static function value, consistent with kont convention.
func identityResume(v kont.Erased) kont.Erased { return v }

func awaitLBindUnwind[I, B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(kont.Either[int, I]) kont.Expr[B])
	result := f(current.(kont.Either[int, I]))
	return kont.Erased(result.Value), result.Frame
}

// ExprAwaitLBind awaits the left inputs and passes the result to f.
// Fuses ExprPerform(AwaitL[I]{}) + ExprBind.
func ExprAwaitLBind[I, B any](f func(kont.Either[int, I]) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = awaitLBindUnwind[I, B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = AwaitL[I]{}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}

func awaitRBindUnwind[A, B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(A) kont.Expr[B])
	result := f(current.(A))
	return kont.Erased(result.Value), result.Frame
}

// ExprAwaitRBind awaits an auxiliary element and passes it to f.
// Fuses ExprPerform(AwaitR[A]{}) + ExprBind.
func ExprAwaitRBind[A, B any](f func(A) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = awaitRBindUnwind[A, B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = AwaitR[A]{}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}

func awaitAnyBranchUnwind[I, A, B any](data, data2, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	onLeft := data.(func(kont.Either[int, I]) kont.Expr[B])
	onRight := data2.(func(A) kont.Expr[B])
	e := current.(kont.Either[kont.Either[int, I], A])
	var result kont.Expr[B]
	if left, ok := e.GetLeft(); ok {
		result = onLeft(left)
	} else {
		right, _ := e.GetRight()
		result = onRight(right)
	}
	return kont.Erased(result.Value), result.Frame
}

// ExprAwaitAnyBranch races all inputs and calls onLeft or onRight.
// Fuses ExprPerform(AwaitAny[I, A]{}) + ExprBind + Either branch.
func ExprAwaitAnyBranch[I, A, B any](onLeft func(kont.Either[int, I]) kont.Expr[B], onRight func(A) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = onLeft
	bf.Data2 = onRight
	bf.Unwind = awaitAnyBranchUnwind[I, A, B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = AwaitAny[I, A]{}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}

// ExprPushThen writes a value to the exchange and continues with next.
// Fuses ExprPerform(Push[O]{Value: v}) + ExprThen.
func ExprPushThen[O, B any](v O, next kont.Expr[B]) kont.Expr[B] {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = Push[O]{Value: v}
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[B](ef)
}

// ExprYieldThen emits a downstream element and continues with next.
// Fuses ExprPerform(Yield[B]{Value: v}) + ExprThen.
func ExprYieldThen[B, C any](v B, next kont.Expr[C]) kont.Expr[C] {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = Yield[B]{Value: v}
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[C](ef)
}

// ExprHalt ends the decision normally with result r.
func ExprHalt[R any](r R) kont.Expr[R] {
	return kont.ExprReturn(r)
}
