// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import (
	"code.hybscloud.com/kont"
)

// AwaitLBind awaits the left inputs and passes the result to f.
// Fuses Perform(AwaitL[I]{}) + Bind.
func AwaitLBind[I, B any](f func(kont.Either[int, I]) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(AwaitL[I]{}), f)
}

// AwaitRBind awaits an auxiliary element and passes it to f.
// Fuses Perform(AwaitR[A]{}) + Bind.
func AwaitRBind[A, B any](f func(A) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(AwaitR[A]{}), f)
}

// AwaitAnyBranch races all inputs and calls onLeft or onRight.
// Fuses Perform(AwaitAny[I, A]{}) + Bind + Either branch.
func AwaitAnyBranch[I, A, B any](onLeft func(kont.Either[int, I]) kont.Eff[B], onRight func(A) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(AwaitAny[I, A]{}), func(e kont.Either[kont.Either[int, I], A]) kont.Eff[B] {
		if left, ok := e.GetLeft(); ok {
			return onLeft(left)
		}
		right, _ := e.GetRight()
		return onRight(right)
	})
}

// PushThen writes a value to the exchange and continues with next.
// Fuses Perform(Push[O]{Value: v}) + Then.
func PushThen[O, B any](v O, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Push[O]{Value: v}), next)
}

// YieldThen emits a downstream element and continues with next.
// Fuses Perform(Yield[B]{Value: v}) + Then.
func YieldThen[B, C any](v B, next kont.Eff[C]) kont.Eff[C] {
	return kont.Then(kont.Perform(Yield[B]{Value: v}), next)
}

// Halt ends the decision normally with result r.
func Halt[R any](r R) kont.Eff[R] {
	return kont.Pure(r)
}

// Fail ends the decision by raising err.
func Fail[R any](err error) kont.Eff[R] {
	return kont.ThrowError[error, R](err)
}
