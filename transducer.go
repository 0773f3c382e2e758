// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

// Transducer transforms one input element into zero or more output
// elements, preserving order. Applications are independent: PipeO,
// PipeW, PipeSource, and PipeSink may apply a transducer to any number
// of elements over the lifetime of the pipe.
type Transducer[A, B any] func(A) ([]B, error)

// Mapping returns a transducer applying a pure element function.
func Mapping[A, B any](f func(A) B) Transducer[A, B] {
	return func(a A) ([]B, error) {
		return []B{f(a)}, nil
	}
}

// Filtering returns a transducer keeping the elements where keep
// returns true.
func Filtering[A any](keep func(A) bool) Transducer[A, A] {
	return func(a A) ([]A, error) {
		if !keep(a) {
			return nil, nil
		}
		return []A{a}, nil
	}
}
