// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import (
	"io"

	"code.hybscloud.com/iox"
)

// Source is a pull-driven asynchronous sequence of T.
//
// Next is non-blocking: it returns iox.ErrWouldBlock while no element
// is ready, io.EOF once the sequence is exhausted, and any other error
// as the sequence's terminal failure. Sources are single-consumer.
type Source[T any] interface {
	Next() (T, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc[T any] func() (T, error)

// Next implements Source.
func (f SourceFunc[T]) Next() (T, error) { return f() }

// SourceOf returns a finite source yielding the given values in order,
// then io.EOF.
func SourceOf[T any](values ...T) Source[T] {
	i := 0
	return SourceFunc[T](func() (T, error) {
		if i >= len(values) {
			var zero T
			return zero, io.EOF
		}
		v := values[i]
		i++
		return v, nil
	})
}

// Never returns a source that never produces and never ends: every
// Next returns iox.ErrWouldBlock.
func Never[T any]() Source[T] {
	return SourceFunc[T](func() (T, error) {
		var zero T
		return zero, iox.ErrWouldBlock
	})
}

// MapSource returns a source applying f to every element of s.
func MapSource[T, U any](s Source[T], f func(T) U) Source[U] {
	return SourceFunc[U](func() (U, error) {
		v, err := s.Next()
		if err != nil {
			var zero U
			return zero, err
		}
		return f(v), nil
	})
}

// FlatMapSource returns a source concatenating, in order, the
// sub-sequences produced by f for each element of s. A sub-sequence is
// drained to io.EOF before s is pulled again; a failure of s or of a
// sub-sequence is the failure of the result.
func FlatMapSource[T, U any](s Source[T], f func(T) Source[U]) Source[U] {
	var cur Source[U]
	return SourceFunc[U](func() (U, error) {
		for {
			if cur != nil {
				v, err := cur.Next()
				if err == nil {
					return v, nil
				}
				if err != io.EOF {
					// iox.ErrWouldBlock keeps cur for the retry
					var zero U
					return zero, err
				}
				cur = nil
			}
			t, err := s.Next()
			if err != nil {
				var zero U
				return zero, err
			}
			cur = f(t)
		}
	})
}

// PipeSource returns a source applying transducer t to every element
// of s, preserving order. Elements produced by one application are
// drained before s is pulled again.
func PipeSource[A, B any](s Source[A], t Transducer[A, B]) Source[B] {
	var pending []B
	return SourceFunc[B](func() (B, error) {
		for {
			if len(pending) > 0 {
				v := pending[0]
				pending = pending[1:]
				return v, nil
			}
			a, err := s.Next()
			if err != nil {
				var zero B
				return zero, err
			}
			out, err := t(a)
			if err != nil {
				var zero B
				return zero, err
			}
			pending = out
		}
	})
}

// OnComplete returns a source invoking hook exactly once when s ends,
// whether by io.EOF or by failure. The hook runs before the terminal
// error reaches the consumer.
func OnComplete[T any](s Source[T], hook func()) Source[T] {
	fired := false
	return SourceFunc[T](func() (T, error) {
		v, err := s.Next()
		if err != nil && !iox.IsWouldBlock(err) && !fired {
			fired = true
			hook()
		}
		return v, err
	})
}
