// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch_test

import (
	"errors"
	"io"
	"testing"

	"code.hybscloud.com/exch"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

var errBoom = errors.New("boom")

// recordSink collects every accepted value.
type recordSink[T any] struct {
	got []T
}

func (s *recordSink[T]) Send(v T) error {
	s.got = append(s.got, v)
	return nil
}

// gateSink rejects sends with iox.ErrWouldBlock until opened.
type gateSink[T any] struct {
	open bool
	got  []T
}

func (s *gateSink[T]) Send(v T) error {
	if !s.open {
		return iox.ErrWouldBlock
	}
	s.got = append(s.got, v)
	return nil
}

// failSink fails every send with err.
type failSink[T any] struct {
	err error
}

func (s failSink[T]) Send(T) error { return s.err }

// relayLoop is the identity decision: every element read from the
// exchange is yielded downstream, depth events are ignored.
func relayLoop[I any]() kont.Eff[struct{}] {
	return exch.Loop(struct{}{}, func(struct{}) kont.Eff[kont.Either[struct{}, struct{}]] {
		return exch.AwaitLBind[I](func(e kont.Either[int, I]) kont.Eff[kont.Either[struct{}, struct{}]] {
			i, ok := e.GetRight()
			if !ok {
				return kont.Pure(kont.Left[struct{}, struct{}](struct{}{}))
			}
			return exch.YieldThen(i, kont.Pure(kont.Left[struct{}, struct{}](struct{}{})))
		})
	})
}

// collectBudget drains src like exch.Collect but fails the test after
// budget consecutive iox.ErrWouldBlock polls instead of backing off
// forever.
func collectBudget[T any](tb testing.TB, src exch.Source[T], budget int) []T {
	tb.Helper()
	var out []T
	var bo iox.Backoff
	stalls := 0
	for {
		v, err := src.Next()
		switch {
		case err == nil:
			out = append(out, v)
			stalls = 0
			bo.Reset()
		case err == io.EOF:
			return out
		case iox.IsWouldBlock(err):
			stalls++
			if stalls > budget {
				tb.Fatalf("collect: stalled after %d polls", budget)
			}
			bo.Wait()
		default:
			tb.Fatalf("collect: %v", err)
		}
	}
}

// nextValue polls src past iox.ErrWouldBlock until it delivers an
// element, failing the test after budget stalled polls.
func nextValue[T any](tb testing.TB, src exch.Source[T], budget int) T {
	tb.Helper()
	var bo iox.Backoff
	for i := 0; i < budget; i++ {
		v, err := src.Next()
		if err == nil {
			return v
		}
		if !iox.IsWouldBlock(err) {
			tb.Fatalf("next: %v", err)
		}
		bo.Wait()
	}
	tb.Fatalf("next: stalled after %d polls", budget)
	var zero T
	return zero
}

// nextFailure polls src past iox.ErrWouldBlock and delivered elements
// until it reports a terminal error, failing the test after budget
// polls.
func nextFailure[T any](tb testing.TB, src exch.Source[T], budget int) error {
	tb.Helper()
	var bo iox.Backoff
	for i := 0; i < budget; i++ {
		_, err := src.Next()
		if err == nil {
			continue
		}
		if iox.IsWouldBlock(err) {
			bo.Wait()
			continue
		}
		return err
	}
	tb.Fatalf("next: no terminal error after %d polls", budget)
	return nil
}
