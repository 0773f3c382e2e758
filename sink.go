// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import (
	"code.hybscloud.com/iox"
)

// Sink is a push-driven consumer of O.
//
// Send is non-blocking: iox.ErrWouldBlock means the value was not
// accepted and the caller retries with the same value once the sink
// can make progress. Any other error is the sink's terminal failure.
type Sink[O any] interface {
	Send(v O) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc[O any] func(O) error

// Send implements Sink.
func (f SinkFunc[O]) Send(v O) error { return f(v) }

// Flusher is the optional upgrade interface for sinks holding buffered
// elements. Feed and the merge drain flush on completion when the sink
// supports it.
type Flusher interface {
	Flush() error
}

// Contramap returns a sink applying f to every value before forwarding
// to s. f must be pure: a retry after iox.ErrWouldBlock applies it
// again to the same value.
func Contramap[A, O any](s Sink[O], f func(A) O) Sink[A] {
	return SinkFunc[A](func(v A) error {
		return s.Send(f(v))
	})
}

// pipeSink applies a transducer ahead of dst, buffering produced
// elements until dst accepts them.
type pipeSink[A, B any] struct {
	dst     Sink[B]
	t       Transducer[A, B]
	pending []B
}

// PipeSink returns a sink applying transducer t to every value and
// forwarding the produced elements to dst in order.
//
// Send keeps the retry contract: iox.ErrWouldBlock is only returned
// while the value is untouched, so the caller may retry with the same
// value. Once t has been applied the value counts as accepted and its
// elements are forwarded lazily; Flush forces out everything buffered.
func PipeSink[A, B any](dst Sink[B], t Transducer[A, B]) Sink[A] {
	return &pipeSink[A, B]{dst: dst, t: t}
}

// Send implements Sink.
func (p *pipeSink[A, B]) Send(v A) error {
	if err := p.forward(); err != nil {
		return err
	}
	out, err := p.t(v)
	if err != nil {
		return err
	}
	p.pending = out
	if err := p.forward(); err != nil && !iox.IsWouldBlock(err) {
		return err
	}
	return nil
}

// Flush implements Flusher: buffered elements are forwarded to dst,
// then dst itself is flushed when it supports Flusher.
func (p *pipeSink[A, B]) Flush() error {
	if err := p.forward(); err != nil {
		return err
	}
	if f, ok := p.dst.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

func (p *pipeSink[A, B]) forward() error {
	for len(p.pending) > 0 {
		if err := p.dst.Send(p.pending[0]); err != nil {
			return err
		}
		p.pending = p.pending[1:]
	}
	return nil
}
