// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import (
	"io"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// loopbackCapacity is the default bounded capacity for loopback
// rings. 4 balances amortizing producer-side cached-index refresh
// cost while keeping ring buffers within a single cache line.
const loopbackCapacity = 4

// duplexPair holds both loopback directions in a single allocation.
// SPSC rings are embedded as values; only the ring buffers are
// separate heap objects. Each direction has one producer and one
// consumer.
type duplexPair struct {
	dataAB   lfq.SPSC[any]
	dataBA   lfq.SPSC[any]
	abClosed atomix.Uint32
	baClosed atomix.Uint32
	abSlot   any
	baSlot   any
}

// loopSink is the write side of one loopback direction. Send stages
// the value in the direction's slot before enqueueing, so boxing does
// not escape per call.
type loopSink[T any] struct {
	ring   *lfq.SPSC[any]
	slot   *any
	closed *atomix.Uint32
}

// Send enqueues v on the direction's ring.
// Non-blocking: returns iox.ErrWouldBlock when the ring is full and
// ErrClosed after Close.
func (s loopSink[T]) Send(v T) error {
	if s.closed.Load() != 0 {
		return ErrClosed
	}
	*s.slot = v
	return s.ring.Enqueue(s.slot)
}

// Close marks the direction closed. Idempotent. The peer's read side
// drains buffered elements and then reports io.EOF.
func (s loopSink[T]) Close() error {
	s.closed.CompareAndSwap(0, 1)
	return nil
}

// loopSource is the read side of one loopback direction.
type loopSource[T any] struct {
	ring   *lfq.SPSC[any]
	closed *atomix.Uint32
}

// Next dequeues the next element from the direction's ring.
// Non-blocking: returns iox.ErrWouldBlock when the ring is empty and
// io.EOF once the peer closed the direction and the ring is drained.
func (s loopSource[T]) Next() (T, error) {
	v, err := s.ring.Dequeue()
	if err == nil {
		return v.(T), nil
	}
	var zero T
	if s.closed.Load() != 0 {
		// recheck after the acquire load: sends that happened before
		// Close are visible now
		if v, err = s.ring.Dequeue(); err == nil {
			return v.(T), nil
		}
		return zero, io.EOF
	}
	return zero, err
}

// Loopback creates a connected pair of in-process exchanges backed by
// bounded lock-free SPSC rings from lfq, one ring per direction. What
// one side writes, the other reads. A capacity of zero or less uses
// the default.
//
// Each direction supports exactly one producer and one consumer.
// Closing a side's write sink via CloseWrite ends the peer's read
// source with io.EOF after the ring drains.
func Loopback[A, B any](capacity int) (Exchange[A, B], Exchange[B, A]) {
	if capacity <= 0 {
		capacity = loopbackCapacity
	}
	pair := &duplexPair{}
	pair.dataAB.Init(capacity)
	pair.dataBA.Init(capacity)

	a := Exchange[A, B]{
		Read:  loopSource[A]{ring: &pair.dataBA, closed: &pair.baClosed},
		Write: loopSink[B]{ring: &pair.dataAB, slot: &pair.abSlot, closed: &pair.abClosed},
	}
	b := Exchange[B, A]{
		Read:  loopSource[B]{ring: &pair.dataAB, closed: &pair.abClosed},
		Write: loopSink[A]{ring: &pair.dataBA, slot: &pair.baSlot, closed: &pair.baClosed},
	}
	return a, b
}

// CloseWrite closes the exchange's write side if it supports closing,
// reporting io.EOF to the peer once buffered elements drain. Sinks
// without an io.Closer are left untouched and nil is returned; note
// that MapW and PipeW wrap the write side and do not forward Close.
func CloseWrite[I, O any](x Exchange[I, O]) error {
	c, ok := x.Write.(io.Closer)
	if !ok {
		return nil
	}
	return c.Close()
}
