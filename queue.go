// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import (
	"io"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// segmentCapacity is the ring size for unbounded queue segments.
// 64 amortizes segment allocation against the cost of retiring a
// drained segment.
const segmentCapacity = 64

// Rendezvous handoff states for zero-capacity queues.
const (
	slotEmpty uint32 = iota
	slotOffered
	slotTaken
)

// segment is one ring of an unbounded queue. next is published by the
// producer with a plain write before the nextReady release store; the
// consumer follows it only after an acquire load of nextReady.
type segment[T any] struct {
	ring      lfq.SPSC[T]
	next      *segment[T]
	nextReady atomix.Uint32
}

// Queue is a closable FIFO buffer decoupling a producer task from a
// consumer task. It is safe for exactly one producer and one consumer.
//
// Capacity selects the mode: positive for a bounded lock-free ring,
// zero for synchronous handoff where Enqueue completes only once a
// concurrent Dequeue has taken the value, negative for an unbounded
// chain of ring segments.
//
// Operations are non-blocking and return iox.ErrWouldBlock when the
// queue is full, mid-handoff, or empty. After Close, Enqueue returns
// ErrClosed while Dequeue keeps delivering buffered elements and
// reports ErrClosed only once the queue is drained.
type Queue[T any] struct {
	capacity int
	size     atomix.Uint32
	closed   atomix.Uint32

	// bounded mode
	ring lfq.SPSC[T]

	// unbounded mode: the producer appends at tail, the consumer
	// follows from head via the published next pointers
	head *segment[T]
	tail *segment[T]

	// producer staging cell; the handoff cell in rendezvous mode
	slot  T
	state atomix.Uint32
}

// NewQueue creates a queue with the given capacity: positive bounds
// the buffer at capacity elements, zero gives synchronous handoff,
// negative gives an unbounded queue.
func NewQueue[T any](capacity int) *Queue[T] {
	q := &Queue[T]{capacity: capacity}
	switch {
	case capacity > 0:
		q.ring.Init(capacity)
	case capacity < 0:
		seg := &segment[T]{}
		seg.ring.Init(segmentCapacity)
		q.head = seg
		q.tail = seg
	}
	return q
}

// Enqueue adds v to the queue.
// Returns iox.ErrWouldBlock when the queue cannot accept the value yet
// and ErrClosed after Close. In synchronous-handoff mode the first
// call offers the value and returns iox.ErrWouldBlock; retries must
// pass the same value and complete once the consumer has taken it.
func (q *Queue[T]) Enqueue(v T) error {
	if q.closed.Load() != 0 {
		if q.capacity == 0 {
			return q.settleOffer()
		}
		return ErrClosed
	}
	switch {
	case q.capacity > 0:
		q.slot = v
		if err := q.ring.Enqueue(&q.slot); err != nil {
			return err
		}
		q.size.Add(1)
		return nil
	case q.capacity < 0:
		q.slot = v
		if err := q.tail.ring.Enqueue(&q.slot); err == nil {
			q.size.Add(1)
			return nil
		}
		seg := &segment[T]{}
		seg.ring.Init(segmentCapacity)
		if err := seg.ring.Enqueue(&q.slot); err != nil {
			return err
		}
		q.tail.next = seg
		q.tail.nextReady.Store(1)
		q.tail = seg
		q.size.Add(1)
		return nil
	default:
		return q.enqueueRendezvous(v)
	}
}

// enqueueRendezvous implements zero-capacity handoff on the producer
// side. An offer parks the value in the shared cell; the completing
// retry observes slotTaken.
func (q *Queue[T]) enqueueRendezvous(v T) error {
	switch q.state.Load() {
	case slotEmpty:
		q.slot = v
		q.state.Store(slotOffered)
		q.size.Add(1)
		return iox.ErrWouldBlock
	case slotOffered:
		return iox.ErrWouldBlock
	default:
		// slotTaken: the consumer took the offered value
		var zero T
		q.slot = zero
		q.state.Store(slotEmpty)
		return nil
	}
}

// settleOffer resolves a pending rendezvous offer against a closed
// queue: a still-offered value is reclaimed, a taken value completes.
func (q *Queue[T]) settleOffer() error {
	if q.state.CompareAndSwap(slotOffered, slotEmpty) {
		var zero T
		q.slot = zero
		q.size.Add(^uint32(0))
		return ErrClosed
	}
	if q.state.CompareAndSwap(slotTaken, slotEmpty) {
		var zero T
		q.slot = zero
		return nil
	}
	return ErrClosed
}

// Dequeue removes and returns the oldest element.
// Returns iox.ErrWouldBlock when the queue is empty and ErrClosed once
// it is closed and drained. Buffered elements stay dequeueable after
// Close.
func (q *Queue[T]) Dequeue() (T, error) {
	switch {
	case q.capacity > 0:
		v, err := q.ring.Dequeue()
		if err == nil {
			q.size.Add(^uint32(0))
			return v, nil
		}
		var zero T
		if q.closed.Load() != 0 {
			// recheck after the acquire load: enqueues that happened
			// before Close are visible now
			if v, err = q.ring.Dequeue(); err == nil {
				q.size.Add(^uint32(0))
				return v, nil
			}
			return zero, ErrClosed
		}
		return zero, err
	case q.capacity < 0:
		return q.dequeueUnbounded()
	default:
		return q.dequeueRendezvous()
	}
}

func (q *Queue[T]) dequeueUnbounded() (T, error) {
	for {
		v, err := q.head.ring.Dequeue()
		if err == nil {
			q.size.Add(^uint32(0))
			return v, nil
		}
		if q.head.nextReady.Load() != 0 {
			// recheck closes the publish race, then retire the segment
			if v, err = q.head.ring.Dequeue(); err == nil {
				q.size.Add(^uint32(0))
				return v, nil
			}
			q.head = q.head.next
			continue
		}
		var zero T
		if q.closed.Load() != 0 {
			if v, err = q.head.ring.Dequeue(); err == nil {
				q.size.Add(^uint32(0))
				return v, nil
			}
			if q.head.nextReady.Load() != 0 {
				q.head = q.head.next
				continue
			}
			return zero, ErrClosed
		}
		return zero, err
	}
}

// dequeueRendezvous implements zero-capacity handoff on the consumer
// side: an offered value is taken, completing the producer's pending
// Enqueue on its next retry. The slot is read before the claiming
// compare-and-swap: losing the swap to a close-side reclaim means the
// value was never delivered, so the read copy is discarded.
func (q *Queue[T]) dequeueRendezvous() (T, error) {
	var zero T
	if q.state.Load() == slotOffered {
		v := q.slot
		if q.state.CompareAndSwap(slotOffered, slotTaken) {
			q.size.Add(^uint32(0))
			return v, nil
		}
	}
	if q.closed.Load() != 0 {
		return zero, ErrClosed
	}
	return zero, iox.ErrWouldBlock
}

// Len reports the number of buffered elements. In synchronous-handoff
// mode an offered value counts until it is taken.
func (q *Queue[T]) Len() int {
	return int(q.size.Load())
}

// Close marks the queue closed. Idempotent: only the first call
// transitions the state. The producer observes ErrClosed on its next
// Enqueue; the consumer drains remaining buffered elements and then
// observes ErrClosed.
func (q *Queue[T]) Close() {
	q.closed.CompareAndSwap(0, 1)
}

// Closed reports whether Close has been called.
func (q *Queue[T]) Closed() bool {
	return q.closed.Load() != 0
}

// Elements returns the dequeue side as a source: each Next dequeues
// one element, ending with io.EOF once the queue is closed and
// drained.
func (q *Queue[T]) Elements() Source[T] {
	return SourceFunc[T](func() (T, error) {
		v, err := q.Dequeue()
		if err == ErrClosed {
			var zero T
			return zero, io.EOF
		}
		return v, err
	})
}

// Depth returns the queue's size as a source of change events: the
// first Next reports the current size, later calls report each size
// observed different from the last report. The sequence ends with
// io.EOF once the queue is closed and its size has settled.
func (q *Queue[T]) Depth() Source[int] {
	last := -1
	return SourceFunc[int](func() (int, error) {
		cur := q.Len()
		if cur != last {
			last = cur
			return cur, nil
		}
		if q.Closed() {
			return 0, io.EOF
		}
		return 0, iox.ErrWouldBlock
	})
}
