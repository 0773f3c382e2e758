// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import (
	"io"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// flowContext holds the input and output ports of a running merge.
// The poll functions are non-blocking: they return iox.ErrWouldBlock
// when a port has nothing ready.
type flowContext struct {
	depth func() (int, error)
	read  func() (any, error)
	aux   func() (any, error)
	push  func(any) error

	// staged Yield element, surfaced by Merge.Next before the next
	// decision step
	out    any
	hasOut bool

	// alternation cursors for fair polling
	leftFlip bool
	sideFlip bool

	// exhausted ports keep their done flag; a done port never halts
	// the decision while a sibling port can still deliver
	readDone  bool
	depthDone bool
	auxDone   bool
}

// flowDispatcher is the structural interface for flow operations.
// DispatchFlow is non-blocking: it returns iox.ErrWouldBlock at the
// I/O boundary when no input is ready, and errHalt when the awaited
// inputs are exhausted.
type flowDispatcher interface {
	DispatchFlow(ctx *flowContext) (kont.Resumed, error)
}

// pollLeftRead polls the exchange's read side for the Right arm of
// the left input.
func pollLeftRead[I any](ctx *flowContext) (kont.Resumed, error) {
	if ctx.readDone {
		return nil, iox.ErrWouldBlock
	}
	v, err := ctx.read()
	if err == nil {
		return kont.Right[int, I](v.(I)), nil
	}
	if err == io.EOF {
		ctx.readDone = true
		return nil, iox.ErrWouldBlock
	}
	if iox.IsWouldBlock(err) {
		return nil, err
	}
	return nil, &ReadError{Err: err}
}

// pollLeftDepth polls the write-side depth feed for the Left arm of
// the left input.
func pollLeftDepth[I any](ctx *flowContext) (kont.Resumed, error) {
	if ctx.depthDone {
		return nil, iox.ErrWouldBlock
	}
	d, err := ctx.depth()
	if err == nil {
		return kont.Left[int, I](d), nil
	}
	if err == io.EOF {
		ctx.depthDone = true
		return nil, iox.ErrWouldBlock
	}
	if iox.IsWouldBlock(err) {
		return nil, err
	}
	return nil, &ReadError{Err: err}
}

// pollLeft races the depth feed against the read side, alternating
// which goes first so a busy depth feed cannot starve reads. Halts
// once the read side is exhausted and no depth change is pending.
func pollLeft[I any](ctx *flowContext) (kont.Resumed, error) {
	first, second := pollLeftDepth[I], pollLeftRead[I]
	if ctx.leftFlip {
		first, second = second, first
	}
	ctx.leftFlip = !ctx.leftFlip
	v, err := first(ctx)
	if err == nil {
		return v, nil
	}
	if !iox.IsWouldBlock(err) {
		return nil, err
	}
	v, err = second(ctx)
	if err == nil {
		return v, nil
	}
	if !iox.IsWouldBlock(err) {
		return nil, err
	}
	if ctx.readDone {
		return nil, errHalt
	}
	return nil, iox.ErrWouldBlock
}

// pollAux polls the auxiliary source. Halts once it is exhausted.
func pollAux(ctx *flowContext) (any, error) {
	if ctx.auxDone {
		return nil, errHalt
	}
	v, err := ctx.aux()
	if err == nil {
		return v, nil
	}
	if err == io.EOF {
		ctx.auxDone = true
		return nil, errHalt
	}
	if iox.IsWouldBlock(err) {
		return nil, err
	}
	return nil, &ReadError{Err: err}
}

// pollAny races the left input pair against the auxiliary source,
// alternating sides across calls. A side that reports halt is skipped
// while the other can still deliver; the race halts only when every
// input is exhausted.
func pollAny[I, A any](ctx *flowContext) (kont.Resumed, error) {
	aux := ctx.sideFlip
	ctx.sideFlip = !ctx.sideFlip
	for i := 0; i < 2; i++ {
		if aux {
			v, err := pollAux(ctx)
			if err == nil {
				return kont.Right[kont.Either[int, I], A](v.(A)), nil
			}
			if err != errHalt && !iox.IsWouldBlock(err) {
				return nil, err
			}
		} else {
			v, err := pollLeft[I](ctx)
			if err == nil {
				return kont.Left[kont.Either[int, I], A](v.(kont.Either[int, I])), nil
			}
			if err != errHalt && !iox.IsWouldBlock(err) {
				return nil, err
			}
		}
		aux = !aux
	}
	if ctx.readDone && ctx.auxDone {
		return nil, errHalt
	}
	return nil, iox.ErrWouldBlock
}

// readAny adapts a typed source to the erased flowContext port.
func readAny[T any](s Source[T]) func() (any, error) {
	return func() (any, error) {
		v, err := s.Next()
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Strategy selects how a merge drains its write queue to the
// exchange's write side.
type Strategy uint8

const (
	// Interleave drains on the calling goroutine: each Next call
	// advances the decision and forwards queued writes, spawning no
	// goroutines and creating no channels. The default.
	Interleave Strategy = iota
	// Spawn forwards queued writes on a dedicated goroutine with
	// adaptive backoff (iox.Backoff), decoupling a slow write side
	// from the consumer's polling cadence. The writer may complete an
	// in-flight send after the merge terminates.
	Spawn
)

// Drain loop states published by the Spawn writer goroutine.
const (
	drainRunning uint32 = iota
	drainDone
	drainFailed
)

// Merge is a running flow: a decision driven over an exchange's
// inputs, emitting downstream elements through Source[B].
//
// Next is non-blocking and single-consumer. It returns
// iox.ErrWouldBlock when no element is ready yet, io.EOF after the
// decision has halted and queued writes are drained, and a terminal
// *ReadError, *WriteError, or *DecisionError on failure. Terminal
// results are sticky.
type Merge[B, R any] struct {
	ctx       flowContext
	advance   func() error
	discard   func()
	cleanup   func()
	drainStep func() error

	strategy Strategy
	serial   Serial

	driverDone bool
	drained    bool
	term       error
	result     R
	hasResult  bool

	stop       atomix.Uint32
	canceled   atomix.Uint32
	closed     atomix.Uint32
	drainState atomix.Uint32
	drainErr   error
}

// FlowExpr starts an Expr-world decision over the exchange.
// See Flow.
func FlowExpr[B, I, O, A, R any](x Exchange[I, O], capacity int, aux Source[A], y kont.Expr[R], strategy ...Strategy) *Merge[B, R] {
	q := NewQueue[O](capacity)

	m := &Merge[B, R]{serial: nextSerial()}
	if len(strategy) > 0 {
		m.strategy = strategy[0]
	}
	m.ctx.depth = q.Depth().Next
	m.ctx.read = readAny[I](x.Read)
	m.ctx.aux = readAny[A](aux)
	m.ctx.push = func(v any) error {
		return q.Enqueue(v.(O))
	}
	m.cleanup = q.Close

	result, susp := kont.StepExpr(y)
	m.advance = func() error {
		if fop, ok := susp.Op().(flowDispatcher); ok {
			v, err := fop.DispatchFlow(&m.ctx)
			if err != nil {
				return err
			}
			result, susp = susp.Resume(v)
			if susp == nil {
				m.result = result
				m.hasResult = true
				return errHalt
			}
			return nil
		}
		if eop, ok := susp.Op().(interface {
			DispatchError(ctx *kont.ErrorContext[error]) (kont.Resumed, bool)
		}); ok {
			var ectx kont.ErrorContext[error]
			v, _ := eop.DispatchError(&ectx)
			if ectx.HasErr {
				susp.Discard()
				susp = nil
				return &DecisionError{Err: ectx.Err}
			}
			result, susp = susp.Resume(v)
			if susp == nil {
				m.result = result
				m.hasResult = true
				return errHalt
			}
			return nil
		}
		panic("exch: unhandled effect in merge")
	}
	m.discard = func() {
		if susp != nil {
			susp.Discard()
			susp = nil
		}
	}
	if susp == nil {
		m.result = result
		m.hasResult = true
		m.driverDone = true
		m.closeOnce()
	}

	w := x.Write
	var pending O
	hasPending := false
	flushed := false
	m.drainStep = func() error {
		if hasPending {
			if err := w.Send(pending); err != nil {
				if iox.IsWouldBlock(err) {
					return err
				}
				return &WriteError{Err: err}
			}
			var zero O
			pending = zero
			hasPending = false
			return nil
		}
		v, err := q.Dequeue()
		if err == ErrClosed {
			if !flushed {
				if f, ok := w.(Flusher); ok {
					if ferr := f.Flush(); ferr != nil {
						if iox.IsWouldBlock(ferr) {
							return ferr
						}
						return &WriteError{Err: ferr}
					}
				}
				flushed = true
			}
			return ErrClosed
		}
		if err != nil {
			return err
		}
		pending = v
		hasPending = true
		if serr := w.Send(pending); serr != nil {
			if iox.IsWouldBlock(serr) {
				// the dequeue made progress; retry the send next call
				return nil
			}
			return &WriteError{Err: serr}
		}
		var zero O
		pending = zero
		hasPending = false
		return nil
	}

	if m.strategy == Spawn {
		go m.drainLoop()
	}
	return m
}

// Flow starts a decision over the exchange: y awaits the left inputs
// with AwaitL (depth changes of the write queue raced against reads),
// awaits the auxiliary source with AwaitR, writes to the exchange
// with Push through a queue of the given capacity, and emits
// downstream elements with Yield.
//
// The merge owns the write queue: it closes it exactly once when the
// decision halts, fails, or is canceled, and keeps forwarding already
// queued writes to the exchange after a normal halt.
//
// The yield element type B cannot be inferred and is named
// explicitly: Flow[B](x, capacity, aux, y).
func Flow[B, I, O, A, R any](x Exchange[I, O], capacity int, aux Source[A], y kont.Eff[R], strategy ...Strategy) *Merge[B, R] {
	return FlowExpr[B](x, capacity, aux, kont.Reify(y), strategy...)
}

// Next returns the next downstream element.
// Non-blocking: iox.ErrWouldBlock means no element is ready yet and
// the caller should retry after backing off.
func (m *Merge[B, R]) Next() (B, error) {
	var zero B
	for {
		if m.term != nil {
			return zero, m.term
		}
		if m.canceled.Load() != 0 {
			m.abort(nil)
			return zero, m.term
		}
		progress := false
		if !m.driverDone {
			switch err := m.advance(); {
			case err == nil:
				progress = true
			case err == errHalt:
				m.driverDone = true
				m.discard()
				m.closeOnce()
				progress = true
			case iox.IsWouldBlock(err):
			default:
				m.abort(err)
				return zero, m.term
			}
			if m.ctx.hasOut {
				v := m.ctx.out.(B)
				m.ctx.out = nil
				m.ctx.hasOut = false
				return v, nil
			}
		}
		if m.strategy == Spawn {
			switch m.drainState.Load() {
			case drainDone:
				m.drained = true
			case drainFailed:
				m.abort(m.drainErr)
				return zero, m.term
			}
		} else if !m.drained {
			switch err := m.drainStep(); {
			case err == nil:
				progress = true
			case err == ErrClosed:
				m.drained = true
				progress = true
			case iox.IsWouldBlock(err):
			default:
				m.abort(err)
				return zero, m.term
			}
		}
		if m.driverDone && m.drained {
			m.term = io.EOF
			return zero, io.EOF
		}
		if !progress {
			return zero, iox.ErrWouldBlock
		}
	}
}

// drainLoop is the Spawn writer: it forwards queued writes with
// adaptive backoff until the queue is closed and drained, a send
// fails, or the merge is stopped.
func (m *Merge[B, R]) drainLoop() {
	var bo iox.Backoff
	for {
		if m.stop.Load() != 0 {
			m.drainState.Store(drainDone)
			return
		}
		switch err := m.drainStep(); {
		case err == nil:
			bo.Reset()
		case err == ErrClosed:
			m.drainState.Store(drainDone)
			return
		case iox.IsWouldBlock(err):
			bo.Wait()
		default:
			// publish the error before the state transition
			m.drainErr = err
			m.drainState.Store(drainFailed)
			return
		}
	}
}

// abort terminates the merge: the suspended decision is released, the
// write queue is closed, and the terminal error is pinned. A nil err
// pins io.EOF (cancellation is termination, not failure).
func (m *Merge[B, R]) abort(err error) {
	m.discard()
	m.driverDone = true
	m.stop.Store(1)
	m.closeOnce()
	m.drained = true
	if err != nil {
		m.term = err
	} else {
		m.term = io.EOF
	}
}

// closeOnce closes the write queue exactly once across every
// termination path.
func (m *Merge[B, R]) closeOnce() {
	if m.closed.CompareAndSwap(0, 1) {
		m.cleanup()
	}
}

// Cancel stops the merge from any goroutine. The consumer's next Next
// call releases the suspended decision and reports io.EOF. Queued
// writes not yet forwarded are dropped.
func (m *Merge[B, R]) Cancel() {
	m.canceled.Store(1)
	m.stop.Store(1)
	m.closeOnce()
}

// Result returns the decision's result. The bool reports whether the
// decision ran to completion: false while it is still running and
// when it was halted by an exhausted input, failed, or canceled.
func (m *Merge[B, R]) Result() (R, bool) {
	return m.result, m.hasResult
}

// Serial returns the serial number assigned to this merge.
func (m *Merge[B, R]) Serial() Serial {
	return m.serial
}
