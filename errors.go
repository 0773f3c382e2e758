// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import "errors"

// ErrClosed is returned by Enqueue and Dequeue after Close, and by
// writes on a closed loopback direction.
var ErrClosed = errors.New("exch: closed")

// errHalt signals that an await observed an exhausted side or a push
// hit a closed queue: the decision cannot make further progress and
// the merge completes normally.
var errHalt = errors.New("exch: halt")

// ReadError is the terminal failure of a merge whose inbound or
// auxiliary sequence failed, including transducer and sub-sequence
// failures on the read path.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return "exch: read: " + e.Err.Error() }

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError is the terminal failure of a merge whose sink failed
// during drain, including transducer failures on the write path.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "exch: write: " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

// DecisionError is the terminal failure of a merge whose decision
// raised an error, via [Fail] or a classifier function.
type DecisionError struct {
	Err error
}

func (e *DecisionError) Error() string { return "exch: decision: " + e.Err.Error() }

func (e *DecisionError) Unwrap() error { return e.Err }
