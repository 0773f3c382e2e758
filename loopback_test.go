// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch_test

import (
	"io"
	"reflect"
	"testing"

	"code.hybscloud.com/exch"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

func TestLoopback(t *testing.T) {
	skipRace(t)
	a, b := exch.Loopback[int, string](4)

	if err := b.Write.Send(7); err != nil {
		t.Fatalf("send: %v", err)
	}
	if v, err := a.Read.Next(); err != nil || v != 7 {
		t.Fatalf("a read got (%d, %v), want (7, nil)", v, err)
	}
	if err := a.Write.Send("hi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if v, err := b.Read.Next(); err != nil || v != "hi" {
		t.Fatalf("b read got (%q, %v), want (%q, nil)", v, err, "hi")
	}

	if _, err := a.Read.Next(); !iox.IsWouldBlock(err) {
		t.Fatalf("empty a read got %v, want ErrWouldBlock", err)
	}
	if _, err := b.Read.Next(); !iox.IsWouldBlock(err) {
		t.Fatalf("empty b read got %v, want ErrWouldBlock", err)
	}
}

func TestLoopbackCapacity(t *testing.T) {
	skipRace(t)
	a, b := exch.Loopback[struct{}, int](2)

	if err := a.Write.Send(1); err != nil {
		t.Fatalf("send 1: %v", err)
	}
	if err := a.Write.Send(2); err != nil {
		t.Fatalf("send 2: %v", err)
	}
	if err := a.Write.Send(3); !iox.IsWouldBlock(err) {
		t.Fatalf("send over capacity got %v, want ErrWouldBlock", err)
	}

	for want := 1; want <= 2; want++ {
		v, err := b.Read.Next()
		if err != nil || v != want {
			t.Fatalf("read got (%d, %v), want (%d, nil)", v, err, want)
		}
	}
	if err := a.Write.Send(3); err != nil {
		t.Fatalf("send after room: %v", err)
	}
}

func TestLoopbackCloseWrite(t *testing.T) {
	skipRace(t)
	a, b := exch.Loopback[int, string](4)

	if err := b.Write.Send(1); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := exch.CloseWrite(b); err != nil {
		t.Fatalf("close write: %v", err)
	}

	// buffered elements drain before the end of the stream
	if v, err := a.Read.Next(); err != nil || v != 1 {
		t.Fatalf("a read got (%d, %v), want (1, nil)", v, err)
	}
	if _, err := a.Read.Next(); err != io.EOF {
		t.Fatalf("a read after close got %v, want io.EOF", err)
	}
	if err := b.Write.Send(2); err != exch.ErrClosed {
		t.Fatalf("send after close got %v, want ErrClosed", err)
	}

	// the other direction is unaffected
	if err := a.Write.Send("x"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if v, err := b.Read.Next(); err != nil || v != "x" {
		t.Fatalf("b read got (%q, %v), want (%q, nil)", v, err, "x")
	}
}

func TestCloseWriteNonCloser(t *testing.T) {
	skipRace(t)
	// sinks without a Close are left untouched
	x := exch.Exchange[int, string]{Write: &recordSink[string]{}}
	if err := exch.CloseWrite(x); err != nil {
		t.Fatalf("got %v, want nil", err)
	}

	// MapW wraps the write side and does not forward Close
	a, _ := exch.Loopback[int, string](4)
	mw := exch.MapW(a, func(i int) string { return "v" })
	if err := exch.CloseWrite(mw); err != nil {
		t.Fatalf("got %v, want nil", err)
	}
	if err := a.Write.Send("still open"); err != nil {
		t.Fatalf("send got %v, underlying sink should stay open", err)
	}
}

func TestLoopbackEcho(t *testing.T) {
	skipRace(t)
	// one side feeds values, the peer echoes every element back
	a, b := exch.Loopback[int, int](4)

	if err := exch.Feed[int](exch.SourceOf(1, 2, 3), a.Write); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if err := exch.CloseWrite(a); err != nil {
		t.Fatalf("close write: %v", err)
	}

	echo := exch.RunWriter(b, func(i int) (kont.Either[int, struct{}], error) {
		return kont.Left[int, struct{}](i), nil
	})
	if got := collectBudget[struct{}](t, echo, 1000); len(got) != 0 {
		t.Fatalf("echo yielded %d elements, want 0", len(got))
	}

	if err := exch.CloseWrite(b); err != nil {
		t.Fatalf("close write: %v", err)
	}
	got, err := exch.Collect(a.Read)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if want := []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Fatalf("echoed got %v, want %v", got, want)
	}
}
