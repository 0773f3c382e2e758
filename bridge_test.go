// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch_test

import (
	"testing"

	"code.hybscloud.com/exch"
	"code.hybscloud.com/kont"
)

// TestReifyContToExpr builds a decision in Cont-world, reifies it and
// drives the resulting Expr through FlowExpr.
//
// !7.yield("out").end
func TestReifyContToExpr(t *testing.T) {
	sink := &recordSink[int]{}
	x := exch.Exchange[int, int]{Read: exch.Never[int](), Write: sink}
	y := exch.PushThen(7, exch.YieldThen("out", exch.Halt("end")))
	m := exch.FlowExpr[string](x, 0, exch.SourceOf[struct{}](), exch.Reify(y))

	out := collectBudget[string](t, m, 64)
	if len(out) != 1 || out[0] != "out" {
		t.Fatalf("outputs = %v, want [out]", out)
	}
	if len(sink.got) != 1 || sink.got[0] != 7 {
		t.Fatalf("sink got %v, want [7]", sink.got)
	}
	r, ok := m.Result()
	if !ok || r != "end" {
		t.Fatalf("result = %q, %v, want end, true", r, ok)
	}
}

// TestReflectExprToCont builds a decision in Expr-world, reflects it
// and drives the resulting Eff through Flow.
//
// !7.yield("hi").end
func TestReflectExprToCont(t *testing.T) {
	sink := &recordSink[int]{}
	x := exch.Exchange[int, int]{Read: exch.Never[int](), Write: sink}
	y := exch.ExprPushThen(7, exch.ExprYieldThen("hi", exch.ExprHalt("done")))
	m := exch.Flow[string](x, 0, exch.SourceOf[struct{}](), exch.Reflect(y))

	out := collectBudget[string](t, m, 64)
	if len(out) != 1 || out[0] != "hi" {
		t.Fatalf("outputs = %v, want [hi]", out)
	}
	if len(sink.got) != 1 || sink.got[0] != 7 {
		t.Fatalf("sink got %v, want [7]", sink.got)
	}
	r, ok := m.Result()
	if !ok || r != "done" {
		t.Fatalf("result = %q, %v, want done, true", r, ok)
	}
}

// TestRoundTripReifyReflect converts Cont to Expr and back and checks
// the decision still behaves the same.
func TestRoundTripReifyReflect(t *testing.T) {
	x := exch.Exchange[int, int]{Read: exch.Never[int](), Write: &recordSink[int]{}}
	y := exch.YieldThen(1, exch.YieldThen(2, exch.Halt("fin")))
	m := exch.Flow[int](x, 0, exch.SourceOf[struct{}](), exch.Reflect(exch.Reify(y)))

	out := collectBudget[int](t, m, 64)
	if len(out) != 2 || out[0] != 1 || out[1] != 2 {
		t.Fatalf("outputs = %v, want [1 2]", out)
	}
	r, ok := m.Result()
	if !ok || r != "fin" {
		t.Fatalf("result = %q, %v, want fin, true", r, ok)
	}
}

// TestRoundTripReflectReify converts Expr to Cont and back, reading an
// auxiliary element through the converted decision.
func TestRoundTripReflectReify(t *testing.T) {
	x := exch.Exchange[int, int]{Read: exch.Never[int](), Write: &recordSink[int]{}}
	y := exch.ExprAwaitRBind[string](func(s string) kont.Expr[string] {
		return exch.ExprYieldThen(s+"!", exch.ExprHalt("ok"))
	})
	m := exch.FlowExpr[string](x, 0, exch.SourceOf("ping"), exch.Reify(exch.Reflect(y)))

	out := collectBudget[string](t, m, 64)
	if len(out) != 1 || out[0] != "ping!" {
		t.Fatalf("outputs = %v, want [ping!]", out)
	}
	r, ok := m.Result()
	if !ok || r != "ok" {
		t.Fatalf("result = %q, %v, want ok, true", r, ok)
	}
}
