// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch_test

import (
	"testing"

	"code.hybscloud.com/exch"
)

func TestSerialMonotonic(t *testing.T) {
	x := exch.Exchange[int, int]{Read: exch.Never[int](), Write: &recordSink[int]{}}
	m1 := exch.Flow[struct{}](x, 0, exch.SourceOf[struct{}](), exch.Halt(struct{}{}))
	m2 := exch.Flow[struct{}](x, 0, exch.SourceOf[struct{}](), exch.Halt(struct{}{}))
	m3 := exch.Flow[struct{}](x, 0, exch.SourceOf[struct{}](), exch.Halt(struct{}{}))
	s1, s2, s3 := m1.Serial(), m2.Serial(), m3.Serial()
	if s1 >= s2 {
		t.Fatalf("serials not increasing: %d >= %d", s1, s2)
	}
	if s2 >= s3 {
		t.Fatalf("serials not increasing: %d >= %d", s2, s3)
	}
	if s1 != m1.Serial() {
		t.Fatalf("serial changed between calls: %d != %d", s1, m1.Serial())
	}
}
