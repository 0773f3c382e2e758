// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

// Exchange pairs the two directions of a bidirectional conduit:
// inbound values of type I read from a resource and outbound values of
// type O written to it.
//
// An Exchange is an immutable value. Combinators return new exchanges
// and never perform I/O themselves; reading and writing happen only
// when the underlying Source and Sink are driven, typically by Flow,
// Run, or RunWriter.
type Exchange[I, O any] struct {
	Read  Source[I]
	Write Sink[O]
}

// MapO returns an exchange with every inbound value transformed by f.
func MapO[I, I2, O any](x Exchange[I, O], f func(I) I2) Exchange[I2, O] {
	return Exchange[I2, O]{
		Read:  MapSource(x.Read, f),
		Write: x.Write,
	}
}

// MapW returns an exchange accepting outbound values of type O2,
// transformed by f before reaching the underlying sink.
func MapW[O2, I, O any](x Exchange[I, O], f func(O2) O) Exchange[I, O2] {
	return Exchange[I, O2]{
		Read:  x.Read,
		Write: Contramap(x.Write, f),
	}
}

// PipeO returns an exchange with the read side passed through
// transducer t, preserving order.
func PipeO[I, I2, O any](x Exchange[I, O], t Transducer[I, I2]) Exchange[I2, O] {
	return Exchange[I2, O]{
		Read:  PipeSource(x.Read, t),
		Write: x.Write,
	}
}

// PipeW returns an exchange with the write side passed through
// transducer t: outbound values are expanded in order before reaching
// the underlying sink.
func PipeW[O2, I, O any](x Exchange[I, O], t Transducer[O2, O]) Exchange[I, O2] {
	return Exchange[I, O2]{
		Read:  x.Read,
		Write: PipeSink(x.Write, t),
	}
}

// PipeBoth returns an exchange with both directions passed through
// transducers: r on the read side, w on the write side.
func PipeBoth[I2, O2, I, O any](x Exchange[I, O], r Transducer[I, I2], w Transducer[O2, O]) Exchange[I2, O2] {
	return PipeW(PipeO(x, r), w)
}

// Through returns an exchange whose read side is the in-order
// concatenation of the sub-sequences produced by ch for each inbound
// value. A failure of a sub-sequence fails the read side.
func Through[I, I2, O any](x Exchange[I, O], ch func(I) Source[I2]) Exchange[I2, O] {
	return Exchange[I2, O]{
		Read:  FlatMapSource(x.Read, ch),
		Write: x.Write,
	}
}
