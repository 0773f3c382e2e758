// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exch

import (
	"io"

	"code.hybscloud.com/iox"
)

// Collect drains a source into a slice.
// Blocks on iox.ErrWouldBlock via adaptive backoff (iox.Backoff),
// without spawning goroutines or creating channels. Returns the
// elements collected before io.EOF, or the elements up to the first
// failure together with that error.
func Collect[T any](src Source[T]) ([]T, error) {
	var out []T
	var bo iox.Backoff
	for {
		v, err := src.Next()
		switch {
		case err == nil:
			out = append(out, v)
			bo.Reset()
		case err == io.EOF:
			return out, nil
		case iox.IsWouldBlock(err):
			bo.Wait()
		default:
			return out, err
		}
	}
}

// Feed forwards every element of src to dst, then flushes dst if it
// implements Flusher. Blocks on iox.ErrWouldBlock via adaptive
// backoff (iox.Backoff), without spawning goroutines or creating
// channels. Returns the first failure from either side.
func Feed[T any](src Source[T], dst Sink[T]) error {
	var bo iox.Backoff
	var pending T
	hasPending := false
	for {
		if hasPending {
			if err := dst.Send(pending); err != nil {
				if iox.IsWouldBlock(err) {
					bo.Wait()
					continue
				}
				return err
			}
			var zero T
			pending = zero
			hasPending = false
			bo.Reset()
			continue
		}
		v, err := src.Next()
		if err == nil {
			pending = v
			hasPending = true
			bo.Reset()
			continue
		}
		if err == io.EOF {
			break
		}
		if iox.IsWouldBlock(err) {
			bo.Wait()
			continue
		}
		return err
	}
	f, ok := dst.(Flusher)
	if !ok {
		return nil
	}
	for {
		err := f.Flush()
		if err == nil {
			return nil
		}
		if !iox.IsWouldBlock(err) {
			return err
		}
		bo.Wait()
	}
}
