// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// ErrDataTooLong is matched by *CapacityError.
var ErrDataTooLong = errors.New("qr: data too long")

// CapacityError reports data that does not fit a QR code.
type CapacityError struct {
	Version  Version // largest version tried
	Level    Level   // error correction level
	Bits     int     // encoded data length in bits
	Capacity int     // data capacity of Version at Level in bits
}

// Over returns the number of bits exceeding the capacity.
func (e *CapacityError) Over() int { return e.Bits - e.Capacity }

func (e *CapacityError) Error() string {
	return fmt.Sprintf("qr: data too long: %d bits exceed the %d-bit "+
		"capacity of version %s at level %s by %d; lower the error "+
		"correction level, raise the maximum version or shorten "+
		"the data", e.Bits, e.Capacity, e.Version, e.Level, e.Over())
}

// Is reports whether target is ErrDataTooLong.
func (e *CapacityError) Is(target error) bool { return target == ErrDataTooLong }

// Encoder encodes a QR code.
type Encoder struct {
	p    *Plan
	b    *Bits
	mask int // -1: lowest penalty
}

// NewEncoder returns an Encoder for the given version and level.
func NewEncoder(version Version, level Level) (*Encoder, error) {
	p, err := NewPlan(version, level)
	if err != nil {
		return nil, err
	}
	return &Encoder{p: p, b: NewBits(version), mask: -1}, nil
}

// SetMask sets the mask pattern to use.  The default, -1, chooses the
// mask with the lowest penalty.
func (e *Encoder) SetMask(mask int) error {
	if mask < -1 || mask > 7 {
		return errors.Wrapf(ErrMask, "mask %d", mask)
	}
	e.mask = mask
	return nil
}

// Write adds segments to e.
func (e *Encoder) Write(segs ...Segment) error {
	for _, s := range segs {
		if err := s.Encode(e.b, e.p.Version); err != nil {
			return err
		}
	}
	return nil
}

// Bits returns the number of data bits written to e.
func (e *Encoder) Bits() int { return e.b.Bits() }

func (e *Encoder) Reset() { e.b.Reset() }

// xor xors a and b into dst.  a and b may not be shorter than dst.
// dst and a or b should not overlap unless they are the same slice.
func xor(dst, a, b []byte) {
	a = a[:len(dst)]
	b = b[:len(dst)]
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// Code returns a QR code containing data written to e, and resets e.
func (e *Encoder) Code() (*Code, error) {
	defer e.b.Reset()
	p := e.p
	if n := e.b.Bits(); n > p.DataBits {
		return nil, &CapacityError{
			Version:  p.Version,
			Level:    p.Level,
			Bits:     n,
			Capacity: p.DataBits,
		}
	}
	e.b.AddCheckBytes(p.Version, p.Level)
	bits := e.b.Permute(p.Version, p.Level)
	// Now we have the checksum bytes and the data bytes.
	// Construct the bitmap consisting of data and checksum bits.
	data := make([]byte, p.Size*p.Stride)
	p.Serialise(bits, data)

	if e.mask >= 0 {
		return p.code(data, e.mask), nil
	}
	// Apply masks to the bitmap to construct the actual codes.
	// Choose the code with the smallest penalty.
	var (
		codes [len(p.Pattern)]*Code
		pen   [len(p.Pattern)]int
		wg    sync.WaitGroup
	)
	for mask := range p.Pattern {
		wg.Add(1)
		go func(mask int) {
			defer wg.Done()
			c := p.code(data, mask)
			codes[mask], pen[mask] = c, c.Penalty()
		}(mask)
	}
	wg.Wait()
	best := 0
	for mask := 1; mask < len(pen); mask++ {
		if pen[mask] < pen[best] {
			best = mask
		}
	}
	return codes[best], nil
}

// code returns the code with data bits masked by mask.
func (p *Plan) code(data []byte, mask int) *Code {
	c := &Code{
		Bitmap:  make([]byte, len(data)),
		Size:    p.Size,
		Stride:  p.Stride,
		Version: p.Version,
		Level:   p.Level,
		Mask:    mask,
	}
	// set bitmap to data bits xor plan bits
	xor(c.Bitmap, data, p.Pattern[mask])
	return c
}

// Encode is a wrapper around Write and Code.
func (e *Encoder) Encode(segs ...Segment) (*Code, error) {
	if err := e.Write(segs...); err != nil {
		e.Reset()
		return nil, err
	}
	return e.Code()
}

// Encode encodes segments using an Encoder with the given version,
// level and mask; a mask of -1 chooses the mask with the lowest
// penalty.
func Encode(version Version, level Level, mask int, segs ...Segment) (*Code, error) {
	e, err := NewEncoder(version, level)
	if err != nil {
		return nil, err
	}
	if err := e.SetMask(mask); err != nil {
		return nil, err
	}
	return e.Encode(segs...)
}
