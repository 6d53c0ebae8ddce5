// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"fmt"

	"github.com/pkg/errors"
)

// Bits is an append-only bit sequence packed MSB first.
// The zero value is an empty sequence ready to use.
type Bits struct {
	b    []byte
	nbit int
}

// NewBits returns Bits with enough capacity for a QR code of the
// given version.
func NewBits(v Version) *Bits {
	return &Bits{b: make([]byte, 0, v.RawBytes())}
}

func (b *Bits) Reset() {
	b.b = b.b[:0]
	b.nbit = 0
}

// Bits returns the length of b in bits.
func (b *Bits) Bits() int {
	return b.nbit
}

// Bytes returns the packed bytes of b.  It panics if the length of b
// is not a multiple of 8.
func (b *Bits) Bytes() []byte {
	if b.nbit%8 != 0 {
		panic("qr: fractional byte")
	}
	return b.b
}

// Bit returns bit i of b as 0 or 1.
func (b *Bits) Bit(i int) byte {
	if i < 0 || i >= b.nbit {
		panic(fmt.Sprintf("qr: bit index %d out of range [0:%d]",
			i, b.nbit))
	}
	return b.b[i>>3] >> (7 &^ i) & 1
}

// Write appends the n low-order bits of v to b, most significant bit
// first.  n must be between 0 and 31 and v must be less than 1<<n;
// Write panics otherwise.
func (b *Bits) Write(v uint32, n int) {
	if n < 0 || n > 31 || v>>n != 0 {
		panic(fmt.Sprintf("qr: value %#x does not fit in %d bits", v, n))
	}
	b.write(v, n)
}

// Append is like Write but returns ErrBitLength instead of panicking.
func (b *Bits) Append(v uint32, n int) error {
	if n < 0 || n > 31 {
		return errors.Wrapf(ErrBitLength, "%d bits", n)
	}
	if v>>n != 0 {
		return errors.Wrapf(ErrBitLength,
			"value %#x does not fit in %d bits", v, n)
	}
	b.write(v, n)
	return nil
}

// write appends the nbit low-order bits of v to b.  Unlike Write it
// accepts 32 bits and doesn't check v.
func (b *Bits) write(v uint32, nbit int) {
	v <<= 32 - nbit
	if rem := -b.nbit & 7; rem != 0 {
		b.b[len(b.b)-1] |= byte(v >> (32 - rem))
		if rem >= nbit {
			b.nbit += nbit
			return
		}
		b.nbit += rem
		nbit -= rem
		v <<= rem
	}
	for n := nbit; n > 0; n -= 8 {
		b.b = append(b.b, byte(v>>24))
		v <<= 8
	}
	b.nbit += nbit
}

// writeBytes appends s to b, 8 bits per byte.
func (b *Bits) writeBytes(s []byte) {
	if b.nbit&7 == 0 {
		b.b = append(b.b, s...)
		b.nbit += len(s) * 8
		return
	}
	for ; len(s) >= 4; s = s[4:] {
		v := uint32(s[0])<<24 | uint32(s[1])<<16 |
			uint32(s[2])<<8 | uint32(s[3])
		b.write(v, 32)
	}
	for _, c := range s {
		b.write(uint32(c), 8)
	}
}

// WriteBits appends the contents of o to b.
func (b *Bits) WriteBits(o *Bits) {
	full := o.nbit >> 3
	b.writeBytes(o.b[:full])
	if rem := o.nbit & 7; rem != 0 {
		b.write(uint32(o.b[full]>>(8-rem)), rem)
	}
}

// PadTo adds up to 4 terminator bits to b, pads it with zero bits to
// a byte boundary and fills it up to n bits with alternating 0xec and
// 0x11 bytes.  n must be a multiple of 8 not less than the length
// of b.
func (b *Bits) PadTo(n int) {
	if b.nbit > n || n%8 != 0 {
		panic("qr: too much data")
	}
	b.write(0, min(4, n-b.nbit))
	b.write(0, -b.nbit&7)
	for pad := byte(0xec); b.nbit < n; pad ^= 0xec ^ 0x11 {
		b.b = append(b.b, pad)
		b.nbit += 8
	}
}

// BitStream reads bits from the underlying buffer.
type BitStream struct {
	b   []byte
	pos int
}

// NewBitStream returns a BitStream reading from b.
func NewBitStream(b []byte) BitStream { return BitStream{b: b} }

// Bytes returns the data underlying s.
func (s *BitStream) Bytes() []byte { return s.b }

// Next returns the next bit from s as 0 or 1.
// Past end of buffer Next returns 0.
func (s *BitStream) Next() byte {
	var b byte
	if i := s.pos >> 3; i < len(s.b) {
		b = s.b[i] >> (7 &^ s.pos) & 1
		s.pos++
	}
	return b
}
