// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"github.com/miataru/qr/gf256"
	"github.com/pkg/errors"
)

// A Plan describes how to construct a QR code
// with a specific version and level.
type Plan struct {
	Version Version // QR code version
	Level   Level   // QR error correction Level

	DataBits int // number of data bits
	Size     int // number of modules on a side
	Stride   int // number of bytes per bitmap row

	Map     []byte    // module map: 0 is data or checksum, 1 is other
	Pattern [8][]byte // function patterns and format bits, with mask
}

// NewPlan returns a Plan for a QR code with the given version and level.
// Plans are not cached; each call builds a new one.
func NewPlan(version Version, level Level) (*Plan, error) {
	if !version.Valid() {
		return nil, errors.Wrapf(ErrVersion, "version %d", version)
	}
	if !level.Valid() {
		return nil, errors.Wrapf(ErrLevel, "level %d", level)
	}
	p := vplan(version, level)
	for mask := range p.Pattern {
		fplan(formatBits(level, mask), mask, p)
		mplan(mask, p)
	}
	return p, nil
}

// setBit sets or clears the module at x, y in bm.
func setBit(bm []byte, stride, x, y int, dark bool) {
	off, bit := y*stride+x>>3, byte(0x80)>>(x&7)
	if dark {
		bm[off] |= bit
	} else {
		bm[off] &^= bit
	}
}

// set marks the module at x, y as a function module with the given
// colour in the base pattern.
func (p *Plan) set(x, y int, dark bool) {
	setBit(p.Map, p.Stride, x, y, true)
	setBit(p.Pattern[0], p.Stride, x, y, dark)
}

// vplan creates a Plan for the given version without format bits
// and masks.  All eight patterns are copies of the base pattern.
func vplan(v Version, l Level) *Plan {
	siz := v.Size()
	stride := (siz + 7) >> 3
	p := &Plan{
		Version:  v,
		Level:    l,
		DataBits: v.DataBits(l),
		Size:     siz,
		Stride:   stride,
	}
	sz := stride * siz
	bitmap := make([]byte, sz*(len(p.Pattern)+1))
	p.Map, bitmap = bitmap[:sz], bitmap[sz:]
	p.Pattern[0] = bitmap[:sz]

	// Mask ends of rows.
	for y := 0; y < siz; y++ {
		for x := siz; x < stride*8; x++ {
			p.set(x, y, false)
		}
	}

	// Timing patterns (overwritten by boxes).
	for i := 0; i < siz; i++ {
		p.set(6, i, i&1 == 0)
		p.set(i, 6, i&1 == 0)
	}

	// Position boxes with their separators.
	for _, c := range [3][2]int{{3, 3}, {siz - 4, 3}, {3, siz - 4}} {
		for dy := -4; dy <= 4; dy++ {
			for dx := -4; dx <= 4; dx++ {
				x, y := c[0]+dx, c[1]+dy
				if x < 0 || x >= siz || y < 0 || y >= siz {
					continue
				}
				d := max(abs(dx), abs(dy))
				p.set(x, y, d != 2 && d != 4)
			}
		}
	}

	// Alignment boxes, except where they would overlap position boxes.
	pos := v.AlignmentPositions()
	last := len(pos) - 1
	for i, x := range pos {
		for j, y := range pos {
			if i == 0 && (j == 0 || j == last) || i == last && j == 0 {
				continue
			}
			alignBox(p, x, y)
		}
	}

	// Format areas, filled in by fplan, and one lonely black module.
	for i := 0; i < 9; i++ {
		if i != 6 {
			p.set(8, i, false)
			p.set(i, 8, false)
		}
	}
	for i := 0; i < 8; i++ {
		p.set(siz-1-i, 8, false)
	}
	for i := 0; i < 7; i++ {
		p.set(8, siz-1-i, false)
	}
	p.set(8, siz-8, true)

	// Version pattern: 6x3 modules at (0, siz-11), 3x6 at (siz-11, 0).
	if v >= 7 {
		vi := v.versionInfo()
		for i := 0; i < 18; i++ {
			dark := vi>>i&1 != 0
			a, b := siz-11+i%3, i/3
			p.set(a, b, dark)
			p.set(b, a, dark)
		}
	}

	for i := 1; i < len(p.Pattern); i++ {
		bitmap = bitmap[sz:]
		p.Pattern[i] = bitmap[:sz]
		copy(p.Pattern[i], p.Pattern[0])
	}
	return p
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// alignBox draws an alignment (small) box centred at x, y.
func alignBox(p *Plan, x, y int) {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			p.set(x+dx, y+dy, max(abs(dx), abs(dy)) != 1)
		}
	}
}

// fplan sets the format bits fb in the pattern for mask.
// Bit 0 is the least significant bit of fb.
func fplan(fb uint16, mask int, p *Plan) {
	b, stride, siz := p.Pattern[mask], p.Stride, p.Size
	bit := func(i int) bool { return fb>>i&1 != 0 }
	// Around the top left position box.
	for i := 0; i < 6; i++ {
		setBit(b, stride, 8, i, bit(i))
	}
	setBit(b, stride, 8, 7, bit(6))
	setBit(b, stride, 8, 8, bit(7))
	setBit(b, stride, 7, 8, bit(8))
	for i := 9; i < 15; i++ {
		setBit(b, stride, 14-i, 8, bit(i))
	}
	// Split between the top right and bottom left position boxes.
	for i := 0; i < 8; i++ {
		setBit(b, stride, siz-1-i, 8, bit(i))
	}
	for i := 8; i < 15; i++ {
		setBit(b, stride, 8, siz-15+i, bit(i))
	}
}

// Mask patterns:
//
//	0: ▄▀▄▀▄▀▄▀▄▀▄▀  1: ▄▄▄▄▄▄▄▄▄▄▄▄  2:  ██ ██ ██ ██  3: ▄█▀▄█▀▄█▀▄█▀
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▀▄█▀▄█▀▄█▀▄█
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     █▀▄█▀▄█▀▄█▀▄
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▄█▀▄█▀▄█▀▄█▀
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     ▀▄█▀▄█▀▄█▀▄█
//	   ▄▀▄▀▄▀▄▀▄▀▄▀     ▄▄▄▄▄▄▄▄▄▄▄▄      ██ ██ ██ ██     █▀▄█▀▄█▀▄█▀▄
//
//	4:    ███   ███  5:  ▄▄▄▄▄ ▄▄▄▄▄  6:    ▄▄▄   ▄▄▄  7: ▄█▄▀ ▀▄█▄▀ ▀
//	   ███   ███         █▀▄▀█ █▀▄▀█      ▄▀▄ █ ▄▀▄ █     ▄▀█▀▄ ▄▀█▀▄
//	      ███   ███      ██▄██ ██▄██      █▄▄▀  █▄▄▀      ▄  ▀██▄  ▀██
//	   ███   ███         ▄▄▄▄▄ ▄▄▄▄▄        ▄▄▄   ▄▄▄     ▄█▄▀ ▀▄█▄▀ ▀
//	      ███   ███      █▀▄▀█ █▀▄▀█      ▄▀▄ █ ▄▀▄ █     ▄▀█▀▄ ▄▀█▀▄
//	   ███   ███         ██▄██ ██▄██      █▄▄▀  █▄▄▀      ▄  ▀██▄  ▀██
//
// Each row is 12 columns, two periods of any mask, in octal.
var maskPat = [8][]uint16{
	{05252, 02525},
	{07777, 00000},
	{04444},
	{04444, 01111, 02222},
	{07070, 07070, 00707, 00707},
	{07777, 04040, 04444, 05252, 04444, 04040},
	{07777, 07070, 06666, 05252, 05555, 04343},
	{05252, 00707, 04343, 02525, 07070, 03434},
}

// mplan applies mask to the pattern for mask, leaving function
// modules alone.
func mplan(mask int, p *Plan) {
	stride := p.Stride
	var mpbuf [(MaxVersion*4 + 17 + 7) / 8 * 6]byte // 138 byte array
	b := p.Pattern[mask]
	m := p.Map[:len(b)]
	mpx := maskPat[mask] // mask patterns
	// create a pattern of 1-6 rows of 3-23 bytes
	for i, v := range mpx {
		pr := mpbuf[i*stride:]
		_ = pr[2]
		pr[0], pr[1], pr[2] = byte(v>>4), byte(v>>2), byte(v)
		pr = pr[:stride]
		for n := 3; n < len(pr); n += copy(pr[n:], pr[:n]) {
		}
	}
	mp := mpbuf[:len(mpx)*stride] // mask pattern
	// apply mask pattern
	for len(b) != 0 {
		ml := min(len(b), len(mp))
		bb, mm := b[:ml], m[:ml]
		b, m = b[ml:], m[ml:]
		for i, v := range mp[:ml] {
			bb[i] |= v &^ mm[i]
		}
	}
}

// AddCheckBytes adds terminator, padding and checksum to b for the
// given QR version and level.  Afterwards b holds the data blocks
// followed by the check blocks, each in block order.
func (b *Bits) AddCheckBytes(v Version, l Level) {
	nd := v.DataBytes(l)
	if b.nbit > nd*8 {
		panic("qr: too much data")
	}
	b.PadTo(nd * 8)

	nblock, check := v.Blocks(l)
	db := nd / nblock
	short := (db+1)*nblock - nd // number of blocks with db data bytes
	ecc := make([]byte, nblock*check)
	rs := gf256.NewRSEncoder(Field, check)
	dat := b.Bytes()
	for i := 0; i < nblock; i++ {
		if i == short {
			db++
		}
		rs.ECC(dat[:db], ecc[i*check:(i+1)*check])
		dat = dat[db:]
	}
	b.writeBytes(ecc)

	if len(b.Bytes()) != v.RawBytes() {
		panic("qr: internal error")
	}
}

// interleave interleaves nblock blocks from src to dst, which must be
// of equal length.  The last len(src)%nblock blocks are one byte
// longer than the rest.
func interleave(dst, src []byte, nblock int) {
	db := len(src) / nblock
	extra := dst[db*nblock:]
	dst = dst[:db*nblock]
	normal := nblock - len(extra)
	for i := 0; i < nblock; i++ {
		for j, v := range src[:db] {
			dst[j*nblock+i] = v
		}
		src = src[db:]
		if i >= normal {
			extra[i-normal] = src[0]
			src = src[1:]
		}
	}
}

// Permute returns a BitStream reading data and checksum bits in b
// with blocks interleaved for the given QR code version and level.
func (b *Bits) Permute(v Version, l Level) BitStream {
	src := b.Bytes()
	if len(src) != v.RawBytes() {
		panic("qr: wrong data length")
	}
	nblock, _ := v.Blocks(l)
	if nblock == 1 {
		return NewBitStream(src)
	}
	dst := make([]byte, len(src))
	nd := v.DataBytes(l)
	interleave(dst[:nd], src[:nd], nblock)
	interleave(dst[nd:], src[nd:], nblock)
	return NewBitStream(dst)
}

// Serialise writes bits from s to the bitmap in zigzag scan order:
// column pairs from right to left, skipping the vertical timing
// pattern, alternately upwards and downwards, right module first.
// Bits past the end of s are written as 0.
func (p *Plan) Serialise(s BitStream, bitmap []byte) {
	siz := p.Size
	stride := p.Stride
	pmap := p.Map
	for x := siz - 2; x >= 0; {
		lx, lb := x>>3, byte(0x80)>>(x&7)
		rxOff, rb := int(lb&1), byte(0x80)>>((x+1)&7)
		for off := (siz-1)*stride + lx; off >= 0; off -= stride {
			if pmap[off+rxOff]&rb == 0 && s.Next() != 0 {
				bitmap[off+rxOff] ^= rb
			}
			if pmap[off]&lb == 0 && s.Next() != 0 {
				bitmap[off] ^= lb
			}
		}
		x -= 2
		if x < 0 {
			return
		} else if x == 5 { // vertical timing strip
			x--
		}
		lx, lb = x>>3, byte(0x80)>>(x&7)
		rxOff, rb = int(lb&1), byte(0x80)>>((x+1)&7)
		for off := lx; off < len(pmap); off += stride {
			if pmap[off+rxOff]&rb == 0 && s.Next() != 0 {
				bitmap[off+rxOff] ^= rb
			}
			if pmap[off]&lb == 0 && s.Next() != 0 {
				bitmap[off] ^= lb
			}
		}
		x -= 2
	}
}
