// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coding implements low-level QR coding details.
package coding // import "github.com/miataru/qr/coding"

import (
	"strconv"

	"github.com/miataru/qr/gf256"
	"github.com/pkg/errors"
)

var (
	ErrLevel     = errors.New("qr: invalid level")
	ErrVersion   = errors.New("qr: invalid version")
	ErrMask      = errors.New("qr: invalid mask")
	ErrBitLength = errors.New("qr: invalid bit length")
	ErrECI       = errors.New("qr: invalid eci number")
)

// Field is the field for QR error correction.
var Field = gf256.NewField(0x11d, 2)

// A Version represents a QR version.
// The version specifies the size of the QR code:
// a QR code with version v has 4v+17 modules on a side.
// Versions run from 1 to 40:
// the larger the version, the more information the code can store.
type Version int

// Code versions.
const (
	MinVersion Version = 1  // Minimum QR version
	MaxVersion Version = 40 // Maximum QR version
)

func (v Version) String() string { return strconv.Itoa(int(v)) }

// Valid reports whether v is between MinVersion and MaxVersion.
func (v Version) Valid() bool { return MinVersion <= v && v <= MaxVersion }

// QR version size classes.  The width of the character count field
// of a segment depends on the size class.
const (
	Class0 = iota // QR versions 1 to 9
	Class1        // QR versions 10 to 26
	Class2        // QR versions 27 to 40
)

// SizeClass returns the size class of v, as documented under Class0.
func (v Version) SizeClass() int {
	if v <= 9 {
		return Class0
	}
	if v <= 26 {
		return Class1
	}
	return Class2
}

// Size returns the number of modules on a side.
func (v Version) Size() int { return int(v)*4 + 17 }

// alignCount returns the number of alignment pattern positions on
// each axis, including the ones overlapping the finder patterns.
func (v Version) alignCount() int {
	if v == 1 {
		return 0
	}
	return int(v)/7 + 2
}

// AlignmentPositions returns the ascending row and column coordinates
// of alignment pattern centres.  Patterns are placed at every
// combination of coordinates except the three finder pattern corners.
func (v Version) AlignmentPositions() []int {
	n := v.alignCount()
	if n == 0 {
		return nil
	}
	step := 26
	if v != 32 {
		step = (int(v)*4 + n*2 + 1) / (n*2 - 2) * 2
	}
	pos := make([]int, n)
	pos[0] = 6
	for i, p := n-1, v.Size()-7; i > 0; i, p = i-1, p-step {
		pos[i] = p
	}
	return pos
}

// rawModules returns the number of modules available for data and
// error correction, including remainder bits.
func (v Version) rawModules() int {
	n := (16*int(v)+128)*int(v) + 64
	if a := v.alignCount(); a != 0 {
		n -= (25*a-10)*a - 55
		if v >= 7 {
			n -= 36
		}
	}
	return n
}

// RawBytes returns the number of data and error correction codewords.
func (v Version) RawBytes() int { return v.rawModules() / 8 }

// RemainderBits returns the number of bits left over after placing
// all codewords.  They are written as light modules.
func (v Version) RemainderBits() int { return v.rawModules() % 8 }

// DataBytes returns the number of data bytes that can be
// stored in a QR code with the given version and level.
func (v Version) DataBytes(l Level) int {
	return v.RawBytes() - int(eccBytes[l][v])*int(eccBlocks[l][v])
}

// DataBits returns the number of data bits that can be
// stored in a QR code with the given version and level.
func (v Version) DataBits(l Level) int { return v.DataBytes(l) * 8 }

// Blocks returns the number of error correction blocks and the number
// of error correction bytes per block for the given version and level.
func (v Version) Blocks(l Level) (nblock, check int) {
	return int(eccBlocks[l][v]), int(eccBytes[l][v])
}

// versionInfo returns the 18-bit version information word:
// the version in the top 6 bits followed by a BCH(18,6) remainder
// with generator 0x1f25.
func (v Version) versionInfo() uint32 {
	r := uint32(v)
	for i := 0; i < 12; i++ {
		r = r<<1 ^ (r>>11)*0x1f25
	}
	return uint32(v)<<12 | r
}

// A Level represents a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 20% redundant
	M              // 38% redundant
	Q              // 55% redundant
	H              // 65% redundant
)

func (l Level) String() string {
	if l.Valid() {
		return "LMQH"[l : l+1]
	}
	return strconv.Itoa(int(l))
}

// Valid reports whether l is one of L, M, Q and H.
func (l Level) Valid() bool { return L <= l && l <= H }

// formatBits returns the 15-bit format information word for level l
// and mask: 2 level bits (L=01, M=00, Q=11, H=10) and 3 mask bits
// followed by a BCH(15,5) remainder with generator 0x537, XORed with
// 0x5412.
func formatBits(l Level, mask int) uint16 {
	d := uint32(l^1)<<3 | uint32(mask)
	r := d
	for i := 0; i < 10; i++ {
		r = r<<1 ^ (r>>9)*0x537
	}
	return uint16(d<<10|r) ^ 0x5412
}

// Error correction bytes per block, indexed by level and version.
var eccBytes = [4][MaxVersion + 1]int8{
	L: {0, 7, 10, 15, 20, 26, 18, 20, 24, 30, 18, 20, 24, 26, 30, 22,
		24, 28, 30, 28, 28, 28, 28, 30, 30, 26, 28, 30, 30, 30, 30,
		30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
	M: {0, 10, 16, 26, 18, 24, 16, 18, 22, 22, 26, 30, 22, 22, 24,
		24, 28, 28, 26, 26, 26, 26, 28, 28, 28, 28, 28, 28, 28, 28,
		28, 28, 28, 28, 28, 28, 28, 28, 28, 28, 28},
	Q: {0, 13, 22, 18, 26, 18, 24, 18, 22, 20, 24, 28, 26, 24, 20,
		30, 24, 28, 28, 26, 30, 28, 30, 30, 30, 30, 28, 30, 30, 30,
		30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
	H: {0, 17, 28, 22, 16, 22, 28, 26, 26, 24, 28, 24, 28, 22, 24,
		24, 30, 28, 28, 26, 28, 30, 24, 30, 30, 30, 30, 30, 30, 30,
		30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
}

// Error correction blocks, indexed by level and version.
var eccBlocks = [4][MaxVersion + 1]int8{
	L: {0, 1, 1, 1, 1, 1, 2, 2, 2, 2, 4, 4, 4, 4, 4, 6, 6, 6, 6, 7, 8,
		8, 9, 9, 10, 12, 12, 12, 13, 14, 15, 16, 17, 18, 19, 19, 20,
		21, 22, 24, 25},
	M: {0, 1, 1, 1, 2, 2, 4, 4, 4, 5, 5, 5, 8, 9, 9, 10, 10, 11, 13,
		14, 16, 17, 17, 18, 20, 21, 23, 25, 26, 28, 29, 31, 33, 35,
		37, 38, 40, 43, 45, 47, 49},
	Q: {0, 1, 1, 2, 2, 4, 4, 6, 6, 8, 8, 8, 10, 12, 16, 12, 17, 16,
		18, 21, 20, 23, 23, 25, 27, 29, 34, 34, 35, 38, 40, 43, 45,
		48, 51, 53, 56, 59, 62, 65, 68},
	H: {0, 1, 1, 2, 4, 4, 4, 5, 6, 8, 8, 11, 11, 16, 16, 18, 16, 19,
		21, 25, 25, 25, 34, 30, 32, 35, 37, 40, 42, 45, 48, 51, 54,
		57, 60, 63, 66, 70, 74, 77, 81},
}
