// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gf256 implements arithmetic over the Galois Field GF(256)
// and Reed-Solomon error correction coding.
package gf256 // import "github.com/miataru/qr/gf256"

import "strconv"

// A Field represents an instance of GF(256) defined by a specific
// polynomial.  A Field is immutable and safe for concurrent use.
type Field struct {
	log [256]byte // log[0] is unused
	exp [510]byte // exp[i+255] == exp[i]
}

// NewField returns a new field corresponding to the polynomial poly
// and generator α.  The Reed-Solomon encoding in QR codes uses
// polynomial 0x11d with generator 2.
//
// NewField panics if poly is not an irreducible polynomial of degree
// 8 or α does not generate the multiplicative group of the field.
func NewField(poly, α int) *Field {
	if poly < 0x100 || poly >= 0x200 || reducible(poly) {
		panic("gf256: invalid polynomial: " + strconv.Itoa(poly))
	}
	var f Field
	x := 1
	for i := 0; i < 255; i++ {
		if x == 1 && i != 0 {
			panic("gf256: invalid generator " + strconv.Itoa(α) +
				" for polynomial " + strconv.Itoa(poly))
		}
		f.exp[i] = byte(x)
		f.exp[i+255] = byte(x)
		f.log[x] = byte(i)
		x = mul(x, α, poly)
	}
	f.log[0] = 255
	return &f
}

// nbit returns the number of significant bits in p.
func nbit(p int) uint {
	n := uint(0)
	for ; p > 0; p >>= 1 {
		n++
	}
	return n
}

// polyDiv divides the polynomial p by q and returns the remainder.
func polyDiv(p, q int) int {
	np, nq := nbit(p), nbit(q)
	for ; np >= nq; np-- {
		if p&(1<<(np-1)) != 0 {
			p ^= q << (np - nq)
		}
	}
	return p
}

// mul returns the product x*y mod poly, a GF(256) multiplication.
func mul(x, y, poly int) int {
	z := 0
	for x > 0 {
		if x&1 != 0 {
			z ^= y
		}
		x >>= 1
		y <<= 1
		if y&0x100 != 0 {
			y ^= poly
		}
	}
	return z
}

// reducible reports whether p is reducible.
func reducible(p int) bool {
	// Multiplying n-bit * n-bit produces (2n-1)-bit,
	// so if p is reducible, one of its factors must be
	// of np/2+1 bits or fewer.
	np := nbit(p)
	for q := 2; q < 1<<(np/2+1); q++ {
		if polyDiv(p, q) == 0 {
			return true
		}
	}
	return false
}

// Add returns the sum of x and y in the field.
func (f *Field) Add(x, y byte) byte {
	return x ^ y
}

// Exp returns the base-α exponential of e in the field.
// If e < 0, Exp returns 0.
func (f *Field) Exp(e int) byte {
	if e < 0 {
		return 0
	}
	return f.exp[e%255]
}

// Log returns the base-α logarithm of x in the field.
// If x == 0, Log returns -1.
func (f *Field) Log(x byte) int {
	if x == 0 {
		return -1
	}
	return int(f.log[x])
}

// Inv returns the multiplicative inverse of x in the field.
// If x == 0, Inv returns 0.
func (f *Field) Inv(x byte) byte {
	if x == 0 {
		return 0
	}
	return f.exp[255-int(f.log[x])]
}

// Mul returns the product of x and y in the field.
func (f *Field) Mul(x, y byte) byte {
	if x == 0 || y == 0 {
		return 0
	}
	return f.exp[int(f.log[x])+int(f.log[y])]
}

// An RSEncoder implements Reed-Solomon encoding
// over a given field using a given number of error correction bytes.
// An RSEncoder is immutable and safe for concurrent use.
type RSEncoder struct {
	f    *Field
	c    int
	gen  []byte // generator polynomial, highest term first, without x^c
	lgen []byte // log of gen; 255 for zero coefficients
}

// NewRSEncoder returns a new Reed-Solomon encoder
// over the given field and number of error correction bytes.
// The generator polynomial is the product of (x - α^i) for i in 0..c-1.
func NewRSEncoder(f *Field, c int) *RSEncoder {
	if c < 0 || c > 255 {
		panic("gf256: invalid number of check bytes: " + strconv.Itoa(c))
	}
	// gen[0] is the coefficient of x^c, which is always 1.
	gen := make([]byte, c+1)
	gen[0] = 1
	for i := 0; i < c; i++ {
		r := f.Exp(i)
		for j := i + 1; j > 0; j-- {
			gen[j] ^= f.Mul(gen[j-1], r)
		}
	}
	gen = gen[1:]
	lgen := make([]byte, len(gen))
	for i, v := range gen {
		if v == 0 {
			lgen[i] = 255
		} else {
			lgen[i] = f.log[v]
		}
	}
	return &RSEncoder{f: f, c: c, gen: gen, lgen: lgen}
}

// Generator returns a copy of the generator polynomial coefficients,
// highest term first, including the leading 1.
func (rs *RSEncoder) Generator() []byte {
	return append([]byte{1}, rs.gen...)
}

// ECC writes to check the error correcting code bytes
// for data using the given Reed-Solomon parameters.
// check must be at least as long as the number of check bytes.
func (rs *RSEncoder) ECC(data []byte, check []byte) {
	if len(check) < rs.c {
		panic("gf256: invalid check byte length")
	}
	if rs.c == 0 {
		return
	}
	// The check bytes are the remainder of data·x^c divided by the
	// generator, computed with a shift register held in check.
	rem := check[:rs.c]
	clear(rem)
	exp := rs.f.exp[:]
	for _, d := range data {
		fb := d ^ rem[0]
		copy(rem, rem[1:])
		rem[len(rem)-1] = 0
		if fb == 0 {
			continue
		}
		lf := int(rs.f.log[fb])
		for i, lg := range rs.lgen {
			if lg != 255 {
				rem[i] ^= exp[lf+int(lg)]
			}
		}
	}
}
