// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

// A Code is a square module grid.
type Code struct {
	Bitmap []byte // 1 is black, 0 is white
	Size   int    // number of modules on a side
	Stride int    // number of bytes per row

	Version Version // QR version
	Level   Level   // error correction level, possibly boosted
	Mask    int     // applied mask pattern
}

// Black reports whether the module at column x and row y is black.
// Modules outside the code are white.
func (c *Code) Black(x, y int) bool {
	return 0 <= x && x < c.Size && 0 <= y && y < c.Size &&
		c.Bitmap[y*c.Stride+x/8]&(1<<uint(7&^x)) != 0
}

// Get reports whether the module at row and col is black.
func (c *Code) Get(row, col int) bool { return c.Black(col, row) }

// Dimension returns the number of modules on a side.
func (c *Code) Dimension() int { return c.Size }

// Format returns the two copies of the 15-bit format information,
// read back from the modules around the position boxes.
func (c *Code) Format() (a, b uint16) {
	bit := func(x, y int) uint16 {
		if c.Black(x, y) {
			return 1
		}
		return 0
	}
	siz := c.Size
	for i := 14; i >= 9; i-- {
		a = a<<1 | bit(14-i, 8)
	}
	a = a<<1 | bit(7, 8)
	a = a<<1 | bit(8, 8)
	a = a<<1 | bit(8, 7)
	for i := 5; i >= 0; i-- {
		a = a<<1 | bit(8, i)
	}
	for i := 14; i >= 8; i-- {
		b = b<<1 | bit(8, siz-15+i)
	}
	for i := 7; i >= 0; i-- {
		b = b<<1 | bit(siz-1-i, 8)
	}
	return a, b
}

// Penalty scoring weights.
const (
	penRun    = 3  // N1: run of 5 same-colour modules, +1 per extra
	penBox    = 3  // N2: 2x2 box of same-colour modules
	penFinder = 40 // N3: 1:1:3:1:1 pattern with 4 light modules on a side
	penBal    = 10 // N4: per 5% deviation from 50% black modules
)

// Penalty returns the penalty value for the code.  The value is used
// for choosing the mask: the lower, the better.
//
// Total penalty is the sum of penalties for runs and boxes
// of same-colour modules, finder-like patterns and colour balance.
//
//   - N1: for non-overlapping runs of n modules, n>=5 -> n-2
//   - N2: for possibly overlapping 2x2 boxes -> 3
//   - N3: for dark:light:dark:light:dark runs 1:1:3:1:1 with a light
//     run of at least 4 on either side -> 40; the area outside the
//     code counts as light
//   - N4: for k whole 5% steps away from 50% black -> 10*k
//
// Rows and columns are scored alike.
func (c *Code) Penalty() int {
	siz := c.Size
	p := 0
	line := func(black func(i int) bool) {
		h := runHistory{size: siz}
		dark, run := false, 0
		for i := 0; i < siz; i++ {
			if black(i) == dark {
				run++
				if run == 5 {
					p += penRun
				} else if run > 5 {
					p++
				}
				continue
			}
			h.add(run)
			if !dark {
				p += h.count() * penFinder
			}
			dark, run = !dark, 1
		}
		p += h.terminate(dark, run) * penFinder
	}
	for y := 0; y < siz; y++ {
		line(func(x int) bool { return c.Black(x, y) })
	}
	for x := 0; x < siz; x++ {
		line(func(y int) bool { return c.Black(x, y) })
	}

	black := 0
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; x++ {
			b := c.Black(x, y)
			if b {
				black++
			}
			if x+1 < siz && y+1 < siz && b == c.Black(x+1, y) &&
				b == c.Black(x, y+1) && b == c.Black(x+1, y+1) {
				p += penBox
			}
		}
	}

	// Smallest k such that the black share is within (5k+5)% of 50%.
	total := siz * siz
	d := black*20 - total*10
	if d < 0 {
		d = -d
	}
	p += ((d+total-1)/total - 1) * penBal
	return p
}

// runHistory holds the lengths of the last 7 runs of a line, newest
// first, for detecting finder-like patterns.
type runHistory struct {
	size int
	h    [7]int
}

// add pushes a run.  The first run of a line includes the light area
// to the left of the code.
func (r *runHistory) add(n int) {
	if r.h[0] == 0 {
		n += r.size
	}
	copy(r.h[1:], r.h[:len(r.h)-1])
	r.h[0] = n
}

// count returns the number of finder-like patterns ending at the
// newest light run: 0, 1 or 2.
func (r *runHistory) count() int {
	h := &r.h
	n := h[1]
	if n == 0 || h[2] != n || h[3] != n*3 || h[4] != n || h[5] != n {
		return 0
	}
	c := 0
	if h[0] >= n*4 && h[6] >= n {
		c++
	}
	if h[6] >= n*4 && h[0] >= n {
		c++
	}
	return c
}

// terminate ends the line, adding the light area to the right of the
// code, and returns the final pattern count.
func (r *runHistory) terminate(dark bool, run int) int {
	if dark {
		r.add(run)
		run = 0
	}
	r.add(run + r.size)
	return r.count()
}
