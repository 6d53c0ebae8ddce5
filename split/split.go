// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package split splits strings into QR code segments.

Two policies are available.  Single encodes the whole string as one
segment in the narrowest mode accepting every character.  Optimal
divides the string into numeric, alphanumeric, byte and kanji mode
segments minimising the encoded length for a QR version size class.
*/
package split // import "github.com/miataru/qr/split"

import (
	"strconv"
	"unicode/utf8"

	"github.com/miataru/qr/coding"
)

// A Policy selects how a String is divided into segments.
type Policy int

// Segmentation policies.
const (
	Single  Policy = iota // one segment in a single mode
	Optimal               // shortest encoding for each size class
)

func (p Policy) String() string {
	switch p {
	case Single:
		return "single"
	case Optimal:
		return "optimal"
	}
	return "policy(" + strconv.Itoa(int(p)) + ")"
}

// String describes a string to encode.
//
// Text is UTF-8.  Byte mode segments are transcoded to Charset.
// Kanji mode is used for characters encodable in it unless NoKanji is
// set.
type String struct {
	Text    string
	Charset coding.Charset
	NoKanji bool
}

// A Splitter splits a String into segments for a QR version size
// class.  The segments returned for the same size class are always the
// same.  Splitters are not safe for concurrent use.
type Splitter interface {
	Split(class int) ([]coding.Segment, error)
}

// New returns a Splitter for s using policy p.  Characters not
// encodable in any allowed mode result in a *coding.EncodingError.
func New(s String, p Policy) (Splitter, error) {
	switch p {
	case Single:
		segs, err := single(s)
		if err != nil {
			return nil, err
		}
		return fixed(segs), nil
	case Optimal:
		sp, err := classify(s)
		if err != nil {
			return nil, err
		}
		return &optimal{s: s, sp: sp}, nil
	}
	panic("qr: invalid policy " + p.String())
}

// fixed is a Splitter returning the same segments for any size class.
type fixed []coding.Segment

func (f fixed) Split(int) ([]coding.Segment, error) { return f, nil }

// single returns s as one segment: numeric if all characters are
// digits, alphanumeric if all are in the alphanumeric set, kanji if
// all are kanji and kanji mode is enabled, otherwise byte.  An empty
// string yields no segments.
func single(s String) ([]coding.Segment, error) {
	if s.Text == "" {
		return nil, nil
	}
	num, alpha, kanji := true, true, !s.NoKanji
	for _, r := range s.Text {
		num = num && coding.IsNumeric(r)
		alpha = alpha && coding.IsAlphanumeric(r)
		kanji = kanji && coding.IsKanji(r)
	}
	var (
		seg coding.Segment
		err error
	)
	switch {
	case num:
		seg, err = coding.NewNumeric(s.Text)
	case alpha:
		seg, err = coding.NewAlphanumeric(s.Text)
	case kanji:
		seg, err = coding.NewKanji(s.Text)
	default:
		seg, err = coding.NewBytes(s.Text, s.Charset)
	}
	if err != nil {
		return nil, err
	}
	return []coding.Segment{seg}, nil
}

// Mode bits, 1<<coding.Mode.
const (
	numMode   = 1 << coding.Numeric
	alphaMode = 1 << coding.Alphanumeric
	byteMode  = 1 << coding.Byte
	kanjiMode = 1 << coding.Kanji
	modes     = 4

	// Modes in which no string is longer than in any mode with
	// a higher bit.
	hier = numMode | alphaMode | byteMode
)

/*
segment and span.

classify determines the modes in which each rune in the string is
encodable and creates a slice of spans, each span describing a
substring of runes encodable in the same modes.

optimal.Split walks the spans backwards.  For each span n and each
mode m valid for it, segment (n,m) describes an optimal split of the
string from span n to the end, starting with mode m.  It is created
thusly: for each mode mm in which span n+1 is encodable, a segment
linking to (n+1,mm) is created.  If m=mm, the segments are merged.
The encoded length of the segment is calculated and the length of the
rest of the chain is added to it.  The shortest becomes (n,m).

At the beginning of the slice, the segment (0,m) with the smallest
length describes an optimal split for the whole string.
*/
type (
	// segment describes a chain of segments starting in a certain mode.
	segment struct {
		next  *segment    // link to next segment in the chain
		start int         // start of string
		slen  int         // length of string in bytes
		rlen  int         // length of string in runes
		blen  int         // length of string in byte mode bytes
		bits  int         // encoded length of the chain
		mode  coding.Mode // encoding mode
	}

	// span describes a span of runes encodable in the same modes.
	span struct {
		start int   // start of string
		slen  int   // length of string in bytes
		rlen  int   // length of string in runes
		blen  int   // length of string in byte mode bytes
		modes byte  // bit field of valid encoding modes
		seg   [modes]segment
	}

	// optimal is a Splitter using the Optimal policy.
	optimal struct {
		s  String
		sp []span
	}
)

// runeModes returns the modes in which the rune r at s[i:i+size] is
// encodable and its length in byte mode.
func runeModes(s String, i, size int, r rune) (m byte, blen int) {
	if coding.IsNumeric(r) {
		m |= numMode
	}
	if coding.IsAlphanumeric(r) {
		m |= alphaMode
	}
	if !s.NoKanji && coding.IsKanji(r) {
		m |= kanjiMode
	}
	if s.Charset == coding.UTF8 {
		// Invalid UTF-8 is copied as is.
		return m | byteMode, size
	}
	if size == 1 && r == utf8.RuneError {
		return m, 0
	}
	if t, err := s.Charset.Transcode(s.Text[i : i+size]); err == nil {
		m |= byteMode
		blen = len(t)
	}
	return m, blen
}

// classify splits s into spans of runes encodable in the same modes.
func classify(s String) ([]span, error) {
	var (
		sp     []span
		common = ^byte(0) // modes common to all runes
		old    byte
	)
	for i := 0; i < len(s.Text); {
		r, size := utf8.DecodeRuneInString(s.Text[i:])
		m, blen := runeModes(s, i, size, r)
		if m == 0 {
			return nil, &coding.EncodingError{Mode: coding.Byte,
				Charset: s.Charset, Rune: r, Offset: i}
		}
		if m != old || len(sp) == 0 {
			sp = append(sp, span{start: i, modes: m})
			common &= m
			old = m
		}
		v := &sp[len(sp)-1]
		v.slen += size
		v.rlen++
		v.blen += blen
		i += size
	}

	// If all runes share modes within the hierarchy, the lowest
	// of those is never worse than the others: drop them.
	if c := common & hier; c != 0 {
		mask := ^c | c&-c
		for i := range sp {
			sp[i].modes &= mask
		}
	}
	return sp, nil
}

// inf is larger than the encoded length of any split.
const inf = 1 << 30

// length returns the encoded length in bits of a segment of rlen runes
// taking blen bytes in byte mode, in mode at size class class.
func length(mode coding.Mode, rlen, blen, class int) int {
	n := 4 + mode.CountLength(class)
	switch mode {
	case coding.Numeric:
		n += (rlen*10 + 2) / 3
	case coding.Alphanumeric:
		n += (rlen*11 + 1) / 2
	case coding.Byte:
		n += blen * 8
	case coding.Kanji:
		n += rlen * 13
	}
	return n
}

// chain returns the shortest segment chain for the spans at the given
// size class.
func (o *optimal) chain(class int) *segment {
	sp := o.sp
	if len(sp) == 0 {
		return nil
	}
	var next *span
	for i := len(sp) - 1; i >= 0; i-- {
		v := &sp[i]
		for j := range v.seg {
			seg := &v.seg[j]
			*seg = segment{bits: inf}
			if v.modes>>j&1 == 0 {
				continue
			}
			mode := coding.Mode(j)
			c := segment{
				start: v.start,
				slen:  v.slen,
				rlen:  v.rlen,
				blen:  v.blen,
				mode:  mode,
			}
			if next == nil {
				c.bits = length(mode, c.rlen, c.blen, class)
				*seg = c
				continue
			}
			for k := range next.seg {
				n := &next.seg[k]
				if n.bits == inf {
					continue
				}
				c := c
				c.next = n
				if k == j {
					c.slen += n.slen
					c.rlen += n.rlen
					c.blen += n.blen
					c.next = n.next
				}
				c.bits = length(mode, c.rlen, c.blen, class)
				if c.next != nil {
					c.bits += c.next.bits
				}
				if c.bits < seg.bits {
					*seg = c
				}
			}
		}
		next = v
	}

	// Choose the first segment with the smallest length.
	best := &sp[0].seg[0]
	for j := 1; j < modes; j++ {
		if sp[0].seg[j].bits < best.bits {
			best = &sp[0].seg[j]
		}
	}
	return best
}

// Split returns an optimal split of the string at the given size class.
func (o *optimal) Split(class int) ([]coding.Segment, error) {
	var segs []coding.Segment
	for seg := o.chain(class); seg != nil; seg = seg.next {
		var (
			cs  coding.Segment
			err error
		)
		text := o.s.Text[seg.start : seg.start+seg.slen]
		switch seg.mode {
		case coding.Numeric:
			cs, err = coding.NewNumeric(text)
		case coding.Alphanumeric:
			cs, err = coding.NewAlphanumeric(text)
		case coding.Byte:
			cs, err = coding.NewBytes(text, o.s.Charset)
		case coding.Kanji:
			cs, err = coding.NewKanji(text)
		}
		if err != nil {
			return nil, err
		}
		segs = append(segs, cs)
	}
	return segs, nil
}

// Length returns the total encoded length in bits of segs at the given
// size class and whether every segment's character count fits its
// count field.
func Length(segs []coding.Segment, class int) (int, bool) {
	n, ok := 0, true
	for _, seg := range segs {
		n += seg.EncodedLength(class)
		ok = ok && seg.Fits(class)
	}
	return n, ok
}
