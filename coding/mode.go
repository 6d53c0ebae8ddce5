// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// A Mode is a QR segment mode.
type Mode int8

// Segment modes.
const (
	Numeric      Mode = iota // decimal digits, 10 bits per 3
	Alphanumeric             // digits, A-Z and " $%*+-./:", 11 bits per 2
	Byte                     // any data, 8 bits per byte
	Kanji                    // Shift JIS double-byte characters, 13 bits each
	ECI                      // Extended Channel Interpretation designator
)

var modeNames = [...]string{
	Numeric:      "numeric",
	Alphanumeric: "alphanumeric",
	Byte:         "byte",
	Kanji:        "kanji",
	ECI:          "eci",
}

func (mode Mode) String() string {
	if 0 <= mode && int(mode) < len(modeNames) {
		return modeNames[mode]
	}
	return strconv.Itoa(int(mode))
}

// Indicator returns the 4-bit mode indicator.
func (mode Mode) Indicator() uint32 {
	switch mode {
	case Numeric:
		return 1
	case Alphanumeric:
		return 2
	case Byte:
		return 4
	case Kanji:
		return 8
	case ECI:
		return 7
	}
	panic("qr: invalid mode " + mode.String())
}

// CountLength returns the width in bits of the character count field
// in the given size class.  ECI segments have no count field.
func (mode Mode) CountLength(class int) int {
	switch mode {
	case Numeric:
		return [3]int{10, 12, 14}[class]
	case Alphanumeric:
		return [3]int{9, 11, 13}[class]
	case Byte:
		return [3]int{8, 16, 16}[class]
	case Kanji:
		return [3]int{8, 10, 12}[class]
	case ECI:
		return 0
	}
	panic("qr: invalid mode " + mode.String())
}

// A Charset is a character encoding for byte mode segments.
type Charset int

// Byte mode character encodings.
const (
	UTF8     Charset = iota // UTF-8, bytes are encoded as is
	Latin1                  // ISO 8859-1
	ShiftJIS                // Shift JIS
)

func (cs Charset) String() string {
	switch cs {
	case UTF8:
		return "UTF-8"
	case Latin1:
		return "ISO-8859-1"
	case ShiftJIS:
		return "Shift_JIS"
	}
	return "charset(" + strconv.Itoa(int(cs)) + ")"
}

// Extended Channel Interpretation assignment numbers.
const (
	Latin1ECI   = 3  // ISO 8859-1
	ShiftJISECI = 20 // Shift JIS
	UTF8ECI     = 26 // UTF-8
)

// ECI returns the ECI assignment number of cs.
func (cs Charset) ECI() uint32 {
	switch cs {
	case Latin1:
		return Latin1ECI
	case ShiftJIS:
		return ShiftJISECI
	}
	return UTF8ECI
}

// encoding returns the text encoding of cs, or nil for UTF-8.
func (cs Charset) encoding() encoding.Encoding {
	switch cs {
	case Latin1:
		return charmap.ISO8859_1
	case ShiftJIS:
		return japanese.ShiftJIS
	}
	return nil
}

// Transcode converts UTF-8 text to cs.  A rune not representable in
// cs results in an *EncodingError.  UTF-8 text is returned unchanged.
func (cs Charset) Transcode(text string) ([]byte, error) {
	enc := cs.encoding()
	if enc == nil {
		return []byte(text), nil
	}
	e := enc.NewEncoder()
	out := make([]byte, 0, len(text))
	var buf [4]byte
	for i, r := range text {
		n := utf8.EncodeRune(buf[:], r)
		t, err := e.Bytes(buf[:n])
		if err != nil || r == utf8.RuneError {
			return nil, &EncodingError{Mode: Byte, Charset: cs,
				Rune: r, Offset: i}
		}
		out = append(out, t...)
	}
	return out, nil
}

// EncodingError reports a character that cannot be represented in
// a segment mode or byte mode character encoding.
type EncodingError struct {
	Mode    Mode    // segment mode
	Charset Charset // character encoding for byte mode
	Rune    rune    // offending character
	Offset  int     // byte offset of Rune in the input
}

func (e *EncodingError) Error() string {
	if e.Mode == Byte {
		return fmt.Sprintf("qr: %U at offset %d not encodable in %s",
			e.Rune, e.Offset, e.Charset)
	}
	return fmt.Sprintf("qr: %U at offset %d not encodable in %s mode",
		e.Rune, e.Offset, e.Mode)
}

// SegmentError reports a segment whose character count exceeds the
// count field in every version.
type SegmentError struct {
	Mode  Mode
	Count int
}

func (e SegmentError) Error() string {
	return fmt.Sprintf("qr: %d characters too many for a %s segment",
		e.Count, e.Mode)
}

// CompatError represents an incompatibility between a segment and
// a Version: its character count overflows the count field.
type CompatError struct {
	Mode
	Version
	Count int
}

func (e CompatError) Error() string {
	return fmt.Sprintf("qr: %s segment of %d characters "+
		"not encodable in version %s", e.Mode, e.Count, e.Version)
}

// A Segment is an encoded QR code segment: its mode, character count
// and data bits without the header.  Segments are created by NewNumeric,
// NewAlphanumeric, NewBytes, NewKanji and NewECI and are immutable.
type Segment struct {
	mode  Mode
	count int
	data  Bits
}

// Mode returns the mode of seg.
func (seg Segment) Mode() Mode { return seg.mode }

// Count returns the number of characters in seg.
func (seg Segment) Count() int { return seg.count }

// DataBits returns the length in bits of the data of seg,
// excluding the header.
func (seg Segment) DataBits() int { return seg.data.nbit }

// Fits reports whether the character count of seg fits the count
// field in the given size class.
func (seg Segment) Fits(class int) bool {
	return seg.count < 1<<seg.mode.CountLength(class) || seg.mode == ECI
}

// EncodedLength returns the encoded length in bits of seg in the
// given QR version size class, including the header.
func (seg Segment) EncodedLength(class int) int {
	return 4 + seg.mode.CountLength(class) + seg.data.nbit
}

// Encode writes seg encoded for the given QR version to b.
func (seg Segment) Encode(b *Bits, v Version) error {
	class := v.SizeClass()
	if !seg.Fits(class) {
		return CompatError{seg.mode, v, seg.count}
	}
	b.write(seg.mode.Indicator(), 4)
	if n := seg.mode.CountLength(class); n != 0 {
		b.write(uint32(seg.count), n)
	}
	b.WriteBits(&seg.data)
	return nil
}

func (seg Segment) String() string {
	return fmt.Sprintf("%s(%d chars, %d bits)", seg.mode, seg.count,
		seg.data.nbit)
}

// newSegment checks count against the widest count field of mode.
func newSegment(mode Mode, count int, data Bits) (Segment, error) {
	if count >= 1<<mode.CountLength(Class2) {
		return Segment{}, SegmentError{mode, count}
	}
	return Segment{mode: mode, count: count, data: data}, nil
}

// IsNumeric reports whether r is encodable in numeric mode.
func IsNumeric(r rune) bool { return uint32(r-'0') < 10 }

const alphamask uint64 = 0x07fffffe_07ffec31 // SPACE $% *+ -./ [0-9] : [A-Z]

// Alphanumeric encoding table.  Used after validation.
// "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"
var alpha = [64]byte{
	00, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24, // 0x40
	25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, 00, 00, 00, 00, 00, // 0x50
	36, 00, 00, 00, 37, 38, 00, 00, 00, 00, 39, 40, 00, 41, 42, 43, // 0x20
	00, 01, 02, 03, 04, 05, 06, 07, 010, 9, 44, 00, 00, 00, 00, 00, // 0x30
}

// IsAlphanumeric reports whether r is encodable in alphanumeric mode.
func IsAlphanumeric(r rune) bool {
	return uint32(r-' ') < 64 && alphamask>>(uint32(r)-' ')&1 != 0
}

// NewNumeric returns a numeric mode segment for a string of decimal
// digits.  Groups of 3 digits are encoded in 10 bits, a remaining pair
// in 7 bits and a single digit in 4 bits.
func NewNumeric(digits string) (Segment, error) {
	var b Bits
	for i := 0; i < len(digits); i++ {
		if !IsNumeric(rune(digits[i])) {
			r, _ := utf8.DecodeRuneInString(digits[i:])
			return Segment{}, &EncodingError{Mode: Numeric,
				Rune: r, Offset: i}
		}
	}
	s := digits
	for ; len(s) >= 3; s = s[3:] {
		b.write(uint32(s[0])*100+uint32(s[1])*10+
			uint32(s[2])+-'0'*111&0x3ff, 10)
	}
	switch len(s) {
	case 2:
		b.write(uint32(s[0])*10+uint32(s[1])-'0'*11&0x7f, 7)
	case 1:
		b.write(uint32(s[0]-'0'), 4)
	}
	return newSegment(Numeric, len(digits), b)
}

// NewAlphanumeric returns an alphanumeric mode segment.  Pairs of
// characters are encoded in 11 bits as 45*a+b, a remaining character
// in 6 bits.
func NewAlphanumeric(text string) (Segment, error) {
	var b Bits
	for i := 0; i < len(text); i++ {
		if !IsAlphanumeric(rune(text[i])) {
			r, _ := utf8.DecodeRuneInString(text[i:])
			return Segment{}, &EncodingError{Mode: Alphanumeric,
				Rune: r, Offset: i}
		}
	}
	s := text
	for ; len(s) >= 2; s = s[2:] {
		b.write(uint32(alpha[s[0]&0x3f])*45+uint32(alpha[s[1]&0x3f]), 11)
	}
	if len(s) == 1 {
		b.write(uint32(alpha[s[0]&0x3f]), 6)
	}
	return newSegment(Alphanumeric, len(text), b)
}

// NewBytes returns a byte mode segment containing UTF-8 text
// transcoded to cs.  With UTF8 text is encoded as is, so any binary
// data may be passed.
func NewBytes(text string, cs Charset) (Segment, error) {
	data, err := cs.Transcode(text)
	if err != nil {
		return Segment{}, err
	}
	var b Bits
	b.writeBytes(data)
	return newSegment(Byte, len(data), b)
}

// kanjiValue returns the 13-bit kanji mode value of the Shift JIS
// character c1 c2, and false if it is outside the kanji mode ranges
// 0x8140-0x9ffc and 0xe040-0xebbf.
func kanjiValue(c1, c2 byte) (uint32, bool) {
	c := uint16(c1)<<8 | uint16(c2)
	if (c < 0x8140 || c > 0x9ffc) && (c < 0xe040 || c > 0xebbf) ||
		c2 < 0x40 || c2 == 0x7f || c2 > 0xfc {
		return 0, false
	}
	return uint32(c1&^0xc0)*0xc0 + uint32(c2) - 0x100, true
}

// sjisKanji returns the kanji mode value of r.
func sjisKanji(e *encoding.Encoder, r rune) (uint32, bool) {
	var buf [4]byte
	n := utf8.EncodeRune(buf[:], r)
	t, err := e.Bytes(buf[:n])
	if err != nil || len(t) != 2 || r == utf8.RuneError {
		return 0, false
	}
	return kanjiValue(t[0], t[1])
}

// IsKanji reports whether the Unicode rune r is encodable in kanji
// mode, that is, whether its Shift JIS encoding is a double-byte
// character in the kanji mode ranges.
func IsKanji(r rune) bool {
	if r < 0x80 {
		return false
	}
	_, ok := sjisKanji(japanese.ShiftJIS.NewEncoder(), r)
	return ok
}

// NewKanji returns a kanji mode segment for UTF-8 text.  Each
// character is converted to Shift JIS and encoded in 13 bits.
func NewKanji(text string) (Segment, error) {
	var b Bits
	e := japanese.ShiftJIS.NewEncoder()
	n := 0
	for i, r := range text {
		v, ok := sjisKanji(e, r)
		if !ok {
			return Segment{}, &EncodingError{Mode: Kanji,
				Charset: ShiftJIS, Rune: r, Offset: i}
		}
		b.write(v, 13)
		n++
	}
	return newSegment(Kanji, n, b)
}

// MaxECI is the largest ECI assignment number.
const MaxECI = 999999

// NewECI returns an ECI segment designating the assignment number
// eci, encoded in 1, 2 or 3 bytes.
func NewECI(eci uint32) (Segment, error) {
	var b Bits
	switch {
	case eci < 1<<7:
		b.write(eci, 8)
	case eci < 1<<14:
		b.write(2<<14|eci, 16)
	case eci <= MaxECI:
		b.write(6<<21|eci, 24)
	default:
		return Segment{}, errors.Wrapf(ErrECI, "%d", eci)
	}
	return Segment{mode: ECI, data: b}, nil
}
