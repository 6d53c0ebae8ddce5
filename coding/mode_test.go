// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumeric(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"8", "1000"},
		{"42", "0101010"},
		{"999", "1111100111"},
		{"01234567", "0000001100" + "0101011001" + "1000011"},
		{"0000", "0000000000" + "0000"},
	}
	for _, tt := range tests {
		seg, err := NewNumeric(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, Numeric, seg.Mode())
		assert.Equal(t, len(tt.in), seg.Count())
		assert.Equal(t, tt.want, bitString(&seg.data), tt.in)
	}
	_, err := NewNumeric("123a5")
	var ee *EncodingError
	require.True(t, errors.As(err, &ee), "%v", err)
	assert.Equal(t, EncodingError{Mode: Numeric, Rune: 'a', Offset: 3}, *ee)
}

func TestNewAlphanumeric(t *testing.T) {
	seg, err := NewAlphanumeric("HELLO WORLD")
	require.NoError(t, err)
	assert.Equal(t, Alphanumeric, seg.Mode())
	assert.Equal(t, 11, seg.Count())
	assert.Equal(t, "01100001011"+"01111000110"+"10001011100"+
		"10110111000"+"10011010100"+"001101", bitString(&seg.data))

	seg, err = NewAlphanumeric("$%*+-./:")
	require.NoError(t, err)
	// 37*45+38, 39*45+40, 41*45+42, 43*45+44
	assert.Equal(t, "11010100111"+"11100000011"+"11101011111"+
		"11110111011", bitString(&seg.data))

	_, err = NewAlphanumeric("HELLO world")
	var ee *EncodingError
	require.True(t, errors.As(err, &ee), "%v", err)
	assert.Equal(t, 'w', ee.Rune)
	assert.Equal(t, 6, ee.Offset)
	assert.Contains(t, err.Error(), "alphanumeric mode")
}

func TestCharClasses(t *testing.T) {
	const alnum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"
	for r := rune(0); r < 0x100; r++ {
		assert.Equal(t, r >= '0' && r <= '9', IsNumeric(r), "%q", r)
		assert.Equal(t, strings.ContainsRune(alnum, r), IsAlphanumeric(r), "%q", r)
		if r < 0x80 {
			assert.False(t, IsKanji(r), "%q", r)
		}
	}
	assert.True(t, IsKanji('点'))
	assert.True(t, IsKanji('茗'))
	assert.True(t, IsKanji('あ'))
	assert.False(t, IsKanji('ｱ')) // single-byte katakana
	assert.False(t, IsKanji('€'))
	assert.False(t, IsKanji(-1))
}

func TestNewBytes(t *testing.T) {
	tests := []struct {
		in   string
		cs   Charset
		want []byte
	}{
		{"a€", UTF8, []byte{'a', 0xe2, 0x82, 0xac}},
		{"\xff\x00", UTF8, []byte{0xff, 0x00}},
		{"café", Latin1, []byte{'c', 'a', 'f', 0xe9}},
		{"ｱ点", ShiftJIS, []byte{0xb1, 0x93, 0x5f}},
	}
	for _, tt := range tests {
		seg, err := NewBytes(tt.in, tt.cs)
		require.NoError(t, err, tt.in)
		assert.Equal(t, Byte, seg.Mode())
		assert.Equal(t, len(tt.want), seg.Count())
		assert.Equal(t, tt.want, seg.data.Bytes(), tt.in)
	}

	_, err := NewBytes("a€", Latin1)
	var ee *EncodingError
	require.True(t, errors.As(err, &ee), "%v", err)
	assert.Equal(t, EncodingError{Mode: Byte, Charset: Latin1, Rune: '€', Offset: 1}, *ee)
	assert.Contains(t, err.Error(), "ISO-8859-1")
}

func TestNewKanji(t *testing.T) {
	seg, err := NewKanji("点茗")
	require.NoError(t, err)
	assert.Equal(t, Kanji, seg.Mode())
	assert.Equal(t, 2, seg.Count())
	assert.Equal(t, "0110110011111"+"1101010101010", bitString(&seg.data))

	_, err = NewKanji("点a")
	var ee *EncodingError
	require.True(t, errors.As(err, &ee), "%v", err)
	assert.Equal(t, Kanji, ee.Mode)
	assert.Equal(t, 'a', ee.Rune)
	assert.Equal(t, 3, ee.Offset)
}

func TestKanjiValue(t *testing.T) {
	tests := []struct {
		c1, c2 byte
		want   uint32
		ok     bool
	}{
		{0x81, 0x40, 0, true},
		{0x93, 0x5f, 0xd9f, true},
		{0x9f, 0xfc, 0x173c, true},
		{0xe0, 0x40, 0x1740, true},
		{0xe4, 0xaa, 0x1aaa, true},
		{0xeb, 0xbf, 0x1fff, true},
		{0x81, 0x3f, 0, false},
		{0x88, 0x7f, 0, false},
		{0xa0, 0x40, 0, false},
		{0xeb, 0xc0, 0, false},
	}
	for _, tt := range tests {
		v, ok := kanjiValue(tt.c1, tt.c2)
		assert.Equal(t, tt.ok, ok, "%#x%02x", tt.c1, tt.c2)
		assert.Equal(t, tt.want, v, "%#x%02x", tt.c1, tt.c2)
	}
}

func TestNewECI(t *testing.T) {
	tests := []struct {
		eci  uint32
		want []byte
	}{
		{3, []byte{0x03}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x80}},
		{1000, []byte{0x83, 0xe8}},
		{16383, []byte{0xbf, 0xff}},
		{16384, []byte{0xc0, 0x40, 0x00}},
		{MaxECI, []byte{0xcf, 0x42, 0x3f}},
	}
	for _, tt := range tests {
		seg, err := NewECI(tt.eci)
		require.NoError(t, err, tt.eci)
		assert.Equal(t, ECI, seg.Mode())
		assert.Zero(t, seg.Count())
		assert.Equal(t, tt.want, seg.data.Bytes(), "%d", tt.eci)
		assert.Equal(t, 4+len(tt.want)*8, seg.EncodedLength(Class2))
	}
	_, err := NewECI(MaxECI + 1)
	assert.True(t, errors.Is(err, ErrECI), "%v", err)
}

func TestSegmentEncode(t *testing.T) {
	seg, err := NewNumeric("01234567")
	require.NoError(t, err)
	assert.Equal(t, 41, seg.EncodedLength(Class0))
	assert.Equal(t, 43, seg.EncodedLength(Class1))
	assert.Equal(t, 45, seg.EncodedLength(Class2))

	var b Bits
	require.NoError(t, seg.Encode(&b, 1))
	assert.Equal(t, "0001"+"0000001000"+"0000001100"+"0101011001"+"1000011",
		bitString(&b))

	b.Reset()
	eci, err := NewECI(UTF8ECI)
	require.NoError(t, err)
	require.NoError(t, eci.Encode(&b, 40))
	assert.Equal(t, "0111"+"00011010", bitString(&b))
}

func TestSegmentLimits(t *testing.T) {
	seg, err := NewNumeric(strings.Repeat("7", 1024))
	require.NoError(t, err)
	assert.False(t, seg.Fits(Class0))
	assert.True(t, seg.Fits(Class1))
	var b Bits
	err = seg.Encode(&b, 9)
	assert.Equal(t, CompatError{Numeric, 9, 1024}, err)
	assert.Zero(t, b.Bits())
	assert.NoError(t, seg.Encode(&b, 10))

	_, err = NewNumeric(strings.Repeat("7", 1<<14))
	assert.Equal(t, SegmentError{Numeric, 1 << 14}, err)
	_, err = NewBytes(strings.Repeat("x", 1<<16), UTF8)
	assert.Equal(t, SegmentError{Byte, 1 << 16}, err)
	_, err = NewBytes(strings.Repeat("x", 1<<16-1), UTF8)
	assert.NoError(t, err)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "numeric", Numeric.String())
	assert.Equal(t, "eci", ECI.String())
	assert.Equal(t, "9", Mode(9).String())
	assert.Panics(t, func() { Mode(9).Indicator() })
	assert.Equal(t, "Shift_JIS", ShiftJIS.String())
	assert.Equal(t, uint32(20), ShiftJIS.ECI())
	assert.Equal(t, uint32(3), Latin1.ECI())
	assert.Equal(t, uint32(26), UTF8.ECI())
}
