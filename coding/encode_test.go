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

var penaltyTests = []struct {
	name    string
	seg     func() (Segment, error)
	version Version
	level   Level
	mask    int
	penalty [8]int
}{
	{
		name:    "Hello World!",
		seg:     func() (Segment, error) { return NewBytes("Hello World!", UTF8) },
		version: 1, level: M, mask: 6,
		penalty: [8]int{1109, 1172, 1133, 1120, 1137, 1246, 1088, 1167},
	},
	{
		name:    "HELLO WORLD",
		seg:     func() (Segment, error) { return NewAlphanumeric("HELLO WORLD") },
		version: 1, level: Q, mask: 0,
		penalty: [8]int{1067, 1230, 1266, 1161, 1339, 1276, 1074, 1278},
	},
	{
		name:    "digits",
		seg:     func() (Segment, error) { return NewNumeric("01234567") },
		version: 1, level: H, mask: 6,
		penalty: [8]int{1161, 1138, 1165, 1211, 1240, 1191, 1134, 1169},
	},
	{
		name: "pi",
		seg: func() (Segment, error) {
			return NewNumeric("314159265358979323846264338327950288419716939937510")
		},
		version: 2, level: M, mask: 3,
		penalty: [8]int{1223, 1376, 1229, 1179, 1309, 1415, 1208, 1191},
	},
	{
		name: "url",
		seg: func() (Segment, error) {
			return NewBytes("https://www.example.com/"+strings.Repeat("x", 150), UTF8)
		},
		version: 8, level: L, mask: 0,
		penalty: [8]int{1921, 2064, 1945, 2605, 2479, 2093, 2312, 2303},
	},
}

func TestPenalty(t *testing.T) {
	for _, tt := range penaltyTests {
		t.Run(tt.name, func(t *testing.T) {
			seg, err := tt.seg()
			require.NoError(t, err)
			var pen [8]int
			for mask := range pen {
				c, err := Encode(tt.version, tt.level, mask, seg)
				require.NoError(t, err)
				assert.Equal(t, mask, c.Mask)
				pen[mask] = c.Penalty()
			}
			assert.Equal(t, tt.penalty, pen)

			c, err := Encode(tt.version, tt.level, -1, seg)
			require.NoError(t, err)
			assert.Equal(t, tt.mask, c.Mask)
			assert.Equal(t, tt.version, c.Version)
			assert.Equal(t, tt.level, c.Level)
			assert.Equal(t, tt.version.Size(), c.Dimension())
		})
	}
}

func TestCodeFormat(t *testing.T) {
	seg, err := NewBytes("format", UTF8)
	require.NoError(t, err)
	for l := L; l <= H; l++ {
		for mask := 0; mask < 8; mask++ {
			c, err := Encode(3, l, mask, seg)
			require.NoError(t, err)
			a, b := c.Format()
			assert.Equal(t, formatBits(l, mask), a, "%v/%d", l, mask)
			assert.Equal(t, a, b, "%v/%d", l, mask)
		}
	}
}

func TestPenaltyBlank(t *testing.T) {
	// All white: runs of 21 in 42 lines, 400 boxes, 100% off balance.
	c := &Code{Bitmap: make([]byte, 21*3), Size: 21, Stride: 3}
	assert.Equal(t, 42*(3+16)+400*3+90, c.Penalty())
}

func TestCodeBlack(t *testing.T) {
	c := &Code{Bitmap: make([]byte, 21*3), Size: 21, Stride: 3}
	c.Bitmap[3*5+1] = 0x40 // x=9, y=5
	assert.True(t, c.Black(9, 5))
	assert.True(t, c.Get(5, 9))
	assert.False(t, c.Black(5, 9))
	assert.False(t, c.Black(-1, 0))
	assert.False(t, c.Black(21, 0))
	assert.False(t, c.Black(0, 21))
}

func TestEncoderErrors(t *testing.T) {
	_, err := NewEncoder(0, L)
	assert.True(t, errors.Is(err, ErrVersion), "%v", err)
	_, err = NewEncoder(1, Level(7))
	assert.True(t, errors.Is(err, ErrLevel), "%v", err)

	e, err := NewEncoder(1, L)
	require.NoError(t, err)
	assert.True(t, errors.Is(e.SetMask(8), ErrMask))
	assert.True(t, errors.Is(e.SetMask(-2), ErrMask))
	assert.NoError(t, e.SetMask(-1))

	// 4+8+18*8 = 156 bits, 152 available.
	seg, err := NewBytes(strings.Repeat("a", 18), UTF8)
	require.NoError(t, err)
	_, err = e.Encode(seg)
	var ce *CapacityError
	require.True(t, errors.As(err, &ce), "%v", err)
	assert.Equal(t, CapacityError{Version: 1, Level: L, Bits: 156, Capacity: 152}, *ce)
	assert.Equal(t, 4, ce.Over())
	assert.True(t, errors.Is(err, ErrDataTooLong))
	assert.Contains(t, err.Error(), "version 1 at level L")
	assert.Zero(t, e.Bits())

	// The encoder is reusable after a failure.
	seg, err = NewBytes(strings.Repeat("a", 17), UTF8)
	require.NoError(t, err)
	c, err := e.Encode(seg)
	require.NoError(t, err)
	assert.Equal(t, Version(1), c.Version)

	long, err := NewNumeric(strings.Repeat("1", 1024))
	require.NoError(t, err)
	_, err = e.Encode(long)
	assert.Equal(t, CompatError{Numeric, 1, 1024}, err)
	assert.Zero(t, e.Bits())
}

func TestEncodeDeterministic(t *testing.T) {
	seg, err := NewBytes("https://example.com/some/path?query=1", UTF8)
	require.NoError(t, err)
	a, err := Encode(4, Q, -1, seg)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		b, err := Encode(4, Q, -1, seg)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}
