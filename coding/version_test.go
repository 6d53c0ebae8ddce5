// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionSize(t *testing.T) {
	tests := []struct {
		v     Version
		size  int
		class int
	}{
		{1, 21, Class0},
		{9, 53, Class0},
		{10, 57, Class1},
		{26, 121, Class1},
		{27, 125, Class2},
		{40, 177, Class2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.v.Size(), "version %v", tt.v)
		assert.Equal(t, tt.class, tt.v.SizeClass(), "version %v", tt.v)
	}
	assert.False(t, Version(0).Valid())
	assert.False(t, Version(41).Valid())
	assert.True(t, MinVersion.Valid())
	assert.True(t, MaxVersion.Valid())
}

func TestAlignmentPositions(t *testing.T) {
	tests := []struct {
		v    Version
		want []int
	}{
		{1, nil},
		{2, []int{6, 18}},
		{6, []int{6, 34}},
		{7, []int{6, 22, 38}},
		{14, []int{6, 26, 46, 66}},
		{15, []int{6, 26, 48, 70}},
		{32, []int{6, 34, 60, 86, 112, 138}},
		{36, []int{6, 24, 50, 76, 102, 128, 154}},
		{40, []int{6, 30, 58, 86, 114, 142, 170}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.AlignmentPositions(), "version %v", tt.v)
	}
	for v := MinVersion + 1; v <= MaxVersion; v++ {
		pos := v.AlignmentPositions()
		assert.Len(t, pos, int(v)/7+2, "version %v", v)
		assert.Equal(t, v.Size()-7, pos[len(pos)-1], "version %v", v)
	}
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		v          Version
		l          Level
		raw, data  int
		nblock, ec int
		remainder  int
	}{
		{1, L, 26, 19, 1, 7, 0},
		{1, M, 26, 16, 1, 10, 0},
		{1, Q, 26, 13, 1, 13, 0},
		{1, H, 26, 9, 1, 17, 0},
		{2, M, 44, 28, 1, 16, 7},
		{5, Q, 134, 62, 4, 18, 7},
		{7, L, 196, 156, 2, 20, 0},
		{14, H, 581, 197, 16, 24, 3},
		{21, M, 1156, 714, 17, 26, 4},
		{40, L, 3706, 2956, 25, 30, 0},
		{40, H, 3706, 1276, 81, 30, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.raw, tt.v.RawBytes(), "%v-%v", tt.v, tt.l)
		assert.Equal(t, tt.data, tt.v.DataBytes(tt.l), "%v-%v", tt.v, tt.l)
		assert.Equal(t, tt.data*8, tt.v.DataBits(tt.l), "%v-%v", tt.v, tt.l)
		assert.Equal(t, tt.remainder, tt.v.RemainderBits(), "%v-%v", tt.v, tt.l)
		nblock, ec := tt.v.Blocks(tt.l)
		assert.Equal(t, tt.nblock, nblock, "%v-%v", tt.v, tt.l)
		assert.Equal(t, tt.ec, ec, "%v-%v", tt.v, tt.l)
	}
	// Capacity shrinks with level and grows with version.
	for v := MinVersion; v <= MaxVersion; v++ {
		for l := L; l < H; l++ {
			assert.Greater(t, v.DataBytes(l), v.DataBytes(l+1), "%v-%v", v, l)
			if v < MaxVersion {
				assert.Greater(t, (v+1).DataBytes(l), v.DataBytes(l), "%v-%v", v, l)
			}
		}
	}
}

func TestVersionInfo(t *testing.T) {
	assert.Equal(t, uint32(0x07c94), Version(7).versionInfo())
	assert.Equal(t, uint32(0x28c69), Version(40).versionInfo())
}

func TestFormatBits(t *testing.T) {
	tests := []struct {
		l    Level
		mask int
		want uint16
	}{
		{L, 0, 0x77c4},
		{M, 0, 0x5412},
		{Q, 5, 0x2183},
		{H, 7, 0x083b},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBits(tt.l, tt.mask), "%v/%d", tt.l, tt.mask)
	}
	seen := make(map[uint16]bool)
	for l := L; l <= H; l++ {
		for mask := 0; mask < 8; mask++ {
			fb := formatBits(l, mask)
			assert.False(t, seen[fb], "%v/%d", l, mask)
			seen[fb] = true
		}
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "L", L.String())
	assert.Equal(t, "H", H.String())
	assert.Equal(t, "4", Level(4).String())
	assert.False(t, Level(-1).Valid())
}
