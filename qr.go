// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package qr encodes QR codes.

Encode chooses segment modes for text, finds the smallest QR version
the data fits in at the requested error correction level, raises the
level while the data still fits and picks the mask with the lowest
penalty.  Options change each of those steps.
*/
package qr // import "github.com/miataru/qr"

import (
	"github.com/pkg/errors"

	"github.com/miataru/qr/coding"
	"github.com/miataru/qr/split"
)

// A Level denotes a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level = coding.Level

const (
	L = coding.L // 20% redundant
	M = coding.M // 38% redundant
	Q = coding.Q // 55% redundant
	H = coding.H // 65% redundant
)

// A Version is a QR version from 1 to 40.
type Version = coding.Version

// A Code is a QR code: a square grid of modules.
type Code = coding.Code

// CapacityError reports data too long for the allowed versions.
// It matches ErrDataTooLong.
type CapacityError = coding.CapacityError

var (
	ErrDataTooLong = coding.ErrDataTooLong
	ErrLevel       = coding.ErrLevel
	ErrVersion     = coding.ErrVersion
	ErrMask        = coding.ErrMask
	ErrBitLength   = coding.ErrBitLength
	ErrCharset     = errors.New("qr: invalid charset")
)

// config holds encoding parameters set by Options.
type config struct {
	min, max Version
	mask     int
	boost    bool
	policy   split.Policy
	charset  coding.Charset
	eci      bool
	kanji    bool
}

// An Option sets an encoding parameter.
type Option func(*config) error

// WithVersion limits the QR version to the range from min to max.
// The default is 1 to 40.
func WithVersion(min, max Version) Option {
	return func(c *config) error {
		if !min.Valid() || !max.Valid() || min > max {
			return errors.Wrapf(ErrVersion, "versions %d to %d", min, max)
		}
		c.min, c.max = min, max
		return nil
	}
}

// WithMask sets the mask pattern, 0 to 7.  With -1, the default, the
// mask with the lowest penalty is used.
func WithMask(mask int) Option {
	return func(c *config) error {
		if mask < -1 || mask > 7 {
			return errors.Wrapf(ErrMask, "mask %d", mask)
		}
		c.mask = mask
		return nil
	}
}

// WithBoost enables or disables raising the error correction level
// while the data still fits the chosen version.  It is enabled by
// default.
func WithBoost(boost bool) Option {
	return func(c *config) error {
		c.boost = boost
		return nil
	}
}

// WithOptimalSegmentation splits text into segments of different
// modes to minimise the encoded length.  By default text is encoded
// in a single segment.
func WithOptimalSegmentation() Option {
	return func(c *config) error {
		c.policy = split.Optimal
		return nil
	}
}

// WithCharset sets the character encoding of byte mode segments.
// The default is UTF-8.
func WithCharset(cs coding.Charset) Option {
	return func(c *config) error {
		switch cs {
		case coding.UTF8, coding.Latin1, coding.ShiftJIS:
		default:
			return errors.Wrapf(ErrCharset, "%v", cs)
		}
		c.charset = cs
		return nil
	}
}

// WithECI precedes the data with an ECI segment designating the
// byte mode character encoding.
func WithECI() Option {
	return func(c *config) error {
		c.eci = true
		return nil
	}
}

// WithKanji enables or disables kanji mode for text.  It is enabled
// by default.
func WithKanji(kanji bool) Option {
	return func(c *config) error {
		c.kanji = kanji
		return nil
	}
}

func newConfig(level Level, opts []Option) (*config, error) {
	if !level.Valid() {
		return nil, errors.Wrapf(ErrLevel, "level %d", level)
	}
	c := &config{
		min:   coding.MinVersion,
		max:   coding.MaxVersion,
		mask:  -1,
		boost: true,
		kanji: true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Encode returns a QR code encoding text at the given error correction
// level.
func Encode(text string, level Level, opts ...Option) (*Code, error) {
	c, err := newConfig(level, opts)
	if err != nil {
		return nil, err
	}
	sp, err := split.New(split.String{
		Text:    text,
		Charset: c.charset,
		NoKanji: !c.kanji,
	}, c.policy)
	if err != nil {
		return nil, err
	}
	return c.encode(level, sp)
}

// EncodeBytes returns a QR code encoding data in a single byte mode
// segment at the given error correction level.
func EncodeBytes(data []byte, level Level, opts ...Option) (*Code, error) {
	c, err := newConfig(level, opts)
	if err != nil {
		return nil, err
	}
	var segs fixed
	if len(data) != 0 {
		seg, err := coding.NewBytes(string(data), coding.UTF8)
		if err != nil {
			return nil, err
		}
		segs = fixed{seg}
	}
	return c.encode(level, segs)
}

// EncodeSegments returns a QR code encoding segs at the given error
// correction level.  Segmentation options are ignored.
func EncodeSegments(segs []coding.Segment, level Level, opts ...Option) (*Code, error) {
	c, err := newConfig(level, opts)
	if err != nil {
		return nil, err
	}
	return c.encode(level, fixed(segs))
}

// fixed is a split.Splitter returning the same segments for any size
// class.
type fixed []coding.Segment

func (f fixed) Split(int) ([]coding.Segment, error) { return f, nil }

// encode finds the smallest version from c.min to c.max fitting the
// segments, boosts the level and encodes the code.
func (c *config) encode(level Level, sp split.Splitter) (*Code, error) {
	var head []coding.Segment
	if c.eci {
		seg, err := coding.NewECI(c.charset.ECI())
		if err != nil {
			return nil, err
		}
		head = []coding.Segment{seg}
	}

	var (
		segs  []coding.Segment
		class = -1
		bits  int
		fits  bool
		v     = c.min
	)
	for {
		// Segment lengths only change with the size class.
		if cl := v.SizeClass(); cl != class {
			class = cl
			s, err := sp.Split(class)
			if err != nil {
				return nil, err
			}
			segs = append(head[:len(head):len(head)], s...)
			bits, fits = split.Length(segs, class)
		}
		if fits && bits <= v.DataBits(level) {
			break
		}
		if v == c.max {
			return nil, &CapacityError{
				Version:  v,
				Level:    level,
				Bits:     bits,
				Capacity: v.DataBits(level),
			}
		}
		v++
	}

	if c.boost {
		for l := level + 1; l <= H; l++ {
			if bits <= v.DataBits(l) {
				level = l
			}
		}
	}
	return coding.Encode(v, level, c.mask, segs...)
}
