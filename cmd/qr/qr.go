package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/k0kubun/pp"
	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"

	"github.com/miataru/qr"
	"github.com/miataru/qr/coding"
	"github.com/miataru/qr/split"
)

var g = struct {
	border   int            // quiet zone
	rev      bool           // reverse colours
	fn       string         // filename
	format   int            // output file format
	lev      qr.Level       // QR correction level
	min, max coding.Version // QR version range
	mask     int            // mask pattern, -1 for automatic
	latin1   bool           // Latin-1 byte mode
	sjis     bool           // Shift JIS byte mode
	eci      bool           // ECI segment
	nokanji  bool           // kanji mode disabled
	byteOnly bool           // byte mode only
	optimal  bool           // optimal segmentation
	noBoost  bool           // keep the requested level
	upper    bool           // uppercase
	debug    bool           // dump encoding details
}{
	border: 4,
}

func printUsage(w io.Writer) {
	cl := getopt.CommandLine
	prog := cl.Program()
	ul := make([]string, 1, 4)
	ul[0] = cl.UsageLine() + " [string ...]"
	ml := max(70-len("Usage: ")-1-len(prog), 0)
	for i := 0; len(ul[i]) > ml; i++ {
		s := ul[i]
		n := ml - 1
		for n > 0 && (s[n] != ' ' || s[n+1] != '[') {
			n--
		}
		ul = append(ul, s[n+1:])
		ul[i] = s[:max(n, 0)]
		ml = 60
	}
	fmt.Fprint(w, "QR code generator\nUsage: ", prog, " ",
		strings.Join(ul, "\n          "), `
If no string is given, data is read from standard input and the final
newline is stripped.  Defaults: UTF-8 byte mode, kanji mode segments
enabled, single segment, automatic mask, error correction level raised
while the data still fits.

`)
	var b bytes.Buffer
	cl.PrintOptions(&b)
	bb := b.Bytes()
	if n := bytes.Index(bb, []byte(" [-1]")); n >= 0 {
		w.Write(bb[:n])
		bb = bb[n+len(" [-1]"):]
	}
	w.Write(bb)
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

func usage() {
	printUsage(os.Stderr)
	os.Exit(2)
}

func help() {
	printUsage(os.Stdout)
	os.Exit(0)
}

func version() {
	fmt.Println(`qr version 0.9.0
Copyright (c) 2011 The Go Authors
Copyright (c) 2025 Vadim Vygonets`)
	os.Exit(0)
}

var formats = []string{"utf8", "utf8i", "ascii", "asciii"}

var encoders = [...]func(*qr.Code, io.Writer) error{
	halfBlocks,
	ascii,
}

func parseFlags() {
	getopt.SetUsage(usage)
	getopt.Flag(opt(help), 'h', "show this help").SetFlag()
	getopt.Flag(opt(version), 'V', "print version and copyright").SetFlag()
	getopt.Flag(&g.nokanji, 'K', "disable kanji mode")
	getopt.Flag(&g.latin1, '1', "encode byte mode segments in Latin-1")
	getopt.Flag(&g.sjis, 'k', "encode byte mode segments in Shift JIS")
	getopt.Flag(&g.byteOnly, '8', "encode entire data in byte mode")
	getopt.Flag(&g.optimal, 'O', "split data into segments of "+
		"different modes to minimise its length")
	getopt.Flag(&g.noBoost, 'b', "do not raise the error correction "+
		"level when the data fits")
	getopt.Flag(&g.eci, 'e', "encode ECI segment setting "+
		"character encoding according to -1 and -k flags")
	getopt.Flag(&g.upper, 'i', `ignore case, convert input to uppercase`)
	getopt.Flag(&g.debug, 'd', "dump encoding details to standard error")
	getopt.Flag(&g.border, 'm', `quiet zone in modules`, "margin")
	fno := getopt.Flag(&g.fn, 'o', `output file, or "-" for `+
		`standard output`, "file")
	minv := getopt.Unsigned('v', 1, &getopt.UnsignedLimit{Base: 0, Bits: 8, Min: 1, Max: 40},
		"minimum QR version", "ver")
	maxv := getopt.Unsigned('x', 40, &getopt.UnsignedLimit{Base: 0, Bits: 8, Min: 1, Max: 40},
		"maximum QR version", "ver")
	mask := getopt.Signed('p', -1, &getopt.SignedLimit{Base: 0, Bits: 8, Min: -1, Max: 7},
		"mask pattern; automatic if not given", "mask")
	lev := getopt.Enum('l',
		[]string{"l", "m", "q", "h", "L", "M", "Q", "H"}, "l",
		"error correction level, lowest to highest", "l|m|q|h")
	ff := getopt.Enum('t', formats, "", `output format, one of: `+
		strings.Join(formats, ", ")+
		`; types with "i" appended have colours inverted; `+
		`if no -o is given and standard output is a TTY, `+
		`default is utf8, otherwise ascii`, "type")

	getopt.Parse()
	if g.latin1 && g.sjis {
		fmt.Fprintln(os.Stderr, "-1 and -k are incompatible")
		usage()
	}
	if g.byteOnly && g.optimal {
		fmt.Fprintln(os.Stderr, "-8 and -O are incompatible")
		usage()
	}
	if *minv > *maxv {
		fmt.Fprintln(os.Stderr, "-v must not exceed -x")
		usage()
	}
	if g.border < 0 {
		fmt.Fprintln(os.Stderr, "-m must not be negative")
		usage()
	}
	g.min, g.max = coding.Version(*minv), coding.Version(*maxv)
	g.mask = int(*mask)
	g.lev = qr.Level(strings.Index("lmqhLMQH", *lev) & 3)
	if *ff == "" {
		if !fno.Seen() && isatty.IsTerminal(uintptr(syscall.Stdout)) {
			*ff = "utf8"
		} else {
			*ff = "ascii"
		}
	}
	for i, v := range formats {
		if *ff == v {
			g.format = i >> 1
			g.rev = i&1 != 0
			break
		}
	}
	if g.fn == "-" {
		g.fn = ""
	}
}

// options returns the encoding options set by the flags.
func options() []qr.Option {
	opts := []qr.Option{
		qr.WithVersion(g.min, g.max),
		qr.WithMask(g.mask),
		qr.WithBoost(!g.noBoost),
		qr.WithKanji(!g.nokanji),
		qr.WithCharset(charset()),
	}
	if g.optimal {
		opts = append(opts, qr.WithOptimalSegmentation())
	}
	if g.eci {
		opts = append(opts, qr.WithECI())
	}
	return opts
}

func main() {
	log.SetFlags(0)
	parseFlags()

	var s string
	if args := getopt.Args(); len(args) != 0 {
		s = strings.Join(args, " ")
	} else {
		var b strings.Builder
		if _, err := io.Copy(&b, os.Stdin); err != nil {
			log.Fatalln(err)
		}
		s, _ = strings.CutSuffix(
			strings.ReplaceAll(b.String(), "\r\n", "\n"), "\n")
	}
	if g.upper {
		s = strings.ToUpper(s)
	}

	var (
		c   *qr.Code
		err error
	)
	if g.byteOnly {
		var b []byte
		if b, err = charset().Transcode(s); err != nil {
			log.Fatalln(err)
		}
		c, err = qr.EncodeBytes(b, g.lev, options()...)
	} else {
		c, err = qr.Encode(s, g.lev, options()...)
	}
	if err != nil {
		log.Fatalln(err)
	}
	if g.debug {
		dump(s, c)
	}
	write(c)
}

func charset() coding.Charset {
	switch {
	case g.latin1:
		return coding.Latin1
	case g.sjis:
		return coding.ShiftJIS
	}
	return coding.UTF8
}

// dump pretty-prints the parameters chosen for c to standard error.
func dump(s string, c *qr.Code) {
	info := struct {
		Version  int
		Size     int
		Level    string
		Mask     int
		Penalty  int
		Segments []string
	}{
		Version: int(c.Version),
		Size:    c.Dimension(),
		Level:   c.Level.String(),
		Mask:    c.Mask,
		Penalty: c.Penalty(),
	}
	if !g.byteOnly {
		policy := split.Single
		if g.optimal {
			policy = split.Optimal
		}
		sp, err := split.New(split.String{
			Text:    s,
			Charset: charset(),
			NoKanji: g.nokanji,
		}, policy)
		if err == nil {
			segs, err := sp.Split(c.Version.SizeClass())
			if err == nil {
				for _, seg := range segs {
					info.Segments = append(info.Segments, seg.String())
				}
			}
		}
	}
	pp.Fprintln(os.Stderr, info)
}

func write(c *qr.Code) {
	var w = os.Stdout
	if g.fn != "" {
		var err error
		if w, err = os.OpenFile(g.fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
			0666); err != nil {
			log.Fatalln(err)
		}
	}
	err := encoders[g.format](c, w)
	if g.fn != "" && err == nil {
		err = w.Close()
	}
	if err != nil {
		log.Fatalln(err)
	}
}

// black reports whether the module at x, y is dark after reversal.
func black(c *qr.Code, x, y int) bool {
	return c.Black(x, y) != g.rev
}

// halfBlocks prints c two rows per line using half block characters.
// Terminals usually draw light text on a dark background, hence dark
// modules are printed as spaces unless reversed.
func halfBlocks(c *qr.Code, w io.Writer) error {
	blocks := [4]string{"█", "▄", "▀", " "}
	siz := c.Dimension()
	bord := g.border
	var b strings.Builder
	for y := -bord; y < siz+bord; y += 2 {
		for x := -bord; x < siz+bord; x++ {
			var i int
			if black(c, x, y) {
				i |= 1
			}
			if y+1 < siz+bord && black(c, x, y+1) {
				i |= 2
			}
			b.WriteString(blocks[i])
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func ascii(c *qr.Code, w io.Writer) error {
	siz := c.Dimension()
	bord := g.border
	pix := siz + 2*bord
	b := make([]byte, (pix*2+1)*pix)
	i := 0
	for y := -bord; y < siz+bord; y++ {
		for x := -bord; x < siz+bord; x++ {
			var p byte = ' '
			if black(c, x, y) {
				p = '#'
			}
			_ = b[i+1]
			b[i], b[i+1] = p, p
			i += 2
		}
		b[i] = '\n'
		i++
	}
	_, err := w.Write(b)
	return err
}
