// Package compress wraps record streams in one of the stream compressors
// the bitrec tool understands: "none", "gzip", "zlib", "deflate", "zstd"
// and "lz4".
//
// Readers may also be opened with the name "auto", which sniffs the first
// bytes of the stream for a known magic number and falls back to "none".
package compress

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrUnknown is returned for a compression name with no registered Factory.
var ErrUnknown = errors.New("unknown compression")

// Auto is the reader name that selects the compression from the stream.
const Auto = "auto"

// Factory creates compressing writers and decompressing readers of one
// format.
type Factory interface {
	NewWriter(io.Writer) (io.WriteCloser, error)
	NewReader(io.Reader) (io.ReadCloser, error)
	Name() string
}

type noneFactory struct{}

func (noneFactory) NewWriter(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }
func (noneFactory) NewReader(r io.Reader) (io.ReadCloser, error)  { return io.NopCloser(r), nil }
func (noneFactory) Name() string                                  { return "none" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type gzipFactory struct{}

func (gzipFactory) NewWriter(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }
func (gzipFactory) NewReader(r io.Reader) (io.ReadCloser, error)  { return gzip.NewReader(r) }
func (gzipFactory) Name() string                                  { return "gzip" }

type zlibFactory struct{}

func (zlibFactory) NewWriter(w io.Writer) (io.WriteCloser, error) { return zlib.NewWriter(w), nil }
func (zlibFactory) NewReader(r io.Reader) (io.ReadCloser, error)  { return zlib.NewReader(r) }
func (zlibFactory) Name() string                                  { return "zlib" }

type deflateFactory struct{}

func (deflateFactory) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(w, flate.DefaultCompression)
}
func (deflateFactory) NewReader(r io.Reader) (io.ReadCloser, error) { return flate.NewReader(r), nil }
func (deflateFactory) Name() string                                 { return "deflate" }

type zstdFactory struct{}

func (zstdFactory) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func (zstdFactory) NewReader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

func (zstdFactory) Name() string { return "zstd" }

type lz4Factory struct{}

func (lz4Factory) NewWriter(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }
func (lz4Factory) NewReader(r io.Reader) (io.ReadCloser, error)  { return io.NopCloser(lz4.NewReader(r)), nil }
func (lz4Factory) Name() string                                  { return "lz4" }

// Predefined factories.
var (
	None    Factory = noneFactory{}
	Gzip    Factory = gzipFactory{}
	Zlib    Factory = zlibFactory{}
	Deflate Factory = deflateFactory{}
	Zstd    Factory = zstdFactory{}
	LZ4     Factory = lz4Factory{}
)

var factories = map[string]Factory{}

func init() {
	for _, f := range []Factory{None, Gzip, Zlib, Deflate, Zstd, LZ4} {
		factories[f.Name()] = f
	}
}

// Lookup returns the Factory registered under name. The empty name is
// "none".
func Lookup(name string) (Factory, error) {
	if name == "" {
		return None, nil
	}
	if f, ok := factories[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknown, name)
}

// Names returns the registered names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewWriter returns a writer compressing into w with the named format.
// The caller must Close it to flush the trailer.
func NewWriter(name string, w io.Writer) (io.WriteCloser, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return f.NewWriter(w)
}

// NewReader returns a reader decompressing r with the named format, or with
// the format Detect finds when name is Auto.
func NewReader(name string, r io.Reader) (io.ReadCloser, error) {
	if name == Auto {
		br := bufio.NewReader(r)
		// Peek reports io.EOF for short streams; what it did read is enough.
		prefix, _ := br.Peek(maxMagic)
		return Detect(prefix).NewReader(br)
	}
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return f.NewReader(r)
}

var magics = []struct {
	prefix []byte
	f      Factory
}{
	{[]byte{0x1f, 0x8b}, Gzip},
	{[]byte{0x28, 0xb5, 0x2f, 0xfd}, Zstd},
	{[]byte{0x04, 0x22, 0x4d, 0x18}, LZ4},
}

const maxMagic = 4

// Detect returns the Factory whose magic number starts prefix. A zlib
// header is recognized by its check bits. Anything else, raw deflate
// included, is None.
func Detect(prefix []byte) Factory {
	for _, m := range magics {
		if bytes.HasPrefix(prefix, m.prefix) {
			return m.f
		}
	}
	if len(prefix) >= 2 && prefix[0]&0x0f == 8 && prefix[0]>>4 <= 7 &&
		(uint16(prefix[0])<<8|uint16(prefix[1]))%31 == 0 {
		return Zlib
	}
	return None
}
