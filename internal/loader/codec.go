package loader

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec wraps the byte stream of a graph file.
type Codec struct {
	Ext       string
	NewReader func(io.Reader) (io.ReadCloser, error)
	NewWriter func(io.Writer) (io.WriteCloser, error)
}

var codecs = []Codec{
	{
		Ext:       ".json.gz",
		NewReader: func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) },
		NewWriter: func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil },
	},
	{
		Ext: ".json.zst",
		NewReader: func(r io.Reader) (io.ReadCloser, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return dec.IOReadCloser(), nil
		},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		},
	},
	{
		Ext:       ".json.lz4",
		NewReader: func(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(lz4.NewReader(r)), nil },
		NewWriter: func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil },
	},
	{
		Ext:       ".json",
		NewReader: func(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(r), nil },
		NewWriter: func(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil },
	},
}

// CodecFor picks a codec from the file name extension.
func CodecFor(name string) (Codec, error) {
	lower := strings.ToLower(name)
	for _, c := range codecs {
		if strings.HasSuffix(lower, c.Ext) {
			return c, nil
		}
	}
	return Codec{}, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
