// Package codec wraps the general-purpose compressors the benchmark runs as
// baselines next to FSST.
package codec

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

type Type byte

const (
	TypeNone    Type = 0
	TypeGzip    Type = 1
	TypeSnappy  Type = 2
	TypeLz4     Type = 3
	TypeZstd    Type = 4
	TypeS2      Type = 5
	TypeUnknown Type = 255
)

// All lists the real codecs in a stable order.
var All = []Type{TypeGzip, TypeSnappy, TypeS2, TypeLz4, TypeZstd}

func FromString(str string) Type {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "none":
		return TypeNone
	case "gzip":
		return TypeGzip
	case "snappy":
		return TypeSnappy
	case "s2":
		return TypeS2
	case "lz4":
		return TypeLz4
	case "zstd":
		return TypeZstd
	default:
		return TypeUnknown
	}
}

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeGzip:
		return "gzip"
	case TypeSnappy:
		return "snappy"
	case TypeS2:
		return "s2"
	case TypeLz4:
		return "lz4"
	case TypeZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Parse maps codec names to types. "all" expands to All.
func Parse(names []string) ([]Type, error) {
	var types []Type
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), "all") {
			types = append(types, All...)
			continue
		}
		t := FromString(name)
		if t == TypeUnknown {
			return nil, errors.Errorf("unknown codec %q", name)
		}
		types = append(types, t)
	}
	return types, nil
}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
	zstdErr  error
)

// zstdCodec returns a shared single-threaded encoder and decoder so each
// call measures compression rather than setup.
func zstdCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEnc, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if zstdErr != nil {
			return
		}
		zstdDec, zstdErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	})
	return zstdEnc, zstdDec, errors.WithStack(zstdErr)
}

// Compress appends the compressed form of data to dst.
func Compress(t Type, dst []byte, data []byte) ([]byte, error) {
	var w io.WriteCloser
	buf := bytes.NewBuffer(dst)
	switch t {
	case TypeNone:
		return append(dst, data...), nil
	case TypeGzip:
		w = gzip.NewWriter(buf)
	case TypeSnappy:
		return appendEncoded(dst, s2.EncodeSnappy(nil, data)), nil
	case TypeS2:
		return appendEncoded(dst, s2.Encode(nil, data)), nil
	case TypeLz4:
		w = lz4.NewWriter(buf)
	case TypeZstd:
		enc, _, err := zstdCodec()
		if err != nil {
			return nil, err
		}
		return enc.EncodeAll(data, dst), nil
	default:
		return nil, errors.Errorf("unexpected compression type: %d", t)
	}
	if _, err := w.Write(data); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

func appendEncoded(dst, encoded []byte) []byte {
	if dst == nil {
		return encoded
	}
	return append(dst, encoded...)
}

// Decompress returns the decompressed form of data.
func Decompress(t Type, data []byte) ([]byte, error) {
	var r io.Reader
	switch t {
	case TypeNone:
		return append([]byte(nil), data...), nil
	case TypeGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		r = gr
	case TypeSnappy, TypeS2:
		out, err := s2.Decode(nil, data)
		return out, errors.WithStack(err)
	case TypeLz4:
		r = lz4.NewReader(bytes.NewReader(data))
	case TypeZstd:
		_, dec, err := zstdCodec()
		if err != nil {
			return nil, err
		}
		out, err := dec.DecodeAll(data, nil)
		return out, errors.WithStack(err)
	default:
		return nil, errors.Errorf("unexpected compression type: %d", t)
	}
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}
