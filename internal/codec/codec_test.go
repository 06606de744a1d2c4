package codec

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundtrip(t *testing.T) {
	for _, typ := range append([]Type{TypeNone}, All...) {
		t.Run(typ.String(), func(t *testing.T) {
			testCompressorWithInitialBytes(t, typ, 0)
			testCompressorWithInitialBytes(t, typ, 100)
		})
	}
}

func testCompressorWithInitialBytes(t *testing.T, typ Type, numInitialBytes int) {
	data := append(randomBytes(1000), bytes.Repeat([]byte("dbtext urls wikipedia "), 400)...)
	initialBytes := randomBytes(numInitialBytes)
	compressed, err := Compress(typ, initialBytes, data)
	require.NoError(t, err)
	require.Equal(t, initialBytes, compressed[:len(initialBytes)])
	if typ != TypeNone {
		require.Less(t, len(compressed)-len(initialBytes), len(data))
	}
	decompressed, err := Decompress(typ, compressed[len(initialBytes):])
	require.NoError(t, err)
	require.Equal(t, data, decompressed)
}

func TestFromString(t *testing.T) {
	for _, typ := range append([]Type{TypeNone}, All...) {
		require.Equal(t, typ, FromString(typ.String()))
	}
	require.Equal(t, TypeZstd, FromString(" ZSTD "))
	require.Equal(t, TypeUnknown, FromString("brotli"))
	require.Equal(t, "unknown", TypeUnknown.String())
}

func TestParse(t *testing.T) {
	types, err := Parse([]string{"zstd", "lz4"})
	require.NoError(t, err)
	require.Equal(t, []Type{TypeZstd, TypeLz4}, types)

	types, err = Parse([]string{"all"})
	require.NoError(t, err)
	require.Equal(t, All, types)

	_, err = Parse([]string{"zstd", "brotli"})
	require.Error(t, err)
}

func TestUnknownType(t *testing.T) {
	_, err := Compress(TypeUnknown, nil, []byte("x"))
	require.Error(t, err)
	_, err = Decompress(TypeUnknown, []byte("x"))
	require.Error(t, err)
}

func BenchmarkCompress(b *testing.B) {
	data := bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog. "), 2000)
	for _, typ := range All {
		b.Run(typ.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for b.Loop() {
				if _, err := Compress(typ, nil, data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
