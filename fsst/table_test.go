package fsst

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableAddFind(t *testing.T) {
	tbl := newTable()
	if !tbl.addSymbol(newSymbolFromBytes([]byte{'x'})) {
		t.Fatalf("add single-byte")
	}
	if !tbl.addSymbol(newSymbolFromBytes([]byte{'a', 'b'})) {
		t.Fatalf("add two-byte")
	}
	if !tbl.addSymbol(newSymbolFromBytes([]byte{'a', 'b', 'c'})) {
		t.Fatalf("add long")
	}

	code := tbl.findLongestSymbol(newSymbolFromBytes([]byte{'a', 'b', 'c', 'd'}))
	if got := tbl.symbols[code]; got.length() != 3 {
		t.Fatalf("expected the 3-byte match, got len %d", got.length())
	}
	code = tbl.findLongestSymbol(newSymbolFromBytes([]byte{'a', 'b', 'z'}))
	if got := tbl.symbols[code]; got.length() != 2 {
		t.Fatalf("expected the 2-byte match, got len %d", got.length())
	}
	code = tbl.findLongestSymbol(newSymbolFromBytes([]byte{'q'}))
	if code != 'q' {
		t.Fatalf("unknown byte should map to its escape code, got %d", code)
	}
}

func TestTableHashCollision(t *testing.T) {
	tbl := newTable()
	s := newSymbolFromBytes([]byte("abc"))
	if !tbl.addSymbol(s) {
		t.Fatalf("first insert")
	}
	if tbl.hashInsert(s) {
		t.Fatalf("second insert into the same slot must fail")
	}
}

func TestTableClearSymbols(t *testing.T) {
	tbl := newTable()
	tbl.addSymbol(newSymbolFromBytes([]byte("x")))
	tbl.addSymbol(newSymbolFromBytes([]byte("ab")))
	tbl.addSymbol(newSymbolFromBytes([]byte("abc")))
	tbl.clearSymbols()

	fresh := newTable()
	if tbl.nSymbols != 0 || tbl.lenHisto != fresh.lenHisto {
		t.Fatalf("counts not reset: n=%d histo=%v", tbl.nSymbols, tbl.lenHisto)
	}
	if tbl.byteCodes != fresh.byteCodes || tbl.shortCodes != fresh.shortCodes || tbl.hashTab != fresh.hashTab {
		t.Fatalf("lookups not restored")
	}
}

func TestFinalize(t *testing.T) {
	tbl := newTable()
	tbl.addSymbol(newSymbolFromBytes([]byte{'a'}))
	tbl.addSymbol(newSymbolFromBytes([]byte{'b', 'c'}))
	tbl.addSymbol(newSymbolFromBytes([]byte{'d', 'e', 'f'}))
	tbl.finalize()
	if tbl.nSymbols != 3 {
		t.Fatalf("nSymbols=%d", tbl.nSymbols)
	}
	// unique 2-byte first, then the 3-byte, then 1-byte
	if tbl.suffixLim != 1 {
		t.Fatalf("suffixLim=%d", tbl.suffixLim)
	}
	for code, want := range []uint32{2, 3, 1} {
		s := tbl.symbols[code]
		if s.length() != want || int(s.code()) != code {
			t.Fatalf("code %d: len=%d code=%d", code, s.length(), s.code())
		}
	}
}

func TestRebuildTableRoundtrip(t *testing.T) {
	input := []byte("When in the Course of human events, it becomes necessary for one people to dissolve")
	tbl := Train([][]byte{input})
	var buf bytes.Buffer
	n, err := tbl.WriteTo(&buf)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if int(n) != buf.Len() {
		t.Fatalf("WriteTo reported %d, wrote %d", n, buf.Len())
	}
	var tbl2 Table
	if _, err := tbl2.ReadFrom(&buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if tbl2.Symbols() != tbl.Symbols() {
		t.Fatalf("symbols %d != %d", tbl2.Symbols(), tbl.Symbols())
	}
	got := tbl2.DecodeAll(tbl2.EncodeAll(input))
	if !bytes.Equal(got, input) {
		t.Fatalf("rebuild roundtrip mismatch")
	}
}

func TestReadFromBadVersion(t *testing.T) {
	data, err := Train([][]byte{[]byte("version check")}).MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	data[4] ^= 0xFF
	var tbl Table
	if err := tbl.UnmarshalBinary(data); err != ErrBadVersion {
		t.Fatalf("want ErrBadVersion, got %v", err)
	}
}

func TestReadFromTruncated(t *testing.T) {
	data, err := Train([][]byte{[]byte(strings.Repeat("truncated table ", 20))}).MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, n := range []int{0, 7, 15, len(data) - 1} {
		var tbl Table
		if err := tbl.UnmarshalBinary(data[:n]); err == nil {
			t.Fatalf("expected error for %d of %d bytes", n, len(data))
		}
	}
}

func TestTableLimits(t *testing.T) {
	var inputs [][]byte
	for i := 0; i < 300; i++ {
		inputs = append(inputs, []byte(strings.Repeat(string(rune('a'+i%26)), i%8+1)))
	}
	tbl := Train(inputs)
	if tbl.Symbols() > fsstMaxSymbols {
		t.Fatalf("too many symbols: %d", tbl.Symbols())
	}
	for _, in := range inputs {
		if got := tbl.DecodeAll(tbl.EncodeAll(in)); !bytes.Equal(got, in) {
			t.Fatalf("roundtrip failed with many symbols: %q", in)
		}
	}
}

func BenchmarkEncode(b *testing.B) {
	data := bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog. "), 2000)
	tbl := Train([][]byte{data})

	b.Run("EncodeAll", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		b.ReportAllocs()
		for b.Loop() {
			_ = tbl.EncodeAll(data)
		}
	})

	b.Run("CompressInto", func(b *testing.B) {
		dst := make([]byte, 0, MaxCompressedLen(len(data)))
		b.SetBytes(int64(len(data)))
		b.ReportAllocs()
		for b.Loop() {
			if _, err := tbl.CompressInto(dst[:0], data); err != nil {
				b.Fatal(err)
			}
		}
	})
}
