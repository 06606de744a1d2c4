package fsst

import (
	"bytes"
	"errors"
	"testing"
)

func TestCompressBulkPreservesOrder(t *testing.T) {
	docs := [][]byte{
		[]byte("alpha alpha alpha"),
		nil,
		[]byte("beta"),
		[]byte("alpha beta gamma"),
	}
	tbl := Train(docs)
	out := tbl.CompressBulk(docs)
	if len(out) != len(docs) {
		t.Fatalf("got %d outputs for %d docs", len(out), len(docs))
	}
	dec := tbl.Decompressor()
	for i, comp := range out {
		if got := dec.DecodeAll(comp); !bytes.Equal(got, docs[i]) {
			t.Fatalf("doc %d: got %q want %q", i, got, docs[i])
		}
	}
}

func TestCompressIntoMatchesBulk(t *testing.T) {
	doc := bytes.Repeat([]byte("l_comment: carefully final deposits detect slyly. "), 40)
	tbl := Train([][]byte{doc})
	want := tbl.CompressBulk([][]byte{doc})[0]

	dst := make([]byte, 0, MaxCompressedLen(len(doc)))
	got, err := tbl.CompressInto(dst, doc)
	if err != nil {
		t.Fatalf("CompressInto: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("CompressInto differs from CompressBulk")
	}
	if &got[:1][0] != &dst[:1][0] {
		t.Fatalf("CompressInto must write into the caller's buffer")
	}

	// reuse the same buffer
	again, err := tbl.CompressInto(got[:0], doc)
	if err != nil {
		t.Fatalf("CompressInto reuse: %v", err)
	}
	if !bytes.Equal(again, want) {
		t.Fatalf("reused buffer produced different output")
	}
}

func TestCompressIntoAppends(t *testing.T) {
	doc := []byte("append after prefix, append after prefix")
	tbl := Train([][]byte{doc})
	prefix := []byte("hdr:")

	dst := make([]byte, 0, len(prefix)+MaxCompressedLen(len(doc)))
	dst = append(dst, prefix...)
	out, err := tbl.CompressInto(dst, doc)
	if err != nil {
		t.Fatalf("CompressInto: %v", err)
	}
	if !bytes.HasPrefix(out, prefix) {
		t.Fatalf("prefix overwritten: %q", out[:len(prefix)])
	}
	if !bytes.Equal(out[len(prefix):], tbl.EncodeAll(doc)) {
		t.Fatalf("appended bytes differ from EncodeAll")
	}
}

func TestCompressIntoShortBuffer(t *testing.T) {
	doc := []byte("not enough room for this one")
	tbl := Train([][]byte{doc})

	dst := make([]byte, 3, MaxCompressedLen(len(doc))+2)
	copy(dst, "abc")
	out, err := tbl.CompressInto(dst, doc)
	if !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("want ErrShortBuffer, got %v", err)
	}
	if string(out) != "abc" || string(dst[:cap(dst)][3:]) != string(make([]byte, cap(dst)-3)) {
		t.Fatalf("short buffer must be left untouched")
	}
}

func TestEncodeReusesBuffer(t *testing.T) {
	doc := []byte("reuse reuse reuse reuse")
	tbl := Train([][]byte{doc})

	buf := make([]byte, MaxCompressedLen(len(doc)))
	out := tbl.Encode(buf, doc)
	if &out[0] != &buf[0] {
		t.Fatalf("large enough buffer was not reused")
	}
	small := make([]byte, 1)
	if out := tbl.Encode(small, doc); !bytes.Equal(out, tbl.EncodeAll(doc)) {
		t.Fatalf("grown buffer produced different output")
	}
}

func TestMaxCompressedLen(t *testing.T) {
	tbl := Train(nil)
	for _, n := range []int{0, 1, 511, 512, 4096} {
		doc := bytes.Repeat([]byte{0xFE}, n)
		if got := len(tbl.EncodeAll(doc)); got > MaxCompressedLen(n) {
			t.Fatalf("n=%d: %d > %d", n, got, MaxCompressedLen(n))
		}
	}
}
