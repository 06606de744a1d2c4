package fsst

import "testing"

func TestSymbolBasics(t *testing.T) {
	s := newSymbolFromByte('A', 123)
	if s.length() != 1 {
		t.Fatalf("length=1 got %d", s.length())
	}
	if s.first() != 'A' || s.code() != 123 {
		t.Fatalf("first/code mismatch: %q %d", s.first(), s.code())
	}
	if s.ignoredBits() != 56 {
		t.Fatalf("ignored=56 got %d", s.ignoredBits())
	}

	s2 := newSymbolFromBytes([]byte("ABCDEFGH"))
	if s2.length() != 8 {
		t.Fatalf("len=8 got %d", s2.length())
	}
	if s2.first() != 'A' || s2.first2() != uint16('A')|(uint16('B')<<8) {
		t.Fatalf("first/first2 mismatch")
	}
	if s2.code() != fsstCodeMax&fsstCodeMask {
		t.Fatalf("fresh symbol should carry the unassigned code, got %d", s2.code())
	}

	s2.setCodeLen(42, 3)
	if s2.code() != 42 || s2.length() != 3 || s2.ignoredBits() != 40 {
		t.Fatalf("set failed: code=%d len=%d ignored=%d", s2.code(), s2.length(), s2.ignoredBits())
	}
}

func TestSymbolLongInputTruncated(t *testing.T) {
	s := newSymbolFromBytes([]byte("0123456789"))
	if s.length() != 8 {
		t.Fatalf("len=8 got %d", s.length())
	}
	if byte(s.val>>56) != '7' {
		t.Fatalf("last kept byte %q", byte(s.val>>56))
	}
}

func TestConcat(t *testing.T) {
	ab := fsstConcat(newSymbolFromBytes([]byte("ab")), newSymbolFromBytes([]byte("cd")))
	if ab.length() != 4 || ab.val != newSymbolFromBytes([]byte("abcd")).val {
		t.Fatalf("fsstConcat abcd: len=%d val=%x", ab.length(), ab.val)
	}

	c := fsstConcat(newSymbolFromBytes([]byte("abcd")), newSymbolFromBytes([]byte("WXYZ")))
	if c.length() != 8 || c.first() != 'a' {
		t.Fatalf("fsstConcat length=%d first=%q", c.length(), c.first())
	}
	c = fsstConcat(newSymbolFromBytes([]byte("abcdef")), newSymbolFromBytes([]byte("WXYZ")))
	if c.length() != 8 {
		t.Fatalf("fsstConcat must cap at 8, got %d", c.length())
	}
}
