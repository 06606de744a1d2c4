package fsst

import (
	"github.com/pkg/errors"
)

// ErrShortBuffer is returned by CompressInto when dst lacks the spare
// capacity reported by MaxCompressedLen.
var ErrShortBuffer = errors.New("fsst: destination buffer too small")

// MaxCompressedLen is the largest output a Table can produce for n input
// bytes: every byte escaped, plus padding.
func MaxCompressedLen(n int) int {
	return 2*n + fsstOutputPadding
}

// prepare builds the encoder lookups on first use.
func (t *Table) prepare() {
	if t.encBuf != nil {
		return
	}
	t.rebuildIndices()
	t.noSuffixOpt, t.avoidBranch = chooseVariant(t)
	t.encBuf = make([]byte, fsstChunkSize+fsstChunkPadding)
}

// Encode compresses input, reusing buf when it is large enough.
// The result may have a different backing array than buf.
func (t *Table) Encode(buf, input []byte) []byte {
	if need := MaxCompressedLen(len(input)); cap(buf) < need {
		buf = make([]byte, need)
	} else {
		buf = buf[:cap(buf)]
	}
	return buf[:t.encode(buf, 0, input)]
}

// EncodeAll compresses input into a newly allocated slice.
func (t *Table) EncodeAll(input []byte) []byte {
	return t.Encode(nil, input)
}

// CompressBulk compresses each input into its own slice. The output has one
// entry per input, in order.
func (t *Table) CompressBulk(inputs [][]byte) [][]byte {
	out := make([][]byte, len(inputs))
	for i, in := range inputs {
		out[i] = t.EncodeAll(in)
	}
	return out
}

// CompressInto appends the compressed form of src to dst without growing
// it. dst must have at least MaxCompressedLen(len(src)) bytes of spare
// capacity, otherwise ErrShortBuffer is returned and dst is left untouched.
//
// Passing dst[:0] on every call reuses one buffer across calls.
func (t *Table) CompressInto(dst, src []byte) ([]byte, error) {
	if spare := cap(dst) - len(dst); spare < MaxCompressedLen(len(src)) {
		return dst, errors.Wrapf(ErrShortBuffer, "need %d spare bytes, have %d", MaxCompressedLen(len(src)), spare)
	}
	full := dst[:cap(dst)]
	return full[:t.encode(full, len(dst), src)], nil
}

// encode writes the compressed form of input to dst starting at pos and
// returns the end position. dst must hold MaxCompressedLen(len(input)) bytes
// past pos.
func (t *Table) encode(dst []byte, pos int, input []byte) int {
	t.prepare()
	byteLim := uint8(t.nSymbols) - uint8(t.lenHisto[0])
	for off := 0; off < len(input); {
		n := min(len(input)-off, fsstChunkSize)
		copy(t.encBuf[:n], input[off:off+n])
		t.encBuf[n] = 0
		pos = t.encodeChunk(dst, pos, t.encBuf, n, byteLim)
		off += n
	}
	return pos
}

// encodeChunk compresses buf[:end] into dst at pos. buf carries padding so
// 8-byte loads near end stay in bounds.
//
// Matches are tried in order: unique 2-byte prefix (noSuffixOpt only),
// 3..8 byte hash hit, 2-byte short code, then single byte or escape.
func (t *Table) encodeChunk(dst []byte, pos int, buf []byte, end int, byteLim uint8) int {
	for i := 0; i < end; {
		word := fsstUnalignedLoad(buf[i:])
		code := t.shortCodes[uint16(word&fsstMask16)]

		if t.noSuffixOpt && uint8(code) < uint8(t.suffixLim) {
			dst[pos] = uint8(code)
			pos++
			i += 2
			continue
		}

		h := t.hashTab[fsstHash(word&fsstMask24)&(fsstHashTabSize-1)]
		literal := uint8(word)
		switch {
		case h.icl < fsstICLFree && h.val == word&(^uint64(0)>>h.ignoredBits()):
			dst[pos] = uint8(h.code())
			pos++
			i += int(h.length())
		case t.avoidBranch:
			dst[pos] = uint8(code)
			pos++
			if code&fsstCodeBase != 0 {
				dst[pos] = literal
				pos++
			}
			i += int(code >> fsstLenBits)
		case uint8(code) < byteLim:
			dst[pos] = uint8(code)
			pos++
			i += 2
		default:
			dst[pos] = uint8(code)
			pos++
			if code&fsstCodeBase != 0 {
				dst[pos] = literal
				pos++
			}
			i++
		}
	}
	return pos
}

// chooseVariant picks the encoder strategy from the symbol statistics.
// noSuffixOpt: mostly 2-byte symbols with few prefix conflicts.
// avoidBranch: a length mix where branch prediction does poorly.
func chooseVariant(t *Table) (noSuffixOpt, avoidBranch bool) {
	if 100*int(t.lenHisto[1]) > 65*int(t.nSymbols) && 100*int(t.suffixLim) > 95*int(t.lenHisto[1]) {
		return true, false
	}
	if (t.lenHisto[0] > 24 && t.lenHisto[0] < 92) &&
		(t.lenHisto[0] < 43 || t.lenHisto[6]+t.lenHisto[7] < 29) &&
		(t.lenHisto[0] < 72 || t.lenHisto[2] < 72) {
		avoidBranch = true
	}
	return false, avoidBranch
}
