package fsst

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Table holds a trained symbol table for compression and decompression.
// A Table is created via Train, compresses with Encode, CompressBulk and
// CompressInto, and hands out a Decompressor for the reverse direction.
// After training, a Table can be serialized with WriteTo and restored with ReadFrom.
//
// A Table is not safe for concurrent use: the encoder state is built lazily.
type Table struct {
	// Symbol lookup structures (for encoding)
	shortCodes [65536]uint16           // 2-byte prefix -> [length|code], fast unique 2B path
	byteCodes  [256]uint16             // 1-byte -> [length|code], single-byte and escape fallback
	symbols    [fsstCodeMax]symbol     // canonical code -> symbol (value+length)
	hashTab    [fsstHashTabSize]symbol // direct-mapped 3–8B symbols keyed by first 3 bytes

	// Symbol metadata
	nSymbols  uint16    // number of learned symbols (0..255)
	suffixLim uint16    // end of unique 2B region [0..suffixLim)
	lenHisto  [8]uint16 // histogram of lengths 1..8 at indices 0..7

	// Encoder state (lazy-initialized on first Encode)
	// accelReady: true when shortCodes/byteCodes/hashTab are populated for encoding.
	//             Rebuilt lazily after deserialization to avoid cost if only decoding.
	// noSuffixOpt/avoidBranch: encoding strategy flags chosen based on symbol statistics.
	// encBuf: reusable chunk buffer (fsstChunkSize+fsstChunkPadding bytes) to avoid allocation per call.
	accelReady  bool   // encoder lookup structures are ready
	noSuffixOpt bool   // enable 2-byte fast path without suffix check
	avoidBranch bool   // prefer branchless emission in encodeChunk
	encBuf      []byte // scratch chunk buffer used by Encode

	// Decoder state, built on first use by Decompressor.
	dec *Decompressor
}

// Version is the FSST format version (publication date: February 18, 2019).
const fsstVersion uint64 = 20190218

// ErrBadVersion indicates the serialized table version is not supported.
var ErrBadVersion = errors.New("fsst: unsupported table version")

// newTable initializes a new empty table with defaults.
func newTable() *Table {
	t := &Table{}
	// pseudo symbols 0..255 (escaped bytes)
	for i := range 256 {
		t.symbols[i] = newSymbolFromByte(byte(i), packCodeLength(uint16(i), 1))
	}
	// mark unused
	unused := newSymbolFromByte(0, fsstCodeMask)
	for i := 256; i < fsstCodeMax; i++ {
		t.symbols[i] = unused
	}
	// empty hash table markers
	for i := range fsstHashTabSize {
		t.hashTab[i] = symbol{icl: fsstICLFree}
	}
	// fill byteCodes with pseudo code (escaped bytes)
	for i := range 256 {
		t.byteCodes[i] = packCodeLength(uint16(i), 1)
	}
	// fill shortCodes with pseudo code for first byte
	for i := range 65536 {
		t.shortCodes[i] = packCodeLength(uint16(i&fsstMask8), 1)
	}
	return t
}

// clearSymbols removes all learned symbols from the Table and restores the
// lookup structures (byteCodes/shortCodes/hashTab) to their default state.
// It also resets the length histogram and learned symbol count.
func (t *Table) clearSymbols() {
	t.lenHisto = [8]uint16{}
	for i := fsstCodeBase; i < int(fsstCodeBase)+int(t.nSymbols); i++ {
		switch t.symbols[i].length() {
		case 1:
			firstByte := t.symbols[i].first()
			t.byteCodes[firstByte] = packCodeLength(uint16(firstByte), 1)
		case 2:
			first2Bytes := t.symbols[i].first2()
			t.shortCodes[first2Bytes] = packCodeLength(first2Bytes&fsstMask8, 1)
		default:
			hashIndex := t.symbols[i].hash() & (fsstHashTabSize - 1)
			t.hashTab[hashIndex] = symbol{icl: fsstICLFree}
		}
	}
	t.nSymbols = 0
}

// hashInsert inserts a 3+ byte symbol into the direct-mapped hash table.
// It stores the symbol with masked value (ignore high bytes) and returns
// false if the target slot is already occupied.
func (t *Table) hashInsert(sym symbol) bool {
	hashIndex := sym.hash() & (fsstHashTabSize - 1)
	if t.hashTab[hashIndex].icl < fsstICLFree {
		return false
	}
	// mask high ignored bits before storing
	mask := ^uint64(0) >> sym.ignoredBits()
	t.hashTab[hashIndex] = symbol{val: sym.val & mask, icl: sym.icl}
	return true
}

// addSymbol assigns a new code to sym and installs it into the appropriate
// lookup structure based on its length:
//
//	1 byte -> byteCodes, 2 bytes -> shortCodes, 3–8 bytes -> hashTab.
//
// Returns false if capacity is exceeded or hash slot is taken.
func (t *Table) addSymbol(sym symbol) bool {
	if int(fsstCodeBase)+int(t.nSymbols) >= fsstCodeMax {
		return false
	}
	length := sym.length()
	code := fsstCodeBase + t.nSymbols
	sym.setCodeLen(uint32(code), length)
	switch length {
	case 1:
		t.byteCodes[sym.first()] = packCodeLength(code, 1)
	case 2:
		t.shortCodes[sym.first2()] = packCodeLength(code, 2)
	default:
		if !t.hashInsert(sym) {
			return false
		}
	}
	t.symbols[code] = sym
	t.nSymbols++
	t.lenHisto[length-1]++
	return true
}

// findLongestSymbol decides the longest match at cur represented as a temporary symbol.
func (t *Table) findLongestSymbol(sym symbol) uint16 {
	hashEntry := t.hashTab[sym.hash()&(fsstHashTabSize-1)]
	if hashEntry.icl <= sym.icl {
		mask := ^uint64(0) >> uint(hashEntry.ignoredBits())
		if hashEntry.val == (sym.val & mask) {
			return hashEntry.code() & fsstCodeMask
		}
	}
	if sym.length() >= 2 {
		code := t.shortCodes[sym.first2()] & fsstCodeMask
		if code >= fsstCodeBase {
			return code
		}
	}
	return t.byteCodes[sym.first()] & fsstCodeMask
}

// finalize reorders symbol codes by length for encoding efficiency.
//
// Code layout after finalization:
//
//	[0..suffixLim):          2-byte symbols with unique prefixes (fast shortCodes lookup)
//	[suffixLim..byteLim):    2-byte symbols with conflicts, then 3-8 byte symbols
//	[byteLim..nSymbols):     1-byte symbols (direct byteCodes lookup)
//
// Effects: updates code assignments in symbols[], sets suffixLim accordingly,
// preserves lengths, and leaves rebuilding of fast lookup tables to rebuildIndices.
func (t *Table) finalize() {
	// Precondition: nSymbols <= 255
	newCode := make([]uint8, 256)
	var codeStart [8]uint8 // Starting code for each length group (1-8 bytes)
	byteLim := uint8(t.nSymbols) - uint8(t.lenHisto[0])

	// Initialize code ranges: 1-byte symbols get [byteLim, nSymbols)
	codeStart[0] = byteLim
	codeStart[1] = 0 // 2-byte symbols start at 0 (will be partitioned)
	for i := 1; i < 7; i++ {
		codeStart[i+1] = codeStart[i] + uint8(t.lenHisto[i])
	}

	t.suffixLim = uint16(codeStart[1])
	t.symbols[newCode[0]] = t.symbols[256]

	// Assign new codes, partitioning 2-byte symbols by prefix uniqueness
	conflictingTwoByteCode := int(codeStart[2]) // Codes for conflicting 2-byte symbols (count down)
	for i := range int(t.nSymbols) {
		sym := t.symbols[int(fsstCodeBase)+i]
		length := sym.length()

		if length == 2 {
			// Check if this 2-byte symbol has a unique prefix (no other symbols share first2)
			hasConflict := false
			first2 := sym.first2()
			for k := range int(t.nSymbols) {
				if k == i {
					continue
				}
				other := t.symbols[int(fsstCodeBase)+k]
				if other.length() > 1 && other.first2() == first2 {
					hasConflict = true
					break
				}
			}

			if !hasConflict {
				// Unique prefix: assign to fast-path range [0..suffixLim)
				newCode[i] = uint8(t.suffixLim)
				t.suffixLim++
			} else {
				// Conflicting prefix: assign to slow-path range [suffixLim..codeStart[2])
				conflictingTwoByteCode--
				newCode[i] = uint8(conflictingTwoByteCode)
			}
		} else {
			// Non-2-byte symbols: assign sequentially within length group
			lengthIdx := int(length - 1)
			newCode[i] = codeStart[lengthIdx]
			codeStart[lengthIdx]++
		}

		sym.setCodeLen(uint32(newCode[i]), length)
		t.symbols[int(newCode[i])] = sym
	}
}

// rebuildIndices reconstructs byteCodes, shortCodes, and hashTab from the
// finalized symbols. It preserves existing code assignments (already set in
// symbols[i]) and only rebuilds the derived lookup structures. Safe to call
// multiple times; it is a no-op if accelReady is already true.
func (t *Table) rebuildIndices() {
	if t.accelReady {
		return
	}
	// 1) Reset to defaults
	// byteCodes default to ESCAPE (fsstCodeMask) with len=1 marker
	for i := range 256 {
		t.byteCodes[i] = packCodeLength(fsstCodeMask, 1)
	}
	for i := range fsstHashTabSize {
		t.hashTab[i] = symbol{icl: fsstICLFree}
	}

	// 2) Apply single-byte symbols to byteCodes
	for i := range int(t.nSymbols) {
		if sym := t.symbols[i]; sym.length() == 1 {
			t.byteCodes[sym.first()] = packCodeLength(uint16(i), 1)
		}
	}

	// 3) Initialize shortCodes to mirror byteCodes of the first byte
	for i := range 65536 {
		t.shortCodes[i] = t.byteCodes[i&fsstMask8]
	}

	// 4) Apply two-byte symbols to shortCodes, 5) insert 3+ byte symbols into hash table
	for i := range int(t.nSymbols) {
		sym := t.symbols[i]
		switch {
		case sym.length() == 2:
			t.shortCodes[sym.first2()] = packCodeLength(uint16(i), 2)
		case sym.length() >= 3:
			_ = t.hashInsert(sym)
		}
	}

	t.accelReady = true
}

// Symbols returns the number of learned symbols.
func (t *Table) Symbols() int { return int(t.nSymbols) }

// WriteTo serializes the finalized Table to w using the compact FSST header format.
// Layout:
// - 8 bytes version word: (version<<32)|(suffixLim<<16)|(nSymbols<<8)|1
// - 8 bytes lenHisto (u8)
// - concatenated symbol bytes for codes [0..nSymbols) in length-group order
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var (
		n    int64
		buf8 [8]byte
	)
	write := func(b []byte) error {
		nn, err := w.Write(b)
		n += int64(nn)
		return err
	}

	// pack version
	ver := (fsstVersion << 32) |
		(uint64(t.suffixLim) << 16) |
		(uint64(t.nSymbols) << 8) |
		1
	binary.LittleEndian.PutUint64(buf8[:], ver)
	if err := write(buf8[:]); err != nil {
		return n, err
	}

	// Write lenHisto derived from symbols to avoid relying on stored state
	var lh [8]byte
	for i := range int(t.nSymbols) {
		if length := t.symbols[i].length(); length >= 1 && length <= 8 {
			lh[length-1]++
		}
	}
	if err := write(lh[:]); err != nil {
		return n, err
	}

	// symbol bytes
	for i := range int(t.nSymbols) {
		sym := t.symbols[i]
		symbolLength := int(sym.length())
		for byteIdx := range symbolLength {
			buf8[byteIdx] = byte(sym.val >> (8 * byteIdx))
		}
		if err := write(buf8[:symbolLength]); err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReadFrom deserializes a Table from r using the compact FSST header format.
// A header whose symbol count disagrees with the length histogram is rejected.
func (t *Table) ReadFrom(r io.Reader) (int64, error) {
	*t = *newTable() // reset
	var (
		n   int64
		hdr [8]byte
	)
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return n, err
	}
	n += 8
	ver := binary.LittleEndian.Uint64(hdr[:])
	if ver>>32 != fsstVersion {
		return n, ErrBadVersion
	}
	t.suffixLim = uint16((ver >> 16) & fsstMask8)
	t.nSymbols = uint16((ver >> 8) & fsstMask8)
	// endian marker ignored (lowest byte)
	var lh [8]byte
	if _, err := io.ReadFull(r, lh[:]); err != nil {
		return n, err
	}
	n += 8
	for i := range 8 {
		t.lenHisto[i] = uint16(lh[i])
	}

	// Build code->length schedule from lenHisto: lengths 2..8, then 1-byte
	lens := make([]uint8, 0, t.nSymbols)
	for l := 2; l <= 8; l++ {
		for range int(t.lenHisto[l-1]) {
			lens = append(lens, uint8(l))
		}
	}
	for range int(t.lenHisto[0]) {
		lens = append(lens, 1)
	}
	if len(lens) != int(t.nSymbols) {
		return n, errors.Errorf("fsst: length histogram covers %d symbols, header says %d", len(lens), t.nSymbols)
	}

	// now read symbols accordingly
	var b8 [8]byte
	for i, l := range lens {
		symbolLength := int(l)
		if _, err := io.ReadFull(r, b8[:symbolLength]); err != nil {
			return n, err
		}
		n += int64(symbolLength)
		// pack into symbol (little-endian)
		var symbolValue uint64
		for byteIdx := range symbolLength {
			symbolValue |= uint64(b8[byteIdx]) << (8 * byteIdx)
		}
		sym := symbol{val: symbolValue}
		sym.setCodeLen(uint32(i), uint32(symbolLength))
		t.symbols[i] = sym
	}
	t.accelReady = false
	return n, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := t.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *Table) UnmarshalBinary(data []byte) error {
	_, err := t.ReadFrom(bytes.NewReader(data))
	return err
}
