package fsst

import (
	"encoding/binary"
	"unsafe"
)

// Decompressor reverses the output of the Table it was created from.
// It only reads its own state and may be shared between goroutines.
type Decompressor struct {
	lens [255]byte
	syms [255]uint64
}

// Decompressor returns the decoder bound to t's symbols. It is built once and
// cached on the Table.
func (t *Table) Decompressor() *Decompressor {
	if t.dec == nil {
		d := &Decompressor{}
		for code := range int(t.nSymbols) {
			s := t.symbols[code]
			d.lens[code] = byte(s.length())
			d.syms[code] = s.val
		}
		t.dec = d
	}
	return t.dec
}

// Decode decompresses src with t's Decompressor, reusing buf's capacity.
func (t *Table) Decode(buf, src []byte) []byte {
	return t.Decompressor().Decode(buf, src)
}

// DecodeAll decompresses src into a newly allocated slice.
func (t *Table) DecodeAll(src []byte) []byte {
	return t.Decompressor().Decode(nil, src)
}

// DecodeString decompresses a string into a newly allocated slice.
func (t *Table) DecodeString(s string) []byte {
	return t.Decompressor().Decode(nil, unsafe.Slice(unsafe.StringData(s), len(s)))
}

// DecodeAll decompresses src into a newly allocated slice.
func (d *Decompressor) DecodeAll(src []byte) []byte {
	return d.Decode(nil, src)
}

// Decode decompresses src, reusing buf's capacity and growing it as needed.
// A trailing escape code without its literal is ignored.
func (d *Decompressor) Decode(buf, src []byte) []byte {
	if buf == nil {
		buf = make([]byte, len(src)*4+8)
	} else {
		buf = buf[:cap(buf)]
	}

	pos := 0
	for i := 0; i < len(src); {
		code := src[i]
		i++

		if code == fsstEscapeCode {
			if i >= len(src) {
				break
			}
			if pos >= len(buf) {
				buf = grow(buf, pos, 1)
			}
			buf[pos] = src[i]
			pos++
			i++
			continue
		}

		n := int(d.lens[code])
		if pos+n > len(buf) {
			buf = grow(buf, pos, n)
		}
		v := d.syms[code]
		switch n {
		case 1:
			buf[pos] = byte(v)
		case 2:
			binary.LittleEndian.PutUint16(buf[pos:], uint16(v))
		case 3:
			binary.LittleEndian.PutUint16(buf[pos:], uint16(v))
			buf[pos+2] = byte(v >> 16)
		case 4:
			binary.LittleEndian.PutUint32(buf[pos:], uint32(v))
		case 5:
			binary.LittleEndian.PutUint32(buf[pos:], uint32(v))
			buf[pos+4] = byte(v >> 32)
		case 6:
			binary.LittleEndian.PutUint32(buf[pos:], uint32(v))
			binary.LittleEndian.PutUint16(buf[pos+4:], uint16(v>>32))
		case 7:
			binary.LittleEndian.PutUint32(buf[pos:], uint32(v))
			binary.LittleEndian.PutUint16(buf[pos+4:], uint16(v>>32))
			buf[pos+6] = byte(v >> 48)
		case 8:
			binary.LittleEndian.PutUint64(buf[pos:], v)
		}
		pos += n
	}
	return buf[:pos]
}

// grow returns a buffer holding buf[:pos] with room for at least need more
// bytes.
func grow(buf []byte, pos, need int) []byte {
	out := make([]byte, max(2*len(buf), pos+need))
	copy(out, buf[:pos])
	return out
}
