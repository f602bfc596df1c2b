// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

// ascii85Pad is the literal padding character used to complete a final
// partial ASCII85 group: 'u', the 85th printable character ('!'..'u'),
// i.e. base-85 digit 84. Spec §9 flags the source's use of the raw
// character value of 'u' (117) in place of that digit as a suspected
// bug; gocos pads each missing position with the digit value
// ascii85Pad - '!' (84).
const ascii85Pad = 'u'

// ascii85Filter implements the ASCII85 decoding filter (spec §4.2).
//
// dst passed to refill is always a multiple of 4 bytes long (filterBase
// allocates a minDecodeBuf-sized buffer and refill is only ever called
// with dst sliced from the start of that buffer), so a full 5-character
// group or a 'z' shortcut never needs to split a 4-byte write across two
// refill calls.
type ascii85Filter struct {
	filterBase
	group [5]byte
	n     int // characters currently buffered in group
}

// NewASCII85Filter returns a Filter that decodes an ASCII85-encoded
// stream. Call AttachSource before the first Read.
func NewASCII85Filter() Filter {
	f := &ascii85Filter{}
	f.filterBase = newFilterBase(f)
	return f
}

// flush decodes whatever is pending in group (1 to 4 characters) as a
// final partial block, padding with ascii85Pad, and writes k-1 bytes.
func (a *ascii85Filter) flush(dst []byte) int {
	if a.n == 0 {
		return 0
	}
	if a.n == 1 {
		// A lone leftover character with no pair is malformed input;
		// nothing can be recovered from it.
		a.n = 0
		return 0
	}
	k := a.n
	for i := k; i < 5; i++ {
		a.group[i] = ascii85Pad - '!'
	}
	var v uint32
	for _, d := range a.group {
		v = v*85 + uint32(d)
	}
	out := k - 1
	for i := 0; i < out; i++ {
		dst[i] = byte(v >> uint(24-8*i))
	}
	a.n = 0
	return out
}

func (a *ascii85Filter) refill(src ByteStream, dst []byte) (int, bool, error) {
	n := 0
	for n < len(dst) {
		b, atEOF, err := readSourceByte(src)
		if err != nil {
			return n, false, wrapErr(IO, -1, "ascii85: read source", err)
		}
		if atEOF {
			n += a.flush(dst[n:])
			return n, true, nil
		}
		if isWhitespace(b) {
			continue
		}
		if b == 'z' && a.n == 0 {
			for i := 0; i < 4; i++ {
				dst[n+i] = 0
			}
			n += 4
			continue
		}
		if b == '~' {
			nb, atEOF2, err2 := readSourceByte(src)
			if err2 != nil {
				return n, false, wrapErr(IO, -1, "ascii85: read source", err2)
			}
			if atEOF2 || nb != '>' {
				return n, true, wrapErr(Syntax, -1, "ascii85: missing '>' after '~'")
			}
			n += a.flush(dst[n:])
			return n, true, nil
		}
		if b < '!' || b > 'u' {
			return n, true, wrapErr(Syntax, -1, "ascii85: byte outside '!'..'u'")
		}
		a.group[a.n] = b - '!'
		a.n++
		if a.n == 5 {
			var v uint32
			for _, d := range a.group {
				v = v*85 + uint32(d)
			}
			dst[n+0] = byte(v >> 24)
			dst[n+1] = byte(v >> 16)
			dst[n+2] = byte(v >> 8)
			dst[n+3] = byte(v)
			n += 4
			a.n = 0
		}
	}
	return n, false, nil
}
