// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

// readSourceByte reads exactly one byte from src, looping over short
// reads the way a ByteStream is allowed to return them. It reports
// end-of-data via atEOF rather than io.EOF so filters can fold the
// ASCIIHex/ASCII85/RunLength end-of-data markers and real source EOF
// into one code path.
func readSourceByte(src ByteStream) (b byte, atEOF bool, err error) {
	var buf [1]byte
	for {
		n, err := src.Read(buf[:])
		if err != nil {
			return 0, false, err
		}
		if n == 1 {
			return buf[0], false, nil
		}
		if src.EOF() {
			return 0, true, nil
		}
	}
}

func hexVal(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

// asciiHexFilter implements the ASCIIHex decoding filter (spec §4.2).
type asciiHexFilter struct {
	filterBase
	high    byte
	hasHigh bool
}

// NewASCIIHexFilter returns a Filter that decodes an ASCIIHex-encoded
// stream. Call AttachSource before the first Read.
func NewASCIIHexFilter() Filter {
	f := &asciiHexFilter{}
	f.filterBase = newFilterBase(f)
	return f
}

func (a *asciiHexFilter) refill(src ByteStream, dst []byte) (int, bool, error) {
	n := 0
	for n < len(dst) {
		b, atEOF, err := readSourceByte(src)
		if err != nil {
			return n, false, wrapErr(IO, -1, "asciihex: read source", err)
		}
		if atEOF {
			if a.hasHigh {
				dst[n] = a.high << 4
				n++
				a.hasHigh = false
			}
			return n, true, nil
		}
		switch {
		case b == '>':
			if a.hasHigh {
				dst[n] = a.high << 4
				n++
				a.hasHigh = false
			}
			return n, true, nil
		case isWhitespace(b):
			continue
		default:
			v, ok := hexVal(b)
			if !ok {
				return n, true, wrapErr(Syntax, -1, "asciihex: non-hex byte in encoded stream")
			}
			if !a.hasHigh {
				a.high = v
				a.hasHigh = true
			} else {
				dst[n] = a.high<<4 | v
				n++
				a.hasHigh = false
			}
		}
	}
	return n, false, nil
}
