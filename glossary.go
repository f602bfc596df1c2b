// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

// Component H: character-class predicates and keyword recognition shared
// by the tokenizer and the file-header/trailer scanner (spec §4.3, §6).

var wsBits [4]uint64 // 256 bits = 4 * 64, grounded on the teacher's wsBits bitset.

func init() {
	for _, b := range []byte{0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20} {
		wsBits[b>>6] |= 1 << (b & 63)
	}
}

// isWhitespace reports whether b is one of the six whitespace characters
// defined by PDF lexical rules: NUL, HT, LF, FF, CR, SPACE (spec §6).
func isWhitespace(b byte) bool {
	return wsBits[b>>6]&(1<<(b&63)) != 0
}

// isDelimiter reports whether b is one of the ten PDF delimiters:
// ()<>[]{}/%  (spec §6).
func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return false
	}
}

// isRegular reports whether b may appear unescaped inside an unquoted
// lexeme: neither whitespace nor a delimiter.
func isRegular(b byte) bool {
	return !isWhitespace(b) && !isDelimiter(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isEOLByte(b byte) bool {
	return b == '\n' || b == '\r'
}

// keywords is the fixed set of PDF keywords the tokenizer recognizes
// (spec §3.3). Anything else forming a complete unquoted word becomes an
// Unknown token.
var keywords = map[string]TokenType{
	"true":      TokenTrue,
	"false":     TokenFalse,
	"null":      TokenNull,
	"R":         TokenR,
	"obj":       TokenObj,
	"endobj":    TokenEndObj,
	"stream":    TokenStream,
	"endstream": TokenEndStream,
	"xref":      TokenXref,
	"n":         TokenN,
	"f":         TokenF,
	"trailer":   TokenTrailer,
	"startxref": TokenStartXref,
}
