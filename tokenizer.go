// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"io"
	"strconv"

	"github.com/open-cos/gocos/logger"
)

const peekCapacity = 2

// Tokenizer is component D (spec §3.3, §4.3): it consumes a streamReader
// and emits Tokens, maintaining a bounded two-slot peek queue and a free
// list of recycled Token envelopes.
type Tokenizer struct {
	r      *streamReader
	strict bool
	diag   DiagnosticHandler
	pool   *tokenPool
	peekQ  []*Token // front at index 0, capacity peekCapacity
}

// NewTokenizer creates a Tokenizer reading from src under cfg, reporting
// non-fatal lexical problems to diag.
func NewTokenizer(src ByteStream, cfg *Config, diag DiagnosticHandler) *Tokenizer {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if diag == nil {
		diag = loggingDiagnostics{}
	}
	r := newStreamReader(src)
	if cfg.StreamReaderBufSize > 0 {
		r.buf = make([]byte, cfg.StreamReaderBufSize)
	}
	return &Tokenizer{
		r:      r,
		strict: cfg.ParsingMode == Strict,
		diag:   diag,
		pool:   newTokenPool(cfg.TokenFreeListSize),
	}
}

// Reset clears the peek queue (recycling its tokens) and resets the
// underlying streamReader. Callers must call this after seeking the
// underlying ByteStream out from under the Tokenizer (spec §4.3, §5).
func (t *Tokenizer) Reset() {
	for _, tok := range t.peekQ {
		t.pool.release(tok)
	}
	t.peekQ = t.peekQ[:0]
	t.r.reset()
}

// Release returns a Token obtained from GetNext/Match back to the free
// list. Callers that take ownership of a token (everything returned by
// GetNext) should release it once done extracting its value.
func (t *Tokenizer) Release(tok *Token) {
	t.pool.release(tok)
}

func (t *Tokenizer) fill(n int) {
	for len(t.peekQ) < n {
		t.peekQ = append(t.peekQ, t.lex())
	}
}

// PeekNext returns the next token without consuming it. The Tokenizer
// retains ownership; do not Release it.
func (t *Tokenizer) PeekNext() *Token {
	t.fill(1)
	return t.peekQ[0]
}

// PeekNextNext returns the token after the next one, the two-token
// look-ahead spec §4.3/§9 caps the grammar at.
func (t *Tokenizer) PeekNextNext() *Token {
	t.fill(2)
	return t.peekQ[1]
}

// HasNext reports whether a non-EOF token is available.
func (t *Tokenizer) HasNext() bool {
	return t.PeekNext().Type != TokenEOF
}

// GetNext consumes and returns the next token. The caller takes
// ownership and should Release it once done.
func (t *Tokenizer) GetNext() *Token {
	t.fill(1)
	tok := t.peekQ[0]
	t.peekQ = t.peekQ[1:]
	return tok
}

// Match consumes and returns the next token if it has type tt; otherwise
// it leaves the queue untouched and returns (nil, false).
func (t *Tokenizer) Match(tt TokenType) (*Token, bool) {
	if t.PeekNext().Type != tt {
		return nil, false
	}
	return t.GetNext(), true
}

func (t *Tokenizer) offset() int64 {
	off, _ := t.r.position()
	return off
}

// Offset reports the absolute offset of the next unconsumed byte, for
// callers (xref table, file parser) that need to record object/section
// positions.
func (t *Tokenizer) Offset() int64 {
	return t.offset()
}

// ConsumeStreamEOL consumes the single end-of-line marker that must
// immediately follow the "stream" keyword (spec §4.4): LF, or CRLF. A
// bare CR is tolerated in non-strict mode with a warning, since some
// writers emit one. This bypasses the peek queue entirely and must be
// called before any further PeekNext/GetNext, so the byte count after it
// lines up exactly with the stream's /Length.
func (t *Tokenizer) ConsumeStreamEOL() error {
	return t.consumeEOL("stream: missing EOL after 'stream' keyword", "stream: lone CR after 'stream' keyword")
}

// ConsumeLineEOL consumes the single end-of-line marker that terminates
// a classical xref subsection header line ("obj_num count"), before the
// fixed-width entries that follow it (spec §4.5).
func (t *Tokenizer) ConsumeLineEOL() error {
	return t.consumeEOL("xref: missing EOL after subsection header", "xref: lone CR after subsection header")
}

func (t *Tokenizer) consumeEOL(missingMsg, loneCRMsg string) error {
	start := t.offset()
	b, err := t.r.getc()
	if err != nil {
		return wrapErr(IO, start, missingMsg, err)
	}
	switch b {
	case '\n':
		return nil
	case '\r':
		if nb, err := t.r.peek(); err == nil && nb == '\n' {
			t.r.getc()
			return nil
		}
		if t.strict {
			return newErr(Syntax, start, loneCRMsg)
		}
		t.warn(loneCRMsg + "; accepted")
		return nil
	default:
		return newErr(Syntax, start, missingMsg)
	}
}

// ReadRawBytes reads exactly n raw bytes directly from the underlying
// streamReader, bypassing lexical analysis. Used to copy out a stream
// object's payload once its /Length is known.
func (t *Tokenizer) ReadRawBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := t.r.getc()
		if err != nil {
			return out[:i], wrapErr(IO, t.offset(), "stream: truncated payload", err)
		}
		out[i] = b
	}
	return out, nil
}

func (t *Tokenizer) warn(msg string) {
	t.diag.Diagnostic(Warning, msg)
}

func (t *Tokenizer) fail(msg string) {
	t.diag.Diagnostic(SeverityError, msg)
}

// skipWhitespaceAndComments skips PDF whitespace and %-comments between
// tokens (spec §4.3). Comments run to LF, CR, or CRLF and are never
// exposed as token payloads.
func (t *Tokenizer) skipWhitespaceAndComments() {
	for {
		b, err := t.r.peek()
		if err != nil {
			return
		}
		if isWhitespace(b) {
			t.r.getc()
			continue
		}
		if b == '%' {
			t.r.getc()
			for {
				c, err := t.r.getc()
				if err != nil || c == '\n' {
					break
				}
				if c == '\r' {
					if nc, err := t.r.peek(); err == nil && nc == '\n' {
						t.r.getc()
					}
					break
				}
			}
			continue
		}
		return
	}
}

// lex produces the next token. It never returns nil.
func (t *Tokenizer) lex() *Token {
	t.skipWhitespaceAndComments()
	start := t.offset()

	b, err := t.r.peek()
	if err != nil {
		tok := t.pool.get()
		tok.Type, tok.Offset = TokenEOF, start
		return tok
	}

	switch {
	case b == '(':
		return t.lexLiteralString(start)
	case b == '<':
		return t.lexAngle(start)
	case b == '>':
		return t.lexCloseAngle(start)
	case b == '[':
		t.r.getc()
		return t.structural(TokenArrayStart, start, 1)
	case b == ']':
		t.r.getc()
		return t.structural(TokenArrayEnd, start, 1)
	case b == '/':
		return t.lexName(start)
	case b == '+', b == '-', b == '.':
		return t.lexNumber(start)
	case isDigit(b):
		return t.lexNumber(start)
	default:
		if isRegular(b) {
			return t.lexKeyword(start)
		}
		t.r.getc()
		return t.unknown(start, 1, newErr(Syntax, start, "unexpected byte"))
	}
}

func (t *Tokenizer) structural(tt TokenType, start int64, length int) *Token {
	tok := t.pool.get()
	tok.Type, tok.Offset, tok.Length = tt, start, length
	return tok
}

func (t *Tokenizer) unknown(start int64, length int, cause error) *Token {
	tok := t.pool.get()
	tok.Type, tok.Offset, tok.Length, tok.Err = TokenUnknown, start, length, cause
	t.fail(cause.Error())
	return tok
}

// lexAngle disambiguates '<' (hex string) from '<<' (dict start).
func (t *Tokenizer) lexAngle(start int64) *Token {
	t.r.getc() // consume '<'
	nb, err := t.r.peek()
	if err == nil && nb == '<' {
		t.r.getc()
		return t.structural(TokenDictStart, start, 2)
	}
	return t.lexHexStringBody(start)
}

func (t *Tokenizer) lexCloseAngle(start int64) *Token {
	t.r.getc() // consume '>'
	nb, err := t.r.peek()
	if err == nil && nb == '>' {
		t.r.getc()
		return t.structural(TokenDictEnd, start, 2)
	}
	return t.unknown(start, 1, newErr(Syntax, start, "stray '>' outside hex string"))
}

func (t *Tokenizer) lexHexStringBody(start int64) *Token {
	var out []byte
	var high byte
	hasHigh := false
	for {
		b, err := t.r.getc()
		if err != nil {
			return t.unknown(start, len(out), newErr(Syntax, start, "unterminated hex string"))
		}
		if b == '>' {
			if hasHigh {
				out = append(out, high<<4)
			}
			tok := t.pool.get()
			tok.Type, tok.Offset, tok.Length, tok.Bytes = TokenHexString, start, int(t.offset()-start), out
			return tok
		}
		if isWhitespace(b) {
			continue
		}
		v, ok := hexVal(b)
		if !ok {
			if t.strict {
				return t.unknown(start, len(out), newErr(Syntax, start, "non-hex byte in hex string"))
			}
			t.warn("hex string: treating non-hex byte as zero")
			v = 0
		}
		if !hasHigh {
			high, hasHigh = v, true
		} else {
			out = append(out, high<<4|v)
			hasHigh = false
		}
	}
}

// lexLiteralString reads a '(' ... ')' literal string per spec §4.3.
func (t *Tokenizer) lexLiteralString(start int64) *Token {
	t.r.getc() // consume '('
	depth := 1
	var out []byte
	for {
		b, err := t.r.getc()
		if err != nil {
			return t.unknown(start, len(out), newErr(Syntax, start, "unterminated literal string"))
		}
		switch b {
		case '(':
			depth++
			out = append(out, b)
		case ')':
			depth--
			if depth == 0 {
				tok := t.pool.get()
				tok.Type, tok.Offset, tok.Length, tok.Bytes = TokenLiteralString, start, int(t.offset()-start), out
				return tok
			}
			out = append(out, b)
		case '\\':
			esc, ok, err := t.readStringEscape()
			if err != nil {
				return t.unknown(start, len(out), err)
			}
			if ok {
				out = append(out, esc)
			}
		case '\r':
			if nb, err := t.r.peek(); err == nil && nb == '\n' {
				t.r.getc()
			}
			out = append(out, '\n')
		default:
			out = append(out, b)
		}
	}
}

// readStringEscape reads the byte(s) following a '\' inside a literal
// string. ok is false when the escape is a line continuation (nothing
// emitted).
func (t *Tokenizer) readStringEscape() (byte, bool, error) {
	b, err := t.r.getc()
	if err != nil {
		return 0, false, newErr(Syntax, t.offset(), "unterminated escape at end of literal string")
	}
	switch b {
	case 'n':
		return '\n', true, nil
	case 'r':
		return '\r', true, nil
	case 't':
		return '\t', true, nil
	case 'b':
		return '\b', true, nil
	case 'f':
		return '\f', true, nil
	case '(':
		return '(', true, nil
	case ')':
		return ')', true, nil
	case '\\':
		return '\\', true, nil
	case '\n':
		return 0, false, nil
	case '\r':
		if nb, err := t.r.peek(); err == nil && nb == '\n' {
			t.r.getc()
		}
		return 0, false, nil
	default:
		if b >= '0' && b <= '7' {
			v := int(b - '0')
			for i := 0; i < 2; i++ {
				nb, err := t.r.peek()
				if err != nil || nb < '0' || nb > '7' {
					break
				}
				t.r.getc()
				v = v*8 + int(nb-'0')
			}
			return byte(v % 256), true, nil
		}
		// Backslash followed by any other byte: discard the backslash,
		// emit the byte verbatim (spec §4.3, §9).
		return b, true, nil
	}
}

// lexName reads a '/' name (spec §4.3).
func (t *Tokenizer) lexName(start int64) *Token {
	t.r.getc() // consume '/'
	var out []byte
	for {
		b, err := t.r.peek()
		if err != nil || !isRegular(b) {
			break
		}
		t.r.getc()
		if b == '#' {
			h1, e1 := t.r.getc()
			h2, e2 := t.r.getc()
			v1, ok1 := hexVal(h1)
			v2, ok2 := hexVal(h2)
			if e1 != nil || e2 != nil || !ok1 || !ok2 {
				return t.unknown(start, len(out), newErr(Syntax, start, "name: incomplete or non-hex #-escape"))
			}
			out = append(out, v1<<4|v2)
			continue
		}
		out = append(out, b)
	}
	tok := t.pool.get()
	tok.Type, tok.Offset, tok.Length, tok.Bytes = TokenName, start, int(t.offset()-start), out
	return tok
}

// lexNumber reads an Integer or Real literal (spec §4.3).
func (t *Tokenizer) lexNumber(start int64) *Token {
	var lex []byte
	for {
		b, err := t.r.peek()
		if err != nil || !isRegular(b) {
			break
		}
		t.r.getc()
		lex = append(lex, b)
	}
	return t.parseNumber(start, lex)
}

func (t *Tokenizer) parseNumber(start int64, lex []byte) *Token {
	signs, dots, digits := 0, 0, 0
	for i, b := range lex {
		switch {
		case b == '+' || b == '-':
			if i != 0 {
				return t.unknown(start, len(lex), newErr(Syntax, start, "numeric: sign not in first position"))
			}
			signs++
		case b == '.':
			dots++
		case isDigit(b):
			digits++
		default:
			return t.unknown(start, len(lex), newErr(Syntax, start, "numeric: invalid character"))
		}
	}
	if digits == 0 || dots > 1 {
		return t.unknown(start, len(lex), newErr(Syntax, start, "numeric: malformed literal"))
	}

	tok := t.pool.get()
	tok.Offset, tok.Length = start, len(lex)

	if dots == 0 {
		return t.finishInteger(tok, lex)
	}
	return t.finishReal(tok, lex)
}

func (t *Tokenizer) finishInteger(tok *Token, lex []byte) *Token {
	neg := len(lex) > 0 && lex[0] == '-'
	digitsStart := 0
	if len(lex) > 0 && (lex[0] == '+' || lex[0] == '-') {
		digitsStart = 1
	}
	var v int64
	overflow := false
	for _, b := range lex[digitsStart:] {
		v = v*10 + int64(b-'0')
		if v > 1<<62 {
			overflow = true
		}
	}
	if neg {
		v = -v
	}
	const int32Min, int32Max = -2147483648, 2147483647
	if !overflow && v >= int32Min && v <= int32Max {
		tok.Type, tok.Int = TokenInteger, int32(v)
		return tok
	}
	if t.strict {
		t.pool.release(tok)
		return t.unknown(tok.Offset, tok.Length, newErr(OutOfRange, tok.Offset, "integer literal exceeds int32"))
	}
	t.warn("integer literal exceeds int32; widened to int64")
	tok.Type, tok.Wide, tok.Int64 = TokenInteger, true, v
	return tok
}

func (t *Tokenizer) finishReal(tok *Token, lex []byte) *Token {
	dot := -1
	for i, b := range lex {
		if b == '.' {
			dot = i
			break
		}
	}
	fracDigits := len(lex) - dot - 1
	if fracDigits > 5 {
		if t.strict {
			t.pool.release(tok)
			return t.unknown(tok.Offset, tok.Length, newErr(OutOfRange, tok.Offset, "real literal has more than 5 fractional digits"))
		}
		t.warn("real literal has more than 5 fractional digits; precision loss accepted")
	}
	f, err := strconv.ParseFloat(string(lex), 64)
	if err != nil {
		t.pool.release(tok)
		return t.unknown(tok.Offset, tok.Length, wrapErr(Syntax, tok.Offset, "malformed real literal", err))
	}
	tok.Type, tok.Real = TokenReal, f
	return tok
}

// lexKeyword reads an unquoted word and classifies it against the fixed
// keyword set (spec §3.3, §4.3). Unrecognized words become Unknown.
func (t *Tokenizer) lexKeyword(start int64) *Token {
	var lex []byte
	for {
		b, err := t.r.peek()
		if err != nil || !isRegular(b) {
			break
		}
		t.r.getc()
		lex = append(lex, b)
	}
	if tt, ok := keywords[string(lex)]; ok {
		tok := t.pool.get()
		tok.Type, tok.Offset, tok.Length = tt, start, len(lex)
		return tok
	}
	logger.Debug("tokenizer: unrecognized keyword", string(lex), true)
	return t.unknown(start, len(lex), newErr(Syntax, start, "unrecognized keyword: "+string(lex)))
}

var _ io.ByteReader = (*streamReaderByteAdapter)(nil)

// streamReaderByteAdapter adapts a streamReader to io.ByteReader for
// callers (e.g. the file parser's trailer scan) that want to reuse
// standard-library helpers over the same buffered source.
type streamReaderByteAdapter struct{ r *streamReader }

func (a *streamReaderByteAdapter) ReadByte() (byte, error) { return a.r.getc() }
