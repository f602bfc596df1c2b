// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

// Parser is component E (spec §3.4, §4.4): a recursive-descent parser
// driven by a Tokenizer, producing Objects. The two-integer reservoir
// (reservoir.go) disambiguates "n n obj" and "n n R" from two adjacent
// plain Integer literals, which otherwise look identical until a third
// token is seen.
type Parser struct {
	tz       *Tokenizer
	resolver ObjectResolver
	diag     DiagnosticHandler
	strict   bool
	res      reservoir
}

// NewParser creates a Parser reading tokens from tz. resolver is used
// only to resolve an indirect /Length on a stream object; it may be nil,
// in which case a stream whose /Length is itself a reference cannot be
// parsed (spec §4.4, §6).
func NewParser(tz *Tokenizer, resolver ObjectResolver, cfg *Config, diag DiagnosticHandler) *Parser {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if diag == nil {
		diag = loggingDiagnostics{}
	}
	return &Parser{
		tz:       tz,
		resolver: resolver,
		diag:     diag,
		strict:   cfg.ParsingMode == Strict,
	}
}

func (p *Parser) warn(msg string) {
	p.diag.Diagnostic(Warning, msg)
}

func (p *Parser) fail(msg string) {
	p.diag.Diagnostic(SeverityError, msg)
}

// HasNextObject reports whether another object is available, either
// queued in the reservoir or still lexable from the Tokenizer.
func (p *Parser) HasNextObject() bool {
	return !p.res.empty() || p.tz.HasNext()
}

// NextObject parses and returns the next COS object at the current
// position: a direct value, a Reference ("n n R"), or an indirect
// definition ("n n obj ... endobj"), including stream objects.
func (p *Parser) NextObject() (Object, error) {
	if !p.res.empty() {
		return p.res.takeOne(), nil
	}
	return p.parseValue()
}

func (p *Parser) parseValue() (Object, error) {
	tok := p.tz.PeekNext()
	switch tok.Type {
	case TokenInteger:
		return p.parseIntegerLed()
	case TokenReal:
		tok = p.tz.GetNext()
		v := tok.Real
		p.tz.Release(tok)
		return Real(v), nil
	case TokenLiteralString, TokenHexString:
		tok = p.tz.GetNext()
		b := tok.Bytes
		tok.Bytes = nil
		p.tz.Release(tok)
		return String(b), nil
	case TokenName:
		tok = p.tz.GetNext()
		b := tok.Bytes
		tok.Bytes = nil
		p.tz.Release(tok)
		return Name(b), nil
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDict()
	case TokenTrue:
		p.tz.Release(p.tz.GetNext())
		return Boolean(true), nil
	case TokenFalse:
		p.tz.Release(p.tz.GetNext())
		return Boolean(false), nil
	case TokenNull:
		p.tz.Release(p.tz.GetNext())
		return Null{}, nil
	case TokenR, TokenObj:
		// Reached only with zero integers pending: a bare "R"/"obj" with
		// nothing before it to consume (spec §4.4: "zero pending: error").
		off, kw := tok.Offset, tok.Type.String()
		p.tz.Release(p.tz.GetNext())
		return nil, newErr(Syntax, off, "keyword '"+kw+"' with no pending object number")
	case TokenEOF:
		return nil, newErr(Syntax, tok.Offset, "unexpected end of input while expecting an object")
	default:
		off, s := tok.Offset, tok.Type.String()
		p.tz.Release(p.tz.GetNext())
		return nil, newErr(Syntax, off, "unexpected token while expecting an object: "+s)
	}
}

// parseIntegerLed implements the reservoir-based lookahead: one integer
// literal is a plain value; two adjacent integers followed by "R" are a
// Reference; two adjacent integers followed by "obj" begin an indirect
// object definition; two adjacent integers followed by anything else are
// two unrelated plain values, the second held in the reservoir for the
// caller's next NextObject call. A single integer directly followed by
// "R" or "obj" (no generation number) degrades gracefully to generation 0
// with a warning rather than emitting a bare Integer that would hard-fail
// the next NextObject call on the orphaned keyword (spec §4.4).
func (p *Parser) parseIntegerLed() (Object, error) {
	first := p.tz.GetNext()
	v1, wide1 := integerTokenValue(first)
	p.tz.Release(first)

	second := p.tz.PeekNext()
	switch second.Type {
	case TokenR:
		// Only one integer pending ("5 R" with no generation number): a
		// common malformed form. Recover with generation 0 rather than
		// hard-failing (spec §4.4: "only one integer is pending: warn,
		// use generation 0").
		p.tz.Release(p.tz.GetNext())
		if wide1 || v1 < 0 || v1 > 0xFFFFFFFF {
			return nil, newErr(OutOfRange, second.Offset, "reference object number out of range")
		}
		id := ObjID{Number: uint32(v1)}
		p.warn("reference missing generation number, assuming 0: " + id.String() + " R")
		return Reference{ID: id}, nil
	case TokenObj:
		p.tz.Release(p.tz.GetNext())
		if wide1 || v1 < 0 || v1 > 0xFFFFFFFF {
			return nil, newErr(OutOfRange, second.Offset, "indirect object number out of range")
		}
		id := ObjID{Number: uint32(v1)}
		p.warn("indirect object missing generation number, assuming 0: " + id.String() + " obj")
		return p.parseIndirectBody(id)
	case TokenInteger:
		// fall through to the two-integer lookahead below
	default:
		return integerObject(v1, wide1), nil
	}
	secondTok := p.tz.GetNext()
	v2, wide2 := integerTokenValue(secondTok)
	p.tz.Release(secondTok)

	third := p.tz.PeekNext()
	switch third.Type {
	case TokenR:
		p.tz.Release(p.tz.GetNext())
		if wide1 || v1 < 0 || v1 > 0xFFFFFFFF || wide2 || v2 < 0 || v2 > 0xFFFF {
			return nil, newErr(OutOfRange, third.Offset, "reference object/generation number out of range")
		}
		return Reference{ID: ObjID{Number: uint32(v1), Generation: uint16(v2)}}, nil
	case TokenObj:
		p.tz.Release(p.tz.GetNext())
		if wide1 || v1 < 0 || v1 > 0xFFFFFFFF || wide2 || v2 < 0 || v2 > 0xFFFF {
			return nil, newErr(OutOfRange, third.Offset, "indirect object/generation number out of range")
		}
		id := ObjID{Number: uint32(v1), Generation: uint16(v2)}
		return p.parseIndirectBody(id)
	default:
		if err := p.res.push(v1, wide1); err != nil {
			return nil, err
		}
		if err := p.res.push(v2, wide2); err != nil {
			return nil, err
		}
		return p.res.takeOne(), nil
	}
}

func integerTokenValue(tok *Token) (int64, bool) {
	if tok.Wide {
		return tok.Int64, true
	}
	return int64(tok.Int), false
}

func integerObject(v int64, wide bool) Object {
	if wide {
		return Integer64(v)
	}
	return Integer(int32(v))
}

// parseArray parses "[ object* ]" (spec §4.4).
func (p *Parser) parseArray() (Object, error) {
	start := p.tz.PeekNext().Offset
	p.tz.Release(p.tz.GetNext()) // consume '['
	arr := Array{}
	for {
		if !p.res.empty() {
			arr = append(arr, p.res.takeOne())
			continue
		}
		tok := p.tz.PeekNext()
		if tok.Type == TokenArrayEnd {
			p.tz.Release(p.tz.GetNext())
			return arr, nil
		}
		if tok.Type == TokenEOF {
			return nil, newErr(Syntax, start, "unterminated array")
		}
		v, err := p.NextObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// parseDict parses "<< (name object)* >>" (spec §4.4).
func (p *Parser) parseDict() (Dictionary, error) {
	start := p.tz.PeekNext().Offset
	p.tz.Release(p.tz.GetNext()) // consume '<<'
	dict := Dictionary{}
	for {
		tok := p.tz.PeekNext()
		if tok.Type == TokenDictEnd {
			p.tz.Release(p.tz.GetNext())
			return dict, nil
		}
		if tok.Type == TokenEOF {
			return nil, newErr(Syntax, start, "unterminated dictionary")
		}
		if tok.Type != TokenName {
			if p.strict {
				return nil, newErr(Syntax, tok.Offset, "dictionary key must be a name")
			}
			p.warn("dictionary: skipping non-name where a key was expected")
			p.tz.Release(p.tz.GetNext())
			continue
		}
		keyTok := p.tz.GetNext()
		key := string(keyTok.Bytes)
		p.tz.Release(keyTok)

		val, err := p.NextObject()
		if err != nil {
			return nil, err
		}
		dict[key] = val
	}
}

// parseIndirectBody parses the body of "id obj ... endobj", already past
// the integers and the "obj" keyword (spec §4.4). A dictionary
// immediately followed by the "stream" keyword is a stream object; any
// other value is returned as-is.
func (p *Parser) parseIndirectBody(id ObjID) (Object, error) {
	val, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if dict, ok := val.(Dictionary); ok {
		if streamTok := p.tz.PeekNext(); streamTok.Type == TokenStream {
			p.tz.Release(p.tz.GetNext())
			streamVal, err := p.finishStream(dict)
			if err != nil {
				return nil, err
			}
			val = streamVal
		}
	}

	if tok, ok := p.tz.Match(TokenEndObj); ok {
		p.tz.Release(tok)
	} else if p.strict {
		return nil, newErr(Syntax, p.tz.Offset(), "missing 'endobj' after indirect object "+id.String())
	} else {
		p.warn("missing 'endobj' after indirect object " + id.String())
	}

	return Indirect{ID: id, Value: val}, nil
}

// finishStream reads a stream object's raw payload and the trailing
// "endstream" keyword, given the stream's dictionary and having already
// consumed the "stream" keyword (spec §4.4).
func (p *Parser) finishStream(dict Dictionary) (Object, error) {
	n, err := p.resolveLength(dict)
	if err != nil {
		return nil, err
	}
	if err := p.tz.ConsumeStreamEOL(); err != nil {
		return nil, err
	}
	data, err := p.tz.ReadRawBytes(int(n))
	if err != nil {
		return nil, err
	}
	if tok, ok := p.tz.Match(TokenEndStream); ok {
		p.tz.Release(tok)
	} else if p.strict {
		return nil, newErr(Syntax, p.tz.Offset(), "missing 'endstream' after stream payload")
	} else {
		p.warn("missing 'endstream' after stream payload")
	}
	return Stream{Dict: dict, Data: data}, nil
}

// resolveLength extracts a stream dictionary's /Length as a byte count,
// resolving an indirect reference through p.resolver if necessary.
func (p *Parser) resolveLength(dict Dictionary) (int64, error) {
	lengthObj, ok := dict.Get("Length")
	if !ok {
		return 0, newErr(Syntax, p.tz.Offset(), "stream dictionary missing /Length")
	}
	switch v := lengthObj.(type) {
	case Integer:
		return int64(v), nil
	case Integer64:
		return int64(v), nil
	case Reference:
		if p.resolver == nil {
			return 0, newErr(InvalidState, p.tz.Offset(), "stream /Length is an indirect reference but no resolver was supplied")
		}
		resolved, err := p.resolver.GetObject(v.ID)
		if err != nil {
			return 0, wrapErr(Xref, p.tz.Offset(), "resolving stream /Length", err)
		}
		switch rv := resolved.(type) {
		case Integer:
			return int64(rv), nil
		case Integer64:
			return int64(rv), nil
		default:
			return 0, newErr(Syntax, p.tz.Offset(), "stream /Length did not resolve to an integer")
		}
	default:
		return 0, newErr(Syntax, p.tz.Offset(), "stream /Length is not an integer or reference")
	}
}
