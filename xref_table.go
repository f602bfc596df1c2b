// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import "sort"

// Subsection is one contiguous run of object numbers within a classical
// xref section: "start count" followed by count fixed-width entries
// (spec §4.5).
type Subsection struct {
	Start   uint32
	Entries []XrefEntry
}

// Section is one "xref ... trailer <<...>>" block, or the equivalent
// decoded from a cross-reference stream object (spec §4.5, §4.6). For a
// classical section, Offset is the byte position of its "xref" keyword;
// sections decoded from an xref stream leave it zero. FileParser breaks
// /Prev cycles with its own record of visited offsets, not this field.
type Section struct {
	Subsections []Subsection
	Trailer     Dictionary
	Offset      int64
}

// ForEach calls fn for every (objNum, entry) pair this section defines.
func (s *Section) ForEach(fn func(objNum uint32, e XrefEntry)) {
	for _, sub := range s.Subsections {
		for i, e := range sub.Entries {
			fn(sub.Start+uint32(i), e)
		}
	}
}

// Table is the fully merged view across a document's xref section chain,
// followed through /Prev: the newest section's entry for a given object
// number always wins over an older section's (spec §4.6).
type Table struct {
	byID    map[uint32]XrefEntry
	Trailer Dictionary // merged trailer: newest section's keys win, gaps filled from older ones
}

// NewTable builds an empty Table. Entries are added with Merge, newest
// section first.
func NewTable() *Table {
	return &Table{byID: make(map[uint32]XrefEntry), Trailer: Dictionary{}}
}

// Merge folds one Section into t. Call with sections in newest-to-oldest
// order (the order a /Prev chain is naturally walked in); an object
// number already present in t is left untouched, since the earlier call
// supplied the newer value.
func (t *Table) Merge(s *Section) {
	s.ForEach(func(objNum uint32, e XrefEntry) {
		if _, exists := t.byID[objNum]; !exists {
			t.byID[objNum] = e
		}
	})
	for k, v := range s.Trailer {
		if _, exists := t.Trailer[k]; !exists {
			t.Trailer[k] = v
		}
	}
}

// Lookup returns the entry for objNum, if any.
func (t *Table) Lookup(objNum uint32) (XrefEntry, bool) {
	e, ok := t.byID[objNum]
	return e, ok
}

// setOffset overwrites the offset of an existing entry. Used only by
// FileParser's lenient-mode repair pass, after it locates an object's
// real byte position via a window rescan (spec §4.6).
func (t *Table) setOffset(objNum uint32, offset int64) {
	e := t.byID[objNum]
	e.Offset = offset
	t.byID[objNum] = e
}

// ObjectNumbers returns every object number t has an entry for, sorted
// ascending.
func (t *Table) ObjectNumbers() []uint32 {
	out := make([]uint32, 0, len(t.byID))
	for id := range t.byID {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseXrefSection parses one classical "xref" section starting at the
// tokenizer's current position, through its trailing "trailer <<...>>"
// dictionary (spec §4.5, §4.6). The caller has not yet consumed the
// leading "xref" keyword.
func ParseXrefSection(tz *Tokenizer, p *Parser, cfg *Config) (*Section, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	strict := cfg.ParsingMode == Strict
	sectionOffset := tz.Offset()

	xrefTok, ok := tz.Match(TokenXref)
	if !ok {
		return nil, newErr(Xref, sectionOffset, "expected 'xref' keyword")
	}
	sectionOffset = xrefTok.Offset
	tz.Release(xrefTok)

	sec := &Section{Offset: sectionOffset}
	for {
		peek := tz.PeekNext()
		if peek.Type == TokenTrailer {
			break
		}
		if peek.Type != TokenInteger {
			return nil, newErr(Xref, peek.Offset, "expected subsection header or 'trailer'")
		}
		sub, err := parseSubsection(tz, strict)
		if err != nil {
			return nil, err
		}
		sec.Subsections = append(sec.Subsections, sub)
	}

	trailerTok, ok := tz.Match(TokenTrailer)
	if !ok {
		return nil, newErr(Xref, tz.Offset(), "expected 'trailer' keyword after xref subsections")
	}
	tz.Release(trailerTok)
	trailerVal, err := p.NextObject()
	if err != nil {
		return nil, wrapErr(Xref, tz.Offset(), "parsing trailer dictionary", err)
	}
	dict, ok := trailerVal.(Dictionary)
	if !ok {
		return nil, newErr(Xref, tz.Offset(), "trailer value is not a dictionary")
	}
	sec.Trailer = dict
	return sec, nil
}

func parseSubsection(tz *Tokenizer, strict bool) (Subsection, error) {
	startTok, ok := tz.Match(TokenInteger)
	if !ok {
		return Subsection{}, newErr(Xref, tz.Offset(), "expected subsection start object number")
	}
	start := startTok.Int
	tz.Release(startTok)

	countTok, ok := tz.Match(TokenInteger)
	if !ok {
		return Subsection{}, newErr(Xref, tz.Offset(), "expected subsection entry count")
	}
	count := countTok.Int
	tz.Release(countTok)

	if count < 0 {
		return Subsection{}, newErr(Xref, tz.Offset(), "subsection entry count is negative")
	}

	if err := tz.ConsumeLineEOL(); err != nil {
		return Subsection{}, err
	}

	entries := make([]XrefEntry, 0, count)
	for i := int32(0); i < count; i++ {
		raw, err := tz.ReadRawBytes(xrefEntrySize)
		if err != nil {
			return Subsection{}, wrapErr(Xref, tz.Offset(), "reading xref entry", err)
		}
		entry, err := DecodeXrefEntry(raw)
		if err != nil {
			if strict {
				return Subsection{}, err
			}
			// best-effort: treat an unparsable line as free rather than
			// abandoning the whole subsection.
			entry = XrefEntry{Type: XrefFree}
		}
		entries = append(entries, entry)
	}

	return Subsection{Start: uint32(start), Entries: entries}, nil
}

// ParseXrefStreamSection decodes a cross-reference stream object (spec
// §4.6, the supplemental xref-stream feature) into a Section. streamObj
// must be the already-parsed Indirect whose Value is a Stream with
// /Type /XRef. decoded is the stream's payload after running it through
// its /Filter chain (component C); ParseXrefStreamSection does not
// decode filters itself.
func ParseXrefStreamSection(streamObj Indirect, decoded []byte) (*Section, error) {
	strm, ok := streamObj.Value.(Stream)
	if !ok {
		return nil, newErr(Xref, -1, "xref stream object does not carry a Stream value")
	}
	dict := strm.Dict

	wArr, ok := dict.Get("W")
	if !ok {
		return nil, newErr(Xref, -1, "xref stream missing /W")
	}
	widths, err := xrefStreamWidths(wArr)
	if err != nil {
		return nil, err
	}

	size, err := xrefStreamSize(dict)
	if err != nil {
		return nil, err
	}

	index, err := xrefStreamIndex(dict, size)
	if err != nil {
		return nil, err
	}

	sec := &Section{Trailer: dict}
	rowLen := widths[0] + widths[1] + widths[2]
	pos := 0
	for _, pair := range index {
		start, count := pair[0], pair[1]
		entries := make([]XrefEntry, 0, count)
		for i := int64(0); i < count; i++ {
			if pos+rowLen > len(decoded) {
				return nil, newErr(Xref, -1, "xref stream data shorter than /Index declares")
			}
			row := decoded[pos : pos+rowLen]
			pos += rowLen
			entry, err := decodeXrefStreamRow(row, widths)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		sec.Subsections = append(sec.Subsections, Subsection{Start: uint32(start), Entries: entries})
	}
	return sec, nil
}

func xrefStreamWidths(wArr Object) ([3]int, error) {
	arr, ok := wArr.(Array)
	if !ok || len(arr) != 3 {
		return [3]int{}, newErr(Xref, -1, "xref stream /W must be an array of three integers")
	}
	var w [3]int
	for i, o := range arr {
		switch v := o.(type) {
		case Integer:
			w[i] = int(v)
		case Integer64:
			w[i] = int(v)
		default:
			return [3]int{}, newErr(Xref, -1, "xref stream /W entries must be integers")
		}
	}
	return w, nil
}

func xrefStreamSize(dict Dictionary) (int64, error) {
	sizeObj, ok := dict.Get("Size")
	if !ok {
		return 0, newErr(Xref, -1, "xref stream missing /Size")
	}
	switch v := sizeObj.(type) {
	case Integer:
		return int64(v), nil
	case Integer64:
		return int64(v), nil
	default:
		return 0, newErr(Xref, -1, "xref stream /Size must be an integer")
	}
}

func xrefStreamIndex(dict Dictionary, size int64) ([][2]int64, error) {
	idxObj, ok := dict.Get("Index")
	if !ok {
		return [][2]int64{{0, size}}, nil
	}
	arr, ok := idxObj.(Array)
	if !ok || len(arr)%2 != 0 {
		return nil, newErr(Xref, -1, "xref stream /Index must be an array of integer pairs")
	}
	out := make([][2]int64, 0, len(arr)/2)
	for i := 0; i < len(arr); i += 2 {
		start, err := xrefStreamIntAt(arr, i)
		if err != nil {
			return nil, err
		}
		count, err := xrefStreamIntAt(arr, i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]int64{start, count})
	}
	return out, nil
}

func xrefStreamIntAt(arr Array, i int) (int64, error) {
	switch v := arr[i].(type) {
	case Integer:
		return int64(v), nil
	case Integer64:
		return int64(v), nil
	default:
		return 0, newErr(Xref, -1, "xref stream /Index entries must be integers")
	}
}

func decodeXrefStreamRow(row []byte, widths [3]int) (XrefEntry, error) {
	off := 0
	readField := func(w int, def int64) int64 {
		if w == 0 {
			off += w
			return def
		}
		var v int64
		for i := 0; i < w; i++ {
			v = v<<8 | int64(row[off+i])
		}
		off += w
		return v
	}

	typ := readField(widths[0], 1) // /W type field defaults to 1 (in-use) when width 0
	f2 := readField(widths[1], 0)
	f3 := readField(widths[2], 0)

	switch typ {
	case 0:
		return XrefEntry{Type: XrefFree, Offset: f2, Generation: uint16(f3)}, nil
	case 1:
		return XrefEntry{Type: XrefInUse, Offset: f2, Generation: uint16(f3)}, nil
	case 2:
		return XrefEntry{Type: XrefCompressed, StreamObjNum: uint32(f2), IndexInStream: uint32(f3)}, nil
	default:
		return XrefEntry{}, newErr(Xref, -1, "xref stream entry has unknown type field")
	}
}
