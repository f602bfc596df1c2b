// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"bytes"
	"sync"
)

// FileParser is component G (spec §3.6, §4.6): it orchestrates a
// complete file — header check, trailer/startxref location, xref
// section chain assembly (classical and xref-stream, following /Prev and
// a hybrid /XRefStm) — and resolves individual indirect objects on
// demand, reading from whichever offset the merged Table gives for them.
//
// Header/trailer scanning and buildTable run once, synchronously, in
// NewFileParser. ResolveObject and ReadRawIndirect may be called
// concurrently (Store.ResolveMany does exactly that), so they never seek
// src directly: they go through acquireReader, which hands out an
// independent io.SectionReader-backed ByteStream per call when src
// supports it, falling back to mu-serialized access to the single shared
// src otherwise (spec §5).
type FileParser struct {
	src     ByteStream
	mu      sync.Mutex
	cfg     *Config
	diag    DiagnosticHandler
	version string
	table   *Table
}

// acquireReader returns a ByteStream safe for this call's exclusive use,
// and a release func the caller must invoke (typically via defer) when
// done with it. When src can clone itself, the returned stream is an
// independent view and release just closes it; otherwise the returned
// stream is src itself, locked for the call's duration.
func (fp *FileParser) acquireReader() (ByteStream, func(), error) {
	if cloner, ok := fp.src.(byteStreamCloner); ok {
		clone, err := cloner.Clone()
		if err == nil {
			return clone, func() { clone.Close() }, nil
		}
	}
	fp.mu.Lock()
	return fp.src, fp.mu.Unlock, nil
}

// OpenFile opens the PDF file at path and parses its header and xref chain.
func OpenFile(path string, cfg *Config, diag DiagnosticHandler) (*FileParser, error) {
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	fp, err := NewFileParser(src, cfg, diag)
	if err != nil {
		src.Close()
		return nil, err
	}
	return fp, nil
}

// NewFileParser parses src's header and xref chain. src must support
// random access (Seek/Tell). Close calls through to src.Close, but the
// caller remains free to close src directly instead.
func NewFileParser(src ByteStream, cfg *Config, diag DiagnosticHandler) (*FileParser, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if diag == nil {
		diag = loggingDiagnostics{}
	}
	fp := &FileParser{src: src, cfg: cfg, diag: diag}

	version, err := fp.checkHeader()
	if err != nil {
		return nil, err
	}
	fp.version = version

	startOff, err := fp.locateStartXref()
	if err != nil {
		return nil, err
	}

	table, err := fp.buildTable(startOff)
	if err != nil {
		return nil, err
	}
	fp.table = table
	fp.repairTable()

	return fp, nil
}

// Version returns the "M.N" version string from the %PDF- header.
func (fp *FileParser) Version() string { return fp.version }

// Table returns the fully merged cross-reference table.
func (fp *FileParser) Table() *Table { return fp.table }

// Trailer returns the merged trailer dictionary (spec §4.6: the newest
// section's keys win, older sections only fill gaps).
func (fp *FileParser) Trailer() Dictionary { return fp.table.Trailer }

func (fp *FileParser) strict() bool { return fp.cfg.ParsingMode == Strict }

func (fp *FileParser) warn(msg string) { fp.diag.Diagnostic(Warning, msg) }

// checkHeader verifies the "%PDF-M.N" marker (spec §4.6). In BestEffort
// mode the marker may be preceded by garbage, as some producers prepend
// bytes before the file actually starts; Strict mode requires it at
// offset 0.
func (fp *FileParser) checkHeader() (string, error) {
	if _, err := fp.src.Seek(0, SeekSet); err != nil {
		return "", wrapErr(IO, 0, "seeking to start of file", err)
	}
	buf := make([]byte, 1024)
	n, err := fp.src.Read(buf)
	if err != nil {
		return "", wrapErr(IO, 0, "reading file header", err)
	}
	data := buf[:n]

	marker := []byte("%PDF-")
	idx := bytes.Index(data, marker)
	if idx < 0 {
		return "", newErr(Syntax, 0, "missing '%PDF-' header marker")
	}
	if idx != 0 {
		if fp.strict() {
			return "", newErr(Syntax, 0, "'%PDF-' header marker is not at byte 0")
		}
		fp.warn("header: leading garbage before '%PDF-' marker")
	}

	rest := data[idx+len(marker):]
	j := 0
	for j < len(rest) && (isDigit(rest[j]) || rest[j] == '.') {
		j++
	}
	if j == 0 {
		return "", newErr(Syntax, int64(idx), "malformed '%PDF-' version")
	}
	return string(rest[:j]), nil
}

// locateStartXref scans backward from EOF, within cfg.TrailerScanWindow
// bytes, for the "startxref" keyword and the byte offset that follows it
// (spec §4.6).
func (fp *FileParser) locateStartXref() (int64, error) {
	size, err := fp.src.Seek(0, SeekEnd)
	if err != nil {
		return 0, wrapErr(IO, -1, "seeking to end of file", err)
	}
	window := int64(fp.cfg.TrailerScanWindow)
	if window > size {
		window = size
	}
	start := size - window
	if _, err := fp.src.Seek(start, SeekSet); err != nil {
		return 0, wrapErr(IO, start, "seeking to trailer scan window", err)
	}
	buf := make([]byte, window)
	n, err := readFull(fp.src, buf)
	if err != nil {
		return 0, wrapErr(IO, start, "reading trailer scan window", err)
	}
	data := buf[:n]

	marker := []byte("startxref")
	idx := bytes.LastIndex(data, marker)
	if idx < 0 {
		return 0, newErr(Syntax, -1, "'startxref' not found within trailer scan window")
	}
	rest := data[idx+len(marker):]
	p := 0
	for p < len(rest) && isWhitespace(rest[p]) {
		p++
	}
	q := p
	for q < len(rest) && isDigit(rest[q]) {
		q++
	}
	if q == p {
		return 0, newErr(Syntax, -1, "'startxref' has no following offset")
	}
	off, ok := parseFixedDigits(rest[p:q])
	if !ok {
		return 0, newErr(Syntax, -1, "'startxref' offset is not numeric")
	}
	return off, nil
}

func readFull(src ByteStream, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := src.Read(buf[total:])
		total += n
		if src.EOF() {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
	return total, nil
}

// buildTable walks the xref section chain starting at offset, following
// classical /Prev links and a hybrid-reference-file's /XRefStm, merging
// newest-to-oldest into one Table (spec §4.6).
func (fp *FileParser) buildTable(offset int64) (*Table, error) {
	table := NewTable()
	visited := make(map[int64]bool)

	for {
		if visited[offset] {
			fp.warn("xref: /Prev chain cycle detected; stopping")
			break
		}
		visited[offset] = true

		sec, err := fp.readXrefSectionAt(offset)
		if err != nil {
			if fp.strict() {
				return nil, err
			}
			fp.warn("xref: " + err.Error())
			break
		}
		table.Merge(sec)

		if hybridOff, ok := intFromDict(sec.Trailer, "XRefStm"); ok && !visited[hybridOff] {
			visited[hybridOff] = true
			if hybridSec, err := fp.readXrefSectionAt(hybridOff); err == nil {
				table.Merge(hybridSec)
			} else {
				fp.warn("xref: failed to read hybrid /XRefStm section: " + err.Error())
			}
		}

		prevOff, ok := intFromDict(sec.Trailer, "Prev")
		if !ok {
			break
		}
		offset = prevOff
	}

	return table, nil
}

func intFromDict(dict Dictionary, key string) (int64, bool) {
	v, ok := dict.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case Integer:
		return int64(n), true
	case Integer64:
		return int64(n), true
	default:
		return 0, false
	}
}

// readXrefSectionAt reads one xref section — classical or stream-based —
// starting at offset (spec §4.6).
func (fp *FileParser) readXrefSectionAt(offset int64) (*Section, error) {
	if _, err := fp.src.Seek(offset, SeekSet); err != nil {
		return nil, wrapErr(IO, offset, "seeking to xref section", err)
	}
	tz := NewTokenizer(fp.src, fp.cfg, fp.diag)

	if tz.PeekNext().Type == TokenXref {
		p := NewParser(tz, nil, fp.cfg, fp.diag)
		return ParseXrefSection(tz, p, fp.cfg)
	}

	p := NewParser(tz, nil, fp.cfg, fp.diag)
	obj, err := p.NextObject()
	if err != nil {
		return nil, wrapErr(Xref, offset, "parsing xref-stream object", err)
	}
	indirect, ok := obj.(Indirect)
	if !ok {
		return nil, newErr(Xref, offset, "expected an indirect object or 'xref' keyword")
	}
	strm, ok := indirect.Value.(Stream)
	if !ok {
		return nil, newErr(Xref, offset, "xref entry point object is not a stream")
	}
	decoded, err := decodeStreamData(strm.Dict, strm.Data)
	if err != nil {
		return nil, wrapErr(Xref, offset, "decoding xref stream payload", err)
	}
	return ParseXrefStreamSection(indirect, decoded)
}

// ResolveObject reads the object identified by id directly from the
// file, at the offset the xref table gives it, using resolver to satisfy
// any indirect stream /Length it encounters (spec §4.4, §5). Compressed
// entries (object-stream members) are not handled here; Store resolves
// those by unpacking the containing stream.
func (fp *FileParser) ResolveObject(id ObjID, resolver ObjectResolver) (Object, error) {
	entry, ok := fp.table.Lookup(id.Number)
	if !ok {
		return nil, ErrNotFound
	}
	switch entry.Type {
	case XrefFree:
		return nil, ErrNotFound
	case XrefCompressed:
		return nil, newErr(InvalidState, -1, "object is compressed; resolve it through Store, not FileParser")
	}

	reader, release, err := fp.acquireReader()
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := reader.Seek(entry.Offset, SeekSet); err != nil {
		return nil, wrapErr(IO, entry.Offset, "seeking to object", err)
	}
	tz := NewTokenizer(reader, fp.cfg, fp.diag)
	p := NewParser(tz, resolver, fp.cfg, fp.diag)
	obj, err := p.NextObject()
	if err != nil {
		return nil, wrapErr(Xref, entry.Offset, "parsing object "+id.String(), err)
	}
	indirect, ok := obj.(Indirect)
	if !ok {
		return nil, newErr(Xref, entry.Offset, "expected an indirect object at xref offset")
	}
	if indirect.ID.Number != id.Number {
		fp.warn("xref: object number mismatch resolving " + id.String())
	} else if indirect.ID.Generation != id.Generation && fp.strict() {
		return nil, newErr(Xref, entry.Offset, "generation mismatch resolving "+id.String())
	}
	return indirect.Value, nil
}

// ReadRawIndirect reads the indirect object at id's xref offset without
// the compressed-entry indirection ResolveObject would otherwise reject
// (used by Store to read a containing object-stream object so it can
// unpack a Compressed entry from it).
func (fp *FileParser) ReadRawIndirect(id ObjID, resolver ObjectResolver) (Indirect, error) {
	entry, ok := fp.table.Lookup(id.Number)
	if !ok {
		return Indirect{}, ErrNotFound
	}
	if entry.Type != XrefInUse {
		return Indirect{}, ErrNotFound
	}
	reader, release, err := fp.acquireReader()
	if err != nil {
		return Indirect{}, err
	}
	defer release()

	if _, err := reader.Seek(entry.Offset, SeekSet); err != nil {
		return Indirect{}, wrapErr(IO, entry.Offset, "seeking to object", err)
	}
	tz := NewTokenizer(reader, fp.cfg, fp.diag)
	p := NewParser(tz, resolver, fp.cfg, fp.diag)
	obj, err := p.NextObject()
	if err != nil {
		return Indirect{}, wrapErr(Xref, entry.Offset, "parsing object "+id.String(), err)
	}
	indirect, ok := obj.(Indirect)
	if !ok {
		return Indirect{}, newErr(Xref, entry.Offset, "expected an indirect object at xref offset")
	}
	return indirect, nil
}

// Close releases the underlying ByteStream.
func (fp *FileParser) Close() error {
	return fp.src.Close()
}
