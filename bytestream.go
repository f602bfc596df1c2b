// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"bytes"
	"io"
	"os"
)

// Seek whence constants, mirroring io.Seek*; named here so callers of
// ByteStream don't need to import "io" just to seek (spec §4.1).
const (
	SeekSet = io.SeekStart
	SeekCur = io.SeekCurrent
	SeekEnd = io.SeekEnd
)

// ByteStream is the random-access pull source every other CORE component
// is layered on (component A, spec §4.1, §6). Implementations may reject
// Seek with InvalidArgument for genuinely non-seekable sources: the
// byte streams returned by Open/NewFileByteStream/NewMemByteStream are
// always seekable, while gocos's Filters reject Seek and Tell.
type ByteStream interface {
	Read(p []byte) (n int, err error)
	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
	EOF() bool
	Close() error
}

// byteStream adapts any io.ReadSeeker (+ optional io.Closer) to ByteStream,
// tracking position and end-of-data locally rather than round-tripping
// through Seek(0, io.SeekCurrent) on every Tell call.
type byteStream struct {
	rs     io.ReadSeeker
	ra     io.ReaderAt // set when rs also allows positionless concurrent reads
	size   int64       // -1 if unknown
	closer io.Closer
	pos    int64
	eof    bool
}

// byteStreamCloner is the optional capability a ByteStream may implement:
// producing a fresh, independent view over the same underlying data, with
// its own Seek/Read position, safe to use concurrently with the original
// and with any other clone (spec §4.1, §5 — FileParser.ResolveObject and
// ReadRawIndirect use this so concurrent Store.ResolveMany resolutions
// never share mutable seek state).
type byteStreamCloner interface {
	Clone() (ByteStream, error)
}

// newByteStream wraps rs, detecting whether it also supports io.ReaderAt
// (true of both *os.File and *bytes.Reader) and recording its size so
// Clone can hand out independent io.SectionReader-backed views later.
func newByteStream(rs io.ReadSeeker, closer io.Closer) *byteStream {
	s := &byteStream{rs: rs, closer: closer, size: -1}
	if ra, ok := rs.(io.ReaderAt); ok {
		if size, err := rs.Seek(0, io.SeekEnd); err == nil {
			if _, err := rs.Seek(0, io.SeekStart); err == nil {
				s.ra = ra
				s.size = size
			}
		}
	}
	return s
}

// Clone returns a new ByteStream reading the same underlying data as s,
// positioned at offset 0, with Seek/Read state entirely independent of s
// (and of any other clone). It requires s to have detected random-access
// support at construction time.
func (s *byteStream) Clone() (ByteStream, error) {
	if s.ra == nil || s.size < 0 {
		return nil, newErr(InvalidState, -1, "byte stream does not support concurrent cloning")
	}
	section := io.NewSectionReader(s.ra, 0, s.size)
	return &byteStream{rs: section, ra: section, size: s.size}, nil
}

// Open opens path for random-access reading, the way the teacher's
// Open(file) opens an *os.File for NewReader (read.go).
func Open(path string) (ByteStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(IO, -1, "open "+path, err)
	}
	return newByteStream(f, f), nil
}

// NewFileByteStream wraps an already-open *os.File.
func NewFileByteStream(f *os.File) ByteStream {
	return newByteStream(f, f)
}

// NewMemByteStream wraps an in-memory buffer as a ByteStream, for tests
// and for callers who already have the whole file in memory.
func NewMemByteStream(data []byte) ByteStream {
	return newByteStream(bytes.NewReader(data), nil)
}

func (s *byteStream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := s.rs.Read(p)
	s.pos += int64(n)
	if err == io.EOF {
		s.eof = true
		return n, nil
	}
	if err != nil {
		return n, wrapErr(IO, s.pos, "read", err)
	}
	if s.size >= 0 && s.pos >= s.size {
		s.eof = true
	}
	return n, nil
}

func (s *byteStream) Seek(offset int64, whence int) (int64, error) {
	pos, err := s.rs.Seek(offset, whence)
	if err != nil {
		return 0, wrapErr(IO, offset, "seek", err)
	}
	s.pos = pos
	s.eof = false
	return pos, nil
}

func (s *byteStream) Tell() (int64, error) {
	return s.pos, nil
}

func (s *byteStream) EOF() bool {
	return s.eof
}

func (s *byteStream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
