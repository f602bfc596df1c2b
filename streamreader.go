// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import "io"

// minReadAheadBuf is the default read-ahead buffer capacity; spec §4.1
// requires at least 256 bytes ("a fixed-capacity (≥ 256 bytes)
// read-ahead buffer").
const minReadAheadBuf = 512

// streamReader is component B (spec §4.1): a single-byte buffered façade
// over a ByteStream offering peek/getc/ungetc-by-one, with position()
// reported as the absolute source offset of the next unread byte.
//
// Once the underlying stream reports EOF, streamReader remembers that EOF
// was hit at the recorded buffer position and keeps returning EOF past
// that boundary even if the caller seeks the underlying ByteStream
// directly — callers must call reset() after seeking out from under a
// streamReader.
type streamReader struct {
	src    ByteStream
	buf    []byte
	pos    int // index of next unread byte in buf
	end    int // number of valid bytes in buf
	eof    bool
	unget  byte
	hasUng bool
}

// newStreamReader wraps src with a read-ahead buffer of at least
// minReadAheadBuf bytes.
func newStreamReader(src ByteStream) *streamReader {
	return &streamReader{src: src, buf: make([]byte, minReadAheadBuf)}
}

// position returns the absolute offset of the next byte reset() or
// getc()/peek() would see, per the formula in spec §4.1:
// stream.tell() − (buffer_end − buffer_pos).
func (r *streamReader) position() (int64, error) {
	tell, err := r.src.Tell()
	if err != nil {
		return 0, err
	}
	pos := tell - int64(r.end-r.pos)
	if r.hasUng {
		pos--
	}
	return pos, nil
}

// reset clears buffered/ungetc state and the sticky-EOF flag. Callers
// must call this after seeking the underlying ByteStream directly.
func (r *streamReader) reset() {
	r.pos, r.end = 0, 0
	r.eof = false
	r.hasUng = false
}

func (r *streamReader) refill() error {
	if r.eof {
		return nil
	}
	n, err := r.src.Read(r.buf)
	if err != nil {
		return err
	}
	r.pos, r.end = 0, n
	if n == 0 || r.src.EOF() {
		r.eof = true
	}
	return nil
}

// getc consumes and returns the next byte, or io.EOF.
func (r *streamReader) getc() (byte, error) {
	if r.hasUng {
		r.hasUng = false
		return r.unget, nil
	}
	if r.pos >= r.end {
		if r.eof {
			return 0, io.EOF
		}
		if err := r.refill(); err != nil {
			return 0, err
		}
		if r.pos >= r.end {
			return 0, io.EOF
		}
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// peek returns the next byte without consuming it.
func (r *streamReader) peek() (byte, error) {
	if r.hasUng {
		return r.unget, nil
	}
	if r.pos >= r.end {
		if r.eof {
			return 0, io.EOF
		}
		if err := r.refill(); err != nil {
			return 0, err
		}
		if r.pos >= r.end {
			return 0, io.EOF
		}
	}
	return r.buf[r.pos], nil
}

// ungetc pushes back a single byte. Capacity is exactly one, per spec
// §4.1; calling it twice without an intervening getc is an InvalidState
// error (peek leaves the pushed-back byte in place).
func (r *streamReader) ungetc(b byte) error {
	if r.hasUng {
		return newErr(InvalidState, -1, "ungetc: already have a pushed-back byte")
	}
	r.unget = b
	r.hasUng = true
	return nil
}
