// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import "io"

// minDecodeBuf is the internal decode-buffer capacity every filter
// allocates; spec §4.2 requires at least 256 bytes ("Each filter owns a
// small internal buffer (≥ 256 bytes)").
const minDecodeBuf = 512

// Filter is component C (spec §4.2): a stream whose Read decodes bytes
// pulled from an attached upstream ByteStream. There is no Write; Seek
// and Tell come with the embedded ByteStream but always fail with
// InvalidArgument — filters are decode-only pull streams in gocos,
// matching the spec's stated scope (encoding is a Non-goal).
type Filter interface {
	ByteStream
	AttachSource(src ByteStream)
	DetachSource() ByteStream
}

// refiller is implemented by each concrete filter to produce more decoded
// bytes into dst, reporting how many bytes it wrote and whether the
// filter has reached its own end-of-data marker. The concrete filters
// keep reading the source until dst is full, their end-of-data marker
// is seen, the source reaches EOF, or an error occurs.
type refiller interface {
	refill(src ByteStream, dst []byte) (n int, eod bool, err error)
}

// filterBase implements the decode-buffer contract shared by every
// concrete filter (spec §4.2): Read loops, refilling the internal buffer
// from the attached source via the refiller, until either the caller's
// count is satisfied or end-of-data is reached with an empty buffer.
type filterBase struct {
	src  ByteStream
	buf  []byte
	pos  int
	end  int
	eod  bool
	fill refiller
}

func newFilterBase(fill refiller) filterBase {
	return filterBase{buf: make([]byte, minDecodeBuf), fill: fill}
}

func (f *filterBase) AttachSource(src ByteStream) { f.src = src }

func (f *filterBase) DetachSource() ByteStream {
	src := f.src
	f.src = nil
	return src
}

func (f *filterBase) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if f.pos >= f.end {
			if f.eod {
				break
			}
			if f.src == nil {
				return n, newErr(InvalidArgument, -1, "filter: no source attached")
			}
			f.pos, f.end = 0, 0
			written, eod, err := f.fill.refill(f.src, f.buf)
			f.end = written
			if eod {
				f.eod = true
			}
			if err != nil {
				if n > 0 {
					return n, nil
				}
				return n, err
			}
			if written == 0 && eod {
				break
			}
			if written == 0 {
				// Source had nothing new this round but isn't done;
				// avoid a busy loop by surfacing what we have.
				break
			}
		}
		c := copy(p[n:], f.buf[f.pos:f.end])
		f.pos += c
		n += c
	}
	if n == 0 && f.eod && f.pos >= f.end {
		return 0, io.EOF
	}
	return n, nil
}

func (f *filterBase) Seek(int64, int) (int64, error) {
	return 0, newErr(InvalidArgument, -1, "filter: seek not supported")
}

func (f *filterBase) Tell() (int64, error) {
	return 0, newErr(InvalidArgument, -1, "filter: tell not supported")
}

func (f *filterBase) EOF() bool { return f.eod && f.pos >= f.end }

func (f *filterBase) Close() error {
	if f.src != nil {
		err := f.src.Close()
		f.src = nil
		return err
	}
	return nil
}

// readAllFilter drains a Filter to completion, the way callers typically
// consume a decoded stream payload in full.
func readAllFilter(f Filter) ([]byte, error) {
	var out []byte
	buf := make([]byte, minDecodeBuf)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		if n == 0 {
			return out, nil
		}
	}
}
