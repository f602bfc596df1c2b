// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

const runLengthEOD = 128

type runMode int

const (
	runNone runMode = iota
	runLiteral
	runReplicate
)

// runLengthFilter implements the RunLengthDecode filter (spec §4.2). A
// run that would overflow a single refill's dst is naturally split across
// refill calls because remaining/mode persist on the filter between
// calls.
type runLengthFilter struct {
	filterBase
	mode      runMode
	remaining int
	repByte   byte
}

// NewRunLengthFilter returns a Filter that decodes a RunLength-encoded
// stream. Call AttachSource before the first Read.
func NewRunLengthFilter() Filter {
	f := &runLengthFilter{}
	f.filterBase = newFilterBase(f)
	return f
}

func (r *runLengthFilter) refill(src ByteStream, dst []byte) (int, bool, error) {
	n := 0
	for n < len(dst) {
		if r.remaining == 0 {
			lb, atEOF, err := readSourceByte(src)
			if err != nil {
				return n, false, wrapErr(IO, -1, "runlength: read source", err)
			}
			if atEOF {
				return n, true, nil
			}
			l := int(lb)
			switch {
			case l == runLengthEOD:
				return n, true, nil
			case l <= 127:
				r.mode = runLiteral
				r.remaining = l + 1
			default:
				r.mode = runReplicate
				r.remaining = 257 - l
				b, atEOF2, err2 := readSourceByte(src)
				if err2 != nil {
					return n, false, wrapErr(IO, -1, "runlength: read source", err2)
				}
				if atEOF2 {
					return n, true, wrapErr(Syntax, -1, "runlength: truncated replicate run")
				}
				r.repByte = b
			}
			continue
		}
		switch r.mode {
		case runLiteral:
			b, atEOF, err := readSourceByte(src)
			if err != nil {
				return n, false, wrapErr(IO, -1, "runlength: read source", err)
			}
			if atEOF {
				return n, true, wrapErr(Syntax, -1, "runlength: truncated literal run")
			}
			dst[n] = b
		case runReplicate:
			dst[n] = r.repByte
		}
		n++
		r.remaining--
	}
	return n, false, nil
}
