// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

// newFilterByName constructs one of the three decoding filters gocos
// implements (spec §4.2). Any other name — including the common
// FlateDecode/LZWDecode/DCTDecode/CCITTFaxDecode/JBIG2Decode producers
// actually use — is out of scope (spec Non-goals) and reported as a
// plain, nameable error rather than attempted.
func newFilterByName(name string) (Filter, error) {
	switch name {
	case "ASCIIHexDecode", "AHx":
		return NewASCIIHexFilter(), nil
	case "ASCII85Decode", "A85":
		return NewASCII85Filter(), nil
	case "RunLengthDecode", "RL":
		return NewRunLengthFilter(), nil
	default:
		return nil, newErr(InvalidArgument, -1, "unsupported stream filter: "+name)
	}
}

// filterNames extracts a stream dictionary's /Filter entry as an ordered
// list of filter names: absent means no filter, a bare Name means one
// filter, and an Array means a chain applied in array order (spec §4.2).
func filterNames(dict Dictionary) ([]string, error) {
	v, ok := dict.Get("Filter")
	if !ok {
		return nil, nil
	}
	switch t := v.(type) {
	case Name:
		return []string{string(t)}, nil
	case Array:
		out := make([]string, 0, len(t))
		for _, o := range t {
			n, ok := o.(Name)
			if !ok {
				return nil, newErr(Syntax, -1, "stream /Filter array element is not a name")
			}
			out = append(out, string(n))
		}
		return out, nil
	default:
		return nil, newErr(Syntax, -1, "stream /Filter must be a name or an array of names")
	}
}

// decodeStreamData runs raw through the filter chain named by dict's
// /Filter, returning the fully decoded payload. With no /Filter entry,
// raw is returned unchanged.
func decodeStreamData(dict Dictionary, raw []byte) ([]byte, error) {
	names, err := filterNames(dict)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return raw, nil
	}
	var src ByteStream = NewMemByteStream(raw)
	var last Filter
	for _, name := range names {
		f, err := newFilterByName(name)
		if err != nil {
			return nil, err
		}
		f.AttachSource(src)
		src = f
		last = f
	}
	return readAllFilter(last)
}
