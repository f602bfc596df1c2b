// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseXrefSection_Classical(t *testing.T) {
	src := "xref\n0 3\n0000000000 65535 f\r\n0000000017 00000 n\r\n0000000081 00000 n\r\ntrailer\n<< /Size 3 /Root 1 0 R >>\n"
	tz := NewTokenizer(NewMemByteStream([]byte(src)), NewDefaultConfig(), loggingDiagnostics{})
	p := NewParser(tz, nil, NewDefaultConfig(), loggingDiagnostics{})

	sec, err := ParseXrefSection(tz, p, NewDefaultConfig())
	require.NoError(t, err)
	require.Len(t, sec.Subsections, 1)
	assert.Equal(t, uint32(0), sec.Subsections[0].Start)
	require.Len(t, sec.Subsections[0].Entries, 3)
	assert.Equal(t, XrefFree, sec.Subsections[0].Entries[0].Type)
	assert.Equal(t, XrefEntry{Type: XrefInUse, Offset: 17}, sec.Subsections[0].Entries[1])
	assert.Equal(t, Integer(3), sec.Trailer["Size"])
	assert.Equal(t, Reference{ID: ObjID{Number: 1, Generation: 0}}, sec.Trailer["Root"])
}

func TestTable_MergeNewestWins(t *testing.T) {
	newer := &Section{
		Subsections: []Subsection{{Start: 1, Entries: []XrefEntry{{Type: XrefInUse, Offset: 500}}}},
		Trailer:     Dictionary{"Size": Integer(5)},
	}
	older := &Section{
		Subsections: []Subsection{
			{Start: 1, Entries: []XrefEntry{{Type: XrefInUse, Offset: 100}}},
			{Start: 2, Entries: []XrefEntry{{Type: XrefInUse, Offset: 200}}},
		},
		Trailer: Dictionary{"Size": Integer(3), "Info": Reference{ID: ObjID{Number: 9}}},
	}

	table := NewTable()
	table.Merge(newer)
	table.Merge(older)

	e1, ok := table.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, int64(500), e1.Offset, "object 1 keeps the newer section's offset")

	e2, ok := table.Lookup(2)
	require.True(t, ok)
	assert.Equal(t, int64(200), e2.Offset, "object 2 is only present in the older section")

	assert.Equal(t, Integer(5), table.Trailer["Size"], "newer section's trailer key wins")
	assert.Equal(t, Reference{ID: ObjID{Number: 9}}, table.Trailer["Info"], "older section fills a trailer gap")
}

func TestParseXrefStreamSection(t *testing.T) {
	decoded := []byte{
		1, 17, 0, // type 1 (in use), offset 17, gen 0
		1, 81, 0, // type 1 (in use), offset 81, gen 0
	}
	dict := Dictionary{
		"Type":  Name("XRef"),
		"Size":  Integer(2),
		"W":     Array{Integer(1), Integer(1), Integer(1)},
		"Index": Array{Integer(0), Integer(2)},
	}
	indirect := Indirect{ID: ObjID{Number: 10}, Value: Stream{Dict: dict, Data: nil}}

	sec, err := ParseXrefStreamSection(indirect, decoded)
	require.NoError(t, err)
	require.Len(t, sec.Subsections, 1)
	require.Len(t, sec.Subsections[0].Entries, 2)
	assert.Equal(t, XrefEntry{Type: XrefInUse, Offset: 17}, sec.Subsections[0].Entries[0])
	assert.Equal(t, XrefEntry{Type: XrefInUse, Offset: 81}, sec.Subsections[0].Entries[1])
}

func TestParseXrefStreamSection_CompressedEntry(t *testing.T) {
	decoded := []byte{
		2, 7, 3, // type 2 (compressed), containing stream obj 7, index 3
	}
	dict := Dictionary{
		"Size": Integer(1),
		"W":    Array{Integer(1), Integer(1), Integer(1)},
	}
	indirect := Indirect{Value: Stream{Dict: dict}}

	sec, err := ParseXrefStreamSection(indirect, decoded)
	require.NoError(t, err)
	entry := sec.Subsections[0].Entries[0]
	assert.Equal(t, XrefCompressed, entry.Type)
	assert.Equal(t, uint32(7), entry.StreamObjNum)
	assert.Equal(t, uint32(3), entry.IndexInStream)
}
