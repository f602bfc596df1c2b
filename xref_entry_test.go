// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXrefEntry_EncodeDecodeRoundTripInUse(t *testing.T) {
	e := XrefEntry{Type: XrefInUse, Offset: 1234567890, Generation: 7}
	line, err := EncodeXrefEntry(e)
	require.NoError(t, err)
	assert.Len(t, line, xrefEntrySize)

	got, err := DecodeXrefEntry(line)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestXrefEntry_EncodeDecodeRoundTripFree(t *testing.T) {
	e := XrefEntry{Type: XrefFree, Offset: 0, Generation: 65535}
	line, err := EncodeXrefEntry(e)
	require.NoError(t, err)

	got, err := DecodeXrefEntry(line)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestXrefEntry_DecodeClassicLine(t *testing.T) {
	got, err := DecodeXrefEntry([]byte("0000000017 00000 n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, XrefEntry{Type: XrefInUse, Offset: 17, Generation: 0}, got)
}

func TestXrefEntry_DecodeFreeLine(t *testing.T) {
	got, err := DecodeXrefEntry([]byte("0000000000 65535 f\r\n"))
	require.NoError(t, err)
	assert.Equal(t, XrefEntry{Type: XrefFree, Offset: 0, Generation: 65535}, got)
}

func TestXrefEntry_DecodeAlternateEOLForms(t *testing.T) {
	_, err := DecodeXrefEntry([]byte("0000000017 00000 n \r"))
	assert.NoError(t, err)
	_, err = DecodeXrefEntry([]byte("0000000017 00000 n \n"))
	assert.NoError(t, err)
}

func TestXrefEntry_DecodeWrongLengthIsSyntaxError(t *testing.T) {
	_, err := DecodeXrefEntry([]byte("too short"))
	require.Error(t, err)
	var cosErr *Error
	require.ErrorAs(t, err, &cosErr)
	assert.Equal(t, Syntax, cosErr.Kind)
}

func TestXrefEntry_DecodeBadTypeByteIsSyntaxError(t *testing.T) {
	_, err := DecodeXrefEntry([]byte("0000000017 00000 x\r\n"))
	require.Error(t, err)
}

func TestXrefEntry_EncodeCompressedIsUnsupported(t *testing.T) {
	_, err := EncodeXrefEntry(XrefEntry{Type: XrefCompressed, StreamObjNum: 3, IndexInStream: 1})
	require.Error(t, err)
}
