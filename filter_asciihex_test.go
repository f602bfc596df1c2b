// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeASCIIHex(t *testing.T, encoded string) []byte {
	t.Helper()
	f := NewASCIIHexFilter()
	f.AttachSource(NewMemByteStream([]byte(encoded)))
	out, err := readAllFilter(f)
	require.NoError(t, err)
	return out
}

func TestASCIIHexFilter_Basic(t *testing.T) {
	got := decodeASCIIHex(t, "48656C6C6F>")
	assert.Equal(t, []byte("Hello"), got)
}

func TestASCIIHexFilter_WhitespaceTolerated(t *testing.T) {
	got := decodeASCIIHex(t, "48 65 6C\n6C 6F>")
	assert.Equal(t, []byte("Hello"), got)
}

func TestASCIIHexFilter_OddDigitPadsLowNibble(t *testing.T) {
	got := decodeASCIIHex(t, "4>")
	assert.Equal(t, []byte{0x40}, got)
}

func TestASCIIHexFilter_NonHexByteIsSyntaxError(t *testing.T) {
	f := NewASCIIHexFilter()
	f.AttachSource(NewMemByteStream([]byte("4Z>")))
	_, err := readAllFilter(f)
	require.Error(t, err)
	var cosErr *Error
	require.ErrorAs(t, err, &cosErr)
	assert.Equal(t, Syntax, cosErr.Kind)
}

func TestASCIIHexFilter_MissingTerminatorReadsToSourceEOF(t *testing.T) {
	got := decodeASCIIHex(t, "48656C6C6F")
	assert.Equal(t, []byte("Hello"), got)
}
