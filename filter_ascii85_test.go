// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeASCII85(t *testing.T, encoded string) []byte {
	t.Helper()
	f := NewASCII85Filter()
	f.AttachSource(NewMemByteStream([]byte(encoded)))
	out, err := readAllFilter(f)
	require.NoError(t, err)
	return out
}

func TestASCII85Filter_Basic(t *testing.T) {
	// "Man " encodes to "9jqo^" in the canonical ASCII85 example.
	got := decodeASCII85(t, "9jqo^~>")
	assert.Equal(t, []byte("Man "), got)
}

func TestASCII85Filter_ZShortcut(t *testing.T) {
	got := decodeASCII85(t, "z~>")
	assert.Equal(t, []byte{0, 0, 0, 0}, got)
}

func TestASCII85Filter_WhitespaceIgnored(t *testing.T) {
	got := decodeASCII85(t, "9j qo^\n~>")
	assert.Equal(t, []byte("Man "), got)
}

func TestASCII85Filter_PartialFinalGroup(t *testing.T) {
	// Two base-85 chars decode to one output byte.
	got := decodeASCII85(t, "!!~>")
	assert.Equal(t, 1, len(got))
}

func TestASCII85Filter_MissingTerminatorCloser(t *testing.T) {
	f := NewASCII85Filter()
	f.AttachSource(NewMemByteStream([]byte("9jqo^~")))
	_, err := readAllFilter(f)
	require.Error(t, err)
	var cosErr *Error
	require.ErrorAs(t, err, &cosErr)
	assert.Equal(t, Syntax, cosErr.Kind)
}

func TestASCII85Filter_ByteOutOfRange(t *testing.T) {
	f := NewASCII85Filter()
	f.AttachSource(NewMemByteStream([]byte{0x7f, '~', '>'}))
	_, err := readAllFilter(f)
	require.Error(t, err)
}
