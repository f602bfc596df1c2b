// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRunLength(t *testing.T, encoded []byte) []byte {
	t.Helper()
	f := NewRunLengthFilter()
	f.AttachSource(NewMemByteStream(encoded))
	out, err := readAllFilter(f)
	require.NoError(t, err)
	return out
}

func TestRunLengthFilter_LiteralRun(t *testing.T) {
	// length byte 4 -> literal run of 5 bytes.
	got := decodeRunLength(t, append([]byte{4}, []byte("Hello")...))
	assert.Equal(t, []byte("Hello"), got)
}

func TestRunLengthFilter_ReplicateRun(t *testing.T) {
	// length byte 0xFB (251) -> replicate run of 257-251=6 copies of 'A'.
	got := decodeRunLength(t, []byte{0xFB, 'A'})
	assert.Equal(t, []byte("AAAAAA"), got)
}

func TestRunLengthFilter_EODStopsImmediately(t *testing.T) {
	got := decodeRunLength(t, []byte{128, 'X', 'Y'})
	assert.Empty(t, got)
}

func TestRunLengthFilter_MultipleRuns(t *testing.T) {
	encoded := append([]byte{2}, []byte("abc")...)
	encoded = append(encoded, 0xFE, 'z') // replicate 3 copies of 'z'
	encoded = append(encoded, 128)
	got := decodeRunLength(t, encoded)
	assert.Equal(t, []byte("abczzz"), got)
}

func TestRunLengthFilter_TruncatedReplicateRunIsSyntaxError(t *testing.T) {
	f := NewRunLengthFilter()
	f.AttachSource(NewMemByteStream([]byte{0xFE}))
	_, err := readAllFilter(f)
	require.Error(t, err)
	var cosErr *Error
	require.ErrorAs(t, err, &cosErr)
	assert.Equal(t, Syntax, cosErr.Kind)
}
