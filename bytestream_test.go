// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemByteStream_ReadSeekTell(t *testing.T) {
	s := NewMemByteStream([]byte("0123456789"))

	buf := make([]byte, 4)
	n, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("0123"), buf)

	pos, err := s.Tell()
	require.NoError(t, err)
	assert.Equal(t, int64(4), pos)
	assert.False(t, s.EOF())

	pos, err = s.Seek(2, SeekSet)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)
	assert.False(t, s.EOF())
}

func TestMemByteStream_ReadToEOF(t *testing.T) {
	s := NewMemByteStream([]byte("ab"))
	buf := make([]byte, 16)
	n, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, s.EOF())
}

func TestMemByteStream_SeekResetsEOF(t *testing.T) {
	s := NewMemByteStream([]byte("ab"))
	buf := make([]byte, 16)
	_, _ = s.Read(buf)
	require.True(t, s.EOF())

	_, err := s.Seek(0, SeekSet)
	require.NoError(t, err)
	assert.False(t, s.EOF())
}

func TestOpen_MissingFileIsIOError(t *testing.T) {
	_, err := Open("/nonexistent/path/to/a/file.pdf")
	require.Error(t, err)
	var cosErr *Error
	require.ErrorAs(t, err, &cosErr)
	assert.Equal(t, IO, cosErr.Kind)
}
