// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReader_GetcPeek(t *testing.T) {
	r := newStreamReader(NewMemByteStream([]byte("abc")))

	b, err := r.peek()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), b)

	b, err = r.getc()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), b)

	b, err = r.getc()
	require.NoError(t, err)
	assert.Equal(t, byte('b'), b)
}

func TestStreamReader_Ungetc(t *testing.T) {
	r := newStreamReader(NewMemByteStream([]byte("xy")))

	b, err := r.getc()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b)

	require.NoError(t, r.ungetc(b))

	b2, err := r.getc()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), b2)

	b3, err := r.getc()
	require.NoError(t, err)
	assert.Equal(t, byte('y'), b3)
}

func TestStreamReader_UngetcTwiceIsInvalidState(t *testing.T) {
	r := newStreamReader(NewMemByteStream([]byte("x")))
	require.NoError(t, r.ungetc('a'))
	err := r.ungetc('b')
	require.Error(t, err)
	var cosErr *Error
	require.ErrorAs(t, err, &cosErr)
	assert.Equal(t, InvalidState, cosErr.Kind)
}

func TestStreamReader_EOF(t *testing.T) {
	r := newStreamReader(NewMemByteStream([]byte("a")))
	_, err := r.getc()
	require.NoError(t, err)
	_, err = r.getc()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamReader_PositionTracksConsumedBytes(t *testing.T) {
	r := newStreamReader(NewMemByteStream([]byte("abcdef")))
	pos, err := r.position()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)

	_, _ = r.getc()
	_, _ = r.getc()
	pos, err = r.position()
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)
}

func TestStreamReader_ResetAfterExternalSeek(t *testing.T) {
	src := NewMemByteStream([]byte("abcdef"))
	r := newStreamReader(src)
	_, _ = r.getc()
	_, _ = r.getc()

	_, err := src.Seek(0, SeekSet)
	require.NoError(t, err)
	r.reset()

	b, err := r.getc()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), b)
}
