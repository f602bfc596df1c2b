// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MessageWithOffsetAndCause(t *testing.T) {
	e := wrapErr(IO, 42, "reading object", io.ErrUnexpectedEOF)
	assert.Equal(t, "io at offset 42: reading object: unexpected EOF", e.Error())
}

func TestError_MessageWithoutOffset(t *testing.T) {
	e := newErr(Syntax, -1, "bad token")
	assert.Equal(t, "syntax: bad token", e.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	e := wrapErr(IO, 0, "reading", cause)
	assert.True(t, errors.Is(e, cause))
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		InvalidArgument: "invalid argument",
		IO:              "io",
		Syntax:          "syntax",
		OutOfRange:      "out of range",
		Memory:          "memory",
		InvalidState:    "invalid state",
		Xref:            "xref",
		Kind(999):       "unknown",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}
