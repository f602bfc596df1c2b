// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjID_String(t *testing.T) {
	id := ObjID{Number: 5, Generation: 2}
	assert.Equal(t, "5 2 R", id.String())
}

func TestObjID_Less(t *testing.T) {
	a := ObjID{Number: 1, Generation: 0}
	b := ObjID{Number: 2, Generation: 0}
	c := ObjID{Number: 1, Generation: 1}

	assert.True(t, a.Less(b), "lower object number, same generation, sorts first")
	assert.True(t, b.Less(c), "lower generation sorts first regardless of object number")
	assert.False(t, a.Less(a))
}

func TestDictionary_Get(t *testing.T) {
	d := Dictionary{"Type": Name("Catalog")}
	v, ok := d.Get("Type")
	assert.True(t, ok)
	assert.Equal(t, Name("Catalog"), v)

	_, ok = d.Get("Missing")
	assert.False(t, ok)
}

func TestDictionary_DuplicateKeyLastWriteWins(t *testing.T) {
	d := Dictionary{}
	d["Count"] = Integer(1)
	d["Count"] = Integer(2)
	v, _ := d.Get("Count")
	assert.Equal(t, Integer(2), v)
}

func TestObject_VariantsSatisfyInterface(t *testing.T) {
	var objs = []Object{
		Null{},
		Boolean(true),
		Integer(1),
		Integer64(1 << 40),
		Real(1.5),
		String("s"),
		Name("n"),
		Array{Integer(1)},
		Dictionary{"k": Integer(1)},
		Stream{Dict: Dictionary{}, Data: []byte("x")},
		Indirect{ID: ObjID{Number: 1}, Value: Integer(1)},
		Reference{ID: ObjID{Number: 1}},
	}
	assert.Len(t, objs, 12)
}
