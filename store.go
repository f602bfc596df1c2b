// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Store is the minimal ObjectResolver gocos ships: a per-document cache
// of resolved indirect objects, backed by a FileParser (spec §6). It
// resolves both ordinary (FileParser) entries and Compressed
// (object-stream member) entries, unpacking the latter's containing
// stream on first use and caching every member it finds.
type Store struct {
	fp   *FileParser
	cfg  *Config
	diag DiagnosticHandler

	mu       sync.Mutex
	cache    map[ObjID]Object
	objStms  map[uint32]map[uint32]Object // containing stream obj# -> member obj# -> value
	resolved map[uint32]bool              // containing stream obj# already unpacked
}

// NewStore creates a Store reading objects on demand from fp.
func NewStore(fp *FileParser, cfg *Config, diag DiagnosticHandler) *Store {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if diag == nil {
		diag = loggingDiagnostics{}
	}
	return &Store{
		fp:       fp,
		cfg:      cfg,
		diag:     diag,
		cache:    make(map[ObjID]Object),
		objStms:  make(map[uint32]map[uint32]Object),
		resolved: make(map[uint32]bool),
	}
}

// GetObject implements ObjectResolver: it resolves id to its direct
// Object value, consulting the cache first and recursively resolving
// indirect /Length values and compressed members along the way.
func (s *Store) GetObject(id ObjID) (Object, error) {
	s.mu.Lock()
	if v, ok := s.cache[id]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	entry, ok := s.fp.Table().Lookup(id.Number)
	if !ok {
		return nil, ErrNotFound
	}

	var (
		val Object
		err error
	)
	switch entry.Type {
	case XrefFree:
		return nil, ErrNotFound
	case XrefCompressed:
		val, err = s.resolveCompressed(entry)
	default:
		val, err = s.fp.ResolveObject(id, s)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[id] = val
	s.mu.Unlock()
	return val, nil
}

// resolveCompressed unpacks the object stream named by entry.StreamObjNum
// (if not already unpacked) and returns the member at entry.IndexInStream
// (spec §4.6's supplemental compressed-entry handling).
func (s *Store) resolveCompressed(entry XrefEntry) (Object, error) {
	s.mu.Lock()
	members, done := s.objStms[entry.StreamObjNum], s.resolved[entry.StreamObjNum]
	s.mu.Unlock()
	if !done {
		var err error
		members, err = s.unpackObjStm(entry.StreamObjNum)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.objStms[entry.StreamObjNum] = members
		s.resolved[entry.StreamObjNum] = true
		s.mu.Unlock()
	}
	val, ok := members[entry.IndexInStream]
	if !ok {
		return nil, ErrNotFound
	}
	return val, nil
}

// unpackObjStm reads and decodes the object-stream object streamObjNum,
// parsing every member object named in its header (spec §4.6). Members
// are keyed here by their position in the stream's /N header, which is
// what Compressed entries' IndexInStream refers to.
func (s *Store) unpackObjStm(streamObjNum uint32) (map[uint32]Object, error) {
	indirect, err := s.fp.ReadRawIndirect(ObjID{Number: streamObjNum}, s)
	if err != nil {
		return nil, wrapErr(Xref, -1, "reading object stream", err)
	}
	strm, ok := indirect.Value.(Stream)
	if !ok {
		return nil, newErr(Xref, -1, "compressed entry's container is not a stream object")
	}
	decoded, err := decodeStreamData(strm.Dict, strm.Data)
	if err != nil {
		return nil, wrapErr(Xref, -1, "decoding object stream payload", err)
	}

	n, ok := intFromDict(strm.Dict, "N")
	if !ok {
		return nil, newErr(Xref, -1, "object stream missing /N")
	}
	first, ok := intFromDict(strm.Dict, "First")
	if !ok {
		return nil, newErr(Xref, -1, "object stream missing /First")
	}

	headerSrc := NewMemByteStream(decoded)
	headerTz := NewTokenizer(headerSrc, s.cfg, s.diag)
	type pair struct{ objNum, offset int64 }
	pairs := make([]pair, 0, n)
	for i := int64(0); i < n; i++ {
		objTok, ok := headerTz.Match(TokenInteger)
		if !ok {
			return nil, newErr(Xref, -1, "object stream header: expected object number")
		}
		objNum := objTok.Int
		headerTz.Release(objTok)
		offTok, ok := headerTz.Match(TokenInteger)
		if !ok {
			return nil, newErr(Xref, -1, "object stream header: expected offset")
		}
		off := offTok.Int
		headerTz.Release(offTok)
		pairs = append(pairs, pair{int64(objNum), int64(off)})
	}

	members := make(map[uint32]Object, len(pairs))
	for idx, pr := range pairs {
		if first+pr.offset > int64(len(decoded)) {
			return nil, newErr(Xref, -1, "object stream member offset out of range")
		}
		bodySrc := NewMemByteStream(decoded[first+pr.offset:])
		bodyTz := NewTokenizer(bodySrc, s.cfg, s.diag)
		bodyParser := NewParser(bodyTz, s, s.cfg, s.diag)
		val, err := bodyParser.NextObject()
		if err != nil {
			return nil, wrapErr(Xref, -1, "parsing object stream member", err)
		}
		members[uint32(idx)] = val
		_ = pr.objNum // the object number is implied by the xref entry that pointed here
	}
	return members, nil
}

// resolveResult pairs a requested ObjID with its resolution outcome, the
// shape Store.ResolveMany returns results in.
type resolveResult struct {
	ID    ObjID
	Value Object
	Err   error
}

// ResolveMany resolves every id in ids, bounding in-flight resolutions to
// cfg.MaxConcurrentResolves the way the teacher's processor.go bounds
// concurrent page work with a semaphore.Weighted — gocos's own grammar
// is single-threaded, but separate Store.GetObject calls for independent
// objects have no shared mutable state beyond the cache's mutex, so nothing
// prevents running them concurrently within one document (spec §5).
func (s *Store) ResolveMany(ctx context.Context, ids []ObjID) ([]resolveResult, error) {
	sem := semaphore.NewWeighted(int64(s.cfg.MaxConcurrentResolves))
	results := make([]resolveResult, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			return results, wrapErr(InvalidState, -1, "resolve many: acquire slot", err)
		}
		wg.Add(1)
		go func(i int, id ObjID) {
			defer wg.Done()
			defer sem.Release(1)
			val, err := s.GetObject(id)
			results[i] = resolveResult{ID: id, Value: val, Err: err}
		}(i, id)
	}
	wg.Wait()
	return results, nil
}
