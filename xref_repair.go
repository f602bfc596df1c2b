// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"fmt"
	"regexp"
	"strings"
)

// Lenient-mode xref table repair (spec §4.6's supplemental xref-repair
// feature), grounded on the teacher's isLikelyObjectAt/scanForObjectAt/
// validateAndRepairXrefEntries (read.go): when a writer's declared xref
// offsets have drifted (a common real-world defect), a quick header probe
// followed by a small-window rescan recovers the true offset instead of
// failing the whole parse.

const (
	xrefRepairProbeBytes = 64
	xrefRepairWindow     = 1024
)

var objHeaderAtStartRe = regexp.MustCompile(`^\d+\s+\d+\s+obj\b`)

// isLikelyObjectAt performs a lightweight check of whether an object
// header, dictionary, or the file header begins at off.
func isLikelyObjectAt(reader ByteStream, off, size int64) bool {
	if off < 0 || off >= size {
		return false
	}
	if _, err := reader.Seek(off, SeekSet); err != nil {
		return false
	}
	buf := make([]byte, xrefRepairProbeBytes)
	n, err := reader.Read(buf)
	if err != nil || n == 0 {
		return false
	}
	s := strings.TrimLeft(string(buf[:n]), " \t\r\n\x00")
	if objHeaderAtStartRe.MatchString(s) {
		return true
	}
	return strings.HasPrefix(s, "<<") || strings.HasPrefix(s, "%PDF-")
}

// scanForObjectAt searches a +/- window around approx for "id gen obj"
// and returns the offset it was found at, if any.
func scanForObjectAt(reader ByteStream, id ObjID, approx, window, size int64) (int64, bool) {
	start := approx - window
	if start < 0 {
		start = 0
	}
	end := approx + window
	if end > size {
		end = size
	}
	span := end - start
	if span <= 0 {
		return 0, false
	}
	if _, err := reader.Seek(start, SeekSet); err != nil {
		return 0, false
	}
	buf := make([]byte, span)
	n, err := readFull(reader, buf)
	if err != nil {
		return 0, false
	}
	buf = buf[:n]

	pattern := fmt.Sprintf(`\b%d\s+%d\s+obj\b`, id.Number, id.Generation)
	loc := regexp.MustCompile(pattern).FindIndex(buf)
	if loc == nil {
		return 0, false
	}
	return start + int64(loc[0]), true
}

// repairTable validates every InUse entry's declared offset and, when an
// object header isn't found there, rescans a window around it, patching
// the table in place. A no-op unless cfg.Lenient is set; strict mode
// never repairs a malformed table, it errors instead (spec §4.6).
func (fp *FileParser) repairTable() {
	if !fp.cfg.Lenient || fp.strict() {
		return
	}

	reader, release, err := fp.acquireReader()
	if err != nil {
		return
	}
	defer release()

	size, err := reader.Seek(0, SeekEnd)
	if err != nil {
		return
	}

	repaired, invalid := 0, 0
	for _, objNum := range fp.table.ObjectNumbers() {
		entry, _ := fp.table.Lookup(objNum)
		if entry.Type != XrefInUse {
			continue
		}
		if isLikelyObjectAt(reader, entry.Offset, size) {
			continue
		}
		id := ObjID{Number: objNum, Generation: entry.Generation}
		if found, ok := scanForObjectAt(reader, id, entry.Offset, xrefRepairWindow, size); ok {
			fp.table.setOffset(objNum, found)
			repaired++
			continue
		}
		invalid++
	}
	if repaired > 0 || invalid > 0 {
		fp.warn(fmt.Sprintf("xref repair: %d offset(s) repaired, %d unrepairable", repaired, invalid))
	}
}
