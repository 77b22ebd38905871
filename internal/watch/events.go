// Package watch monitors a single filesystem target for content modification
// and runs a command once a burst of changes has settled.
//
// The package multiplexes two readiness sources, a cancellation source fed by
// termination signals and a filesystem change source, in one debounce loop
// that owns all mutable state. Command execution is synchronous and stalls
// the loop for the command's full duration; changes arriving meanwhile are
// queued by the notification mechanism and observed on the next drain.
package watch

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"
)

// EventKind is a bitset of change-notification kinds. The bit layout mirrors
// the inotify mask so a raw record decodes without translation.
type EventKind uint32

const (
	KindAccess       EventKind = 0x00000001
	KindModify       EventKind = 0x00000002
	KindAttrib       EventKind = 0x00000004
	KindCloseWrite   EventKind = 0x00000008
	KindCloseNoWrite EventKind = 0x00000010
	KindOpen         EventKind = 0x00000020
	KindMovedFrom    EventKind = 0x00000040
	KindMovedTo      EventKind = 0x00000080
	KindCreate       EventKind = 0x00000100
	KindDelete       EventKind = 0x00000200
	KindDeleteSelf   EventKind = 0x00000400
	KindMoveSelf     EventKind = 0x00000800

	// kindIsDir marks the record as concerning a directory; it is carried on
	// ChangeRecord.IsDir rather than in the kind bitset.
	kindIsDir EventKind = 0x40000000
)

// Has reports whether the bitset contains kind.
func (k EventKind) Has(kind EventKind) bool { return k&kind != 0 }

var kindNames = []struct {
	kind EventKind
	name string
}{
	{KindAccess, "access"},
	{KindAttrib, "attrib"},
	{KindOpen, "open"},
	{KindCloseWrite, "close-write"},
	{KindCloseNoWrite, "close-nowrite"},
	{KindCreate, "create"},
	{KindDelete, "delete"},
	{KindDeleteSelf, "delete-self"},
	{KindModify, "modify"},
	{KindMoveSelf, "move-self"},
	{KindMovedFrom, "moved-from"},
	{KindMovedTo, "moved-to"},
}

// Names returns the recognized kinds present in the bitset.
func (k EventKind) Names() []string {
	var names []string
	for _, kn := range kindNames {
		if k.Has(kn.kind) {
			names = append(names, kn.name)
		}
	}
	return names
}

// ChangeRecord is one decoded change notification. Records are produced by a
// drain, consumed immediately for logging and counting, and never persisted.
type ChangeRecord struct {
	Watch  int32     // registration id within the notification instance
	Kind   EventKind // event-kind bitset
	Cookie uint32    // pairs the departure and arrival halves of a rename
	Name   string    // optional child name, empty when the target itself changed
	IsDir  bool
}

// rawRecordSize is the fixed prefix of one raw record: watch id, mask, cookie
// and name length, four 32-bit words.
const rawRecordSize = 16

// decodeBatch parses a drained buffer as a sequence of length-prefixed raw
// records. A truncated trailing record is discarded rather than guessed at.
func decodeBatch(buf []byte) []ChangeRecord {
	var records []ChangeRecord
	for len(buf) >= rawRecordSize {
		wd := int32(binary.NativeEndian.Uint32(buf[0:4]))
		mask := EventKind(binary.NativeEndian.Uint32(buf[4:8]))
		cookie := binary.NativeEndian.Uint32(buf[8:12])
		nameLen := int(binary.NativeEndian.Uint32(buf[12:16]))
		if nameLen > len(buf)-rawRecordSize {
			break
		}
		// The name field is NUL-padded to its declared length.
		name := string(bytes.TrimRight(buf[rawRecordSize:rawRecordSize+nameLen], "\x00"))
		records = append(records, ChangeRecord{
			Watch:  wd,
			Kind:   mask &^ kindIsDir,
			Cookie: cookie,
			Name:   name,
			IsDir:  mask.Has(kindIsDir),
		})
		buf = buf[rawRecordSize+nameLen:]
	}
	return records
}

// countModify returns how many records in the batch signal content
// modification. Other kinds are visible for diagnostics but never counted.
func countModify(batch []ChangeRecord) int {
	count := 0
	for _, rec := range batch {
		if rec.Kind.Has(KindModify) {
			count++
		}
	}
	return count
}

// reportRecord logs one decoded record with its fields. Moved-from and
// moved-to records sharing a cookie are two halves of one rename; each half
// is logged with the cookie so the pair can be correlated.
func reportRecord(logger *zap.Logger, rec ChangeRecord) {
	logger.Debug("change event",
		zap.Int32("wd", rec.Watch),
		zap.String("mask", fmt.Sprintf("%08x", uint32(rec.Kind))),
		zap.Uint32("cookie", rec.Cookie),
		zap.String("name", rec.Name),
		zap.Bool("dir", rec.IsDir),
		zap.Strings("kinds", rec.Kind.Names()),
	)
}
