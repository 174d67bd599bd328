// Package archive implements the ar(1) archive state machine: a
// two-pass meta parser, the four armap variants (BSD/SysV x 32/64),
// an N-way merger that re-biases member offsets, and an atomic writer.
//
// Member-info entries never hold pointers into the mapped region
// directly. Meta owns a single backing buffer (Raw) and every other
// struct refers into it by (offset, length) span, so ownership stays
// one-directional even though the data underneath is zero-copy.
package archive

import (
	"fmt"

	"github.com/slibtool/gosbt/internal/objsniff"
)

// Signature is the 8-byte magic every ar(1) archive begins with.
const Signature = "!<arch>\n"

const headerSize = 60

// Attribute classifies an archive member.
type Attribute int

const (
	AttrDefault Attribute = iota
	AttrArmap
	AttrLinkInfo
	AttrNamestrs
	AttrArchive
	AttrObject
	AttrASCII
)

func (a Attribute) String() string {
	switch a {
	case AttrArmap:
		return "ARMAP"
	case AttrLinkInfo:
		return "LINKINFO"
	case AttrNamestrs:
		return "NAMESTRS"
	case AttrArchive:
		return "ARCHIVE"
	case AttrObject:
		return "OBJECT"
	case AttrASCII:
		return "ASCII"
	default:
		return "DEFAULT"
	}
}

// MemberInfo is one normalized, decoded archive member. HeaderOffset
// and DataOffset index into the owning Meta's Raw buffer; no pointer
// ever crosses out of Meta's ownership.
type MemberInfo struct {
	Name         string
	Timestamp    uint64
	UID          uint64
	GID          uint64
	Mode         uint64
	HeaderOffset int
	DataOffset   int
	DataSize     int
	Attribute    Attribute
	Object       objsniff.Kind // meaningful only when Attribute == AttrObject
}

// Data returns the member's object-data bytes as a view into raw,
// which must be the same buffer the MemberInfo was parsed from.
func (m MemberInfo) Data(raw []byte) []byte {
	return raw[m.DataOffset : m.DataOffset+m.DataSize]
}

// Meta owns a parsed archive: the raw bytes, the normalized member
// vector (in archive order), the long-name string table, and a
// pointer to the primary armap and optional PE/COFF second linker
// member.
type Meta struct {
	Raw []byte

	Members []MemberInfo

	// LongNames is the resolved long-name-strings buffer: one
	// null-terminated name per member that needed one (SysV long-name
	// reference or BSD inline long name). NameOffsets[i] is the offset
	// into LongNames backing Members[i].Name when that member's name
	// came from this buffer, or -1 otherwise.
	LongNames   []byte
	NameOffsets []int

	Armap    *Armap // nil if the archive carries none
	LinkInfo *Armap // nil unless a PE/COFF second linker member was found
}

// errKind is a string type for archive error kinds; the kinds
// themselves are the sentinel values in errors.go. ParseMeta/merge/
// armap errors are built by fail, which wraps one of those sentinels
// as "<kind>: <detail>" so callers can match with errors.Is.
type errKind string

func fail(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
