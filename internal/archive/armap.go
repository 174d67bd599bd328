package archive

// Variant distinguishes the two armap families.
type Variant int

const (
	VariantSysV Variant = iota
	VariantBSD
)

func (v Variant) String() string {
	if v == VariantBSD {
		return "BSD"
	}
	return "SysV"
}

// Endian records the byte order an armap's integer fields were
// decoded with. SysV armaps are always big-endian by format; BSD
// armaps carry native byte order, inferred per spec §4.5.
type Endian int

const (
	BigEndian Endian = iota
	LittleEndian
)

// Width is the integer field width of an armap, in bits.
type Width int

const (
	Width32 Width = 32
	Width64 Width = 64
)

// Entry is one (name, member-offset) pair within an armap.
type Entry struct {
	NameOffset   uint64 // offset of the symbol's name within the string block
	MemberOffset uint64 // offset (within the owning archive) of the member that defines the symbol
	Name         string // resolved symbol name
}

// Armap is the tagged-union representation of a symbol map: variant x
// width x endianness, plus the decoded entry vector. This corresponds
// to DESIGN NOTE "Duck-typed union-like records" — one struct with
// three scalar discriminants, not an interface hierarchy.
type Armap struct {
	Variant Variant
	Width   Width
	Endian  Endian

	Member        int // index of the armap member itself within Meta.Members
	NumSymbols    int
	SizeOfRefs    int // size in bytes of the member-offset reference table
	SizeOfStrings int // size in bytes of the string block
	Entries       []Entry

	// TieBreak is set when BSD-32 endianness inference found both
	// interpretations plausible and fell back to the documented,
	// undocumented-in-upstream LE tie-break (spec §9 Open Questions).
	// Archives with TieBreak set should be treated as suspect by
	// callers that care about round-trip fidelity.
	TieBreak bool
}

// Symbols returns the armap's symbol names in table order.
func (a *Armap) Symbols() []string {
	if a == nil {
		return nil
	}
	names := make([]string, len(a.Entries))
	for i, e := range a.Entries {
		names[i] = e.Name
	}
	return names
}
