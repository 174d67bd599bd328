package archive

import "encoding/binary"

// parseSysVArmap decodes a SysV-format armap (width 32 or 64) from
// the raw bytes of the armap member's data. SysV armaps are always
// big-endian by format.
func parseSysVArmap(data []byte, width Width) (*Armap, error) {
	fieldSize := 4
	if width == Width64 {
		fieldSize = 8
	}

	if len(data) < fieldSize {
		return nil, fail(ErrInvalidArmapNsyms, "armap member too small for symbol count")
	}

	n := beUint(data[:fieldSize])
	refTableSize := n * uint64(fieldSize)
	if refTableSize > uint64(len(data)-fieldSize) {
		return nil, fail(ErrInvalidArmapNsyms, "symbol count %d inconsistent with member size", n)
	}

	refs := data[fieldSize : fieldSize+int(refTableSize)]
	strs := data[fieldSize+int(refTableSize):]

	offsets := make([]uint64, n)
	for i := uint64(0); i < n; i++ {
		offsets[i] = beUint(refs[i*uint64(fieldSize) : (i+1)*uint64(fieldSize)])
	}

	names, err := splitSysVStrings(strs, n)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, n)
	for i := uint64(0); i < n; i++ {
		entries[i] = Entry{
			NameOffset:   nameOffsetOf(strs, i, names),
			MemberOffset: offsets[i],
			Name:         names[i],
		}
	}

	return &Armap{
		Variant:       VariantSysV,
		Width:         width,
		Endian:        BigEndian,
		NumSymbols:    int(n),
		SizeOfRefs:    int(refTableSize),
		SizeOfStrings: len(strs),
		Entries:       entries,
	}, nil
}

func beUint(b []byte) uint64 {
	switch len(b) {
	case 4:
		return uint64(binary.BigEndian.Uint32(b))
	case 8:
		return binary.BigEndian.Uint64(b)
	default:
		panic("arfield: unsupported width")
	}
}

// splitSysVStrings walks n null-terminated strings out of strs,
// rejecting an empty first string when n>0, any empty string before
// the n'th, and a non-null trailing byte.
func splitSysVStrings(strs []byte, n uint64) ([]string, error) {
	if n == 0 {
		return nil, nil
	}
	names := make([]string, 0, n)
	start := 0
	for i := 0; i < len(strs); i++ {
		if strs[i] != 0 {
			continue
		}
		name := string(strs[start:i])
		if name == "" {
			if uint64(len(names)) == 0 {
				return nil, fail(ErrInvalidArmapStringTbl, "empty first symbol name")
			}
			if uint64(len(names)) < n {
				return nil, fail(ErrInvalidArmapStringTbl, "consecutive null terminators before nsyms reached")
			}
		}
		names = append(names, name)
		start = i + 1
		if uint64(len(names)) == n {
			break
		}
	}
	if uint64(len(names)) != n {
		return nil, fail(ErrInvalidArmapStringTbl, "found %d strings, want %d", len(names), n)
	}
	for _, c := range strs[start:] {
		// Bytes remain after the n'th terminator; null padding is
		// accepted, but no trailing non-null garbage is permitted.
		if c != 0 {
			return nil, fail(ErrInvalidArmapStringTbl, "trailing non-null byte in string table")
		}
	}
	return names, nil
}

func nameOffsetOf(strs []byte, idx uint64, names []string) uint64 {
	var off uint64
	for i := uint64(0); i < idx; i++ {
		off += uint64(len(names[i])) + 1
	}
	return off
}
