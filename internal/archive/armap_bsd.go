package archive

import "encoding/binary"

// parseBSDArmap decodes a BSD-format armap (width 32 or 64). BSD
// armaps carry native byte order; the order itself is not recorded
// anywhere in the format and must be inferred by trying both
// interpretations of the leading "size of refs" field and picking the
// one that fits within the member (spec §4.5, §9 Open Questions: if
// both fit, little-endian wins and the result is flagged TieBreak).
func parseBSDArmap(data []byte, width Width) (*Armap, error) {
	fieldSize := 4
	if width == Width64 {
		fieldSize = 8
	}
	refSize := 2 * fieldSize

	if len(data) < fieldSize {
		return nil, fail(ErrInvalidArmapSizeOfRefs, "armap member too small for size-of-refs field")
	}

	remaining := uint64(len(data) - fieldSize)
	leVal := leUint(data[:fieldSize])
	beVal := beUint(data[:fieldSize])

	leFits := leVal <= remaining
	beFits := beVal <= remaining

	var endian Endian
	var sizeOfRefs uint64
	var tieBreak bool
	switch {
	case leFits && beFits:
		endian, sizeOfRefs, tieBreak = LittleEndian, leVal, true
	case leFits:
		endian, sizeOfRefs = LittleEndian, leVal
	case beFits:
		endian, sizeOfRefs = BigEndian, beVal
	default:
		return nil, fail(ErrInvalidArmapSizeOfRefs, "neither byte order fits size-of-refs within member")
	}

	if sizeOfRefs%uint64(refSize) != 0 {
		return nil, fail(ErrInvalidArmapSizeOfRefs, "size of refs %d not a multiple of %d", sizeOfRefs, refSize)
	}
	n := sizeOfRefs / uint64(refSize)

	cursor := fieldSize
	refs := data[cursor : cursor+int(sizeOfRefs)]
	cursor += int(sizeOfRefs)

	if len(data)-cursor < fieldSize {
		return nil, fail(ErrInvalidArmapSizeOfStrs, "armap member too small for size-of-strings field")
	}
	sizeOfStrsField := data[cursor : cursor+fieldSize]
	var sizeOfStrs uint64
	if endian == LittleEndian {
		sizeOfStrs = leUint(sizeOfStrsField)
	} else {
		sizeOfStrs = beUint(sizeOfStrsField)
	}
	cursor += fieldSize

	if uint64(len(data)-cursor) < sizeOfStrs {
		return nil, fail(ErrInvalidArmapSizeOfStrs, "string block of size %d overflows member payload", sizeOfStrs)
	}
	strs := data[cursor : cursor+int(sizeOfStrs)]

	names, err := splitSysVStrings(strs, n)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, n)
	for i := uint64(0); i < n; i++ {
		ref := refs[i*uint64(refSize) : (i+1)*uint64(refSize)]
		var nameOff, memberOff uint64
		if endian == LittleEndian {
			nameOff = leUint(ref[:fieldSize])
			memberOff = leUint(ref[fieldSize:])
		} else {
			nameOff = beUint(ref[:fieldSize])
			memberOff = beUint(ref[fieldSize:])
		}
		entries[i] = Entry{NameOffset: nameOff, MemberOffset: memberOff, Name: names[i]}
	}

	return &Armap{
		Variant:       VariantBSD,
		Width:         width,
		Endian:        endian,
		NumSymbols:    int(n),
		SizeOfRefs:    int(sizeOfRefs),
		SizeOfStrings: int(sizeOfStrs),
		Entries:       entries,
		TieBreak:      tieBreak,
	}, nil
}

func leUint(b []byte) uint64 {
	switch len(b) {
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	case 8:
		return binary.LittleEndian.Uint64(b)
	default:
		panic("arfield: unsupported width")
	}
}
