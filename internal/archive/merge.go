package archive

import (
	"encoding/binary"
	"sort"

	"github.com/slibtool/gosbt/internal/arfield"
	"github.com/slibtool/gosbt/internal/rawio"
)

// armapFormat is the (variant, width, endian) triple that must match
// across every input to Merge (spec §4.6).
type armapFormat struct {
	variant Variant
	width   Width
	endian  Endian
}

// Merge produces a new archive joining N inputs, re-biasing member
// offsets and rebuilding the armap (spec §4.6): a BSD armap is sorted
// by symbol name, a SysV armap keeps the inputs' entry order. The result is
// re-parsed through ParseMeta before being returned, so the caller
// always receives a validated Meta rather than a hand-assembled one.
func Merge(metas []*Meta) (*Meta, error) {
	if len(metas) == 0 {
		return nil, fail(ErrInvalidHeader, "merge requires at least one input archive")
	}

	format, hasArmap, err := checkArmapFormats(metas)
	if err != nil {
		return nil, err
	}

	type publicMember struct {
		meta *Meta
		m    MemberInfo
	}
	var pubs []publicMember
	for _, meta := range metas {
		for _, m := range meta.Members {
			if isPublic(m) {
				pubs = append(pubs, publicMember{meta, m})
			}
		}
	}

	// Name encoding: short names fit directly in the 16-byte id field
	// (15 usable bytes plus the trailing '/'); anything longer is
	// interned into a fresh SysV long-names member.
	var namestrsBody []byte
	nameRef := make(map[int]int) // index into pubs -> offset into namestrsBody, or -1 for short
	for i, p := range pubs {
		if len(p.m.Name) <= 15 {
			nameRef[i] = -1
			continue
		}
		nameRef[i] = len(namestrsBody)
		namestrsBody = append(namestrsBody, []byte(p.m.Name)...)
		namestrsBody = append(namestrsBody, '/', '\n')
	}
	if len(namestrsBody)%2 != 0 {
		namestrsBody = append(namestrsBody, 0)
	}

	base := len(Signature)
	var armapHeaderSize int
	if hasArmap {
		nTotal := 0
		for _, meta := range metas {
			if meta.Armap != nil {
				nTotal += meta.Armap.NumSymbols
			}
		}
		armapHeaderSize = headerSize + estimateArmapBodySize(format, nTotal, metas)
		base += armapHeaderSize
	}
	var namestrsHeaderSize int
	if len(namestrsBody) > 0 {
		namestrsHeaderSize = headerSize + len(namestrsBody)
		base += namestrsHeaderSize
	}

	// Assign new offsets to every public member and remember the
	// mapping from (meta, old header offset) -> new header offset so
	// armap entries can be re-biased.
	type metaOffsetKey struct {
		meta *Meta
		old  int
	}
	offsetMap := make(map[metaOffsetKey]int, len(pubs))
	cursor := base
	for _, p := range pubs {
		offsetMap[metaOffsetKey{p.meta, p.m.HeaderOffset}] = cursor
		dataLen := p.m.DataSize
		adv := headerSize + dataLen
		if dataLen%2 != 0 {
			adv++
		}
		cursor += adv
	}
	total := cursor

	// Re-bias every armap's entries against the new layout.
	var entries []Entry
	if hasArmap {
		for _, meta := range metas {
			if meta.Armap == nil {
				continue
			}
			for _, e := range meta.Armap.Entries {
				newOff, ok := offsetMap[metaOffsetKey{meta, int(e.MemberOffset)}]
				if !ok {
					return nil, fail(ErrInvalidArmapMemberOff, "armap entry %q references unmapped member offset %d", e.Name, e.MemberOffset)
				}
				entries = append(entries, Entry{Name: e.Name, MemberOffset: uint64(newOff)})
			}
		}
	}

	var armapBody []byte
	if hasArmap {
		switch format.variant {
		case VariantSysV:
			armapBody = encodeSysVArmap(entries, format.width)
		case VariantBSD:
			sorted := append([]Entry(nil), entries...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
			armapBody = encodeBSDArmap(sorted, format.width, format.endian)
		}
		if len(armapBody)%2 != 0 {
			armapBody = append(armapBody, 0)
		}
	}

	m, err := rawio.MapAnon(total)
	if err != nil {
		return nil, err
	}
	buf := m.Bytes()
	copy(buf, Signature)
	w := len(Signature)

	if hasArmap {
		copy(buf[w:], buildArmapHeader(format, len(armapBody)))
		w += headerSize
		copy(buf[w:], armapBody)
		w += len(armapBody)
	}
	if len(namestrsBody) > 0 {
		copy(buf[w:], buildHeaderBytes("//", 0, 0, 0, 0o100644, uint64(len(namestrsBody))))
		w += headerSize
		copy(buf[w:], namestrsBody)
		w += len(namestrsBody)
	}

	for i, p := range pubs {
		id := shortIDField(p.m.Name)
		if off, ok := nameRef[i]; ok && off >= 0 {
			id = "/" + itoaInt(off)
		}
		copy(buf[w:], buildHeaderBytes(id, p.m.Timestamp, p.m.UID, p.m.GID, p.m.Mode, uint64(p.m.DataSize)))
		w += headerSize
		copy(buf[w:], p.meta.Raw[p.m.DataOffset:p.m.DataOffset+p.m.DataSize])
		w += p.m.DataSize
		if p.m.DataSize%2 != 0 {
			w++ // padding byte after an odd-sized member, set to '\n'
			buf[w-1] = '\n'
		}
	}

	return ParseMeta(buf)
}

func isPublic(m MemberInfo) bool {
	return m.Attribute != AttrArmap && m.Attribute != AttrLinkInfo && m.Attribute != AttrNamestrs
}

func checkArmapFormats(metas []*Meta) (armapFormat, bool, error) {
	var format armapFormat
	has := false
	for _, meta := range metas {
		if meta.Armap == nil {
			continue
		}
		f := armapFormat{meta.Armap.Variant, meta.Armap.Width, meta.Armap.Endian}
		if !has {
			format, has = f, true
			continue
		}
		if f != format {
			return armapFormat{}, false, ErrArmapMismatch
		}
	}
	return format, has, nil
}

func shortIDField(name string) string {
	return name + "/"
}

func buildHeaderBytes(id string, timestamp, uid, gid, mode, size uint64) []byte {
	h := make([]byte, 0, headerSize)
	idField := make([]byte, 16)
	copy(idField, id)
	for i := len(id); i < 16; i++ {
		idField[i] = ' '
	}
	h = append(h, idField...)
	h = append(h, []byte(arfield.FormatDecimal(timestamp, 12))...)
	h = append(h, []byte(arfield.FormatDecimal(uid, 6))...)
	h = append(h, []byte(arfield.FormatDecimal(gid, 6))...)
	h = append(h, []byte(arfield.FormatOctal(mode, 8))...)
	h = append(h, []byte(arfield.FormatDecimal(size, 10))...)
	h = append(h, '`', '\n')
	return h
}

func buildArmapHeader(format armapFormat, bodySize int) []byte {
	id := "/"
	if format.variant == VariantSysV && format.width == Width64 {
		id = "/SYM64/"
	}
	if format.variant == VariantBSD {
		if format.width == Width64 {
			id = "__.SYMDEF_64"
		} else {
			id = "__.SYMDEF"
		}
	}
	return buildHeaderBytes(id, 0, 0, 0, 0o100644, uint64(bodySize))
}

func estimateArmapBodySize(format armapFormat, nTotal int, metas []*Meta) int {
	totalNameBytes := 0
	for _, meta := range metas {
		if meta.Armap == nil {
			continue
		}
		for _, e := range meta.Armap.Entries {
			totalNameBytes += len(e.Name) + 1
		}
	}
	fieldSize := 4
	if format.width == Width64 {
		fieldSize = 8
	}
	size := 0
	switch format.variant {
	case VariantSysV:
		size = fieldSize + fieldSize*nTotal + totalNameBytes
	default: // BSD: size-of-refs field + 2*fieldSize*n refs + size-of-strs field + strings
		size = 2*fieldSize + 2*fieldSize*nTotal + totalNameBytes
	}
	if size%2 != 0 {
		size++
	}
	return size
}

func encodeSysVArmap(entries []Entry, width Width) []byte {
	fieldSize := 4
	putUint := putUint32
	if width == Width64 {
		fieldSize = 8
		putUint = putUint64
	}
	n := len(entries)
	out := make([]byte, fieldSize)
	putUint(out, 0, uint64(n), false)
	refs := make([]byte, fieldSize*n)
	var strs []byte
	for i, e := range entries {
		putUint(refs, i*fieldSize, e.MemberOffset, false)
		strs = append(strs, []byte(e.Name)...)
		strs = append(strs, 0)
	}
	out = append(out, refs...)
	out = append(out, strs...)
	return out
}

func encodeBSDArmap(entries []Entry, width Width, endian Endian) []byte {
	fieldSize := 4
	putUint := putUint32
	if width == Width64 {
		fieldSize = 8
		putUint = putUint64
	}
	le := endian == LittleEndian
	n := len(entries)
	refSize := 2 * fieldSize

	refs := make([]byte, refSize*n)
	var strs []byte
	for i, e := range entries {
		putUint(refs, i*refSize, uint64(len(strs)), le)
		putUint(refs, i*refSize+fieldSize, e.MemberOffset, le)
		strs = append(strs, []byte(e.Name)...)
		strs = append(strs, 0)
	}

	out := make([]byte, fieldSize)
	putUint(out, 0, uint64(len(refs)), le)
	out = append(out, refs...)
	sizeOfStrs := make([]byte, fieldSize)
	putUint(sizeOfStrs, 0, uint64(len(strs)), le)
	out = append(out, sizeOfStrs...)
	out = append(out, strs...)
	return out
}

func putUint32(b []byte, off int, v uint64, le bool) {
	if le {
		binary.LittleEndian.PutUint32(b[off:], uint32(v))
	} else {
		binary.BigEndian.PutUint32(b[off:], uint32(v))
	}
}

func putUint64(b []byte, off int, v uint64, le bool) {
	if le {
		binary.LittleEndian.PutUint64(b[off:], v)
	} else {
		binary.BigEndian.PutUint64(b[off:], v)
	}
}

func itoaInt(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
