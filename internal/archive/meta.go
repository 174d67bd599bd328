package archive

import (
	"strconv"
	"strings"

	"github.com/slibtool/gosbt/internal/arfield"
	"github.com/slibtool/gosbt/internal/objsniff"
)

// transientHeader is pass 1's per-member scratch record: just enough
// to classify the member and size the destination buffers. It never
// outlives ParseMeta; the growable backing slice plays the role of
// the C implementation's "starts at 512 entries, grows geometrically"
// stack buffer — in Go that is simply append's own growth policy.
type transientHeader struct {
	headerOffset int
	dataOffset   int // offset of declared size field's worth of data, before BSD-name-prefix adjustment
	declaredSize uint64
	id           string
	timestamp    uint64
	uid          uint64
	gid          uint64
	mode         uint64
}

// ParseMeta walks a mapped archive and produces a validated Meta:
// header vector, long-name-strings buffer, and typed member list,
// identifying the armap, long-names, and linker members along the
// way (spec §4.4).
func ParseMeta(raw []byte) (*Meta, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyFile
	}
	if len(raw) < len(Signature) || string(raw[:len(Signature)]) != Signature {
		return nil, ErrInvalidSignature
	}

	transients, err := pass1(raw)
	if err != nil {
		return nil, err
	}

	return pass2(raw, transients)
}

func pass1(raw []byte) ([]transientHeader, error) {
	var out []transientHeader
	sawNamestrs := false

	off := len(Signature)
	for off < len(raw) {
		if len(raw)-off < headerSize {
			return nil, fail(ErrTruncatedData, "header at offset %d runs past end of archive", off)
		}
		hdr := raw[off : off+headerSize]

		if hdr[58] != '`' || hdr[59] != '\n' {
			return nil, fail(ErrInvalidHeader, "bad terminator at offset %d", off)
		}

		id := string(hdr[0:16])
		timestamp, err := arfield.ReadDecimal(hdr[16:28])
		if err != nil {
			return nil, fail(ErrInvalidHeader, "timestamp field at offset %d", off)
		}
		uid, err := arfield.ReadDecimal(hdr[28:34])
		if err != nil {
			return nil, fail(ErrInvalidHeader, "uid field at offset %d", off)
		}
		gid, err := arfield.ReadDecimal(hdr[34:40])
		if err != nil {
			return nil, fail(ErrInvalidHeader, "gid field at offset %d", off)
		}
		mode, err := arfield.ReadOctal(hdr[40:48])
		if err != nil {
			return nil, fail(ErrInvalidHeader, "mode field at offset %d", off)
		}
		size, err := arfield.ReadDecimal(hdr[48:58])
		if err != nil {
			return nil, fail(ErrInvalidHeader, "size field at offset %d", off)
		}

		dataOffset := off + headerSize
		if uint64(len(raw)-dataOffset) < size {
			return nil, fail(ErrTruncatedData, "member at offset %d truncated against archive bounds", off)
		}

		kind, _, _, err := classifyID(id)
		if err != nil {
			return nil, err
		}
		if kind == idNamestrs {
			if sawNamestrs {
				return nil, fail(ErrDuplicateLongNames, "second // member at offset %d", off)
			}
			sawNamestrs = true
		}

		out = append(out, transientHeader{
			headerOffset: off,
			dataOffset:   dataOffset,
			declaredSize: size,
			id:           id,
			timestamp:    timestamp,
			uid:          uid,
			gid:          gid,
			mode:         mode,
		})

		advance := headerSize + int(size)
		if size%2 != 0 {
			advance++ // odd-size members are followed by one padding newline
		}
		off += advance
	}

	// Trailing bytes between the last member and the map cap must all
	// be zero (off may overshoot by the synthetic padding byte when
	// the archive ends exactly on an odd-size member; that byte itself
	// was already consumed above, so any remainder here is padding the
	// producer left behind).
	for i := off; i < len(raw); i++ {
		if raw[i] != 0 {
			return nil, fail(ErrTruncatedData, "non-zero trailing byte at offset %d", i)
		}
	}

	return out, nil
}

func pass2(raw []byte, transients []transientHeader) (*Meta, error) {
	meta := &Meta{Raw: raw}

	// First, resolve the long-names member (if any) so short-name
	// resolution for SysV long-name references can look names up.
	var longNamesBody []byte
	for _, t := range transients {
		kind, _, _, _ := classifyID(t.id)
		if kind == idNamestrs {
			longNamesBody = raw[t.dataOffset : t.dataOffset+int(t.declaredSize)]
			break
		}
	}

	members := make([]MemberInfo, 0, len(transients))
	var longNamesBuf []byte
	var nameOffsets []int

	for i, t := range transients {
		kind, name, extra, err := classifyID(t.id)
		if err != nil {
			return nil, err
		}

		m := MemberInfo{
			Timestamp:    t.timestamp,
			UID:          t.uid,
			GID:          t.gid,
			Mode:         t.mode,
			HeaderOffset: t.headerOffset,
			DataOffset:   t.dataOffset,
			DataSize:     int(t.declaredSize),
		}
		nameOff := -1

		switch kind {
		case idNamestrs:
			m.Name = "//"
			m.Attribute = AttrNamestrs
		case idArmapSysV32, idArmapSysV64, idArmapBSD32, idArmapBSD64:
			m.Name = name
			m.Attribute = AttrArmap
		case idSysVLongRef:
			resolved, err := resolveLongName(longNamesBody, extra)
			if err != nil {
				return nil, err
			}
			m.Name = resolved
			nameOff = len(longNamesBuf)
			longNamesBuf = append(longNamesBuf, []byte(resolved)...)
			longNamesBuf = append(longNamesBuf, 0)
			m.Attribute = classifyByContent(raw, m.DataOffset, m.DataSize)
		case idBSDLongInline:
			n := extra
			if n > m.DataSize {
				return nil, fail(ErrInvalidHeader, "BSD inline name length %d exceeds member size", n)
			}
			m.Name = string(raw[m.DataOffset : m.DataOffset+n])
			m.DataOffset += n
			m.DataSize -= n
			nameOff = len(longNamesBuf)
			longNamesBuf = append(longNamesBuf, []byte(m.Name)...)
			longNamesBuf = append(longNamesBuf, 0)
			m.Attribute = classifyByContent(raw, m.DataOffset, m.DataSize)
		default: // idShortSysV, idShortBSD
			m.Name = name
			m.Attribute = classifyByContent(raw, m.DataOffset, m.DataSize)
		}

		if m.Attribute == AttrObject {
			m.Object = objsniff.Sniff(raw[m.DataOffset : m.DataOffset+m.DataSize])
		}

		nameOffsets = append(nameOffsets, nameOff)
		members = append(members, m)
		_ = i
	}

	// Armap placement rules.
	for i := range members {
		if members[i].Attribute != AttrArmap {
			continue
		}
		if i == 0 {
			continue
		}
		if i == 1 && members[0].Attribute == AttrArmap {
			sysv0 := isSysVArmapKind(transients[0].id)
			sysv1 := isSysVArmapKind(transients[1].id)
			switch {
			case sysv0 && sysv1:
				members[i].Attribute = AttrLinkInfo
				continue
			case sysv0 != sysv1:
				// Member 0 is SysV and member 1 is BSD (or vice versa):
				// the "second linker member" detection requires both
				// to carry SysV headers. Per spec §9 Open Questions
				// this mixed case is unspecified upstream; reject it
				// outright rather than guess.
				return nil, fail(ErrArmapMismatch, "mixed SysV/BSD armap headers at index 0 and 1")
			default:
				return nil, fail(ErrDuplicateArmapMember, "armap member at index %d", i)
			}
		}
		if members[0].Attribute == AttrArmap {
			return nil, fail(ErrDuplicateArmapMember, "armap member at index %d", i)
		}
		return nil, fail(ErrMisplacedArmapMember, "armap member at index %d", i)
	}

	meta.Members = members
	meta.LongNames = longNamesBuf
	meta.NameOffsets = nameOffsets

	if len(members) > 0 && members[0].Attribute == AttrArmap {
		am, err := decodeArmap(raw, members[0], transients[0].id)
		if err != nil {
			return nil, err
		}
		am.Member = 0
		meta.Armap = am
	}
	if len(members) > 1 && members[1].Attribute == AttrLinkInfo {
		am, err := decodeArmap(raw, members[1], transients[1].id)
		if err != nil {
			return nil, err
		}
		am.Member = 1
		meta.LinkInfo = am
	}

	return meta, nil
}

func decodeArmap(raw []byte, m MemberInfo, id string) (*Armap, error) {
	data := raw[m.DataOffset : m.DataOffset+m.DataSize]
	trimmed := strings.TrimRight(id, " ")
	switch {
	case trimmed == "/":
		return parseSysVArmap(data, Width32)
	case trimmed == "/SYM64/":
		return parseSysVArmap(data, Width64)
	case trimmed == "__.SYMDEF" || trimmed == "__.SYMDEF SORTED":
		return parseBSDArmap(data, Width32)
	case trimmed == "__.SYMDEF_64" || trimmed == "__.SYMDEF_64 SORTED":
		return parseBSDArmap(data, Width64)
	default:
		return nil, fail(ErrInvalidHeader, "unrecognized armap id %q", trimmed)
	}
}

func isSysVArmapKind(id string) bool {
	trimmed := strings.TrimRight(id, " ")
	return trimmed == "/" || trimmed == "/SYM64/"
}

func classifyByContent(raw []byte, dataOffset, dataSize int) Attribute {
	data := raw[dataOffset : dataOffset+dataSize]
	if len(data) >= len(Signature) && string(data[:len(Signature)]) == Signature {
		return AttrArchive
	}
	kind := objsniff.Sniff(data)
	if kind.IsObject() {
		return AttrObject
	}
	if kind == objsniff.ASCII {
		return AttrASCII
	}
	return AttrDefault
}

func resolveLongName(body []byte, offset int) (string, error) {
	if offset < 0 || offset > len(body) {
		return "", fail(ErrInvalidHeader, "long-name offset %d out of range", offset)
	}
	end := offset
	for end < len(body) && body[end] != '/' && body[end] != '\n' {
		end++
	}
	return string(body[offset:end]), nil
}

type idKind int

const (
	idShortSysV idKind = iota
	idShortBSD
	idSysVLongRef
	idBSDLongInline
	idNamestrs
	idArmapSysV32
	idArmapSysV64
	idArmapBSD32
	idArmapBSD64
)

// classifyID inspects a raw 16-byte header id field and determines
// which of the co-existing member-name encodings it uses (spec §3).
// extra carries the SysV long-name offset or the BSD inline name
// length, depending on kind.
func classifyID(raw string) (kind idKind, name string, extra int, err error) {
	trimmed := strings.TrimRight(raw, " ")

	switch trimmed {
	case "//":
		return idNamestrs, "//", 0, nil
	case "/":
		return idArmapSysV32, "/", 0, nil
	case "/SYM64/":
		return idArmapSysV64, "/SYM64/", 0, nil
	case "__.SYMDEF", "__.SYMDEF SORTED":
		return idArmapBSD32, trimmed, 0, nil
	case "__.SYMDEF_64", "__.SYMDEF_64 SORTED":
		return idArmapBSD64, trimmed, 0, nil
	}

	if strings.HasPrefix(trimmed, "/") && len(trimmed) > 1 && isAllDigits(trimmed[1:]) {
		off, e := strconv.Atoi(trimmed[1:])
		if e != nil {
			return 0, "", 0, fail(ErrInvalidHeader, "malformed long-name reference %q", trimmed)
		}
		return idSysVLongRef, "", off, nil
	}

	if strings.HasPrefix(trimmed, "#1/") && isAllDigits(trimmed[3:]) {
		n, e := strconv.Atoi(trimmed[3:])
		if e != nil {
			return 0, "", 0, fail(ErrInvalidHeader, "malformed BSD inline name length %q", trimmed)
		}
		return idBSDLongInline, "", n, nil
	}

	if strings.HasSuffix(trimmed, "/") {
		return idShortSysV, strings.TrimSuffix(trimmed, "/"), 0, nil
	}

	return idShortBSD, trimmed, 0, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
