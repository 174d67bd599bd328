package archive

import "testing"

// buildSysVArchive assembles a minimal SysV-32 archive containing one
// object member and an armap with a single symbol pointing at it.
func buildSysVArchive(t *testing.T, objName, symName string, objData []byte) []byte {
	t.Helper()

	raw := []byte(Signature)
	objHeaderOffset := len(raw) + headerSize + 4 + 4 + len(symName) + 1 // after armap header+body
	// Build armap body referencing the not-yet-written object header
	// offset; compute it by first laying out sizes analytically.
	entries := []Entry{{Name: symName, MemberOffset: uint64(objHeaderOffset)}}
	armapBody := encodeSysVArmap(entries, Width32)

	raw = append(raw, buildArmapHeader(armapFormat{VariantSysV, Width32, BigEndian}, len(armapBody))...)
	raw = append(raw, armapBody...)

	if got := len(raw); got != objHeaderOffset {
		t.Fatalf("computed object header offset %d, actual %d", objHeaderOffset, got)
	}

	raw = appendMember(raw, objName+"/", objData)
	return raw
}

func TestMergeTwoSysVArchives(t *testing.T) {
	a := buildSysVArchive(t, "a.o", "sym_a", []byte{0xDE, 0xAD, 0xBE, 0xEF})
	b := buildSysVArchive(t, "b.o", "sym_b", []byte{0xCA, 0xFE, 0xBA, 0xBE})

	metaA, err := ParseMeta(a)
	if err != nil {
		t.Fatalf("parse a: %v", err)
	}
	metaB, err := ParseMeta(b)
	if err != nil {
		t.Fatalf("parse b: %v", err)
	}

	merged, err := Merge([]*Meta{metaA, metaB})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if merged.Armap == nil {
		t.Fatal("merged archive has no armap")
	}
	if merged.Armap.NumSymbols != 2 {
		t.Fatalf("NumSymbols = %d, want 2", merged.Armap.NumSymbols)
	}

	gotSyms := map[string]bool{}
	for _, e := range merged.Armap.Entries {
		gotSyms[e.Name] = true
		// Every reference must designate a valid header within the
		// merged archive (testable property, spec §8).
		if e.MemberOffset >= uint64(len(merged.Raw)) {
			t.Fatalf("entry %q member offset %d out of range", e.Name, e.MemberOffset)
		}
	}
	if !gotSyms["sym_a"] || !gotSyms["sym_b"] {
		t.Fatalf("missing symbols, got %v", gotSyms)
	}

	var names []string
	for _, m := range merged.Members {
		if isPublic(m) {
			names = append(names, m.Name)
		}
	}
	if len(names) != 2 || names[0] != "a.o" || names[1] != "b.o" {
		t.Fatalf("public members = %v, want [a.o b.o] in order", names)
	}
}

func TestMergeArmapMismatchRejected(t *testing.T) {
	a := buildSysVArchive(t, "a.o", "sym_a", []byte{1, 2, 3, 4})

	rawBSD := []byte(Signature)
	entries := []Entry{{Name: "sym_b", MemberOffset: 0}}
	body := encodeBSDArmap(entries, Width32, LittleEndian)
	rawBSD = append(rawBSD, buildArmapHeader(armapFormat{VariantBSD, Width32, LittleEndian}, len(body))...)
	rawBSD = append(rawBSD, body...)
	rawBSD = appendMember(rawBSD, "b.o/", []byte{5, 6, 7, 8})

	metaA, err := ParseMeta(a)
	if err != nil {
		t.Fatalf("parse a: %v", err)
	}
	metaB, err := ParseMeta(rawBSD)
	if err != nil {
		t.Fatalf("parse bsd: %v", err)
	}

	if _, err := Merge([]*Meta{metaA, metaB}); err != ErrArmapMismatch {
		t.Fatalf("got %v, want ErrArmapMismatch", err)
	}
}
