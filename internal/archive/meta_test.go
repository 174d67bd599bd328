package archive

import (
	"testing"

	"github.com/slibtool/gosbt/internal/arfield"
)

func buildHeader(id string, timestamp, uid, gid, mode, size uint64) []byte {
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

func appendMember(raw []byte, id string, data []byte) []byte {
	raw = append(raw, buildHeader(id, 0, 0, 0, 0o100644, uint64(len(data)))...)
	raw = append(raw, data...)
	if len(data)%2 != 0 {
		raw = append(raw, '\n')
	}
	return raw
}

func TestParseMetaSingleBSDShortMember(t *testing.T) {
	raw := []byte(Signature)
	raw = appendMember(raw, "hello.o", []byte("hi\n"))

	meta, err := ParseMeta(raw)
	if err != nil {
		t.Fatalf("ParseMeta: %v", err)
	}
	if len(meta.Members) != 1 {
		t.Fatalf("got %d members, want 1", len(meta.Members))
	}
	m := meta.Members[0]
	if m.Name != "hello.o" {
		t.Errorf("Name = %q, want hello.o", m.Name)
	}
	if m.Attribute != AttrASCII {
		t.Errorf("Attribute = %v, want ASCII", m.Attribute)
	}
	if string(m.Data(raw)) != "hi\n" {
		t.Errorf("Data = %q, want %q", m.Data(raw), "hi\n")
	}
}

func TestParseMetaSysVShortMember(t *testing.T) {
	raw := []byte(Signature)
	raw = appendMember(raw, "hello.o/", []byte("abcd"))

	meta, err := ParseMeta(raw)
	if err != nil {
		t.Fatalf("ParseMeta: %v", err)
	}
	if meta.Members[0].Name != "hello.o" {
		t.Errorf("Name = %q, want hello.o", meta.Members[0].Name)
	}
}

func TestParseMetaLongNamesReference(t *testing.T) {
	raw := []byte(Signature)
	longNames := "this_is_a_very_long_object_name.o/\n"
	raw = appendMember(raw, "//", []byte(longNames))
	raw = appendMember(raw, "/0", []byte("abcd"))

	meta, err := ParseMeta(raw)
	if err != nil {
		t.Fatalf("ParseMeta: %v", err)
	}
	if len(meta.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(meta.Members))
	}
	if meta.Members[0].Attribute != AttrNamestrs {
		t.Errorf("member 0 attribute = %v, want NAMESTRS", meta.Members[0].Attribute)
	}
	if got := meta.Members[1].Name; got != "this_is_a_very_long_object_name.o" {
		t.Errorf("Name = %q", got)
	}
}

func TestParseMetaBSDInlineLongName(t *testing.T) {
	raw := []byte(Signature)
	name := "a_really_long_bsd_inline_name.o"
	data := append([]byte(name), []byte("objbytes")...)
	raw = appendMember(raw, "#1/"+itoa(len(name)), data)

	meta, err := ParseMeta(raw)
	if err != nil {
		t.Fatalf("ParseMeta: %v", err)
	}
	if meta.Members[0].Name != name {
		t.Errorf("Name = %q, want %q", meta.Members[0].Name, name)
	}
	if string(meta.Members[0].Data(raw)) != "objbytes" {
		t.Errorf("Data = %q, want objbytes", meta.Members[0].Data(raw))
	}
}

func TestParseMetaEmptyFile(t *testing.T) {
	if _, err := ParseMeta(nil); err != ErrEmptyFile {
		t.Fatalf("got %v, want ErrEmptyFile", err)
	}
}

func TestParseMetaBadSignature(t *testing.T) {
	if _, err := ParseMeta([]byte("not an archive!!")); err != ErrInvalidSignature {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}
}

func TestParseMetaDuplicateLongNames(t *testing.T) {
	raw := []byte(Signature)
	raw = appendMember(raw, "//", []byte("a/\n"))
	raw = appendMember(raw, "//", []byte("b/\n"))

	if _, err := ParseMeta(raw); err == nil {
		t.Fatal("expected error for duplicate // member")
	}
}

func TestParseMetaMisplacedArmap(t *testing.T) {
	raw := []byte(Signature)
	raw = appendMember(raw, "hello.o", []byte("abcd"))
	raw = appendMember(raw, "/", []byte{0, 0, 0, 0})

	if _, err := ParseMeta(raw); err == nil {
		t.Fatal("expected error for misplaced armap member")
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
