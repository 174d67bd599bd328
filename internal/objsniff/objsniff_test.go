package objsniff

import "testing"

func TestSniff(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want Kind
	}{
		{"elf", []byte{0x7F, 0x45, 0x4C, 0x46, 0x02, 0x01}, ELF},
		{"coff-i386", []byte{0x4C, 0x01, 0x03, 0x00}, COFFI386},
		{"coff-x86_64", []byte{0x64, 0x86, 0x03, 0x00}, COFFX86_64},
		{"macho-be32", []byte{0xFE, 0xED, 0xFA, 0xCE}, MachOBE32},
		{"macho-be64", []byte{0xFE, 0xED, 0xFA, 0xCF}, MachOBE64},
		{"macho-le32", []byte{0xCE, 0xFA, 0xED, 0xFE}, MachOLE32},
		{"macho-le64", []byte{0xCF, 0xFA, 0xED, 0xFE}, MachOLE64},
		{"ascii", []byte("hello world\n"), ASCII},
		{"empty", []byte{}, ASCII},
		{"opaque", []byte{0xFF, 0xFF, 0xFF, 0xFF}, Default},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Sniff(c.data); got != c.want {
				t.Errorf("Sniff(%v) = %v, want %v", c.data, got, c.want)
			}
		})
	}
}

func TestIsObject(t *testing.T) {
	if !ELF.IsObject() {
		t.Error("ELF should be an object kind")
	}
	if ASCII.IsObject() {
		t.Error("ASCII should not be an object kind")
	}
	if Default.IsObject() {
		t.Error("Default should not be an object kind")
	}
}
