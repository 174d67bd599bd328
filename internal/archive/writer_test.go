package archive

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libfoo.a")

	raw := []byte(Signature)
	raw = appendMember(raw, "a.o", []byte{1, 2, 3, 4})
	meta, err := ParseMeta(raw)
	if err != nil {
		t.Fatalf("ParseMeta: %v", err)
	}

	if err := Write(path, meta); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(raw) {
		t.Fatalf("written content differs from source archive")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "libfoo.a" {
			t.Fatalf("leftover temp file %q found in destination directory", e.Name())
		}
	}
}

func TestWriteBufferTooLong(t *testing.T) {
	long := make([]byte, maxPathLen+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := Write(string(long), &Meta{}); err != ErrBufferTooLong {
		t.Fatalf("got %v, want ErrBufferTooLong", err)
	}
}
