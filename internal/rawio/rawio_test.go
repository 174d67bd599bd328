package rawio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMapEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Map(path, ProtRead)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if got := m.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
	if m.Bytes() == nil {
		t.Fatal("Bytes() returned nil for zero-size mapping, want empty slice")
	}
	if err := m.Unmap(); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
}

func TestMapNonEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	want := []byte("!<arch>\n")
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Map(path, ProtRead)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	defer m.Unmap()

	if string(m.Bytes()) != string(want) {
		t.Fatalf("Bytes() = %q, want %q", m.Bytes(), want)
	}
}

func TestMapAnon(t *testing.T) {
	m, err := MapAnon(4096)
	if err != nil {
		t.Fatalf("MapAnon: %v", err)
	}
	defer m.Unmap()
	if m.Len() != 4096 {
		t.Fatalf("Len() = %d, want 4096", m.Len())
	}
	m.Bytes()[0] = 0xAB
	if m.Bytes()[0] != 0xAB {
		t.Fatal("anonymous mapping is not writable")
	}
}

func TestMapFDCallerOwnsDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	m, err := MapFD(int(f.Fd()), ProtRead)
	if err != nil {
		t.Fatalf("MapFD: %v", err)
	}
	if err := m.Unmap(); err != nil {
		t.Fatalf("Unmap: %v", err)
	}

	// The descriptor must still be usable: Unmap must not have closed it.
	if _, err := f.Stat(); err != nil {
		t.Fatalf("caller-owned descriptor was closed by Unmap: %v", err)
	}
}
