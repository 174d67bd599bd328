package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

// maxPathLen mirrors PATH_MAX on the platforms this tool targets.
const maxPathLen = 4096

// ErrBufferTooLong is returned when a destination path exceeds
// maxPathLen (spec §4.7 "buffer error").
var ErrBufferTooLong = fmt.Errorf("buffer error")

// Write atomically (re)creates the archive named by path with the
// contents of meta.Raw: a temporary file is created alongside the
// destination, written with EINTR-tolerant writes, then renamed onto
// the final name. On any write failure the temporary file is removed.
func Write(path string, meta *Meta) error {
	if len(path) > maxPathLen {
		return ErrBufferTooLong
	}

	dir := filepath.Dir(path)
	tmpName := tempName(dir)

	f, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("archive: create temp file: %w", err)
	}

	if err := writeAllEINTR(f, meta.Raw); err != nil {
		f.Close()
		os.Remove(tmpName)
		return fmt.Errorf("archive: write: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("archive: close: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("archive: rename: %w", err)
	}
	return nil
}

// tempName encodes the destination directory's inode, the current
// time, a process-local address, and the pid, so concurrently running
// invocations never collide on the same temporary name (spec §4.7,
// §5 "no concurrent writers... possible").
func tempName(dir string) string {
	var ino uint64
	if st, err := os.Stat(dir); err == nil {
		if sys, ok := st.Sys().(*unix.Stat_t); ok {
			ino = sys.Ino
		}
	}
	marker := new(byte) // a stack/heap address unique to this call
	return filepath.Join(dir, fmt.Sprintf(".gosbt-%x-%x-%p-%d.tmp", ino, time.Now().UnixNano(), marker, os.Getpid()))
}

func writeAllEINTR(f *os.File, data []byte) error {
	for len(data) > 0 {
		n, err := f.Write(data)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}
		data = data[n:]
	}
	return nil
}
