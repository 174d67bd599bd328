package host

import "os"

// probeArchive is a filesystem handle to a throwaway empty ar(1)
// archive used only to probe whether a candidate "ar" binary exists
// and runs, mirroring the original's mkstemp-based empty-archive probe.
type probeArchive struct {
	path string
}

func (p probeArchive) cleanup() {
	os.Remove(p.path)
}

func emptyArchiveMapping() (probeArchive, error) {
	f, err := os.CreateTemp("", "gosbt-ar-probe-*.a")
	if err != nil {
		return probeArchive{}, err
	}
	defer f.Close()
	if _, err := f.WriteString("!<arch>\n"); err != nil {
		os.Remove(f.Name())
		return probeArchive{}, err
	}
	return probeArchive{path: f.Name()}, nil
}
