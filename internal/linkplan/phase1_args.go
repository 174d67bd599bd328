package linkplan

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// adjustArgs implements phase 1 (spec §4.11 "Phase 1 — argument
// adjustment"): resolves `.lo` inputs to a PIC object under `.libs/`
// or a non-PIC object alongside the source, rewrites `.la` inputs
// either to their static archive or to an `-L.libs -lNAME` pair, folds
// in `.slibtool.deps`/`.slibtool.rpath` sidecars, and appends
// `/.libs` to `-L` references whose `.libs` subdirectory exists.
func adjustArgs(cargv []string, pic bool, statik bool) ([]string, []string, error) {
	var out []string
	var extra []string

	for _, arg := range cargv {
		switch {
		case strings.HasSuffix(arg, ".lo"):
			out = append(out, resolveLoObject(arg, pic))

		case strings.HasSuffix(arg, ".la"):
			libname := laLibName(arg)
			dir := filepath.Dir(arg)

			// A dependency .la with no dlname never produced an
			// installed DSO (a "convenience" library); referencing
			// it via -l would look for a shared object that was
			// never built, so its archive is recorded directly as a
			// "::path/to/foo.a" deps-file entry instead (spec §4.11
			// Phase 4).
			info, haveInfo := readLAFile(arg)
			convenience := haveInfo && info.Dlname == "" && info.OldLibrary != ""

			switch {
			case statik:
				out = append(out, filepath.Join(dir, ".libs", "lib"+libname+".a"))
			case convenience:
				extra = append(extra, "::"+filepath.Join(dir, ".libs", info.OldLibrary))
			default:
				out = append(out, "-L"+filepath.Join(dir, ".libs"), "-l"+libname)
			}

			sidecarArgs, err := readSidecars(arg)
			if err != nil {
				return nil, nil, err
			}
			extra = append(extra, sidecarArgs...)

		case strings.HasPrefix(arg, "-L"):
			rel := strings.TrimPrefix(arg, "-L")
			libsDir := filepath.Join(rel, ".libs")
			if info, err := os.Stat(libsDir); err == nil && info.IsDir() {
				out = append(out, "-L"+libsDir)
			}
			out = append(out, arg)

		default:
			out = append(out, arg)
		}
	}

	return out, extra, nil
}

// resolveLoObject maps foo.lo to .libs/foo.o (PIC) or foo.o (non-PIC),
// alongside the .lo file.
func resolveLoObject(lo string, pic bool) string {
	dir := filepath.Dir(lo)
	base := strings.TrimSuffix(filepath.Base(lo), ".lo") + ".o"
	if pic {
		return filepath.Join(dir, ".libs", base)
	}
	return filepath.Join(dir, base)
}

func laLibName(la string) string {
	base := strings.TrimSuffix(filepath.Base(la), ".la")
	return strings.TrimPrefix(base, "lib")
}

// readLAFile reads and parses a dependency .la wrapper, reporting
// false (never an error) when the file does not exist or cannot be
// parsed — an unreadable dependency .la just means phase 1 falls back
// to the default -L/-l rewrite for it.
func readLAFile(path string) (LAFileInfo, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LAFileInfo{}, false
	}
	info, err := ParseLAFile(data)
	if err != nil {
		return LAFileInfo{}, false
	}
	return info, true
}

// readSidecars reads <la>.slibtool.deps (whitespace separated extra
// linker arguments, one or more per line) and <la>.slibtool.rpath
// (directories rewritten as -Wl,-rpath <dir>), matching the sidecar
// names Filenames.DepsFile/RpathFile synthesize for a library this
// invocation produces. Either file is optional; its absence is not
// an error.
func readSidecars(la string) ([]string, error) {
	stem := la
	var extra []string

	if lines, err := readLines(stem + ".slibtool.deps"); err != nil {
		return nil, err
	} else {
		for _, line := range lines {
			extra = append(extra, strings.Fields(line)...)
		}
	}

	if lines, err := readLines(stem + ".slibtool.rpath"); err != nil {
		return nil, err
	} else {
		for _, line := range lines {
			if line = strings.TrimSpace(line); line != "" {
				extra = append(extra, "-Wl,-rpath", line)
			}
		}
	}

	return extra, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
