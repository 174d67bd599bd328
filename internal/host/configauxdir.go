package host

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// FindConfigAuxDir scans configure.ac (or configure.in) under dir for
// an AC_CONFIG_AUX_DIR([subdir]) line and returns the named directory.
// This is a single-purpose line scanner, not an autoconf macro
// expander: it does not resolve shell variables, m4 quoting beyond a
// single layer of brackets/parens, or multi-line macro invocations.
func FindConfigAuxDir(dir string) (string, bool) {
	for _, name := range []string{"configure.ac", "configure.in"} {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		auxdir, found := scanConfigAuxDir(f)
		f.Close()
		if found {
			return auxdir, true
		}
	}
	return "", false
}

func scanConfigAuxDir(f *os.File) (string, bool) {
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		idx := strings.Index(line, "AC_CONFIG_AUX_DIR")
		if idx < 0 {
			continue
		}
		rest := line[idx+len("AC_CONFIG_AUX_DIR"):]
		rest = strings.TrimLeft(rest, "([")
		if end := strings.IndexAny(rest, ")]"); end >= 0 {
			rest = rest[:end]
		}
		rest = strings.Trim(rest, `"' `)
		if rest != "" {
			return rest, true
		}
	}
	return "", false
}
