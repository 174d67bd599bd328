package driver

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// driverLongOpts is the set of long option names (the token
// following the leading "-"/"--") that belong to gosbt itself rather
// than the downstream compiler/linker invocation (spec §4.10
// "Disambiguation rules for option sorting").
var driverLongOpts = map[string]bool{
	"mode": true, "host": true, "target": true,
	"o": true, "rpath": true, "release": true,
	"version-info": true, "version-number": true, "avoid-version": true,
	"module": true, "shared": true, "static": true,
	"static-libtool-libs": true, "disable-static": true,
	"export-dynamic": true, "export-symbols": true, "export-symbols-regex": true,
	"dlopen": true, "dlpreopen": true, "no-undefined": true, "shrext": true,
	"Wcheck": true, "Wmerge": true, "Woutput": true, "Wprint": true,
	"Wmapfile": true, "Wregex": true, "Wpretty": true, "Wposix": true,
	"Wyaml": true, "Wverbose": true, "Xcompiler": true,
}

// optionsTakingArg are driver long options that consume the following
// token as a standalone argument rather than an attached "=value".
var optionsTakingArg = map[string]bool{
	"mode": true, "host": true, "target": true, "o": true,
	"rpath": true, "release": true, "version-info": true,
	"version-number": true, "export-symbols": true, "export-symbols-regex": true,
	"dlopen": true, "dlpreopen": true, "shrext": true,
	"Woutput": true, "Wregex": true, "Xcompiler": true,
}

// ccacheWrappers are recognized compiler-wrapper basenames that,
// when immediately preceding the compiler, are moved into targv as
// "--ccwrap" rather than left as the first cargv token.
var ccacheWrappers = map[string]bool{
	"ccache": true, "distcc": true, "compiler": true, "purify": true,
}

// incompatiblePairs lists mutually exclusive driver flags (spec
// §4.10, "-static with -shared, -static with -disable-static, etc.").
var incompatiblePairs = [][2]string{
	{"static", "shared"},
	{"static", "disable-static"},
	{"avoid-version", "version-info"},
}

// Split partitions argv into dargv (fully normalized, one option per
// token), targv (gosbt's own options and mode-level switches), and
// cargv (the downstream compiler/linker invocation), expanding any
// "-objectlist FILE" into cargv and detecting a leading ccache-style
// wrapper. argv[0] (the program name) is not included in any view.
func (c *Context) Split(argv []string) error {
	if len(argv) == 0 {
		return c.Errors.Append(KindNoInputSpec, fmt.Errorf("empty argv")).Err
	}

	dargv, err := normalize(argv[1:])
	if err != nil {
		return c.Errors.Append(KindFlow, err).Err
	}

	var targv, cargv []string
	i := 0
	for i < len(dargv) {
		tok := dargv[i]
		name, _, hasEq := splitLongOpt(tok)

		if name == "objectlist" {
			if i+1 >= len(dargv) {
				return c.Errors.Append(KindNoInputSpec, fmt.Errorf("-objectlist requires a file argument")).Err
			}
			objs, err := readObjectList(dargv[i+1])
			if err != nil {
				return c.Errors.AppendSystem(err).Err
			}
			cargv = append(cargv, objs...)
			i += 2
			continue
		}

		if driverLongOpts[name] {
			targv = append(targv, tok)
			if !hasEq && optionsTakingArg[name] && i+1 < len(dargv) {
				targv = append(targv, dargv[i+1])
				i += 2
				continue
			}
			i++
			continue
		}

		cargv = append(cargv, tok)
		i++
	}

	cargv = absorbCcacheWrapper(targv, cargv, &targv)

	if err := checkIncompatiblePairs(targv); err != nil {
		return c.Errors.Append(KindFlow, err).Err
	}

	c.Dargv, c.Targv, c.Cargv = dargv, targv, cargv
	return nil
}

// normalize collapses "-I /path" into "-Ipath", splits "--library=foo"
// into "-l foo", and otherwise returns each token unchanged.
func normalize(argv []string) ([]string, error) {
	var out []string
	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		switch {
		case tok == "-I" && i+1 < len(argv):
			out = append(out, "-I"+argv[i+1])
			i++
		case tok == "-l" && i+1 < len(argv):
			out = append(out, "-l"+argv[i+1])
			i++
		case tok == "-L" && i+1 < len(argv):
			out = append(out, "-L"+argv[i+1])
			i++
		case strings.HasPrefix(tok, "--library="):
			out = append(out, "-l", strings.TrimPrefix(tok, "--library="))
		default:
			out = append(out, tok)
		}
	}
	return out, nil
}

func splitLongOpt(tok string) (name, value string, hasEq bool) {
	trimmed := strings.TrimLeft(tok, "-")
	if trimmed == tok {
		return "", "", false // not an option token at all
	}
	if idx := strings.IndexByte(trimmed, '='); idx >= 0 {
		return trimmed[:idx], trimmed[idx+1:], true
	}
	return trimmed, "", false
}

func readObjectList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var objs []string
	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	for sc.Scan() {
		objs = append(objs, sc.Text())
	}
	return objs, sc.Err()
}

// absorbCcacheWrapper moves a recognized wrapper basename that leads
// cargv into targv as "--ccwrap", mutating *targvOut in place and
// returning the remaining cargv.
func absorbCcacheWrapper(_ []string, cargv []string, targvOut *[]string) []string {
	if len(cargv) == 0 {
		return cargv
	}
	base := cargv[0]
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if ccacheWrappers[base] {
		*targvOut = append(*targvOut, "--ccwrap")
		return cargv[1:]
	}
	return cargv
}

func checkIncompatiblePairs(targv []string) error {
	present := make(map[string]bool, len(targv))
	for _, tok := range targv {
		name, _, _ := splitLongOpt(tok)
		present[name] = true
	}
	for _, pair := range incompatiblePairs {
		if present[pair[0]] && present[pair[1]] {
			return fmt.Errorf("incompatible flags: -%s and -%s", pair[0], pair[1])
		}
	}
	return nil
}
