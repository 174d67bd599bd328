package linkplan

import (
	"fmt"
	"path/filepath"
)

// Build runs phases 1-4 over cargv for a library-kind link (static,
// shared, or module output), returning the synthesized Filenames and
// the fully adjusted argv. PE import-library creation (phase 5) and
// executable-wrapper emission (phase 6) are separate steps — Build
// covers the argument/output/versioning/deps phases that are common
// to every library-kind link.
func Build(opts Options, cargv []string) (*Plan, error) {
	pic := opts.Kind != OutputStatic

	adjusted, extra, err := adjustArgs(cargv, pic, opts.Kind == OutputStatic)
	if err != nil {
		return nil, fmt.Errorf("linkplan: phase1: %w", err)
	}

	baseDir := opts.OutputDir
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}

	names := synthesizeFilenames(opts)

	output, err := selectOutputFile(opts, names)
	if err != nil {
		return nil, fmt.Errorf("linkplan: phase2: %w", err)
	}

	argv := append([]string{}, adjusted...)

	// A static archive is built by invoking ar directly on the
	// adjusted object list (the adjusted argv without its leading
	// compiler name and without option tokens), never a
	// compiler/linker, so none of the -o/-Wl,.../rpath/export-dynamic
	// plumbing below applies to it.
	if opts.Kind == OutputStatic {
		var objs []string
		for i, a := range adjusted {
			if i > 0 && a != "" && a[0] != '-' {
				objs = append(objs, a)
			}
		}
		return &Plan{
			Filenames: names,
			Argv:      objs,
			ExtraArgs: normalizeDeps(extra, baseDir),
		}, nil
	}

	argv = append(argv, "-o", filepath.Join(opts.OutputDir, output))

	if opts.NoUndefined {
		if opts.Flavor.IsMachO() {
			argv = append(argv, "-Wl,-undefined,error")
		} else {
			argv = append(argv, "-Wl,--no-undefined")
		}
	}
	argv = append(argv, sonameArgs(opts, names)...)
	if opts.Rpath != "" {
		argv = append(argv, "-Wl,-rpath", opts.Rpath)
	}
	if opts.ExportDynamic {
		argv = append(argv, "-Wl,--export-dynamic")
	}

	return &Plan{
		Filenames: names,
		Argv:      argv,
		ExtraArgs: normalizeDeps(extra, baseDir),
	}, nil
}

// sonameArgs implements the ELF -Wl,-soname / Darwin -install_name
// half of phase 3.
func sonameArgs(opts Options, names Filenames) []string {
	soTarget := names.DSOSymlinkMaj
	if soTarget == "" {
		soTarget = names.DSOFile
	}
	if opts.Flavor.IsMachO() {
		return []string{"-Wl,-install_name," + soTarget}
	}
	if opts.Flavor.IsELF() {
		return []string{"-Wl,-soname," + soTarget}
	}
	return nil
}
