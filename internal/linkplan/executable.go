package linkplan

import (
	"fmt"
	"path/filepath"

	"github.com/slibtool/gosbt/internal/wrapper"
)

// BuildExecutable implements phase 6 (spec §4.11 / end-to-end
// scenario 5: "`--mode=link cc -o program main.lo libfoo.la` produces
// `.libs/program` and an executable shell wrapper at `program`"): it
// runs phase 1 over cargv, computes the real binary's argv under
// opts.OutputDir (default ".libs"), and writes the wrapper script at
// progName.
func BuildExecutable(opts Options, progName string, cargv []string) (*Plan, error) {
	adjusted, extra, err := adjustArgs(cargv, opts.Kind != OutputStatic, false)
	if err != nil {
		return nil, fmt.Errorf("linkplan: phase1: %w", err)
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = ".libs"
	}
	realPath := filepath.Join(outputDir, progName)

	argv := append([]string{}, adjusted...)
	argv = append(argv, "-o", realPath)

	if err := wrapper.Write(progName, wrapper.Options{
		ProgramName:   progName,
		LoaderPathEnv: opts.Settings.LoaderPathEnv,
		RealDir:       outputDir,
		RealName:      progName,
	}); err != nil {
		return nil, fmt.Errorf("linkplan: phase6: %w", err)
	}

	return &Plan{
		Argv:      argv,
		ExtraArgs: normalizeDeps(extra, ""),
	}, nil
}
