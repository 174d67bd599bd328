package linkplan

import "fmt"

// selectOutputFile implements phase 2 (spec §4.11 "Phase 2 — output
// policy"): choosing which of the synthesized filenames is the
// primary build target for opts.Kind.
func selectOutputFile(opts Options, names Filenames) (string, error) {
	switch opts.Kind {
	case OutputStatic:
		return names.ArchiveFile, nil
	case OutputShared, OutputModule:
		return names.DSOFile, nil
	default:
		return "", fmt.Errorf("linkplan: unknown output kind %d", opts.Kind)
	}
}
