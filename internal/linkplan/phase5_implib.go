package linkplan

import (
	"context"
	"fmt"

	"github.com/slibtool/gosbt/internal/host"
	"github.com/slibtool/gosbt/internal/spawn"
)

// ImplibChooser picks which tool phase 5 invokes to produce a PE
// import library: SLBT_DRIVER_IMPLIB_IDATA (dlltool) or
// SLBT_DRIVER_IMPLIB_DSOMETA (mdso). Midipix defaults to mdso;
// everything else defaults to dlltool.
type ImplibChooser int

const (
	ImplibIData   ImplibChooser = iota // dlltool
	ImplibDSOMeta                      // mdso
)

// DefaultChooser reports the per-flavor default tool, mirroring the
// original's fallback when neither driver flag forces a choice.
func DefaultChooser(flavor host.Flavor) ImplibChooser {
	if flavor == host.FlavorMidipix {
		return ImplibDSOMeta
	}
	return ImplibIData
}

// CreateImportLibrary implements phase 5 (spec §4.11 "Phase 5 — PE
// import libraries"): invoking dlltool or mdso against defFile to
// produce implibFile, with the `-S`/`-f --32|--f --64`/`-m iN86...`
// assembler arguments derived from the host triplet's leading `iN86-`
// pattern when an explicit assembler is configured.
func CreateImportLibrary(ctx context.Context, tools host.Tools, chooser ImplibChooser, defFile, implibFile, soname, triplet string, explicitAssembler string) error {
	var argv []string
	switch chooser {
	case ImplibDSOMeta:
		if tools.Mdso == "" {
			return fmt.Errorf("linkplan: mdso tool not available for flavor requiring it")
		}
		argv = []string{tools.Mdso, "-i", implibFile, "-I", soname, defFile}
	default:
		if tools.Dlltool == "" {
			return fmt.Errorf("linkplan: dlltool not available")
		}
		argv = []string{tools.Dlltool, "-d", defFile, "-l", implibFile, "-D", soname}
		if explicitAssembler != "" {
			argv = append(argv, "-S", explicitAssembler, "-f", archAssemblerFlag(triplet))
			argv = append(argv, "-m", archDlltoolMachine(triplet))
		}
	}

	res, err := spawn.Run(ctx, argv)
	if err != nil {
		return fmt.Errorf("linkplan: implib spawn: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("linkplan: implib tool exited %d: %s", res.ExitCode, res.Stderr)
	}
	return nil
}

// archAssemblerFlag and archDlltoolMachine decode the host triplet's
// leading "iN86-" pattern into dlltool's --32/--64 and -m switches.
func archAssemblerFlag(triplet string) string {
	if is64BitTriplet(triplet) {
		return "--64"
	}
	return "--32"
}

func archDlltoolMachine(triplet string) string {
	if is64BitTriplet(triplet) {
		return "i386:x86-64"
	}
	return "i386"
}

// is64BitTriplet reports false only for a recognized 32-bit "iN86-"
// leading pattern; every other triplet (including plain x86_64) is
// treated as 64-bit, matching dlltool's --64/-m i386:x86-64 default.
func is64BitTriplet(triplet string) bool {
	return !hasPrefixAny(triplet, "i386-", "i486-", "i586-", "i686-")
}

func hasPrefixAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}
