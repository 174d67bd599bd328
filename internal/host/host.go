// Package host derives the host triplet and "flavor" that drives
// every filename, tool-name, and PIC-switch decision the link planner
// makes, mirroring slibtool's host/flavor model.
package host

import (
	"context"
	"runtime"
	"strings"

	"github.com/golang/glog"
	"github.com/xyproto/env/v2"

	"github.com/slibtool/gosbt/internal/spawn"
)

// Flavor names one of the host conventions the driver knows how to
// target.
type Flavor string

const (
	FlavorDefault Flavor = "default"
	FlavorMidipix Flavor = "midipix"
	FlavorMingw   Flavor = "mingw"
	FlavorCygwin  Flavor = "cygwin"
	FlavorMsys    Flavor = "msys"
	FlavorDarwin  Flavor = "darwin"
)

// IsCOFF reports whether flavor targets a PE/COFF image.
func (f Flavor) IsCOFF() bool {
	switch f {
	case FlavorMidipix, FlavorMingw, FlavorCygwin, FlavorMsys:
		return true
	}
	return false
}

// IsMachO reports whether flavor targets a Mach-O image.
func (f Flavor) IsMachO() bool {
	return f == FlavorDarwin
}

// IsELF reports whether flavor targets a plain ELF image (the
// "default" flavor is the only ELF flavor gosbt ships settings for).
func (f Flavor) IsELF() bool {
	return f == FlavorDefault
}

// Settings is the record of per-flavor
// conventions (spec §"Flavor settings").
type Settings struct {
	ImageFormat   string // "elf", "pe", "macho"
	ArchivePrefix string
	ArchiveSuffix string
	DSOPrefix     string
	DSOSuffix     string
	DSOInfix      string // e.g. ELF's ".so" before the version digits vs Darwin's ""
	DSOFussix     string // e.g. Darwin's ".dylib" trailing suffix vs ELF's ""
	ExePrefix     string
	ExeSuffix     string
	ImplibPrefix  string
	ImplibSuffix  string
	MapfileSuffix string
	LoaderPathEnv string
	PICSwitch     string // empty string means "no switch required"
}

var flavorSettings = map[Flavor]Settings{
	FlavorDefault: {
		ImageFormat: "elf", PICSwitch: "-fPIC",
		ArchivePrefix: "lib", ArchiveSuffix: ".a",
		DSOPrefix: "lib", DSOSuffix: ".so", DSOInfix: ".so", DSOFussix: "",
		ExePrefix: "", ExeSuffix: "",
		ImplibPrefix: "", ImplibSuffix: "",
		MapfileSuffix: ".ver",
		LoaderPathEnv: "LD_LIBRARY_PATH",
	},
	FlavorMidipix: {
		ImageFormat: "pe", PICSwitch: "-fPIC",
		ArchivePrefix: "lib", ArchiveSuffix: ".a",
		DSOPrefix: "lib", DSOSuffix: ".so", DSOInfix: ".so", DSOFussix: "",
		ExePrefix: "", ExeSuffix: "",
		ImplibPrefix: "lib", ImplibSuffix: ".lib.a",
		MapfileSuffix: ".expsyms.def",
		LoaderPathEnv: "LD_LIBRARY_PATH",
	},
	FlavorMingw: {
		ImageFormat: "pe", PICSwitch: "",
		ArchivePrefix: "lib", ArchiveSuffix: ".a",
		DSOPrefix: "lib", DSOSuffix: ".dll", DSOInfix: "", DSOFussix: ".dll",
		ExePrefix: "", ExeSuffix: ".exe",
		ImplibPrefix: "lib", ImplibSuffix: ".dll.a",
		MapfileSuffix: ".expsyms.def",
		LoaderPathEnv: "PATH",
	},
	FlavorCygwin: {
		ImageFormat: "pe", PICSwitch: "",
		ArchivePrefix: "lib", ArchiveSuffix: ".a",
		DSOPrefix: "lib", DSOSuffix: ".dll", DSOInfix: "", DSOFussix: ".dll",
		ExePrefix: "", ExeSuffix: ".exe",
		ImplibPrefix: "lib", ImplibSuffix: ".dll.a",
		MapfileSuffix: ".expsyms.def",
		LoaderPathEnv: "PATH",
	},
	FlavorMsys: {
		ImageFormat: "pe", PICSwitch: "",
		ArchivePrefix: "lib", ArchiveSuffix: ".a",
		DSOPrefix: "lib", DSOSuffix: ".dll", DSOInfix: "", DSOFussix: ".dll",
		ExePrefix: "", ExeSuffix: ".exe",
		ImplibPrefix: "lib", ImplibSuffix: ".dll.a",
		MapfileSuffix: ".expsyms.def",
		LoaderPathEnv: "PATH",
	},
	FlavorDarwin: {
		ImageFormat: "macho", PICSwitch: "-fPIC",
		ArchivePrefix: "lib", ArchiveSuffix: ".a",
		DSOPrefix: "lib", DSOSuffix: ".dylib", DSOInfix: "", DSOFussix: ".dylib",
		ExePrefix: "", ExeSuffix: "",
		ImplibPrefix: "", ImplibSuffix: "",
		MapfileSuffix: ".exp",
		LoaderPathEnv: "DYLD_LIBRARY_PATH",
	},
}

// SettingsFor returns the per-flavor conventions table entry, falling
// back to FlavorDefault's table entry for an unrecognized flavor (the
// caller is expected to have already gone through InferFlavor, whose
// own fallback is logged there).
func SettingsFor(f Flavor) Settings {
	if s, ok := flavorSettings[f]; ok {
		if shrext := env.Str("GOSBT_SHREXT", ""); shrext != "" {
			s.DSOSuffix = shrext
		}
		return s
	}
	return flavorSettings[FlavorDefault]
}

// Params is the derived (host triplet, flavor) pair plus the
// provenance annotation the command line or environment produced
// (spec: "Derivation order for the host triplet").
type Params struct {
	Triplet string
	Flavor  Flavor
	Origin  string // e.g. "command-line argument", "derived from <target>"
}

// Options lets the caller feed in everything the derivation order can
// consult before falling back to runtime.GOOS/GOARCH.
type Options struct {
	ExplicitHost  string // --host
	Target        string // --target
	Argv0         string // cargv[0], for the "prefix-" and xgcc/xg++ cases
	BuildMachine  string // native-machine constant, e.g. "x86_64-pc-linux-gnu"
	DumpMachineFn func(ctx context.Context, compiler string) (string, error)
}

// DeriveParams implements the triplet derivation order: explicit
// --host, then --target, then an argv[0] "<prefix>-tool" split, then
// "-dumpmachine" for a recognized cross driver (xgcc/xg++), then the
// build machine.
func DeriveParams(ctx context.Context, opts Options) Params {
	switch {
	case opts.ExplicitHost != "":
		return finishParams(opts.ExplicitHost, "command-line argument")

	case opts.Target != "":
		return finishParams(opts.Target, "derived from <target>")
	}

	if base := argvBase(opts.Argv0); strings.Contains(base, "-") {
		triplet := base[:strings.LastIndex(base, "-")]
		return finishParams(triplet, "derived from <compiler>")
	}

	base := argvBase(opts.Argv0)
	if (base == "xgcc" || base == "xg++") && opts.DumpMachineFn != nil {
		if m, err := opts.DumpMachineFn(ctx, opts.Argv0); err == nil && m != "" {
			return finishParams(m, "derived from -dumpmachine")
		}
		glog.Warningf("host: -dumpmachine probe failed for %q, falling back to build machine", opts.Argv0)
	}

	machine := opts.BuildMachine
	if machine == "" {
		machine = runtime.GOOS + "-" + runtime.GOARCH
	}
	return finishParams(machine, "native (build machine)")
}

func argvBase(argv0 string) string {
	if i := strings.LastIndexByte(argv0, '/'); i >= 0 {
		return argv0[i+1:]
	}
	return argv0
}

func finishParams(triplet, origin string) Params {
	return Params{
		Triplet: triplet,
		Flavor:  InferFlavor(triplet),
		Origin:  origin,
	}
}

// InferFlavor consults the triplet's substrings in the order the
// driver checks them: bsd, cygwin, darwin, linux, midipix, and the
// mingw/windows family. bsd and linux are recognized but have no
// dedicated settings table entry, so they resolve to FlavorDefault
// without a warning; anything else falls back to FlavorDefault with a
// logged "fallback, unverified" note.
func InferFlavor(triplet string) Flavor {
	switch {
	case strings.Contains(triplet, "bsd"):
		return FlavorDefault
	case strings.Contains(triplet, "cygwin"):
		return FlavorCygwin
	case strings.Contains(triplet, "darwin"):
		return FlavorDarwin
	case strings.Contains(triplet, "linux"):
		return FlavorDefault
	case strings.Contains(triplet, "midipix"):
		return FlavorMidipix
	case strings.Contains(triplet, "mingw64"),
		strings.Contains(triplet, "mingw32"),
		strings.Contains(triplet, "mingw"),
		strings.Contains(triplet, "windows"):
		return FlavorMingw
	}
	glog.Warningf("host: flavor for triplet %q: fallback, unverified", triplet)
	return FlavorDefault
}

// Tools names the external programs the link planner and archiver
// invoke, after discovery (spec §4.9 "Tool discovery").
type Tools struct {
	AR      string
	AS      string
	NM      string
	Ranlib  string
	Windres string
	Dlltool string
	Mdso    string
}

// DiscoverTools resolves every tool name for triplet, preferring an
// explicit override, then the unprefixed tool name when triplet equals
// the build machine, then "<triplet>-<tool>" probed by invocation,
// then "<triplet>-<basename>-<tool>"/"<basename>-<tool>", finally the
// unprefixed tool name when no probe succeeds. windres, dlltool, and
// mdso are suppressed outside PE flavors.
func DiscoverTools(ctx context.Context, triplet string, flavor Flavor, buildMachine string, overrides Tools) Tools {
	native := triplet == buildMachine
	t := Tools{
		AR:     resolveTool(ctx, overrides.AR, "ar", triplet, native),
		AS:     resolveTool(ctx, overrides.AS, "as", triplet, native),
		NM:     resolveTool(ctx, overrides.NM, "nm", triplet, native),
		Ranlib: resolveTool(ctx, overrides.Ranlib, "ranlib", triplet, native),
	}
	if flavor.IsCOFF() {
		t.Windres = resolveTool(ctx, overrides.Windres, "windres", triplet, native)
		t.Dlltool = resolveTool(ctx, overrides.Dlltool, "dlltool", triplet, native)
		t.Mdso = resolveTool(ctx, overrides.Mdso, "mdso", triplet, native)
	}
	return t
}

func resolveTool(ctx context.Context, explicit, tool, triplet string, native bool) string {
	if explicit != "" {
		return explicit
	}
	if native {
		return tool
	}

	candidate := triplet + "-" + tool
	if probeAR(ctx, candidate, tool) {
		return candidate
	}

	base := argvBase(triplet)
	if candidate = triplet + "-" + base + "-" + tool; probeAR(ctx, candidate, tool) {
		return candidate
	}
	if candidate = base + "-" + tool; probeAR(ctx, candidate, tool) {
		return candidate
	}
	return tool
}

// probeAR only actually probes the "ar" tool, the way the original
// probes cross-ar by listing a freshly created empty archive; for
// every other tool name resolution is name-only (no invocation cost).
func probeAR(ctx context.Context, candidate, tool string) bool {
	if tool != "ar" {
		return true
	}
	m, err := emptyArchiveMapping()
	if err != nil {
		return false
	}
	defer m.cleanup()
	res, err := spawn.Run(ctx, []string{candidate, "-t", m.path})
	return err == nil && res.ExitCode == 0
}

// ReadEnvOverrides centralizes the cross-compilation environment
// reads (CC, AR, SYSROOT) and NO_COLOR, using xyproto/env's typed
// accessors instead of raw os.Getenv.
type EnvOverrides struct {
	CC      string
	AR      string
	Sysroot string
	NoColor bool
}

func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		CC:      env.Str("CC", ""),
		AR:      env.Str("AR", ""),
		Sysroot: env.Str("SYSROOT", ""),
		NoColor: env.Bool("NO_COLOR"),
	}
}
