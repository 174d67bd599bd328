package driver

import "flag"

// stringFlag is a flag.Value that also implements IsBoolFlag, so a
// bare "-name" (no "=value") sets it to "true" while "-name=value"
// still binds the explicit value. This is how Wprint accepts both the
// bracketed and bare forms spec §6 describes
// ("-Wprint[=members|symbols]"); Wmapfile is a plain bool flag.
type stringFlag struct {
	value string
	set   bool
}

func (s *stringFlag) String() string   { return s.value }
func (s *stringFlag) IsBoolFlag() bool { return true }
func (s *stringFlag) Set(v string) error {
	s.value, s.set = v, true
	return nil
}

// multiFlag collects every occurrence of a repeatable flag (-dlopen,
// -dlpreopen) in first-seen order.
type multiFlag []string

func (m *multiFlag) String() string { return "" }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

// LinkConfig is the typed result of binding a link-mode Context's
// Targv through a flag.FlagSet (SPEC_FULL §1.3: one FlagSet per
// invocation, never the global flag.CommandLine, since gosbt is
// sometimes driven as a library entry point from tests).
type LinkConfig struct {
	Output             string
	Host               string
	Target             string
	Rpath              string
	Release            string
	VersionInfo        string
	VersionNumber      string
	AvoidVersion       bool
	Module             bool
	Shared             bool
	Static             bool
	StaticLibtoolLibs  bool
	DisableStatic      bool
	ExportDynamic      bool
	ExportSymbols      string
	ExportSymbolsRegex string
	DlOpen             []string
	DlPreopen          []string
	NoUndefined        bool
	Shrext             string
	CCWrap             bool
}

// ParseLinkFlags binds targv (a link-mode Context.Targv) into a
// LinkConfig. "mode" is accepted and discarded, and "host"/"target"
// are bound as well, so a link-mode targv can be passed through as is;
// any other option the FlagSet does not define is a parse error.
func ParseLinkFlags(targv []string) (LinkConfig, error) {
	fs := flag.NewFlagSet("gosbt-link", flag.ContinueOnError)
	var cfg LinkConfig
	var dlopen, dlpreopen multiFlag

	fs.String("mode", "", "")
	fs.StringVar(&cfg.Host, "host", "", "explicit host triplet")
	fs.StringVar(&cfg.Target, "target", "", "explicit target triplet")
	fs.StringVar(&cfg.Output, "o", "", "output file")
	fs.StringVar(&cfg.Rpath, "rpath", "", "runtime library search directory")
	fs.StringVar(&cfg.Release, "release", "", "release string embedded in the DSO filename")
	fs.StringVar(&cfg.VersionInfo, "version-info", "", "MAJOR:MINOR:REVISION")
	fs.StringVar(&cfg.VersionNumber, "version-number", "", "literal DSO version number")
	fs.BoolVar(&cfg.AvoidVersion, "avoid-version", false, "suppress version suffixes and symlinks")
	fs.BoolVar(&cfg.Module, "module", false, "build a loadable module rather than a versioned DSO")
	fs.BoolVar(&cfg.Shared, "shared", false, "build a shared library")
	fs.BoolVar(&cfg.Static, "static", false, "build a static archive")
	fs.BoolVar(&cfg.StaticLibtoolLibs, "static-libtool-libs", false, "link dependency .la's statically")
	fs.BoolVar(&cfg.DisableStatic, "disable-static", false, "suppress static archive output")
	fs.BoolVar(&cfg.ExportDynamic, "export-dynamic", false, "pass --export-dynamic to the linker")
	fs.StringVar(&cfg.ExportSymbols, "export-symbols", "", "explicit symbol list file")
	fs.StringVar(&cfg.ExportSymbolsRegex, "export-symbols-regex", "", "symbol filter pattern")
	fs.Var(&dlopen, "dlopen", "module to be dlopen'd at runtime")
	fs.Var(&dlpreopen, "dlpreopen", "module to be dlopen'd at link time")
	fs.BoolVar(&cfg.NoUndefined, "no-undefined", false, "require every symbol to resolve at link time")
	fs.StringVar(&cfg.Shrext, "shrext", "", "override the default shared-library suffix")
	fs.BoolVar(&cfg.CCWrap, "ccwrap", false, "")

	if err := fs.Parse(targv); err != nil {
		return cfg, err
	}
	cfg.DlOpen = []string(dlopen)
	cfg.DlPreopen = []string(dlpreopen)
	return cfg, nil
}

// ArConfig is the typed result of binding a --mode=ar Context's Targv.
type ArConfig struct {
	Host    string
	Target  string
	Check   bool
	Merge   bool
	Output  string
	Print   string // "", "members", or "symbols"
	Mapfile bool
	Regex   string
	Pretty  string // "", "posix", "yaml", or "hexdata"
	Posix   bool
	Yaml    bool
	Verbose bool
}

// ParseArFlags binds targv (an ar-mode Context.Targv) into an
// ArConfig.
func ParseArFlags(targv []string) (ArConfig, error) {
	fs := flag.NewFlagSet("gosbt-ar", flag.ContinueOnError)
	var cfg ArConfig
	var printFlag stringFlag

	fs.String("mode", "", "")
	fs.StringVar(&cfg.Host, "host", "", "explicit host triplet")
	fs.StringVar(&cfg.Target, "target", "", "explicit target triplet")
	fs.BoolVar(&cfg.Check, "Wcheck", false, "validate the input archive without producing output")
	fs.BoolVar(&cfg.Merge, "Wmerge", false, "merge every input archive into one output archive")
	fs.StringVar(&cfg.Output, "Woutput", "", "output archive path")
	fs.Var(&printFlag, "Wprint", "list members or symbols (members|symbols)")
	fs.BoolVar(&cfg.Mapfile, "Wmapfile", false, "emit a mapfile/export-list alongside the output")
	fs.StringVar(&cfg.Regex, "Wregex", "", "symbol filter pattern for -Wmapfile/-Wprint=symbols")
	fs.StringVar(&cfg.Pretty, "Wpretty", "", "posix|yaml|hexdata")
	fs.BoolVar(&cfg.Posix, "Wposix", false, "shorthand for -Wpretty=posix")
	fs.BoolVar(&cfg.Yaml, "Wyaml", false, "shorthand for -Wpretty=yaml")
	fs.BoolVar(&cfg.Verbose, "Wverbose", false, "verbose ar-mode diagnostics")

	if err := fs.Parse(targv); err != nil {
		return cfg, err
	}

	if printFlag.set {
		if printFlag.value == "true" {
			cfg.Print = "members"
		} else {
			cfg.Print = printFlag.value
		}
	}
	return cfg, nil
}
