// Command gosbt is a native replacement for the libtool/ar(1) pair:
// an archive parser/constructor/merger and a link orchestrator that
// drives a compiler/linker invocation to produce static archives,
// shared libraries, executables, .la wrappers, import libraries, and
// shell wrappers across ELF, PE/COFF, and Mach-O.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"github.com/slibtool/gosbt/internal/archive"
	"github.com/slibtool/gosbt/internal/driver"
	"github.com/slibtool/gosbt/internal/host"
	"github.com/slibtool/gosbt/internal/linkplan"
	"github.com/slibtool/gosbt/internal/rawio"
	"github.com/slibtool/gosbt/internal/spawn"
)

func main() {
	os.Exit(run(os.Args))
}

// basenameAlias maps an invocation basename to its mode and an
// optional library-kind hint (spec §6 "CLI surface": "Operating
// modes are selected by --mode=MODE or by invocation basename").
// The original driver (slbt_amain.c) maps rlibtool/dlibtool/clibtool
// to modifier flags (heuristics/debug/legacy-bits) layered onto plain
// link mode rather than distinct top-level modes; since driver.Mode
// has no room for that axis, rlibtool and dlibtool resolve here to
// link mode with the "shared" and "module" hints, and clibtool to
// compile mode.
type basenameAlias struct {
	mode driver.Mode
	hint string
}

var basenameAliases = map[string]basenameAlias{
	"gosbt-shared": {driver.ModeLink, "shared"},
	"gosbt-static": {driver.ModeLink, "static"},
	"rlibtool":     {driver.ModeLink, "shared"},
	"dlibtool":     {driver.ModeLink, "module"},
	"clibtool":     {driver.ModeCompile, ""},
	"stoolie":      {driver.ModeStoolie, ""},
	"slibtoolize":  {driver.ModeStoolie, ""},
	"gosbt-ar":     {driver.ModeAr, ""},
}

// run implements the full mode dispatch and returns the process exit
// code per spec §6: 0 success, 1 usage error, 2 any other error
// (including a propagated nonzero child exit code).
func run(argv []string) int {
	if len(argv) == 0 {
		fmt.Fprintln(os.Stderr, "gosbt: empty argv")
		return 1
	}

	mode, hint := driver.Mode(""), ""
	if alias, ok := basenameAliases[filepath.Base(argv[0])]; ok {
		mode, hint = alias.mode, alias.hint
	}
	if m, ok := extractOpt(argv[1:], "mode"); ok {
		mode = driver.Mode(m)
	}
	if mode == "" {
		fmt.Fprintln(os.Stderr, "gosbt: no mode specified (use --mode=MODE or an aliased basename)")
		return 1
	}

	ctx := driver.NewContext(mode, host.Params{})
	if err := ctx.Split(argv); err != nil {
		fmt.Fprintln(os.Stderr, "gosbt:", err)
		flushErrors(ctx)
		return exitCodeFor(ctx)
	}

	explicitHost, _ := extractOpt(ctx.Targv, "host")
	explicitTarget, _ := extractOpt(ctx.Targv, "target")
	argv0 := ""
	if len(ctx.Cargv) > 0 {
		argv0 = ctx.Cargv[0]
	}

	hostParams := host.DeriveParams(context.Background(), host.Options{
		ExplicitHost: explicitHost,
		Target:       explicitTarget,
		Argv0:        argv0,
		BuildMachine: runtime.GOOS + "-" + runtime.GOARCH,
	})
	ctx.Host = hostParams
	ctx.Settings = host.SettingsFor(hostParams.Flavor)

	env := host.ReadEnvOverrides()
	ctx.NoColor = env.NoColor

	tools := host.DiscoverTools(context.Background(), hostParams.Triplet, hostParams.Flavor,
		runtime.GOOS+"-"+runtime.GOARCH, host.Tools{AR: env.AR})

	var err error
	switch mode {
	case driver.ModeLink:
		err = runLink(ctx, tools, hint)
	case driver.ModeCompile:
		err = runCompile(ctx)
	case driver.ModeAr:
		err = runAr(ctx)
	case driver.ModeInstall:
		err = runInstall(ctx)
	case driver.ModeUninstall:
		err = runUninstall(ctx)
	case driver.ModeExecute:
		err = runExecute(ctx)
	default:
		err = ctx.Errors.Append(driver.KindFlow, fmt.Errorf("mode %q is not implemented", mode)).Err
	}
	if err != nil {
		glog.Warningf("gosbt: %s: %v", mode, err)
	}

	flushErrors(ctx)
	return exitCodeFor(ctx)
}

// extractOpt scans argv for "-name=value", "--name=value", "-name
// value", or "--name value", returning the first match. It is a
// lightweight pre-scan used only to resolve --mode/--host/--target
// before the rest of the flag-binding layer runs.
func extractOpt(argv []string, name string) (string, bool) {
	eq1, eq2 := "-"+name+"=", "--"+name+"="
	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		switch {
		case strings.HasPrefix(tok, eq1):
			return strings.TrimPrefix(tok, eq1), true
		case strings.HasPrefix(tok, eq2):
			return strings.TrimPrefix(tok, eq2), true
		case tok == "-"+name || tok == "--"+name:
			if i+1 < len(argv) {
				return argv[i+1], true
			}
		}
	}
	return "", false
}

// flushErrors prints every recorded error-vector entry with its
// site/kind/errno context (spec §7 "The driver flushes the vector on
// exit").
func flushErrors(ctx *driver.Context) {
	for _, e := range ctx.Errors.Entries() {
		fmt.Fprintln(os.Stderr, "gosbt:", e.Error())
	}
	if ctx.Errors.Full() {
		fmt.Fprintln(os.Stderr, "gosbt: error vector full, further records were dropped")
	}
}

// usageKinds are the kinds that map to exit code 1 rather than 2.
var usageKinds = map[driver.Kind]bool{
	driver.KindNoActionSpec:   true,
	driver.KindNoInputSpec:    true,
	driver.KindDriverMismatch: true,
	driver.KindOutputNotSpec:  true,
	driver.KindOutputNotApply: true,
}

func exitCodeFor(ctx *driver.Context) int {
	entries := ctx.Errors.Entries()
	if len(entries) == 0 {
		return 0
	}
	for _, e := range entries {
		if usageKinds[e.Kind] {
			return 1
		}
	}
	return 2
}

// parseVersion parses a "MAJOR:MINOR:REVISION"-form -version-info or
// -version-number argument (spec §8's worked example treats the
// three colon-separated components directly as Major/Minor/Revision).
func parseVersion(s string) (linkplan.Version, error) {
	if s == "" {
		return linkplan.Version{}, nil
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return linkplan.Version{}, fmt.Errorf("malformed version %q, want MAJOR:MINOR:REVISION", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return linkplan.Version{}, fmt.Errorf("malformed version %q: %w", s, err)
		}
		nums[i] = n
	}
	return linkplan.Version{Major: nums[0], Minor: nums[1], Revision: nums[2], Set: true}, nil
}

// extractLibName strips the archive prefix/suffix convention from a
// -o argument like "libfoo.la" or "libfoo.a", yielding "foo".
func extractLibName(output string, settings host.Settings) string {
	base := filepath.Base(output)
	base = strings.TrimSuffix(base, ".la")
	base = strings.TrimSuffix(base, settings.ArchiveSuffix)
	return strings.TrimPrefix(base, settings.ArchivePrefix)
}

func runLink(ctx *driver.Context, tools host.Tools, hint string) error {
	cfg, err := driver.ParseLinkFlags(ctx.Targv)
	if err != nil {
		return ctx.Errors.Append(driver.KindFlow, err).Err
	}
	if len(ctx.Cargv) == 0 {
		return ctx.Errors.Append(driver.KindNoInputSpec, fmt.Errorf("link mode requires a compiler/linker invocation")).Err
	}
	if cfg.Output == "" {
		return ctx.Errors.Append(driver.KindOutputNotSpec, fmt.Errorf("-o is required")).Err
	}

	if strings.HasSuffix(cfg.Output, ".la") {
		return buildLibrary(ctx, tools, cfg, hint)
	}
	return buildExecutableOutput(ctx, cfg)
}

func buildLibrary(ctx *driver.Context, tools host.Tools, cfg driver.LinkConfig, hint string) error {
	libName := extractLibName(cfg.Output, ctx.Settings)

	kind := linkplan.OutputShared
	switch {
	case cfg.Static, hint == "static":
		kind = linkplan.OutputStatic
	case cfg.Module, hint == "module":
		kind = linkplan.OutputModule
	}

	version, err := parseVersion(cfg.VersionInfo)
	if err != nil {
		return ctx.Errors.Append(driver.KindFlow, err).Err
	}
	if !version.Set {
		if version, err = parseVersion(cfg.VersionNumber); err != nil {
			return ctx.Errors.Append(driver.KindFlow, err).Err
		}
	}

	opts := linkplan.Options{
		LibName:       libName,
		Release:       cfg.Release,
		Version:       version,
		AvoidVersion:  cfg.AvoidVersion,
		Kind:          kind,
		Settings:      ctx.Settings,
		Flavor:        ctx.Host.Flavor,
		OutputDir:     ".libs",
		NoUndefined:   cfg.NoUndefined,
		ExportDynamic: cfg.ExportDynamic,
		Rpath:         cfg.Rpath,
		DlPreopen:     cfg.DlPreopen,
		DlOpen:        cfg.DlOpen,
	}

	plan, err := linkplan.Build(opts, ctx.Cargv)
	if err != nil {
		return ctx.Errors.Append(driver.KindLink, err).Err
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return ctx.Errors.AppendSystem(err).Err
	}

	if kind != linkplan.OutputStatic {
		res, err := spawn.Run(context.Background(), plan.Argv)
		if err != nil {
			return ctx.Errors.Append(driver.KindLink, err).Err
		}
		if res.ExitCode != 0 {
			return ctx.Errors.Append(driver.KindLink, fmt.Errorf("linker exited %d: %s", res.ExitCode, res.Stderr)).Err
		}
		if err := linkDSOSymlinks(plan.Filenames, opts.OutputDir); err != nil {
			return ctx.Errors.AppendSystem(err).Err
		}
	} else {
		res, err := spawn.Run(context.Background(), append([]string{tools.AR, "rcs", filepath.Join(opts.OutputDir, plan.Filenames.ArchiveFile)}, plan.Argv...))
		if err != nil {
			return ctx.Errors.Append(driver.KindAr, err).Err
		}
		if res.ExitCode != 0 {
			return ctx.Errors.Append(driver.KindAr, fmt.Errorf("ar exited %d: %s", res.ExitCode, res.Stderr)).Err
		}
	}

	if err := writeLAWrapper(plan, opts); err != nil {
		return ctx.Errors.AppendSystem(err).Err
	}

	// Every libNAME.la build gets a back-reference symlink under
	// .libs/ (spec §8 scenarios 2 and 3; slbt_exec_link.c's
	// "ln -s ../libfoo.la .libs/libfoo.la", emitted for both -shared
	// and -static .la outputs).
	laLink := filepath.Join(opts.OutputDir, plan.Filenames.LAFile)
	os.Remove(laLink)
	if err := os.Symlink(filepath.Join("..", plan.Filenames.LAFile), laLink); err != nil {
		return ctx.Errors.AppendSystem(err).Err
	}

	if err := os.WriteFile(plan.Filenames.DepsFile, []byte(linkplan.RenderDepsFile(plan.ExtraArgs)), 0o644); err != nil {
		return ctx.Errors.AppendSystem(err).Err
	}

	if ctx.Host.Flavor.IsCOFF() && plan.Filenames.DefFile != "" && plan.Filenames.ImplibVersion != "" {
		chooser := linkplan.DefaultChooser(ctx.Host.Flavor)
		soname := plan.Filenames.DSOFile
		if err := linkplan.CreateImportLibrary(context.Background(), tools, chooser,
			filepath.Join(opts.OutputDir, plan.Filenames.DefFile),
			filepath.Join(opts.OutputDir, plan.Filenames.ImplibVersion),
			soname, ctx.Host.Triplet, ""); err != nil {
			return ctx.Errors.Append(driver.KindDlltool, err).Err
		}
	}

	return nil
}

// linkDSOSymlinks creates the major/bare symlink chain phase 3
// computed, plus the .release/.dualver symlink recording a -release
// build's relationship to its real DSOFile, replacing any stale link
// at the same name first.
func linkDSOSymlinks(names linkplan.Filenames, dir string) error {
	mk := func(linkName, target string) error {
		if linkName == "" {
			return nil
		}
		path := filepath.Join(dir, linkName)
		os.Remove(path)
		return os.Symlink(target, path)
	}
	if err := mk(names.DSOSymlinkMaj, names.DSOFile); err != nil {
		return err
	}
	target := names.DSOSymlinkMaj
	if target == "" {
		target = names.DSOFile
	}
	if err := mk(names.DSOSymlinkBare, target); err != nil {
		return err
	}
	if err := mk(names.ReleaseLink, names.DSOFile); err != nil {
		return err
	}
	return mk(names.DualverLink, names.DSOFile)
}

func writeLAWrapper(plan *linkplan.Plan, opts linkplan.Options) error {
	libNames := plan.Filenames.DSOFile
	if plan.Filenames.DSOSymlinkMaj != "" {
		libNames = plan.Filenames.DSOFile + " " + plan.Filenames.DSOSymlinkMaj
	}
	if plan.Filenames.DSOSymlinkBare != "" {
		libNames += " " + plan.Filenames.DSOSymlinkBare
	}

	info := linkplan.LAFileInfo{
		LibraryNames: libNames,
		Dlname:       plan.Filenames.DSOFile,
		OldLibrary:   plan.Filenames.ArchiveFile,
		Installed:    false,
	}
	return os.WriteFile(plan.Filenames.LAFile, []byte(linkplan.RenderLAFile(info)), 0o644)
}

func buildExecutableOutput(ctx *driver.Context, cfg driver.LinkConfig) error {
	opts := linkplan.Options{
		Settings:  ctx.Settings,
		Flavor:    ctx.Host.Flavor,
		OutputDir: ".libs",
		Rpath:     cfg.Rpath,
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return ctx.Errors.AppendSystem(err).Err
	}

	plan, err := linkplan.BuildExecutable(opts, cfg.Output, ctx.Cargv)
	if err != nil {
		return ctx.Errors.Append(driver.KindLink, err).Err
	}

	res, err := spawn.Run(context.Background(), plan.Argv)
	if err != nil {
		return ctx.Errors.Append(driver.KindLink, err).Err
	}
	if res.ExitCode != 0 {
		return ctx.Errors.Append(driver.KindLink, fmt.Errorf("linker exited %d: %s", res.ExitCode, res.Stderr)).Err
	}
	return nil
}

func runCompile(ctx *driver.Context) error {
	if len(ctx.Cargv) == 0 {
		return ctx.Errors.Append(driver.KindNoInputSpec, fmt.Errorf("compile mode requires a compiler invocation")).Err
	}
	pic := append([]string{}, ctx.Cargv...)
	if ctx.Settings.PICSwitch != "" {
		pic = append(pic, ctx.Settings.PICSwitch)
	}
	if res, err := spawn.Run(context.Background(), pic); err != nil {
		return ctx.Errors.Append(driver.KindCompile, err).Err
	} else if res.ExitCode != 0 {
		return ctx.Errors.Append(driver.KindCompile, fmt.Errorf("PIC compile exited %d: %s", res.ExitCode, res.Stderr)).Err
	}
	if res, err := spawn.Run(context.Background(), ctx.Cargv); err != nil {
		return ctx.Errors.Append(driver.KindCompile, err).Err
	} else if res.ExitCode != 0 {
		return ctx.Errors.Append(driver.KindCompile, fmt.Errorf("non-PIC compile exited %d: %s", res.ExitCode, res.Stderr)).Err
	}
	return nil
}

func runAr(ctx *driver.Context) error {
	cfg, err := driver.ParseArFlags(ctx.Targv)
	if err != nil {
		return ctx.Errors.Append(driver.KindFlow, err).Err
	}
	if len(ctx.Cargv) == 0 {
		return ctx.Errors.Append(driver.KindNoInputSpec, fmt.Errorf("ar mode requires at least one archive")).Err
	}

	var metas []*archive.Meta
	var mappings []*rawio.Mapping
	defer func() {
		for _, m := range mappings {
			m.Unmap()
		}
	}()

	for _, path := range ctx.Cargv {
		mapping, err := rawio.Map(path, rawio.ProtRead)
		if err != nil {
			return ctx.Errors.AppendSystem(err).Err
		}
		mappings = append(mappings, mapping)

		meta, err := archive.ParseMeta(mapping.Bytes())
		if err != nil {
			return ctx.Errors.Append(driver.KindAr, err).Err
		}
		metas = append(metas, meta)
	}

	if cfg.Check {
		return nil
	}

	var regex *regexp.Regexp
	if cfg.Regex != "" {
		regex, err = regexp.Compile(cfg.Regex)
		if err != nil {
			return ctx.Errors.Append(driver.KindFlow, err).Err
		}
	}

	var out *archive.Meta
	switch {
	case cfg.Merge:
		out, err = archive.Merge(metas)
		if err != nil {
			return ctx.Errors.Append(driver.KindAr, err).Err
		}
	default:
		out = metas[0]
	}

	if cfg.Output != "" {
		if err := archive.Write(cfg.Output, out); err != nil {
			return ctx.Errors.Append(driver.KindAr, err).Err
		}
	}

	if cfg.Print != "" {
		printMembersOrSymbols(out, cfg.Print)
	}

	if cfg.Mapfile {
		symbols := archive.FromArmap(out.Armap)
		target := ctx.Host.Flavor
		fmt.Println(linkplan.EmitMapfile(symbols, linkplan.Options{Flavor: target}, regex))
	}

	return nil
}

func printMembersOrSymbols(meta *archive.Meta, which string) {
	switch which {
	case "symbols":
		for _, s := range archive.FromArmap(meta.Armap).Names() {
			fmt.Println(s)
		}
	default:
		for _, m := range meta.Members {
			fmt.Println(m.Name)
		}
	}
}

// filenamesFromLAFile reads laPath's wrapper text and rebuilds the
// Filenames set it names, so install/uninstall operate on the real
// archive/DSO/symlink chain a link invocation produced, not just the
// wrapper itself (slbt_exec_install.c / slbt_exec_uninstall.c read
// library_names/old_library out of the .la the same way).
func filenamesFromLAFile(laPath string) (linkplan.Filenames, error) {
	data, err := os.ReadFile(laPath)
	if err != nil {
		return linkplan.Filenames{}, err
	}
	info, err := linkplan.ParseLAFile(data)
	if err != nil {
		return linkplan.Filenames{}, err
	}

	names := linkplan.Filenames{
		LAFile:      filepath.Base(laPath),
		ArchiveFile: info.OldLibrary,
	}
	if libNames := strings.Fields(info.LibraryNames); len(libNames) > 0 {
		names.DSOFile = libNames[0]
		if len(libNames) > 1 {
			names.DSOSymlinkMaj = libNames[1]
		}
		if len(libNames) > 2 {
			names.DSOSymlinkBare = libNames[2]
		}
	}
	return names, nil
}

func runInstall(ctx *driver.Context) error {
	if len(ctx.Cargv) < 2 {
		return ctx.Errors.Append(driver.KindNoInputSpec, fmt.Errorf("install mode requires a source and a destination")).Err
	}
	src := ctx.Cargv[0]
	dest := ctx.Cargv[len(ctx.Cargv)-1]

	names, err := filenamesFromLAFile(src)
	if err != nil {
		return ctx.Errors.AppendSystem(err).Err
	}

	srcDir := filepath.Dir(src)
	plan := linkplan.PlanInstall(names, "", filepath.Dir(dest), "")
	for _, c := range plan.Copies {
		// The .la wrapper itself lives alongside its source path;
		// everything it names (archive, DSO, versioned DSOs) lives
		// under that directory's .libs/ (slbt_exec_install.c:387-389).
		source := filepath.Join(srcDir, c.Src)
		if c.Src != names.LAFile {
			source = filepath.Join(srcDir, ".libs", c.Src)
		}
		data, err := os.ReadFile(source)
		if err != nil {
			return ctx.Errors.AppendSystem(err).Err
		}
		if err := os.WriteFile(c.Dst, data, 0o644); err != nil {
			return ctx.Errors.AppendSystem(err).Err
		}
	}
	for _, s := range plan.Symlinks {
		os.Remove(s.LinkName)
		if err := os.Symlink(s.Target, s.LinkName); err != nil {
			return ctx.Errors.AppendSystem(err).Err
		}
	}
	return nil
}

func runUninstall(ctx *driver.Context) error {
	if len(ctx.Cargv) == 0 {
		return ctx.Errors.Append(driver.KindNoInputSpec, fmt.Errorf("uninstall mode requires a target .la file")).Err
	}
	target := ctx.Cargv[len(ctx.Cargv)-1]

	names, err := filenamesFromLAFile(target)
	if err != nil {
		return ctx.Errors.AppendSystem(err).Err
	}

	plan := linkplan.PlanUninstall(names, "", filepath.Dir(target), "")
	for _, p := range plan.Paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return ctx.Errors.AppendSystem(err).Err
		}
	}
	return nil
}

func runExecute(ctx *driver.Context) error {
	if len(ctx.Cargv) == 0 {
		return ctx.Errors.Append(driver.KindNoInputSpec, fmt.Errorf("execute mode requires a program to run")).Err
	}
	res, err := spawn.Run(context.Background(), ctx.Cargv)
	if err != nil {
		return ctx.Errors.Append(driver.KindLinkFlow, err).Err
	}
	if res.ExitCode != 0 {
		return ctx.Errors.Append(driver.KindLinkFlow, fmt.Errorf("child exited %d: %s", res.ExitCode, res.Stderr)).Err
	}
	return nil
}
