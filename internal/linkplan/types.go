// Package linkplan drives the six-phase link-orchestration pipeline:
// argument adjustment, output policy, SONAME/versioning, dependency
// emission, PE import libraries, and executable wrapper generation.
package linkplan

import "github.com/slibtool/gosbt/internal/host"

// OutputKind selects which output policy phase 2 applies. Executable
// output (spec's end-to-end scenario 5) is handled separately by
// BuildExecutable, since it needs a program name rather than a
// libname and produces a wrapper script, not a Filenames set.
type OutputKind int

const (
	OutputStatic OutputKind = iota
	OutputShared
	OutputModule
)

// Version holds the `-version-info current:revision:age` triple, or
// the simpler `-version-number major:minor:revision` form; exactly
// one of the two input forms is ever set by the caller, and both
// resolve to the same Major/Minor/Revision fields consumed downstream.
type Version struct {
	Major    int
	Minor    int
	Revision int
	Set      bool
}

// Options is the caller-supplied, already-parsed configuration for
// one link invocation (the fields of spec.md's "Exec context" that
// bear on filename synthesis and phase behavior).
type Options struct {
	LibName       string // e.g. "foo" for libfoo
	Release       string // -release RELEASE, empty if unset
	Version       Version
	AvoidVersion  bool
	Kind          OutputKind
	Settings      host.Settings
	Flavor        host.Flavor
	OutputDir     string // directory housing the primary output, default "."
	NoUndefined   bool
	ExportDynamic bool
	Rpath         string
	DlPreopen     []string
	DlOpen        []string
}

// Filenames is every path phase 2/3 synthesizes for one Options value
// (spec §4.11's filename list plus §8's worked example).
type Filenames struct {
	ArchiveFile    string // libNAME.a
	LAFile         string // libNAME.la
	LAIFile        string // libNAME.lai
	DSOFile        string // primary DSO name (versioned or release-renamed)
	DSOSymlinkMaj  string // libNAME.so.MAJOR (or equivalent)
	DSOSymlinkBare string // libNAME.so (or equivalent), only when present
	DefFile        string // libNAME.def, PE only
	RpathFile      string // .slibtool.rpath sidecar
	DepsFile       string // .slibtool.deps sidecar
	ImplibDefault  string // libNAME.lib.a, PE only
	ImplibPrimary  string // libNAME-REL.MAJOR.lib.a, PE only
	ImplibVersion  string // libNAME-REL.MAJOR.MINOR.REVISION.lib.a, PE only
	DlpreopenFile  string // .dlopen.c, when -dlpreopen/-dlopen present
	ReleaseLink    string // name of the ".release" symlink to DSOFile, -release set without a version
	DualverLink    string // name of the ".dualver" symlink to DSOFile, -release and a version both set
}

// Plan is the result of running phases 1-4 over Options (see Build): the synthesized filenames, the adjusted compiler/linker
// argv, and any extra linker arguments gathered from sidecars.
type Plan struct {
	Filenames Filenames
	Argv      []string
	ExtraArgs []string
}
