package linkplan

import "fmt"

// synthesizeFilenames implements phase 3 (spec §4.11 "Phase 3 —
// SONAME & versioning") together with the filename list spec §4.11
// names and the worked example in spec §8 ("Filename synthesis").
func synthesizeFilenames(opts Options) Filenames {
	lib := "lib" + opts.LibName
	s := opts.Settings

	names := Filenames{
		ArchiveFile: lib + s.ArchiveSuffix,
		LAFile:      lib + ".la",
		LAIFile:     lib + ".lai",
	}

	if s.ImageFormat == "pe" {
		names.DefFile = lib + ".def"
	}

	dso, symMaj, symBare, relLink, dualLink := dsoFilenames(lib, opts)
	names.DSOFile = dso
	names.DSOSymlinkMaj = symMaj
	names.DSOSymlinkBare = symBare
	names.ReleaseLink = relLink
	names.DualverLink = dualLink

	if s.ImageFormat == "pe" {
		names.ImplibDefault, names.ImplibPrimary, names.ImplibVersion = implibFilenames(lib, opts)
	}

	if len(opts.DlPreopen) > 0 || len(opts.DlOpen) > 0 {
		names.DlpreopenFile = ".dlopen.c"
	}

	names.RpathFile = names.LAFile + ".slibtool.rpath"
	names.DepsFile = names.LAFile + ".slibtool.deps"

	return names
}

// dsoFilenames computes the primary DSO name and its symlink chain.
// On -avoid-version, only the bare "libNAME.so" (or flavor-equivalent)
// name is produced. -release renames the primary file
// "libNAME-RELEASE.so.MAJOR.MINOR.REVISION" (ELF) or the Darwin/PE
// equivalent; the MAJOR symlink/soname is release-aware too
// ("libNAME-RELEASE.so.MAJOR"), matching
// slbt_linkcmd_dsolib.c:137-146 and slbt_exec_ctx.c's dsorellnkname.
// A bare-named ".release" symlink records the relationship when
// -release is set without a version; when both -release and a
// version are present, a ".dualver" symlink records the dual form
// instead (slbt_exec_link.c's slbt_exec_link_create_library_symlink).
func dsoFilenames(lib string, opts Options) (dso, symMaj, symBare, relLink, dualLink string) {
	s := opts.Settings
	bare := lib + s.DSOInfix + s.DSOFussix

	if opts.AvoidVersion {
		return bare, "", "", "", ""
	}

	v := opts.Version

	var majName, verName string
	switch {
	case s.DSOInfix == "" && s.DSOFussix == ".dylib": // Darwin
		majName = fmt.Sprintf("%s.%d.dylib", lib, v.Major)
		verName = fmt.Sprintf("%s.%d.%d.%d.dylib", lib, v.Major, v.Minor, v.Revision)
	case s.DSOFussix == ".dll" || s.DSOFussix == ".exe": // PE family
		majName = fmt.Sprintf("%s-%d.dll", lib, v.Major)
		verName = fmt.Sprintf("%s-%d.%d.%d.dll", lib, v.Major, v.Minor, v.Revision)
	default: // ELF: libNAME.so.MAJOR[.MINOR.REVISION]
		majName = fmt.Sprintf("%s.so.%d", lib, v.Major)
		verName = fmt.Sprintf("%s.so.%d.%d.%d", lib, v.Major, v.Minor, v.Revision)
	}

	if opts.Release != "" {
		var relMajName string
		switch {
		case s.DSOInfix == "" && s.DSOFussix == ".dylib":
			dso = fmt.Sprintf("%s-%s.%d.%d.%d.dylib", lib, opts.Release, v.Major, v.Minor, v.Revision)
			relMajName = fmt.Sprintf("%s-%s.%d.dylib", lib, opts.Release, v.Major)
		case s.DSOFussix == ".dll" || s.DSOFussix == ".exe":
			dso = fmt.Sprintf("%s-%s.%d.%d.%d.dll", lib, opts.Release, v.Major, v.Minor, v.Revision)
			relMajName = fmt.Sprintf("%s-%s.%d.dll", lib, opts.Release, v.Major)
		default:
			dso = fmt.Sprintf("%s-%s.so.%d.%d.%d", lib, opts.Release, v.Major, v.Minor, v.Revision)
			relMajName = fmt.Sprintf("%s-%s.so.%d", lib, opts.Release, v.Major)
		}
		if v.Set {
			dualLink = bare + ".dualver"
		} else {
			relLink = bare + ".release"
		}
		return dso, relMajName, bare, relLink, dualLink
	}

	return verName, majName, bare, "", ""
}

func implibFilenames(lib string, opts Options) (deflt, primary, version string) {
	v := opts.Version
	deflt = lib + ".lib.a"
	rel := opts.Release
	if rel == "" {
		rel = fmt.Sprintf("%d", v.Major)
	}
	primary = fmt.Sprintf("%s-%s.%d.lib.a", lib, rel, v.Major)
	version = fmt.Sprintf("%s-%s.%d.%d.%d.lib.a", lib, rel, v.Major, v.Minor, v.Revision)
	return deflt, primary, version
}
