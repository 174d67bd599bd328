package linkplan

import "path/filepath"

// InstallPlan is the copy-then-relink sequence for installing a
// library built from Filenames under destdir+prefix (spec.md §8 end-
// to-end scenario 6; SPEC_FULL.md §4, grounded on
// `slbt_exec_install.c`'s copy-then-relink sequencing). No macro
// expansion is performed; destdir and prefix are plain path strings.
type InstallPlan struct {
	Copies   []FileCopy
	Symlinks []Symlink
}

// FileCopy is one real-file installation step.
type FileCopy struct {
	Src string
	Dst string
}

// Symlink is one "ln -s target linkname" step.
type Symlink struct {
	Target   string
	LinkName string
}

// PlanInstall computes the copy+symlink sequence for names under
// destdir/prefix/libdir.
func PlanInstall(names Filenames, destdir, prefix, libdir string) InstallPlan {
	dir := filepath.Join(destdir, prefix, libdir)
	var plan InstallPlan

	if names.ArchiveFile != "" {
		plan.Copies = append(plan.Copies, FileCopy{Src: names.ArchiveFile, Dst: filepath.Join(dir, names.ArchiveFile)})
	}
	if names.LAFile != "" {
		plan.Copies = append(plan.Copies, FileCopy{Src: names.LAFile, Dst: filepath.Join(dir, names.LAFile)})
	}
	if names.DSOFile != "" {
		plan.Copies = append(plan.Copies, FileCopy{Src: names.DSOFile, Dst: filepath.Join(dir, names.DSOFile)})
		if names.DSOSymlinkMaj != "" {
			plan.Symlinks = append(plan.Symlinks, Symlink{Target: names.DSOFile, LinkName: filepath.Join(dir, names.DSOSymlinkMaj)})
		}
		if names.DSOSymlinkBare != "" {
			target := names.DSOSymlinkMaj
			if target == "" {
				target = names.DSOFile
			}
			plan.Symlinks = append(plan.Symlinks, Symlink{Target: target, LinkName: filepath.Join(dir, names.DSOSymlinkBare)})
		}
	}
	if names.ImplibDefault != "" {
		plan.Copies = append(plan.Copies, FileCopy{Src: names.ImplibVersion, Dst: filepath.Join(dir, names.ImplibVersion)})
		plan.Symlinks = append(plan.Symlinks,
			Symlink{Target: names.ImplibVersion, LinkName: filepath.Join(dir, names.ImplibPrimary)},
			Symlink{Target: names.ImplibVersion, LinkName: filepath.Join(dir, names.ImplibDefault)},
		)
	}

	return plan
}

// UninstallPlan is the inverse of InstallPlan: every real file and
// symlink PlanInstall would have created, in removal order
// (symlinks first, so a partially-applied removal never leaves a
// dangling link pointing at an already-deleted real file).
type UninstallPlan struct {
	Paths []string
}

// PlanUninstall computes every path under destdir/prefix/libdir that
// PlanInstall(names, ...) would have created.
func PlanUninstall(names Filenames, destdir, prefix, libdir string) UninstallPlan {
	install := PlanInstall(names, destdir, prefix, libdir)

	var paths []string
	for _, s := range install.Symlinks {
		paths = append(paths, s.LinkName)
	}
	for _, c := range install.Copies {
		paths = append(paths, c.Dst)
	}
	return UninstallPlan{Paths: paths}
}
