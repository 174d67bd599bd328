package linkplan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/slibtool/gosbt/internal/host"
)

func TestFilenameSynthesisELFWorkedExample(t *testing.T) {
	opts := Options{
		LibName:  "foo",
		Release:  "1.2",
		Version:  Version{Major: 3, Minor: 4, Revision: 5, Set: true},
		Kind:     OutputShared,
		Settings: host.SettingsFor(host.FlavorDefault),
		Flavor:   host.FlavorDefault,
	}
	names := synthesizeFilenames(opts)

	if names.ArchiveFile != "libfoo.a" {
		t.Errorf("ArchiveFile = %q, want libfoo.a", names.ArchiveFile)
	}
	if names.LAFile != "libfoo.la" {
		t.Errorf("LAFile = %q, want libfoo.la", names.LAFile)
	}
	if names.DSOFile != "libfoo-1.2.so.3.4.5" {
		t.Errorf("DSOFile = %q, want libfoo-1.2.so.3.4.5", names.DSOFile)
	}
	if names.DSOSymlinkMaj != "libfoo-1.2.so.3" {
		t.Errorf("DSOSymlinkMaj = %q, want libfoo-1.2.so.3", names.DSOSymlinkMaj)
	}
	if names.DSOSymlinkBare != "libfoo.so" {
		t.Errorf("DSOSymlinkBare = %q, want libfoo.so", names.DSOSymlinkBare)
	}
	if names.DualverLink != "libfoo.so.dualver" {
		t.Errorf("DualverLink = %q, want libfoo.so.dualver", names.DualverLink)
	}
	if names.ReleaseLink != "" {
		t.Errorf("ReleaseLink = %q, want empty when a version is also set", names.ReleaseLink)
	}
}

func TestFilenameSynthesisReleaseWithoutVersion(t *testing.T) {
	opts := Options{
		LibName:  "foo",
		Release:  "1.2",
		Kind:     OutputShared,
		Settings: host.SettingsFor(host.FlavorDefault),
		Flavor:   host.FlavorDefault,
	}
	names := synthesizeFilenames(opts)

	if names.DSOFile != "libfoo-1.2.so.0.0.0" {
		t.Errorf("DSOFile = %q, want libfoo-1.2.so.0.0.0", names.DSOFile)
	}
	if names.DSOSymlinkMaj != "libfoo-1.2.so.0" {
		t.Errorf("DSOSymlinkMaj = %q, want libfoo-1.2.so.0", names.DSOSymlinkMaj)
	}
	if names.ReleaseLink != "libfoo.so.release" {
		t.Errorf("ReleaseLink = %q, want libfoo.so.release", names.ReleaseLink)
	}
	if names.DualverLink != "" {
		t.Errorf("DualverLink = %q, want empty when no version is set", names.DualverLink)
	}
}

func TestFilenameSynthesisAvoidVersion(t *testing.T) {
	opts := Options{
		LibName:      "foo",
		AvoidVersion: true,
		Kind:         OutputShared,
		Settings:     host.SettingsFor(host.FlavorDefault),
		Flavor:       host.FlavorDefault,
	}
	names := synthesizeFilenames(opts)
	if names.DSOFile != "libfoo.so" {
		t.Errorf("DSOFile = %q, want libfoo.so", names.DSOFile)
	}
	if names.DSOSymlinkMaj != "" || names.DSOSymlinkBare != "" {
		t.Errorf("expected no symlinks on -avoid-version, got maj=%q bare=%q", names.DSOSymlinkMaj, names.DSOSymlinkBare)
	}
}

func TestFilenameSynthesisDarwin(t *testing.T) {
	opts := Options{
		LibName:  "foo",
		Release:  "1.2",
		Version:  Version{Major: 3, Minor: 4, Revision: 5, Set: true},
		Kind:     OutputShared,
		Settings: host.SettingsFor(host.FlavorDarwin),
		Flavor:   host.FlavorDarwin,
	}
	names := synthesizeFilenames(opts)
	if names.DSOFile != "libfoo-1.2.3.4.5.dylib" {
		t.Errorf("DSOFile = %q, want libfoo-1.2.3.4.5.dylib", names.DSOFile)
	}
}

func TestResolveLoObjectPICAndNonPIC(t *testing.T) {
	if got := resolveLoObject("foo.lo", true); got != filepath.Join(".libs", "foo.o") {
		t.Errorf("pic: got %q", got)
	}
	if got := resolveLoObject("foo.lo", false); got != "foo.o" {
		t.Errorf("non-pic: got %q", got)
	}
}

func TestAdjustArgsRewritesLaForStatic(t *testing.T) {
	out, _, err := adjustArgs([]string{"main.lo", "libfoo.la"}, true, true)
	if err != nil {
		t.Fatalf("adjustArgs: %v", err)
	}
	found := false
	for _, a := range out {
		if a == filepath.Join(".libs", "libfoo.a") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected static rewrite of libfoo.la, got %v", out)
	}
}

func TestAdjustArgsRewritesLaForSharedCompanion(t *testing.T) {
	out, _, err := adjustArgs([]string{"libfoo.la"}, true, false)
	if err != nil {
		t.Fatalf("adjustArgs: %v", err)
	}
	want := []string{"-L" + filepath.Join(".libs"), "-lfoo"}
	if len(out) != 2 || out[0] != want[0] || out[1] != want[1] {
		t.Fatalf("got %v, want %v", out, want)
	}
}

func TestAdjustArgsReadsSidecars(t *testing.T) {
	dir := t.TempDir()
	la := filepath.Join(dir, "libfoo.la")
	if err := os.WriteFile(filepath.Join(dir, "libfoo.la.slibtool.deps"), []byte("-lbar -lbaz\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "libfoo.la.slibtool.rpath"), []byte("/opt/lib\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, extra, err := adjustArgs([]string{la}, true, true)
	if err != nil {
		t.Fatalf("adjustArgs: %v", err)
	}
	joined := extra
	wantContains := func(s string) bool {
		for _, e := range joined {
			if e == s {
				return true
			}
		}
		return false
	}
	if !wantContains("-lbar") || !wantContains("-lbaz") {
		t.Fatalf("missing deps sidecar args, got %v", extra)
	}
	if !wantContains("/opt/lib") || !wantContains("-Wl,-rpath") {
		t.Fatalf("missing rpath sidecar args, got %v", extra)
	}
}

func TestAdjustArgsSynthesizesConvenienceArchiveRef(t *testing.T) {
	dir := t.TempDir()
	la := filepath.Join(dir, "libconv.la")
	info := LAFileInfo{OldLibrary: "libconv.a"}
	if err := os.WriteFile(la, []byte(RenderLAFile(info)), 0o644); err != nil {
		t.Fatal(err)
	}

	out, extra, err := adjustArgs([]string{la}, true, false)
	if err != nil {
		t.Fatalf("adjustArgs: %v", err)
	}
	for _, a := range out {
		if strings.HasPrefix(a, "-l") || strings.HasPrefix(a, "-L") {
			t.Fatalf("expected no -L/-l rewrite for a convenience library, got %v", out)
		}
	}
	want := "::" + filepath.Join(dir, ".libs", "libconv.a")
	found := false
	for _, e := range extra {
		if e == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %q among extra args, got %v", want, extra)
	}
}

func TestPlanInstallAndUninstallSymmetry(t *testing.T) {
	names := Filenames{
		ArchiveFile:    "libfoo.a",
		LAFile:         "libfoo.la",
		DSOFile:        "libfoo.so.1.0.0",
		DSOSymlinkMaj:  "libfoo.so.1",
		DSOSymlinkBare: "libfoo.so",
	}
	install := PlanInstall(names, "/destdir", "/usr/local", "lib")
	uninstall := PlanUninstall(names, "/destdir", "/usr/local", "lib")

	if len(uninstall.Paths) != len(install.Copies)+len(install.Symlinks) {
		t.Fatalf("uninstall plan size mismatch: %d vs %d", len(uninstall.Paths), len(install.Copies)+len(install.Symlinks))
	}
	// Symlinks must be listed before the real files they point at, so
	// an interrupted uninstall never leaves a dangling link referring
	// to an already-removed real file's replacement.
	if uninstall.Paths[0] != install.Symlinks[0].LinkName {
		t.Fatalf("expected symlinks removed first, got %v", uninstall.Paths)
	}
}
