package linkplan

import (
	"path/filepath"
	"strings"
)

// emitDepsFile implements phase 4 (spec §4.11 "Phase 4 — dependency-
// file emission"): it normalizes the extra argv gathered from `.la`
// sidecars (collapsing duplicate `-L` entries, preserving first-seen
// order) and renders the `.slibtool.deps` sidecar content, one
// argument per line.
// RenderDepsFile is the exported form of emitDepsFile, for callers
// outside this package that need to write out Plan.ExtraArgs as a
// .slibtool.deps sidecar.
func RenderDepsFile(extra []string) string {
	return emitDepsFile(extra)
}

func emitDepsFile(extra []string) string {
	normalized := normalizeDeps(extra, "")
	var b strings.Builder
	for _, arg := range normalized {
		b.WriteString(arg)
		b.WriteString("\n")
	}
	return b.String()
}

// normalizeDeps implements phase 4's two post-processing passes (spec
// §4.11 "Phase 4"): a *normalization* pass rewrites an absolute -L
// path back to directory-relative form when it shares a non-root
// ancestor with baseDir, then a *compaction* pass drops duplicate
// -L entries, preserving first occurrence; every other entry is kept
// as often as it appears. baseDir == "" skips the
// normalization pass (used when the caller has no target directory to
// compare against, e.g. re-rendering an already-normalized Plan).
func normalizeDeps(extra []string, baseDir string) []string {
	seen := make(map[string]bool, len(extra))
	var out []string
	for _, arg := range extra {
		arg = relativizeDepArg(arg, baseDir)
		if seen[arg] && strings.HasPrefix(arg, "-L") {
			continue
		}
		seen[arg] = true
		out = append(out, arg)
	}
	return out
}

// relativizeDepArg rewrites a "-L<absolute path>" entry to
// "-L<relative path>" when path and baseDir share a common ancestor
// deeper than the filesystem root; every other entry (including
// "::path/to/foo.a" convenience-archive references, which are always
// recorded relative to the dependency's own directory) passes through
// unchanged.
func relativizeDepArg(arg, baseDir string) string {
	if baseDir == "" || !strings.HasPrefix(arg, "-L") {
		return arg
	}
	path := strings.TrimPrefix(arg, "-L")
	if !filepath.IsAbs(path) || !filepath.IsAbs(baseDir) {
		return arg
	}
	if !shareNonRootAncestor(baseDir, path) {
		return arg
	}
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return arg
	}
	return "-L" + rel
}

// shareNonRootAncestor reports whether a and b have a common ancestor
// directory deeper than "/", so two paths that only meet at the
// filesystem root are left absolute instead of rewritten to a long
// chain of "..".
func shareNonRootAncestor(a, b string) bool {
	av := strings.Split(filepath.Clean(a), string(filepath.Separator))
	bv := strings.Split(filepath.Clean(b), string(filepath.Separator))
	common := 0
	for i := 0; i < len(av) && i < len(bv); i++ {
		if av[i] != bv[i] {
			break
		}
		common++
	}
	return common > 1
}
