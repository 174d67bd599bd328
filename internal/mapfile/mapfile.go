// Package mapfile formats a linker version script from a symbol
// list, with host-specific syntax: GNU/ELF version scripts, PE
// EXPORTS files, and Mach-O export lists (spec §4.8).
package mapfile

import (
	"regexp"
	"sort"
	"strings"

	"github.com/slibtool/gosbt/internal/host"
)

// Options controls how a mapfile is emitted.
type Options struct {
	Flavor host.Flavor
	// Regex, if non-nil, filters which symbols are emitted.
	Regex *regexp.Regexp
	// Sort requests emission in sorted order; for COFF targets the
	// comparator strips a leading ".weak.PREFIX." before comparing,
	// matching the source's weak-symbol-aware sort.
	Sort bool
}

// Emit formats syms per opts.Flavor's host-specific switch (spec
// §4.8, with the worked examples in spec §8 "Mapfile emission
// examples").
func Emit(syms []string, opts Options) string {
	filtered := syms
	if opts.Regex != nil {
		filtered = nil
		for _, s := range syms {
			if opts.Regex.MatchString(s) {
				filtered = append(filtered, s)
			}
		}
	}

	if opts.Sort {
		filtered = sortSymbols(filtered, opts.Flavor)
	}

	switch {
	case opts.Flavor.IsCOFF():
		return emitCOFF(filtered)
	case opts.Flavor.IsMachO():
		return emitMachO(filtered)
	default:
		return emitELF(filtered)
	}
}

func sortSymbols(syms []string, fl host.Flavor) []string {
	out := make([]string, len(syms))
	copy(out, syms)
	key := func(s string) string { return s }
	if fl.IsCOFF() {
		key = stripWeakPrefix
	}
	sort.Slice(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}

func stripWeakPrefix(s string) string {
	const prefix = ".weak."
	if !strings.HasPrefix(s, prefix) {
		return s
	}
	rest := s[len(prefix):]
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		return rest[i+1:]
	}
	return rest
}

// emitCOFF formats a PE/COFF .def-style EXPORTS list. Symbols
// beginning with __imp_ or .refptr. are suppressed entirely; a
// .weak.PREFIX.NAME symbol is rewritten as "PREFIX = NAME".
func emitCOFF(syms []string) string {
	var b strings.Builder
	b.WriteString("EXPORTS\n")
	for _, s := range syms {
		if strings.HasPrefix(s, "__imp_") || strings.HasPrefix(s, ".refptr.") {
			continue
		}
		if strings.HasPrefix(s, ".weak.") {
			rest := s[len(".weak."):]
			i := strings.IndexByte(rest, '.')
			if i >= 0 {
				weakName, targetName := rest[:i], rest[i+1:]
				b.WriteString("    " + weakName + " = " + targetName + "\n")
				continue
			}
		}
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}

// emitMachO formats a Mach-O export list: a comment line, then one
// underscore-prefixed symbol per line. Every symbol is emitted
// unconditionally; no filtering rules apply beyond opts.Regex.
func emitMachO(syms []string) string {
	var b strings.Builder
	b.WriteString("# export_list, underscores prepended\n")
	for _, s := range syms {
		b.WriteString("_")
		b.WriteString(s)
		b.WriteString("\n")
	}
	return b.String()
}

// emitELF formats a GNU/ELF linker version script.
func emitELF(syms []string) string {
	var b strings.Builder
	b.WriteString("{\n\tglobal:\n")
	for _, s := range syms {
		b.WriteString("\t\t")
		b.WriteString(s)
		b.WriteString(";\n")
	}
	b.WriteString("\n\tlocal:\n\t\t*;\n};\n")
	return b.String()
}
