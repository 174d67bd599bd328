package archive

import "sort"

// SymbolList is a small typed wrapper around a symbol-name slice,
// shared by the mapfile emitter and `--mode=ar -Wprint=symbols`
// (SPEC_FULL §4, grounded on slbt_symlist_ctx.c / slbt_archive_symfile.c).
type SymbolList struct {
	names  []string
	sorted bool
}

// NewSymbolList wraps names without copying or sorting them.
func NewSymbolList(names []string) *SymbolList {
	return &SymbolList{names: names}
}

// FromArmap collects every symbol name in armap table order. A nil
// armap yields an empty list.
func FromArmap(am *Armap) *SymbolList {
	return NewSymbolList(am.Symbols())
}

// Names returns the underlying slice; callers must not mutate it.
func (s *SymbolList) Names() []string {
	if s == nil {
		return nil
	}
	return s.names
}

// Sorted returns a SymbolList over a freshly sorted copy, leaving the
// receiver untouched.
func (s *SymbolList) Sorted(less func(a, b string) bool) *SymbolList {
	out := make([]string, len(s.names))
	copy(out, s.names)
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return &SymbolList{names: out, sorted: true}
}
