package linkplan

import (
	"regexp"

	"github.com/slibtool/gosbt/internal/archive"
	"github.com/slibtool/gosbt/internal/mapfile"
)

// EmitMapfile renders the export/version-script content for a link
// invocation's public symbols, wiring archive.SymbolList (armap- or
// command-line-supplied symbol sources) into the mapfile emitter.
func EmitMapfile(symbols *archive.SymbolList, opts Options, regex *regexp.Regexp) string {
	return mapfile.Emit(symbols.Names(), mapfile.Options{
		Flavor: opts.Flavor,
		Regex:  regex,
		Sort:   true,
	})
}
