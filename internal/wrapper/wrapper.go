// Package wrapper generates the shell launcher for an uninstalled
// build-tree executable, and writes it to disk atomically. The script
// re-exports the caller's loader-path variable and execs the real
// binary; it adds no build-tree library directory to that variable.
package wrapper

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Options configures one wrapper script.
type Options struct {
	ProgramName   string // the wrapper's own basename, e.g. "myprog"
	LoaderPathEnv string // e.g. "LD_LIBRARY_PATH", "DYLD_LIBRARY_PATH", "PATH"
	RealDir       string // directory (relative to cwd, or absolute) housing the real binary
	RealName      string // basename of the real binary under RealDir
}

const scriptTemplate = `#!/bin/sh
# libtool compatible executable wrapper

if [ -z "${{.LoaderPathEnv}}" ]; then
	DL_PATH=
	LCOLON=
else
	DL_PATH=
	LCOLON=':'
fi

DL_PATH="${DL_PATH}${LCOLON}${{.LoaderPathEnv}}"

export {{.LoaderPathEnv}}="$DL_PATH"

if [ "$(basename "$0")" = "{{.ProgramName}}.exe.wrapper" ]; then
	program="$1"; shift
	exec "$program" "$@"
fi

exec {{.RealDir}}/{{.RealName}} "$@"
`

var tmpl = template.Must(template.New("wrapper").Parse(scriptTemplate))

// Render formats the wrapper script text for opts.
func Render(opts Options) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, opts); err != nil {
		return "", fmt.Errorf("wrapper: render: %w", err)
	}
	return buf.String(), nil
}

// Write renders opts and atomically writes the result to path
// (0755, executable), via a sibling temp file and rename.
func Write(path string, opts Options) error {
	text, err := Render(opts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmpName := filepath.Join(dir, ".gosbt-wrap-"+strings.ReplaceAll(filepath.Base(path), "/", "_")+".tmp")

	if err := os.WriteFile(tmpName, []byte(text), 0o755); err != nil {
		return fmt.Errorf("wrapper: write temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("wrapper: rename: %w", err)
	}
	return nil
}
