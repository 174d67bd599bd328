package driver

import (
	"github.com/slibtool/gosbt/internal/host"
)

// Mode is the top-level invocation mode (spec.md §6's
// compile/link/install/uninstall/execute/ar/config/info/stoolie set).
type Mode string

const (
	ModeCompile   Mode = "compile"
	ModeLink      Mode = "link"
	ModeInstall   Mode = "install"
	ModeUninstall Mode = "uninstall"
	ModeExecute   Mode = "execute"
	ModeAr        Mode = "ar"
	ModeConfig    Mode = "config"
	ModeInfo      Mode = "info"
	ModeStoolie   Mode = "stoolie"
)

// Context is the process-wide, read-mostly configuration for a
// single invocation: mode, host/flavor parameters, verbosity, the
// three argv views produced by Split, and the bounded error vector.
// Nothing here is a package-level global; every constructor that can
// fail takes *Context and appends to Errors.
type Context struct {
	Mode      Mode
	Host      host.Params
	Settings  host.Settings
	Verbosity int
	NoColor   bool

	Dargv []string
	Targv []string
	Cargv []string

	Errors ErrorVector
}

// NewContext builds a Context for mode, with host/flavor parameters
// already derived by the caller (typically via host.DeriveParams).
func NewContext(mode Mode, hostParams host.Params) *Context {
	return &Context{
		Mode:     mode,
		Host:     hostParams,
		Settings: host.SettingsFor(hostParams.Flavor),
	}
}
