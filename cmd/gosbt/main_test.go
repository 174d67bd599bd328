package main

import (
	"testing"

	"github.com/slibtool/gosbt/internal/driver"
	"github.com/slibtool/gosbt/internal/host"
)

func TestExtractOptEqualsForm(t *testing.T) {
	v, ok := extractOpt([]string{"--mode=ar", "-Wmerge"}, "mode")
	if !ok || v != "ar" {
		t.Fatalf("got %q,%v", v, ok)
	}
}

func TestExtractOptSpaceForm(t *testing.T) {
	v, ok := extractOpt([]string{"-host", "x86_64-pc-linux-gnu"}, "host")
	if !ok || v != "x86_64-pc-linux-gnu" {
		t.Fatalf("got %q,%v", v, ok)
	}
}

func TestExtractOptAbsent(t *testing.T) {
	if _, ok := extractOpt([]string{"-o", "foo"}, "mode"); ok {
		t.Fatalf("expected no match")
	}
}

func TestParseVersion(t *testing.T) {
	v, err := parseVersion("3:4:5")
	if err != nil {
		t.Fatalf("parseVersion: %v", err)
	}
	if v.Major != 3 || v.Minor != 4 || v.Revision != 5 || !v.Set {
		t.Fatalf("got %+v", v)
	}
}

func TestParseVersionEmpty(t *testing.T) {
	v, err := parseVersion("")
	if err != nil {
		t.Fatalf("parseVersion: %v", err)
	}
	if v.Set {
		t.Fatalf("expected unset version for empty input")
	}
}

func TestParseVersionMalformed(t *testing.T) {
	if _, err := parseVersion("1:2"); err == nil {
		t.Fatalf("expected error for malformed version")
	}
}

func TestExtractLibName(t *testing.T) {
	settings := host.SettingsFor(host.FlavorDefault)
	if got := extractLibName("libfoo.la", settings); got != "foo" {
		t.Fatalf("got %q", got)
	}
	if got := extractLibName(".libs/libbar.a", settings); got != "bar" {
		t.Fatalf("got %q", got)
	}
}

func TestExitCodeForUsageVsOther(t *testing.T) {
	ctx := driver.NewContext(driver.ModeLink, host.Params{})
	ctx.Errors.Append(driver.KindNoInputSpec, errString("missing input"))
	if got := exitCodeFor(ctx); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}

	ctx2 := driver.NewContext(driver.ModeLink, host.Params{})
	ctx2.Errors.Append(driver.KindLink, errString("linker failed"))
	if got := exitCodeFor(ctx2); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}

	ctx3 := driver.NewContext(driver.ModeLink, host.Params{})
	if got := exitCodeFor(ctx3); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestBasenameAliasesResolveExpectedModes(t *testing.T) {
	cases := map[string]driver.Mode{
		"gosbt-shared": driver.ModeLink,
		"gosbt-static": driver.ModeLink,
		"rlibtool":     driver.ModeLink,
		"dlibtool":     driver.ModeLink,
		"clibtool":     driver.ModeCompile,
		"stoolie":      driver.ModeStoolie,
		"gosbt-ar":     driver.ModeAr,
	}
	for base, want := range cases {
		alias, ok := basenameAliases[base]
		if !ok {
			t.Fatalf("missing alias for %q", base)
		}
		if alias.mode != want {
			t.Fatalf("%q: got mode %q, want %q", base, alias.mode, want)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
