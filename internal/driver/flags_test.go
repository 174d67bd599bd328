package driver

import "testing"

func TestParseLinkFlagsBasic(t *testing.T) {
	cfg, err := ParseLinkFlags([]string{
		"-o", "libfoo.la",
		"-rpath", "/usr/lib",
		"-version-info", "1:2:3",
		"-dlopen", "plugin1.la",
		"-dlopen", "plugin2.la",
	})
	if err != nil {
		t.Fatalf("ParseLinkFlags: %v", err)
	}
	if cfg.Output != "libfoo.la" || cfg.Rpath != "/usr/lib" || cfg.VersionInfo != "1:2:3" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.DlOpen) != 2 || cfg.DlOpen[0] != "plugin1.la" || cfg.DlOpen[1] != "plugin2.la" {
		t.Fatalf("unexpected dlopen list: %v", cfg.DlOpen)
	}
}

func TestParseLinkFlagsBooleans(t *testing.T) {
	cfg, err := ParseLinkFlags([]string{"-static", "-avoid-version", "-export-dynamic"})
	if err != nil {
		t.Fatalf("ParseLinkFlags: %v", err)
	}
	if !cfg.Static || !cfg.AvoidVersion || !cfg.ExportDynamic {
		t.Fatalf("expected all three booleans set, got %+v", cfg)
	}
	if cfg.Shared || cfg.Module {
		t.Fatalf("unexpected booleans set: %+v", cfg)
	}
}

func TestParseArFlagsBareWprint(t *testing.T) {
	cfg, err := ParseArFlags([]string{"-Wprint", "-Wverbose"})
	if err != nil {
		t.Fatalf("ParseArFlags: %v", err)
	}
	if cfg.Print != "members" {
		t.Fatalf("Print = %q, want members (bare -Wprint default)", cfg.Print)
	}
	if !cfg.Verbose {
		t.Fatalf("expected Verbose set")
	}
}

func TestParseArFlagsExplicitWprintSymbols(t *testing.T) {
	cfg, err := ParseArFlags([]string{"-Wprint=symbols", "-Woutput=out.a", "-Wmerge"})
	if err != nil {
		t.Fatalf("ParseArFlags: %v", err)
	}
	if cfg.Print != "symbols" {
		t.Fatalf("Print = %q, want symbols", cfg.Print)
	}
	if cfg.Output != "out.a" || !cfg.Merge {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}
