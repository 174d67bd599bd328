package mapfile

import (
	"regexp"
	"strings"
	"testing"

	"github.com/slibtool/gosbt/internal/host"
)

func TestEmitELF(t *testing.T) {
	out := Emit([]string{"foo", "bar"}, Options{Flavor: host.FlavorDefault})
	want := "{\n\tglobal:\n\t\tfoo;\n\t\tbar;\n\n\tlocal:\n\t\t*;\n};\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestEmitCOFFSuppressesImportAndRefptr(t *testing.T) {
	syms := []string{"foo", "__imp_foo", ".refptr.foo", "bar"}
	out := Emit(syms, Options{Flavor: host.FlavorMingw})
	if !strings.HasPrefix(out, "EXPORTS\n") {
		t.Fatalf("missing EXPORTS header: %q", out)
	}
	if strings.Contains(out, "__imp_foo") || strings.Contains(out, ".refptr.foo") {
		t.Fatalf("suppressed symbol leaked into output: %q", out)
	}
	if !strings.Contains(out, "foo") || !strings.Contains(out, "bar") {
		t.Fatalf("expected symbols missing: %q", out)
	}
}

func TestEmitCOFFWeakRewrite(t *testing.T) {
	out := Emit([]string{".weak.foo.bar"}, Options{Flavor: host.FlavorMingw})
	if !strings.Contains(out, "foo = bar") {
		t.Fatalf("weak symbol not rewritten: %q", out)
	}
}

func TestEmitMachOUnderscorePrefixed(t *testing.T) {
	out := Emit([]string{"foo", "bar"}, Options{Flavor: host.FlavorDarwin})
	want := "# export_list, underscores prepended\n_foo\n_bar\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestEmitRegexFilter(t *testing.T) {
	re := regexp.MustCompile(`^pub_`)
	out := Emit([]string{"pub_foo", "priv_bar", "pub_baz"}, Options{Flavor: host.FlavorDefault, Regex: re})
	if strings.Contains(out, "priv_bar") {
		t.Fatalf("regex filter did not exclude priv_bar: %q", out)
	}
	if !strings.Contains(out, "pub_foo") || !strings.Contains(out, "pub_baz") {
		t.Fatalf("regex filter excluded a matching symbol: %q", out)
	}
}

func TestEmitSortStripsWeakPrefixForCOFF(t *testing.T) {
	syms := []string{".weak.zeta.one", "alpha"}
	out := Emit(syms, Options{Flavor: host.FlavorMingw, Sort: true})
	// "zeta" (the weak name, post-rewrite key "one") sorts against
	// "alpha" using the stripped key, not the raw ".weak." string.
	alphaIdx := strings.Index(out, "alpha")
	zetaIdx := strings.Index(out, "zeta = one")
	if alphaIdx < 0 || zetaIdx < 0 {
		t.Fatalf("missing expected entries: %q", out)
	}
	if zetaIdx < alphaIdx {
		t.Fatalf("weak entry should sort by stripped key after alpha: %q", out)
	}
}
