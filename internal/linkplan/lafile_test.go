package linkplan

import (
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

func TestRenderLAFileMatchesGolden(t *testing.T) {
	got := RenderLAFile(LAFileInfo{
		PICObject:    ".libs/foo.o",
		NonPICObject: "foo.o",
		LibraryNames: "libfoo.so.3.4.5 libfoo.so.3 libfoo.so",
		Dlname:       "libfoo.so.3",
		OldLibrary:   "libfoo.a",
		Installed:    false,
	})

	want := "pic_object='.libs/foo.o'\n" +
		"non_pic_object='foo.o'\n" +
		"library_names='libfoo.so.3.4.5 libfoo.so.3 libfoo.so'\n" +
		"dlname='libfoo.so.3'\n" +
		"old_library='libfoo.a'\n" +
		"installed=no\n"

	if got != want {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(want, got, true)
		diffs = dmp.DiffCleanupSemantic(diffs)
		t.Errorf("rendered .la wrapper differs from golden (red=want, green=got):\n%s", dmp.DiffPrettyText(diffs))
	}
}

func TestParseLAFileRoundTrips(t *testing.T) {
	info := LAFileInfo{
		PICObject:    ".libs/foo.o",
		NonPICObject: "foo.o",
		LibraryNames: "libfoo.so.3.4.5 libfoo.so.3 libfoo.so",
		Dlname:       "libfoo.so.3",
		OldLibrary:   "libfoo.a",
		Installed:    true,
	}
	parsed, err := ParseLAFile([]byte(RenderLAFile(info)))
	if err != nil {
		t.Fatalf("ParseLAFile: %v", err)
	}
	if parsed != info {
		t.Fatalf("got %+v, want %+v", parsed, info)
	}
}

func TestRenderLAFileInstalledTrue(t *testing.T) {
	got := RenderLAFile(LAFileInfo{Installed: true})
	want := "pic_object=''\nnon_pic_object=''\nlibrary_names=''\ndlname=''\nold_library=''\ninstalled=yes\n"
	if got != want {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(want, got, true)
		diffs = dmp.DiffCleanupSemantic(diffs)
		t.Errorf("rendered .la wrapper differs from golden:\n%s", dmp.DiffPrettyText(diffs))
	}
}
