package pbxproj

import (
	"bytes"
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frantjc/alticon/internal/alticonerr"
)

var (
	//go:embed project.test.pbxproj
	project []byte
)

const (
	wantNamesLine   = "\t\t\t\tASSETCATALOG_COMPILER_ALTERNATE_APPICON_NAMES = \"Halloween Winter\";"
	wantIncludeLine = "\t\t\t\tASSETCATALOG_COMPILER_INCLUDE_ALL_APPICON_ASSETS = YES;"
)

// unmanaged returns the lines of b that do not belong to a
// declaration of either managed key.
func unmanaged(b []byte) []string {
	var (
		lines = []string{}
		skip  = false
	)
	for _, l := range strings.Split(string(b), "\n") {
		if skip {
			skip = !strings.HasSuffix(strings.TrimSpace(l), ";")
			continue
		}

		if managedKey.MatchString(l) {
			skip = !strings.HasSuffix(strings.TrimSpace(l), ";")
			continue
		}

		lines = append(lines, l)
	}

	return lines
}

func TestPatch(t *testing.T) {
	out, blocks, err := Patch([]string{"Halloween", "Winter"}, project)
	if err != nil {
		t.Fatal(err)
	}

	if blocks != 4 {
		t.Errorf("blocks = %d, want 4", blocks)
	}

	if got := strings.Count(string(out), wantNamesLine+"\n"); got != 4 {
		t.Errorf("%s occurs %d times, want 4\n%s", KeyAlternateAppIconNames, got, out)
	}

	if got := strings.Count(string(out), wantIncludeLine+"\n"); got != 4 {
		t.Errorf("%s occurs %d times, want 4\n%s", KeyIncludeAllAppIconAssets, got, out)
	}

	var (
		want = unmanaged(project)
		got  = unmanaged(out)
	)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("unmanaged lines changed:\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	// Each block ends with the managed settings.
	if !strings.Contains(string(out), wantIncludeLine+"\n"+wantNamesLine+"\n\t\t\t};\n\t\t\tname = Release;") {
		t.Errorf("managed settings not inserted before the end of the block:\n%s", out)
	}

	if !strings.Contains(string(out), "\"ASSETCATALOG_COMPILER_ALTERNATE_APPICON_NAMES[sdk=iphonesimulator*]\" = Sim;") {
		t.Error("conditional setting was removed")
	}
}

func TestPatchIdempotent(t *testing.T) {
	first, _, err := Patch([]string{"Halloween", "Winter"}, project)
	if err != nil {
		t.Fatal(err)
	}

	second, _, err := Patch([]string{"Halloween", "Winter"}, first)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("second patch changed the output:\n%s\n---\n%s", first, second)
	}
}

func TestPatchNoNames(t *testing.T) {
	out, _, err := Patch(nil, project)
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Count(string(out), KeyAlternateAppIconNames+" = \"\";"); got != 4 {
		t.Errorf("empty %s occurs %d times, want 4", KeyAlternateAppIconNames, got)
	}
}

func TestPatchCRLF(t *testing.T) {
	in := []byte(strings.ReplaceAll(string(project), "\n", "\r\n"))

	out, _, err := Patch([]string{"Winter"}, in)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Count(string(out), "\n") != strings.Count(string(out), "\r\n") {
		t.Error("patched output mixes line endings")
	}
}

func TestPatchSingleLineBlock(t *testing.T) {
	in := []byte("\t\t\tbuildSettings = {};\n\t\t\tname = Release;")

	out, blocks, err := Patch([]string{"Winter"}, in)
	if err != nil {
		t.Fatal(err)
	}

	want := "\t\t\tbuildSettings = {\n" +
		"\t\t\t\tASSETCATALOG_COMPILER_INCLUDE_ALL_APPICON_ASSETS = YES;\n" +
		"\t\t\t\tASSETCATALOG_COMPILER_ALTERNATE_APPICON_NAMES = \"Winter\";\n" +
		"\t\t\t};\n" +
		"\t\t\tname = Release;"
	if blocks != 1 || string(out) != want {
		t.Errorf("Patch() = %d,\n%q\nwant 1,\n%q", blocks, out, want)
	}
}

func TestPatchTextAfterSetting(t *testing.T) {
	in := []byte("\t\t\tbuildSettings = {\n" +
		"\t\t\t\tASSETCATALOG_COMPILER_INCLUDE_ALL_APPICON_ASSETS = YES; /* keep */\n" +
		"\t\t\t\tPRODUCT_NAME = Seasons;\n" +
		"\t\t\t\tSDKROOT = iphoneos;\n" +
		"\t\t\t\tASSETCATALOG_COMPILER_ALTERNATE_APPICON_NAMES = \"Old;Older\"; VALIDATE_PRODUCT = YES;\n" +
		"\t\t\t};\n")

	out, _, err := Patch([]string{"Winter"}, in)
	if err != nil {
		t.Fatal(err)
	}

	want := "\t\t\tbuildSettings = {\n" +
		"\t\t\t\t/* keep */\n" +
		"\t\t\t\tPRODUCT_NAME = Seasons;\n" +
		"\t\t\t\tSDKROOT = iphoneos;\n" +
		"\t\t\t\tVALIDATE_PRODUCT = YES;\n" +
		"\t\t\t\tASSETCATALOG_COMPILER_INCLUDE_ALL_APPICON_ASSETS = YES;\n" +
		"\t\t\t\tASSETCATALOG_COMPILER_ALTERNATE_APPICON_NAMES = \"Winter\";\n" +
		"\t\t\t};\n"
	if string(out) != want {
		t.Errorf("Patch() =\n%q\nwant\n%q", out, want)
	}

	again, _, err := Patch([]string{"Winter"}, out)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(again, out) {
		t.Errorf("second patch changed the output:\n%q\nwant\n%q", again, out)
	}
}

func TestPatchErrors(t *testing.T) {
	for _, in := range []string{
		"buildSettings = {\n\tSDKROOT = iphoneos;\n",
		"buildSettings = { SDKROOT = iphoneos; };\n",
		"buildSettings = {\n\tASSETCATALOG_COMPILER_INCLUDE_ALL_APPICON_ASSETS = YES\n\tSDKROOT = iphoneos\n};\n",
	} {
		if _, _, err := Patch(nil, []byte(in)); alticonerr.KindOf(err) != alticonerr.KindBuildFileRead {
			t.Errorf("Patch(%q) error = %v, want %s", in, err, alticonerr.KindBuildFileRead)
		}
	}
}

func TestPatchFile(t *testing.T) {
	var (
		ctx  = context.Background()
		name = filepath.Join(t.TempDir(), ProjectName)
	)

	if err := os.WriteFile(name, project, 0o644); err != nil {
		t.Fatal(err)
	}

	blocks, err := PatchFile(ctx, []string{"Halloween", "Winter"}, name)
	if err != nil {
		t.Fatal(err)
	}

	if blocks != 4 {
		t.Errorf("PatchFile() = %d, want 4", blocks)
	}

	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Count(string(b), wantNamesLine); got != 4 {
		t.Errorf("%s occurs %d times, want 4", KeyAlternateAppIconNames, got)
	}

	if _, err := PatchFile(ctx, nil, filepath.Join(t.TempDir(), "missing")); alticonerr.KindOf(err) != alticonerr.KindBuildFileRead {
		t.Errorf("PatchFile(missing) error = %v, want %s", err, alticonerr.KindBuildFileRead)
	}
}

func TestQuote(t *testing.T) {
	for _, tt := range []struct {
		names []string
		want  string
	}{
		{nil, `""`},
		{[]string{"Halloween"}, `"Halloween"`},
		{[]string{"Halloween", "Winter"}, `"Halloween Winter"`},
		{[]string{`a"b`}, `"a\"b"`},
	} {
		if got := Quote(tt.names); got != tt.want {
			t.Errorf("Quote(%v) = %s, want %s", tt.names, got, tt.want)
		}
	}
}
