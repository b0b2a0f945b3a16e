package alticon_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/frantjc/alticon"
	"github.com/frantjc/alticon/internal/alticonerr"
	"github.com/frantjc/alticon/ios"
	"github.com/frantjc/alticon/pbxproj"
	"gocloud.dev/blob"
	"gocloud.dev/blob/memblob"
)

const infoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleDisplayName</key>
	<string>Seasons</string>
	<key>CFBundleIdentifier</key>
	<string>com.example.seasons</string>
</dict>
</plist>
`

const project = `// !$*UTF8*$!
{
	objects = {
		13B07F941A680F5B00A75B9A /* Debug */ = {
			isa = XCBuildConfiguration;
			buildSettings = {
				PRODUCT_NAME = Seasons;
			};
			name = Debug;
		};
		13B07F951A680F5B00A75B9A /* Release */ = {
			isa = XCBuildConfiguration;
			buildSettings = {
				PRODUCT_NAME = Seasons;
			};
			name = Release;
		};
	};
}
`

type fixture struct {
	assets    string
	infoPlist string
	pbxproj   string
}

func newProject(t *testing.T) *fixture {
	t.Helper()

	var (
		dir = t.TempDir()
		p   = &fixture{
			assets:    filepath.Join(dir, "Seasons", "Assets.xcassets"),
			infoPlist: filepath.Join(dir, "Seasons", ios.InfoPlistName),
			pbxproj:   filepath.Join(dir, "Seasons.xcodeproj", pbxproj.ProjectName),
		}
	)

	for _, d := range []string{p.assets, filepath.Dir(p.pbxproj)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	if err := os.WriteFile(p.infoPlist, []byte(infoPlist), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(p.pbxproj, []byte(project), 0o644); err != nil {
		t.Fatal(err)
	}

	return p
}

func (p *fixture) opts(mode alticon.Mode, sources *blob.Bucket) *alticon.SyncOpts {
	return &alticon.SyncOpts{
		Mode:      mode,
		Sources:   sources,
		AssetsDir: p.assets,
		InfoPlist: p.infoPlist,
		PBXProj:   p.pbxproj,
	}
}

func sources(t *testing.T, keys ...string) *blob.Bucket {
	t.Helper()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() {
		_ = bucket.Close()
	})

	img := image.NewNRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 5), G: 0x80, B: uint8(y * 5), A: 0xff})
		}
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}

	for _, key := range keys {
		if err := bucket.WriteAll(context.Background(), key, buf.Bytes(), nil); err != nil {
			t.Fatal(err)
		}
	}

	return bucket
}

func mustSync(t *testing.T, opts *alticon.SyncOpts) *alticon.Report {
	t.Helper()

	report, err := alticon.Sync(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	return report
}

func alternateIconNames(t *testing.T, name string) []string {
	t.Helper()

	info, err := ios.ReadInfo(name)
	if err != nil {
		t.Fatal(err)
	}

	return info.AlternateIconNames()
}

func assertBuildSettings(t *testing.T, name, want string) {
	t.Helper()

	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}

	var (
		pbx     = string(b)
		names   = pbxproj.KeyAlternateAppIconNames + " = " + want + ";"
		include = pbxproj.KeyIncludeAllAppIconAssets + " = YES;"
	)
	if count := strings.Count(pbx, names); count != 2 {
		t.Fatalf("%q occurs %d times, want 2 in\n%s", names, count, pbx)
	}

	if count := strings.Count(pbx, include); count != 2 {
		t.Fatalf("%q occurs %d times, want 2 in\n%s", include, count, pbx)
	}
}

func TestSyncAdd(t *testing.T) {
	var (
		p      = newProject(t)
		report = mustSync(t, p.opts(alticon.ModeAdd, sources(t, "Halloween.png", "Winter.png")))
	)

	want := []string{"Halloween", "Winter"}
	if !slices.Equal(report.AlternateIconNames, want) {
		t.Fatalf("AlternateIconNames = %v, want %v", report.AlternateIconNames, want)
	}

	if !slices.Equal(report.IconSets, want) {
		t.Fatalf("IconSets = %v, want %v", report.IconSets, want)
	}

	if got := alternateIconNames(t, p.infoPlist); !slices.Equal(got, want) {
		t.Fatalf("registry = %v, want %v", got, want)
	}

	for _, name := range want {
		contents, err := ios.ReadContents(filepath.Join(p.assets, name+ios.ExtAppIconSet))
		if err != nil {
			t.Fatal(err)
		}

		if len(contents.Images) != len(ios.AppIconSizes()) {
			t.Fatalf("%s has %d entries, want %d", name, len(contents.Images), len(ios.AppIconSizes()))
		}
	}

	assertBuildSettings(t, p.pbxproj, `"Halloween Winter"`)

	info, err := ios.ReadInfo(p.infoPlist)
	if err != nil {
		t.Fatal(err)
	}

	if info.CFBundleIdentifier != "com.example.seasons" {
		t.Fatalf("CFBundleIdentifier = %q, want %q", info.CFBundleIdentifier, "com.example.seasons")
	}

	if primary := info.CFBundleIcons.CFBundlePrimaryIcon; primary == nil || primary.CFBundleIconName != alticon.DefaultPrimaryIconName {
		t.Fatalf("CFBundlePrimaryIcon = %+v, want %s", primary, alticon.DefaultPrimaryIconName)
	}
}

func TestSyncAddIdempotent(t *testing.T) {
	var (
		p     = newProject(t)
		src   = sources(t, "Halloween.png", "Winter.png")
		first = mustSync(t, p.opts(alticon.ModeAdd, src))
	)

	second := mustSync(t, p.opts(alticon.ModeAdd, src))

	if first.RunID == second.RunID {
		t.Fatalf("RunID = %s for both runs, want distinct", first.RunID)
	}

	if len(first.Digests) != 4 {
		t.Fatalf("%d digests, want 4", len(first.Digests))
	}

	for path, dgst := range first.Digests {
		if second.Digests[path] != dgst {
			t.Fatalf("%s digest = %s, want %s", path, second.Digests[path], dgst)
		}
	}
}

func TestSyncAddNeverRemoves(t *testing.T) {
	p := newProject(t)

	mustSync(t, p.opts(alticon.ModeAdd, sources(t, "Halloween.png")))
	report := mustSync(t, p.opts(alticon.ModeAdd, sources(t, "Winter.png")))

	want := []string{"Halloween", "Winter"}
	if !slices.Equal(report.AlternateIconNames, want) {
		t.Fatalf("AlternateIconNames = %v, want %v", report.AlternateIconNames, want)
	}

	if !slices.Equal(report.IconSets, want) {
		t.Fatalf("IconSets = %v, want %v", report.IconSets, want)
	}

	assertBuildSettings(t, p.pbxproj, `"Halloween Winter"`)
}

func TestSyncReplace(t *testing.T) {
	p := newProject(t)

	mustSync(t, p.opts(alticon.ModeAdd, sources(t, "Old.png")))
	report := mustSync(t, p.opts(alticon.ModeReplace, sources(t, "Halloween.png", "Winter.png", "AppIcon.png")))

	want := []string{"Halloween", "Winter"}
	if !slices.Equal(report.AlternateIconNames, want) {
		t.Fatalf("AlternateIconNames = %v, want %v", report.AlternateIconNames, want)
	}

	if got := alternateIconNames(t, p.infoPlist); !slices.Equal(got, want) {
		t.Fatalf("registry = %v, want %v", got, want)
	}

	if _, err := os.Stat(filepath.Join(p.assets, "Old"+ios.ExtAppIconSet)); !os.IsNotExist(err) {
		t.Fatalf("Old icon set still present: %v", err)
	}

	if !slices.Equal(report.IconSets, []string{"AppIcon", "Halloween", "Winter"}) {
		t.Fatalf("IconSets = %v, want [AppIcon Halloween Winter]", report.IconSets)
	}

	assertBuildSettings(t, p.pbxproj, `"Halloween Winter"`)
}

func TestSyncRemoveAll(t *testing.T) {
	p := newProject(t)

	mustSync(t, p.opts(alticon.ModeAdd, sources(t, "Halloween.png", "Winter.png")))
	report := mustSync(t, p.opts(alticon.ModeRemoveAll, nil))

	if len(report.AlternateIconNames) != 0 {
		t.Fatalf("AlternateIconNames = %v, want none", report.AlternateIconNames)
	}

	if len(report.IconSets) != 0 {
		t.Fatalf("IconSets = %v, want none", report.IconSets)
	}

	if got := alternateIconNames(t, p.infoPlist); len(got) != 0 {
		t.Fatalf("registry = %v, want none", got)
	}

	assertBuildSettings(t, p.pbxproj, `""`)
}

func TestSyncErrors(t *testing.T) {
	p := newProject(t)

	for name, test := range map[string]struct {
		opts *alticon.SyncOpts
		kind alticonerr.Kind
	}{
		"nil options": {
			kind: alticonerr.KindInputValidation,
		},
		"invalid mode": {
			opts: p.opts("merge", sources(t, "Winter.png")),
			kind: alticonerr.KindInputValidation,
		},
		"no sources bucket": {
			opts: p.opts(alticon.ModeAdd, nil),
			kind: alticonerr.KindInputValidation,
		},
		"no source images": {
			opts: p.opts(alticon.ModeAdd, sources(t)),
			kind: alticonerr.KindNoSourceImages,
		},
		"missing Info.plist": {
			opts: &alticon.SyncOpts{
				Mode:      alticon.ModeRemoveAll,
				AssetsDir: p.assets,
				InfoPlist: filepath.Join(t.TempDir(), ios.InfoPlistName),
				PBXProj:   p.pbxproj,
			},
			kind: alticonerr.KindMetadataParse,
		},
		"missing pbxproj": {
			opts: &alticon.SyncOpts{
				Mode:      alticon.ModeRemoveAll,
				AssetsDir: p.assets,
				InfoPlist: p.infoPlist,
				PBXProj:   filepath.Join(t.TempDir(), pbxproj.ProjectName),
			},
			kind: alticonerr.KindBuildFileRead,
		},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := alticon.Sync(context.Background(), test.opts)
			if err == nil {
				t.Fatal("Sync succeeded, want error")
			}

			if kind := alticonerr.KindOf(err); kind != test.kind {
				t.Fatalf("error = %v (%s), want %s", err, kind, test.kind)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for s, want := range map[string]alticon.Mode{
		"add":        alticon.ModeAdd,
		"Replace":    alticon.ModeReplace,
		"remove-all": alticon.ModeRemoveAll,
		"REMOVEALL":  alticon.ModeRemoveAll,
	} {
		got, err := alticon.ParseMode(s)
		if err != nil {
			t.Fatal(err)
		}

		if got != want {
			t.Fatalf("ParseMode(%q) = %s, want %s", s, got, want)
		}
	}
}
