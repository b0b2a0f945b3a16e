package iconset

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/frantjc/alticon/internal/alticonblob"
	"github.com/frantjc/alticon/internal/alticonerr"
	"github.com/frantjc/alticon/internal/alticonregexp"
	"github.com/frantjc/alticon/internal/alticonutil"
	"github.com/frantjc/alticon/ios"
	xslice "github.com/frantjc/x/slice"
	"github.com/go-logr/logr"
	"gocloud.dev/blob"
)

// sourceImages lists the source images in sources,
// failing if there are none or if any cannot name an icon.
func sourceImages(ctx context.Context, sources *blob.Bucket) ([]string, error) {
	keys, err := alticonblob.ListSourceImages(ctx, sources)
	if err != nil {
		return nil, alticonerr.New(alticonerr.KindFilesystem, fmt.Errorf("list source images: %w", err))
	}

	if len(keys) == 0 {
		return nil, alticonerr.New(alticonerr.KindNoSourceImages, fmt.Errorf("no .png or .jpg source images found"))
	}

	seen := map[string]string{}
	for _, key := range keys {
		stem := alticonblob.Stem(key)
		if !alticonregexp.IsIconName(stem) {
			return nil, alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("source image %s: icon name %q must not contain whitespace, quotes or backslashes", key, stem))
		}

		if size, ok := generatedBy(path.Base(key)); ok {
			return nil, alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("source image %s has the name of the generated %s@%s image", key, size.Size(), size.Scale))
		}

		if other, ok := seen[strings.ToLower(stem)]; ok {
			return nil, alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("source images %s and %s name the same icon", other, key))
		}
		seen[strings.ToLower(stem)] = key
	}

	return keys, nil
}

// SourceStems returns the icon names of the source images in
// sources, sorted, excluding the primary icon's name.
func SourceStems(ctx context.Context, sources *blob.Bucket, primary string) ([]string, error) {
	keys, err := sourceImages(ctx, sources)
	if err != nil {
		return nil, err
	}

	stems := xslice.Filter(
		xslice.Map(keys, func(key string, _ int) string {
			return alticonblob.Stem(key)
		}),
		func(stem string, _ int) bool {
			return !strings.EqualFold(stem, primary)
		},
	)
	slices.Sort(stems)

	return slices.Compact(stems), nil
}

// Materialize creates an icon set under assetsRoot for each source image in
// sources, holding a copy of the image and a provisional Contents.json that
// references only it. In ModeAdd, existing icon sets are skipped; in
// ModeReplace, they are removed and created anew. It returns the
// directories of the icon sets it created.
func Materialize(ctx context.Context, mode ios.Mode, sources *blob.Bucket, assetsRoot string) ([]string, error) {
	log := logr.FromContextOrDiscard(ctx)

	if mode != ios.ModeAdd && mode != ios.ModeReplace {
		return nil, alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("cannot materialize icon sets in mode %s", mode))
	}

	keys, err := sourceImages(ctx, sources)
	if err != nil {
		return nil, err
	}

	created := []string{}
	for _, key := range keys {
		var (
			name = alticonblob.Stem(key)
			dir  = Dir(assetsRoot, name)
		)

		exists, err := alticonutil.IsDir(dir)
		if err != nil {
			return nil, alticonerr.New(alticonerr.KindFilesystem, err)
		}

		if exists {
			switch mode {
			case ios.ModeAdd:
				log.Info("skipping existing icon set", "name", name)
				continue
			case ios.ModeReplace:
				log.V(1).Info("removing icon set to replace it", "name", name)
				if err = removeAll(dir); err != nil {
					return nil, err
				}
			}
		}

		if err = create(ctx, sources, key, dir); err != nil {
			return nil, fmt.Errorf("create icon set %s: %w", name, err)
		}

		log.Info("created icon set", "name", name)
		created = append(created, dir)
	}

	return created, nil
}

func create(ctx context.Context, sources *blob.Bucket, key, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return alticonerr.New(alticonerr.KindFilesystem, err)
	}

	filename := path.Base(key)
	if err := alticonblob.Copy(ctx, sources, key, filepath.Join(dir, filename)); err != nil {
		return alticonerr.New(alticonerr.KindFilesystem, fmt.Errorf("copy %s: %w", key, err))
	}

	if err := ios.WriteContents(dir, ios.NewContents(sourceIconSize().ContentsImage(filename))); err != nil {
		return alticonerr.New(alticonerr.KindFilesystem, err)
	}

	return nil
}

// generatedBy returns the catalog entry whose resampled image is
// written under filename, if any.
func generatedBy(filename string) (ios.IconSize, bool) {
	for _, size := range ios.AppIconSizes() {
		if generated := size.Filename(); generated != "" && strings.EqualFold(generated, filename) {
			return size, true
		}
	}

	return ios.IconSize{}, false
}

func sourceIconSize() ios.IconSize {
	for _, size := range ios.AppIconSizes() {
		if size.IsSource() {
			return size
		}
	}

	panic("icon size catalog has no source entry")
}

// Cleanup removes every icon set under assetsRoot except the primary one
// and returns how many it removed.
func Cleanup(ctx context.Context, assetsRoot, primary string) (int, error) {
	log := logr.FromContextOrDiscard(ctx)

	dirs, err := Discover(assetsRoot)
	if err != nil {
		return 0, err
	}

	stale := xslice.Filter(dirs, func(dir string, _ int) bool {
		return !strings.EqualFold(Name(dir), primary)
	})

	for _, dir := range stale {
		if err := removeAll(dir); err != nil {
			return 0, fmt.Errorf("remove icon set %s: %w", Name(dir), err)
		}

		log.V(1).Info("removed icon set", "name", Name(dir))
	}

	log.Info("removed alternate icon sets", "count", len(stale))

	return len(stale), nil
}
