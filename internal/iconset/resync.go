package iconset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/frantjc/alticon/internal/alticonerr"
	"github.com/frantjc/alticon/internal/alticonimg"
	"github.com/frantjc/alticon/internal/alticonutil"
	"github.com/frantjc/alticon/ios"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// Resync regenerates every image of the icon set at dir from its source
// image, rewrites its Contents.json in catalog order and deletes every file
// that Contents.json no longer references. It returns the referenced files.
func Resync(ctx context.Context, dir string) ([]string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("name", Name(dir))

	contents, err := ios.ReadContents(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, alticonerr.New(alticonerr.KindMissingSourceEntry, fmt.Errorf("%s not found", ios.ContentsJSONName))
	} else if err != nil {
		return nil, alticonerr.New(alticonerr.KindMissingSourceEntry, fmt.Errorf("read %s: %w", ios.ContentsJSONName, err))
	}

	source, ok := contents.Source()
	if !ok {
		return nil, alticonerr.New(alticonerr.KindMissingSourceEntry, fmt.Errorf("%s has no %s entry without a scale", ios.ContentsJSONName, ios.SourceSize))
	}

	sourceFilename := source.Filename
	if sourceFilename == "" {
		return nil, alticonerr.New(alticonerr.KindSourceFileMissing, fmt.Errorf("%s entry references no source image", ios.SourceSize))
	} else if filepath.Base(sourceFilename) != sourceFilename {
		return nil, alticonerr.New(alticonerr.KindSourceFileMissing, fmt.Errorf("source image %q is not in the icon set", sourceFilename))
	}

	if size, ok := generatedBy(sourceFilename); ok {
		return nil, alticonerr.New(alticonerr.KindInputValidation, fmt.Errorf("source image %s would be overwritten by the generated %s@%s image", sourceFilename, size.Size(), size.Scale))
	}

	if ok, err := alticonutil.IsFile(filepath.Join(dir, sourceFilename)); err != nil {
		return nil, alticonerr.New(alticonerr.KindFilesystem, err)
	} else if !ok {
		return nil, alticonerr.New(alticonerr.KindSourceFileMissing, fmt.Errorf("source image %s not found", sourceFilename))
	}

	src, err := alticonimg.DecodeFile(filepath.Join(dir, sourceFilename))
	if err != nil {
		return nil, err
	}

	if bounds := src.Bounds(); bounds.Dx() != 1024 || bounds.Dy() != 1024 {
		log.Info("source image is not 1024x1024", "filename", sourceFilename, "width", bounds.Dx(), "height", bounds.Dy())
	}

	images := []ios.ContentsImage{}
	for _, size := range ios.AppIconSizes() {
		if size.IsSource() {
			images = append(images, size.ContentsImage(sourceFilename))
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b, width, height, err := alticonimg.Resize(src, size)
		if err != nil {
			return nil, fmt.Errorf("resize to %s@%s: %w", size.Size(), size.Scale, err)
		}

		filename := size.Filename()
		if err = alticonutil.WriteBytes(filepath.Join(dir, filename), b, 0o644); err != nil {
			return nil, alticonerr.New(alticonerr.KindFilesystem, err)
		}

		log.V(1).Info("resampled image", "filename", filename, "width", width, "height", height)
		images = append(images, size.ContentsImage(filename))
	}

	contents = ios.NewContents(images...)
	if err = ios.WriteContents(dir, contents); err != nil {
		return nil, alticonerr.New(alticonerr.KindFilesystem, err)
	}

	filenames := contents.Filenames()
	if err = prune(ctx, dir, filenames); err != nil {
		return nil, err
	}

	return filenames, nil
}

// prune deletes every file in dir other than Contents.json and used.
func prune(ctx context.Context, dir string, used []string) error {
	log := logr.FromContextOrDiscard(ctx).WithValues("name", Name(dir))

	keep := map[string]bool{ios.ContentsJSONName: true}
	for _, filename := range used {
		keep[filename] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return alticonerr.New(alticonerr.KindFilesystem, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || keep[entry.Name()] {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return alticonerr.New(alticonerr.KindFilesystem, err)
		}

		log.V(1).Info("pruned stale file", "filename", entry.Name())
	}

	return nil
}

// ResyncAll resyncs each icon set in dirs in parallel. Icon sets share
// nothing, so the first error is returned once every started resync is done.
func ResyncAll(ctx context.Context, dirs []string) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for _, dir := range dirs {
		eg.Go(func() error {
			if _, err := Resync(ctx, dir); err != nil {
				return fmt.Errorf("resync icon set %s: %w", Name(dir), err)
			}

			return nil
		})
	}

	return eg.Wait()
}
