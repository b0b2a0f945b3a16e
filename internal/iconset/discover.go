package iconset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/frantjc/alticon/internal/alticonerr"
	"github.com/frantjc/alticon/internal/alticonregexp"
	"github.com/frantjc/alticon/internal/alticonutil"
	"github.com/frantjc/alticon/ios"
)

// Discover walks root and returns the path of every icon set under it: each
// non-hidden directory named *.appiconset that holds a Contents.json. Icon
// sets are leaves; Discover does not walk into them.
func Discover(root string) ([]string, error) {
	dirs := []string{}

	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}

			return err
		}

		if path != root && alticonregexp.IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.IsDir() || !alticonregexp.IsIconSet(d.Name()) {
			return nil
		}

		if ok, err := alticonutil.IsFile(filepath.Join(path, ios.ContentsJSONName)); err != nil {
			return err
		} else if ok {
			dirs = append(dirs, path)
			return filepath.SkipDir
		}

		return nil
	}); err != nil {
		return nil, alticonerr.New(alticonerr.KindFilesystem, err)
	}

	return dirs, nil
}

// Name returns the name of the icon set at dir, e.g.
// "Halloween" for "Assets.xcassets/Halloween.appiconset".
func Name(dir string) string {
	base := filepath.Base(dir)
	if len(base) >= len(ios.ExtAppIconSet) && strings.EqualFold(base[len(base)-len(ios.ExtAppIconSet):], ios.ExtAppIconSet) {
		return base[:len(base)-len(ios.ExtAppIconSet)]
	}

	return base
}

// Dir returns the directory of the icon set called name under root.
func Dir(root, name string) string {
	return filepath.Join(root, name+ios.ExtAppIconSet)
}

func removeAll(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return alticonerr.New(alticonerr.KindFilesystem, err)
	}

	return nil
}
