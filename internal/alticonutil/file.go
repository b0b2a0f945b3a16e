package alticonutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFile writes the contents of r to name by way of a temporary file in
// the same directory which is renamed over name once fully written, so a
// failure never leaves name truncated. An existing file's permissions are kept.
func WriteFile(name string, r io.Reader, perm fs.FileMode) error {
	if fi, err := os.Stat(name); err == nil {
		perm = fi.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+"-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}

	if err = f.Chmod(perm); err != nil {
		_ = f.Close()
		return err
	}

	if err = f.Close(); err != nil {
		return err
	}

	if err = os.Rename(f.Name(), name); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(f.Name()), err)
	}

	return nil
}

// WriteBytes is WriteFile for an in-memory buffer.
func WriteBytes(name string, b []byte, perm fs.FileMode) error {
	return WriteFile(name, bytes.NewReader(b), perm)
}

// IsDir reports whether name exists and is a directory.
func IsDir(name string) (bool, error) {
	fi, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	return fi.IsDir(), nil
}

// IsFile reports whether name exists and is a regular file.
func IsFile(name string) (bool, error) {
	fi, err := os.Stat(name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	return fi.Mode().IsRegular(), nil
}
