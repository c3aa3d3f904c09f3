package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFileOverwrite writes content to filePath, replacing any existing file.
// The data goes to a temp file in the same directory first and is renamed
// into place, so readers never see a half-written report.
func WriteFileOverwrite(filePath string, content []byte, perm os.FileMode) error {
	return WriteWith(filePath, perm, func(w io.Writer) error {
		_, err := w.Write(content)
		return err
	})
}

// WriteWith streams fn's output into filePath with the same replace
// semantics as WriteFileOverwrite. Parent directories are created.
func WriteWith(filePath string, perm os.FileMode, fn func(io.Writer) error) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", filePath, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write to file %s: %w", filePath, err)
	}
	if err := f.Chmod(perm); err != nil {
		f.Close()
		return fmt.Errorf("failed to chmod %s: %w", filePath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filePath, err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filePath, err)
	}
	return nil
}
