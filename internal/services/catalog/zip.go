package catalog

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// extractArchive unpacks zipPath into destDir, clearing any previous
// contents of that directory first so a re-upload of the same version never
// leaves stale files behind.
func extractArchive(zipPath, destDir string) error {
	if err := os.RemoveAll(destDir); err != nil {
		return fmt.Errorf("clear bundle dir: %w", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create bundle dir: %w", err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractFile(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, destDir string) error {
	// Reject entries that would escape the bundle directory.
	path := filepath.Join(destDir, filepath.FromSlash(f.Name))
	if path != destDir && !strings.HasPrefix(path, destDir+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry escapes bundle dir: %q", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %q: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode().Perm()|0o600)
	if err != nil {
		return fmt.Errorf("create bundle file %q: %w", f.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write bundle file %q: %w", f.Name, err)
	}
	return dst.Close()
}
