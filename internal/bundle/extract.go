package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
)

// extractArchive unpacks the bundle into dest. Callers validate the archive
// first; member paths are still re-checked here as defense in depth, and
// every write is bounded by the member's declared size.
func extractArchive(bundlePath, dest string, maxFileSize int64) error {
	zr, err := zip.OpenReader(bundlePath)
	if err != nil {
		return fmt.Errorf("opening bundle: %w", err)
	}
	defer zr.Close()

	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	for _, f := range zr.File {
		if !safeEntryPath(f.Name) {
			return fmt.Errorf("unsafe member path %q in archive", f.Name)
		}

		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("member %q escapes extraction directory", f.Name)
		}

		if isDirEntry(f) {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
			continue
		}

		if err := extractFile(f, target, maxFileSize); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string, maxFileSize int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening member %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	defer out.Close()

	limit := int64(f.UncompressedSize64)
	if limit > maxFileSize {
		return fmt.Errorf("member %s exceeds size limit", f.Name)
	}
	n, err := io.Copy(out, io.LimitReader(rc, limit+1))
	if err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	if n > limit {
		return fmt.Errorf("member %s is larger than its declared size", f.Name)
	}
	return nil
}
