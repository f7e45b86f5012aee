package epub

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxEntrySize bounds the decompressed size of a single archive entry.
const maxEntrySize int64 = 256 * 1024 * 1024

// isSafePath reports whether p stays inside the archive root.
func isSafePath(p string) bool {
	cleaned := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	return cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// extractAll writes every entry of zr below dir.
func extractAll(zr *zip.Reader, dir string) error {
	for _, f := range zr.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
		}
		dest := filepath.Join(dir, filepath.FromSlash(f.Name))
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	if f.UncompressedSize64 > uint64(maxEntrySize) {
		return fmt.Errorf("epub: zip entry %s too large: %d bytes", f.Name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("epub: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, io.LimitReader(rc, maxEntrySize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("epub: read zip entry %s: %w", f.Name, err)
	}
	if n > maxEntrySize {
		return fmt.Errorf("epub: zip entry %s exceeds %d bytes", f.Name, maxEntrySize)
	}
	return nil
}

// zipDir packages dir into dest. The mimetype entry is written first and
// stored uncompressed as OCF readers require.
func zipDir(dir, dest string) (err error) {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	zw := zip.NewWriter(out)
	mimetype := filepath.Join(dir, "mimetype")
	if data, rerr := os.ReadFile(mimetype); rerr == nil {
		w, werr := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
		if werr != nil {
			return werr
		}
		if _, werr := w.Write(data); werr != nil {
			return werr
		}
	} else if !errors.Is(rerr, fs.ErrNotExist) {
		return rerr
	}

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return werr
		}
		if d.IsDir() || p == mimetype {
			return nil
		}
		rel, werr := filepath.Rel(dir, p)
		if werr != nil {
			return werr
		}
		w, werr := zw.CreateHeader(&zip.FileHeader{Name: filepath.ToSlash(rel), Method: zip.Deflate})
		if werr != nil {
			return werr
		}
		in, werr := os.Open(p)
		if werr != nil {
			return werr
		}
		defer in.Close()
		_, werr = io.Copy(w, in)
		return werr
	})
	if err != nil {
		return err
	}
	return zw.Close()
}
