// Package ingest discovers receipt images on disk, either by a one-shot
// directory scan or by watching for new files.
package ingest

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/instant-receipts/extraction/internal/common"
)

// Image extensions tesseract accepts directly (lowercase, without '.').
var defaultExts = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
}

// ScanDirectory walks root and returns the receipt image files it finds, in
// walk order. Hidden files and directories are skipped.
func ScanDirectory(root string, exts map[string]struct{}) ([]string, error) {
	if strings.TrimSpace(root) == "" {
		return nil, common.WrapError(common.ErrInvalidInput, "root directory is required")
	}
	if exts == nil {
		exts = defaultExts
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if allowed(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func allowed(path string, exts map[string]struct{}) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	_, ok := exts[ext]
	return ok
}

// ExtSet builds an extension set from a comma-separated list, falling back
// to the defaults when the list is empty.
func ExtSet(list string) map[string]struct{} {
	list = strings.TrimSpace(list)
	if list == "" {
		return defaultExts
	}
	exts := map[string]struct{}{}
	for _, e := range strings.Split(list, ",") {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			exts[e] = struct{}{}
		}
	}
	return exts
}
