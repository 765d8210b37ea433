package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScannedFile represents a source file found during dataset scanning.
type ScannedFile struct {
	RelPath string // Relative path from the dataset root, forward slashes
	AbsPath string // Absolute file path
	Ext     string // Lowercased extension including the dot (".pdf" or ".md")
}

// Scan walks the dataset root and returns all PDF and markdown files found,
// in walk order. Hidden directories are skipped.
func Scan(ctx context.Context, root string) ([]ScannedFile, error) {
	var scanned []ScannedFile

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".pdf" && ext != ".md" {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		scanned = append(scanned, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			AbsPath: path,
			Ext:     ext,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan dataset %s: %w", root, err)
	}

	return scanned, nil
}
