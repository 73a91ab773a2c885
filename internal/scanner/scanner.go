// Package scanner walks the originals tree and yields source files in a
// stable order, grounded on francis-pang-ai-social-media-helper's
// internal/filehandler.ScanDirectoryWithOptions (filepath.WalkDir, symlink
// handling, extension filter, sorted output) and generalized to the
// category/subcategory/RAW-routing rules of §4.3.
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	coreerrors "github.com/fpang/madphotos-core/internal/core/errors"
)

// Entry is one discovered source file (§4.3).
type Entry struct {
	RelativePath string
	AbsolutePath string
	Category     string
	Subcategory  string
	Raw          bool // true for dng/raw extensions, routed through RAW decode
}

var imageExts = map[string]bool{
	".dng": true, ".raw": true, ".jpg": true, ".jpeg": true, ".png": true,
}

var rawExts = map[string]bool{".dng": true, ".raw": true}

// Scan walks root depth-first and returns every supported image file
// sorted lexicographically by relative path. Two absolute paths that
// normalize (case-insensitively) to the same relative path make the scan
// fail with ErrDuplicateRelativePath (§4.3) — a case-insensitive
// filesystem exposing "a.jpg" and "A.jpg" as distinct directory entries.
func Scan(root string) ([]Entry, error) {
	var entries []Entry
	seen := make(map[string]string) // lowercased relative path -> original

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("scanner: error accessing path, skipping")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("scanner: unresolvable symlink, skipping")
				return nil
			}
			info, err := os.Stat(target)
			if err != nil || info.IsDir() {
				return nil
			}
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !imageExts[ext] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("scanner: relative path for %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		key := strings.ToLower(rel)
		if prior, ok := seen[key]; ok && prior != rel {
			return coreerrors.New(coreerrors.CategoryInput, "scan", fmt.Errorf("%w: %s and %s", coreerrors.ErrDuplicateRelativePath, prior, rel))
		}
		seen[key] = rel

		segs := strings.Split(rel, "/")
		category, subcategory := "Uncategorized", "General"
		if len(segs) >= 2 {
			category = segs[0]
		}
		if len(segs) >= 3 {
			subcategory = segs[1]
		}

		entries = append(entries, Entry{
			RelativePath: rel,
			AbsolutePath: path,
			Category:     category,
			Subcategory:  subcategory,
			Raw:          rawExts[ext],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].RelativePath < entries[j].RelativePath })
	return entries, nil
}
