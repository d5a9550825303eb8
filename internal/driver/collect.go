package driver

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/CostaMateus/bracketsmith/internal/config"
)

// CollectFiles expands paths (files or directories, walked recursively) into
// the sorted, de-duplicated list of candidate source files, honoring the
// configured extensions and include/exclude globs.
func CollectFiles(ctx context.Context, paths []string, cfg config.FilesConfig) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			err = filepath.WalkDir(p, func(walked string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if wantFile(walked, cfg) {
					addFile(walked)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		if wantFile(p, cfg) {
			addFile(p)
		}
	}

	sort.Strings(files)
	return files, nil
}

func wantFile(p string, cfg config.FilesConfig) bool {
	if !hasExtension(p, cfg.Extensions) {
		return false
	}
	slashed := filepath.ToSlash(p)
	if matchGlobs(cfg.Exclude, slashed) {
		return false
	}
	if len(cfg.Include) > 0 && !matchGlobs(cfg.Include, slashed) {
		return false
	}
	return true
}

func hasExtension(p string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, want := range extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// matchGlobs tries each pattern against the full slash path, the basename,
// and every segment-boundary suffix, so "vendor/*" matches at any depth.
func matchGlobs(patterns []string, slashed string) bool {
	if len(patterns) == 0 {
		return false
	}
	suffixes := pathSuffixes(slashed)
	for _, pattern := range patterns {
		for _, candidate := range suffixes {
			if ok, err := path.Match(pattern, candidate); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func pathSuffixes(slashed string) []string {
	out := []string{slashed}
	rest := slashed
	for {
		idx := strings.IndexByte(rest, '/')
		if idx < 0 {
			break
		}
		rest = rest[idx+1:]
		out = append(out, rest)
	}
	return out
}
