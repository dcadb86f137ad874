// -----------------------------------------------------------------------
// Package buildfiles finds native build description files (Android.mk,
// Makefile, CMakeLists.txt, ...) under a project root. The aggregate only
// references them; their contents are never parsed.
// -----------------------------------------------------------------------

package buildfiles

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
)

// Build file detection patterns
var buildFilePatterns = []struct {
	name      string
	extension string
	prefix    string
}{
	{name: "Makefile", prefix: "Makefile"},
	{name: "GNUmakefile"},
	{extension: ".mk"},
	{name: "CMakeLists.txt"},
	{extension: ".cmake"},
	{extension: ".vcxproj"},
	{prefix: "configure"},
	{extension: ".sln"},
}

// skipDirs are never descended into
var skipDirs = map[string]bool{
	"obj":          true,
	"libs":         true,
	"build":        true,
	"node_modules": true,
}

// IsBuildFile checks if a file path represents a build file
func IsBuildFile(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(path)

	for _, pattern := range buildFilePatterns {
		if pattern.name != "" && base == pattern.name {
			return true
		}
		if pattern.extension != "" && ext == pattern.extension {
			return true
		}
		if pattern.prefix != "" && strings.HasPrefix(base, pattern.prefix) {
			return true
		}
	}
	return false
}

// Discover walks root and returns every build file, sorted. Hidden
// directories and build output directories are skipped.
func Discover(ctx context.Context, root string, logger arbor.ILogger) ([]string, error) {
	var found []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || skipDirs[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsBuildFile(path) {
			found = append(found, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover build files under %s: %w", root, err)
	}

	sort.Strings(found)
	logger.Debug().
		Str("root", root).
		Int("build_files", len(found)).
		Msg("Discovered build files")
	return found, nil
}
