// Package importer finds and reads the stylesheets named by @import.
package importer

import (
	"os"
	"path/filepath"
	"strings"
)

var extensions = []string{".scss", ".sass", ".css"}

// Candidates lists, in lookup order, the paths tried for requested relative
// to base: the exact name, the partial, the partial with each extension and
// the plain name with each extension.
func Candidates(requested, base string) []string {
	p := requested
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, requested)
	}
	dir, name := filepath.Split(p)
	partial := filepath.Join(dir, "_"+name)

	out := []string{p}
	if !strings.HasPrefix(name, "_") {
		out = append(out, partial)
		for _, ext := range extensions {
			out = append(out, partial+ext)
		}
	}
	for _, ext := range extensions {
		out = append(out, p+ext)
	}
	return out
}

// Resolve finds the file for requested, looking in currentDir first and then
// in each include path. It returns false when no candidate exists.
func Resolve(requested, currentDir string, includePaths []string) (string, bool) {
	bases := append([]string{currentDir}, includePaths...)
	for _, base := range bases {
		for _, c := range Candidates(requested, base) {
			if isFile(c) {
				return filepath.Clean(c), true
			}
		}
		if filepath.IsAbs(requested) {
			break
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
