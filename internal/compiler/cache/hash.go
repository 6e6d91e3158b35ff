// Package cache keeps compiled stylesheets so unchanged entry files are not
// compiled again. A cached entry is only reused while the digest of the entry
// file and everything it imported still matches.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
)

// FileHasher computes content hashes for cache keys
type FileHasher struct{}

// NewFileHasher creates a new file hasher
func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashFile computes a SHA-256 hash of the file contents
func (fh *FileHasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashContent computes a SHA-256 hash of the given content
func (fh *FileHasher) HashContent(content []byte) string {
	hasher := sha256.New()
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashString computes a SHA-256 hash of the given string
func (fh *FileHasher) HashString(content string) string {
	return fh.HashContent([]byte(content))
}

// Digest hashes the names and contents of paths, in order. Any change to
// one of the files, or to the set of files, changes the digest.
func (fh *FileHasher) Digest(paths []string) (string, error) {
	hasher := sha256.New()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return "", err
		}
		io.WriteString(hasher, filepath.Clean(p))
		hasher.Write([]byte{0})
		_, err = io.Copy(hasher, f)
		f.Close()
		if err != nil {
			return "", err
		}
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Key returns the store key of the CSS compiled from path with the options
// summarized by fingerprint.
func (fh *FileHasher) Key(path, fingerprint string) string {
	return "css:" + fh.HashString(fingerprint)[:16] + ":" + filepath.Clean(path)
}
