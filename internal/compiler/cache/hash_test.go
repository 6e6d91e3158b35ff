package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileHasher_HashContent(t *testing.T) {
	hasher := NewFileHasher()

	tests := []struct {
		name     string
		content  []byte
		expected string
	}{
		{
			name:     "empty content",
			content:  []byte(""),
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "simple content",
			content:  []byte("hello world"),
			expected: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasher.HashContent(tt.content); got != tt.expected {
				t.Errorf("HashContent() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestFileHasher_HashFile(t *testing.T) {
	hasher := NewFileHasher()
	tmpFile := filepath.Join(t.TempDir(), "a.scss")

	content := ".a { width: 1px; }"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	hash1, err := hasher.HashFile(tmpFile)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}
	if hash1 != hasher.HashString(content) {
		t.Errorf("HashFile() and HashString() differ for the same content")
	}

	if err := os.WriteFile(tmpFile, []byte(content+"\n.b { x: y; }"), 0644); err != nil {
		t.Fatalf("Failed to modify temp file: %v", err)
	}
	hash2, err := hasher.HashFile(tmpFile)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}
	if hash1 == hash2 {
		t.Errorf("HashFile() returned same hash after modification")
	}

	if _, err := hasher.HashFile("/nonexistent/file.scss"); err == nil {
		t.Errorf("HashFile() should return error for non-existent file")
	}
}

func TestFileHasher_Digest(t *testing.T) {
	hasher := NewFileHasher()
	dir := t.TempDir()
	a := createTestFile(t, dir, "a.scss", "@import 'b';")
	b := createTestFile(t, dir, "_b.scss", "$x: 1;")

	d1, err := hasher.Digest([]string{a, b})
	if err != nil {
		t.Fatalf("Digest() error: %v", err)
	}
	d2, _ := hasher.Digest([]string{a, b})
	if d1 != d2 {
		t.Errorf("Digest() not deterministic")
	}

	only, _ := hasher.Digest([]string{a})
	if only == d1 {
		t.Errorf("Digest() ignores the set of files")
	}

	createTestFile(t, dir, "_b.scss", "$x: 2;")
	d3, _ := hasher.Digest([]string{a, b})
	if d3 == d1 {
		t.Errorf("Digest() unchanged after an import was modified")
	}

	if _, err := hasher.Digest([]string{filepath.Join(dir, "gone.scss")}); err == nil {
		t.Errorf("Digest() should fail for a missing file")
	}
}

func TestFileHasher_Key(t *testing.T) {
	hasher := NewFileHasher()

	k1 := hasher.Key("styles/a.scss", "nested")
	k2 := hasher.Key("styles/./a.scss", "nested")
	if k1 != k2 {
		t.Errorf("Key() should clean paths: %s != %s", k1, k2)
	}
	if !strings.HasSuffix(k1, ":styles/a.scss") {
		t.Errorf("Key() = %s, want the path as suffix", k1)
	}
	if k1 == hasher.Key("styles/a.scss", "compressed") {
		t.Errorf("Key() should depend on the fingerprint")
	}
}
