package storage

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sheet.png", "sheet.png"},
		{"my scan (1).jpg", "my_scan__1_.jpg"},
		{"../../etc/passwd", "passwd"},
		{"..", ".."},
		{"", "upload"},
		{".", "upload"},
		{"trailing/slash/", "slash"},
		{"Ex-am_01.pdf", "Ex-am_01.pdf"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameNeverContainsSeparators(t *testing.T) {
	inputs := []string{"/abs/path.png", `..\..\win.png`, "a/b/c"}
	for _, in := range inputs {
		got := sanitizeFilename(in)
		if strings.ContainsAny(got, `/\`) {
			t.Errorf("sanitizeFilename(%q) = %q still contains a separator", in, got)
		}
	}
}

func TestUploadStoreRemoveMissingFile(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewUploadStore: %v", err)
	}
	if err := store.Remove("does-not-exist.png"); err != nil {
		t.Errorf("Remove of a missing file should be a no-op, got %v", err)
	}
}
