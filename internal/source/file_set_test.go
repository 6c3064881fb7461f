package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadNormalizesCRLF(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "script.ps1")
	if err := os.WriteFile(path, []byte("a\r\nb\r\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("expected normalized content, got %q", f.Content)
	}
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Error("expected FileNormalizedCRLF flag to be set")
	}
}

func TestLoadStripsBOM(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "script.ps1")
	if err := os.WriteFile(path, []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "hi" {
		t.Fatalf("expected BOM stripped, got %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 {
		t.Error("expected FileHadBOM flag to be set")
	}
}

func TestLoadDecodesUTF16LE(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "script.ps1")
	// "hi\n" as UTF-16LE with BOM.
	raw := []byte{0xFF, 0xFE, 'h', 0, 'i', 0, '\n', 0}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "hi\n" {
		t.Fatalf("expected transcoded content, got %q", f.Content)
	}
	if f.Flags&FileDecodedUTF16 == 0 {
		t.Error("expected FileDecodedUTF16 flag to be set")
	}
}

func TestAddVirtualNormalizes(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("buffer.ps1", []byte("x\r\ny"))
	f := fs.Get(id)
	if string(f.Content) != "x\ny" {
		t.Fatalf("expected normalized buffer, got %q", f.Content)
	}
	if f.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
}

func TestResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.ps1", []byte("ab\ncd\n"))

	cases := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{1, LineCol{Line: 1, Col: 2}},
		{2, LineCol{Line: 1, Col: 3}}, // the newline itself
		{3, LineCol{Line: 2, Col: 1}},
		{4, LineCol{Line: 2, Col: 2}},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start != tc.want {
			t.Errorf("offset %d: expected %+v, got %+v", tc.off, tc.want, start)
		}
	}
}

func TestFileVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.ps1", []byte("version 1"), 0)
	latestID, exists := fs.GetLatest("test.ps1")
	if !exists {
		t.Error("expected file to exist")
	}
	if latestID != id1 {
		t.Errorf("expected latest ID %d, got %d", id1, latestID)
	}

	id2 := fs.Add("test.ps1", []byte("version 2"), 0)
	if id2 == id1 {
		t.Error("expected a fresh FileID for the second Add")
	}
	latestID, exists = fs.GetLatest("test.ps1")
	if !exists || latestID != id2 {
		t.Errorf("expected index to point at %d, got %d (exists=%v)", id2, latestID, exists)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.ps1", []byte("first\nsecond\nthird"))
	f := fs.Get(id)

	cases := []struct {
		line uint32
		want string
	}{
		{0, ""},
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{4, ""},
	}
	for _, tc := range cases {
		if got := f.GetLine(tc.line); got != tc.want {
			t.Errorf("line %d: expected %q, got %q", tc.line, tc.want, got)
		}
	}
	if got := f.LineCount(); got != 3 {
		t.Errorf("expected 3 lines, got %d", got)
	}
	if got := fs.Len(); got != 1 {
		t.Errorf("expected 1 file in set, got %d", got)
	}
}

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("failed to create other dir: %v", err)
	}

	target := filepath.Join(otherDir, "file.ps1")
	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	want := normalizePath(target)
	if got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	if err := os.MkdirAll(filepath.Join(baseDir, "nested"), 0o755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	target := filepath.Join(baseDir, "nested", "file.ps1")
	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}
	want := normalizePath(filepath.Join("nested", "file.ps1"))
	if got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}
