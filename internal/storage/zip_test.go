package storage

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDerivative(t *testing.T) {
	tests := []struct {
		in   string
		want Derivative
	}{
		{"original", Original},
		{"large", Large},
		{"medium", Medium},
		{"square", Square},
		{"", Original},
		{"thumbnail", Original},
	}
	for _, tt := range tests {
		if got := ParseDerivative(tt.in); got != tt.want {
			t.Errorf("ParseDerivative(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPackageExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		created   time.Time
		retention int
		want      bool
	}{
		{"fresh", now.Add(-time.Hour), 30, false},
		{"at the boundary", now.AddDate(0, 0, -30), 30, false},
		{"past the window", now.AddDate(0, 0, -31), 30, true},
		{"retention disabled", now.AddDate(0, 0, -365), 0, false},
		{"negative retention", now.AddDate(0, 0, -365), -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackageExpired(tt.created, tt.retention, now); got != tt.want {
				t.Errorf("PackageExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPackage_FromLocalStore(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	files := NewLocalStore(base)
	if err := files.Put(ctx, "abc123.jpg", strings.NewReader("jpeg-bytes")); err != nil {
		t.Fatal(err)
	}

	p := NewPackager(files, base)
	// No large derivative exists, so packaging must fall back to the
	// original upload.
	zipName, err := p.Package(ctx, "abc123.jpg", Large)
	if err != nil {
		t.Fatalf("Package: %v", err)
	}
	if zipName != "abc123.zip" {
		t.Fatalf("zipName=%q, want abc123.zip", zipName)
	}

	zr, err := zip.OpenReader(filepath.Join(p.Dir(), zipName))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 1 || zr.File[0].Name != "abc123.jpg" {
		t.Fatalf("package entries: %v", zr.File)
	}
}

func TestPackage_MissingAttachment(t *testing.T) {
	base := t.TempDir()
	p := NewPackager(NewLocalStore(base), base)
	if _, err := p.Package(context.Background(), "nope.jpg", Original); err == nil {
		t.Fatal("packaging a missing attachment must fail")
	}
}

func TestPackagerOpen_RejectsTraversal(t *testing.T) {
	p := NewPackager(NewLocalStore(t.TempDir()), t.TempDir())
	for _, name := range []string{"../secret.zip", "a/b.zip", "not-a-zip.txt", `..\evil.zip`} {
		if _, err := p.Open(name); !os.IsNotExist(err) {
			t.Errorf("Open(%q) error = %v, want not-exist", name, err)
		}
	}
}

func TestSweep(t *testing.T) {
	base := t.TempDir()
	p := NewPackager(NewLocalStore(base), base)
	if err := os.MkdirAll(p.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}

	old := filepath.Join(p.Dir(), "old.zip")
	fresh := filepath.Join(p.Dir(), "fresh.zip")
	other := filepath.Join(p.Dir(), "notes.txt")
	for _, f := range []string{old, fresh, other} {
		if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(other, stale, stale); err != nil {
		t.Fatal(err)
	}

	removed, err := p.Sweep(30, time.Now())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed=%d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expired package must be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh package must survive")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("non-zip files must be left alone")
	}
}

func TestSweep_DisabledOrEmpty(t *testing.T) {
	base := t.TempDir()
	p := NewPackager(NewLocalStore(base), base)

	// Zip dir does not exist yet.
	if removed, err := p.Sweep(30, time.Now()); err != nil || removed != 0 {
		t.Fatalf("Sweep on missing dir: removed=%d err=%v", removed, err)
	}
	// Retention 0 disables the sweep entirely.
	if removed, err := p.Sweep(0, time.Now()); err != nil || removed != 0 {
		t.Fatalf("Sweep with zero retention: removed=%d err=%v", removed, err)
	}
}
