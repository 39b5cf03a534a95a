package storage

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Packager builds downloadable zip packages of message attachments and
// sweeps expired ones. Packages always land on local disk under
// <base>/contactus/zip, whatever backend holds the attachments.
type Packager struct {
	files FileStore
	dir   string
}

func NewPackager(files FileStore, base string) *Packager {
	return &Packager{files: files, dir: filepath.Join(base, Prefix, "zip")}
}

// Dir is the directory packages are written to.
func (p *Packager) Dir() string {
	return p.dir
}

// Package zips the requested derivative of an attachment and returns the
// package file name. When the derivative is missing (non-image files have
// no renditions) the original is packaged instead.
func (p *Packager) Package(ctx context.Context, filename string, mode Derivative) (string, error) {
	src, err := p.files.Open(ctx, mode, filename)
	if err != nil && mode != Original {
		src, err = p.files.Open(ctx, Original, filename)
	}
	if err != nil {
		return "", fmt.Errorf("package %s: %w", filename, err)
	}
	defer src.Close()

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", err
	}
	zipName := zipNameFor(filename)
	out, err := os.Create(filepath.Join(p.dir, zipName))
	if err != nil {
		return "", err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	entry, err := zw.Create(filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(entry, src); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return zipName, nil
}

// Open returns a stored package for download.
func (p *Packager) Open(zipName string) (io.ReadCloser, error) {
	// The name comes from a URL path; keep it inside the zip dir.
	if strings.ContainsAny(zipName, "/\\") || !strings.HasSuffix(zipName, ".zip") {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(p.dir, zipName))
}

// Sweep deletes packages older than the retention window and returns how
// many were removed. A retention of zero or less disables the sweep.
func (p *Packager) Sweep(retentionDays int, now time.Time) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(p.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !PackageExpired(info.ModTime(), retentionDays, now) {
			continue
		}
		if err := os.Remove(filepath.Join(p.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// PackageExpired reports whether a package written at created has
// outlived a retention window of retentionDays at instant now.
func PackageExpired(created time.Time, retentionDays int, now time.Time) bool {
	if retentionDays <= 0 {
		return false
	}
	return now.Sub(created) > time.Duration(retentionDays)*24*time.Hour
}

func zipNameFor(filename string) string {
	base := filename
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base + ".zip"
}
