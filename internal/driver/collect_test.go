package driver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/CostaMateus/bracketsmith/internal/config"
)

func TestCollectFilesExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.php", "<?php")
	writeFile(t, dir, "b.phtml", "<?php")
	writeFile(t, dir, "c.inc", "<?php")
	writeFile(t, dir, "d.txt", "nope")
	writeFile(t, dir, filepath.Join("nested", "e.php"), "<?php")

	files, err := CollectFiles(context.Background(), []string{dir}, config.Default().Files)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 {
		t.Fatalf("Collected %d files, want 4: %v", len(files), files)
	}
	// Sorted order.
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Errorf("Files not sorted: %v", files)
		}
	}
}

func TestCollectFilesExplicitFileFilteredByExtension(t *testing.T) {
	dir := t.TempDir()
	php := writeFile(t, dir, "a.php", "<?php")
	txt := writeFile(t, dir, "b.txt", "nope")

	files, err := CollectFiles(context.Background(), []string{php, txt}, config.Default().Files)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != php {
		t.Errorf("Collected %v, want just %q", files, php)
	}
}

func TestCollectFilesDeduplicates(t *testing.T) {
	dir := t.TempDir()
	php := writeFile(t, dir, "a.php", "<?php")

	files, err := CollectFiles(context.Background(), []string{php, php, dir}, config.Default().Files)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("Collected %v, want one entry", files)
	}
}

func TestCollectFilesExclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.php", "<?php")
	writeFile(t, dir, filepath.Join("vendor", "lib.php"), "<?php")

	cfg := config.Default().Files
	cfg.Exclude = []string{"vendor/*"}
	files, err := CollectFiles(context.Background(), []string{dir}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.php" {
		t.Errorf("Collected %v, want only a.php", files)
	}
}

func TestCollectFilesInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, filepath.Join("src", "a.php"), "<?php")
	writeFile(t, dir, filepath.Join("tools", "b.php"), "<?php")

	cfg := config.Default().Files
	cfg.Include = []string{"src/*"}
	files, err := CollectFiles(context.Background(), []string{dir}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "a.php" {
		t.Errorf("Collected %v, want only src/a.php", files)
	}
}

func TestCollectFilesMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := CollectFiles(context.Background(), []string{missing}, config.Default().Files); err == nil {
		t.Fatal("Expected an error for a missing path")
	}
}
