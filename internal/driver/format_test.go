package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/CostaMateus/bracketsmith/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func defaultOpts() FormatOptions {
	return FormatOptions{
		Files: config.Default().Files,
	}
}

func TestFormatPathsRewritesInPlace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.php", "<?php $x = [1,2,3];\n")
	writeFile(t, dir, "clean.php", "<?php $x = [ 1,2,3 ];\n")

	results, summary, err := FormatPaths(context.Background(), []string{dir}, defaultOpts())
	if err != nil {
		t.Fatalf("FormatPaths failed: %v", err)
	}
	if summary.Files != 2 {
		t.Errorf("Files = %d, want 2", summary.Files)
	}
	if summary.Changed != 1 {
		t.Errorf("Changed = %d, want 1", summary.Changed)
	}
	if summary.Errors != 0 {
		t.Errorf("Errors = %d, want 0", summary.Errors)
	}

	if got := readFile(t, path); got != "<?php $x = [ 1,2,3 ];\n" {
		t.Errorf("File content = %q", got)
	}

	// Results come back in collection (sorted) order.
	if len(results) != 2 || filepath.Base(results[0].Path) != "a.php" {
		t.Errorf("Unexpected result order: %+v", results)
	}
	if !results[0].Changed || results[1].Changed {
		t.Errorf("Changed flags wrong: %+v", results)
	}
}

func TestFormatPathsCheckDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	original := "<?php $x = [1,2];\n"
	path := writeFile(t, dir, "a.php", original)

	opts := defaultOpts()
	opts.Check = true
	results, summary, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatalf("FormatPaths failed: %v", err)
	}
	if !results[0].Changed {
		t.Error("Expected Changed=true in check mode")
	}
	if summary.Changed != 1 {
		t.Errorf("Changed = %d, want 1", summary.Changed)
	}
	if got := readFile(t, path); got != original {
		t.Errorf("Check mode modified the file: %q", got)
	}
}

func TestFormatPathsStdout(t *testing.T) {
	dir := t.TempDir()
	original := "<?php $x = [1,2];\n"
	path := writeFile(t, dir, "a.php", original)

	opts := defaultOpts()
	opts.Stdout = true
	results, _, err := FormatPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatalf("FormatPaths failed: %v", err)
	}
	if string(results[0].Formatted) != "<?php $x = [ 1,2 ];\n" {
		t.Errorf("Formatted = %q", results[0].Formatted)
	}
	if got := readFile(t, path); got != original {
		t.Errorf("Stdout mode modified the file: %q", got)
	}
}

func TestFormatPathsRoundTripsBOMAndCRLF(t *testing.T) {
	dir := t.TempDir()
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<?php\r\n$x = [1,2];\r\n")...)
	path := filepath.Join(dir, "a.php")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := FormatPaths(context.Background(), []string{path}, defaultOpts()); err != nil {
		t.Fatalf("FormatPaths failed: %v", err)
	}

	want := append([]byte{0xEF, 0xBB, 0xBF}, []byte("<?php\r\n$x = [ 1,2 ];\r\n")...)
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("Round trip broke:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatPathsKeepsMixedLineEndings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.php", "<?php\n$x = [1,2];\r\n")

	if _, _, err := FormatPaths(context.Background(), []string{path}, defaultOpts()); err != nil {
		t.Fatalf("FormatPaths failed: %v", err)
	}

	// Only the bracket interior changes; the LF line must not become CRLF.
	want := "<?php\n$x = [ 1,2 ];\r\n"
	if got := readFile(t, path); got != want {
		t.Errorf("Mixed endings rewritten:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatPathsNoSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "# nope")

	if _, _, err := FormatPaths(context.Background(), []string{dir}, defaultOpts()); err == nil {
		t.Fatal("Expected an error when no source files match")
	}
}

func TestFormatPathsParallel(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		writeFile(t, dir, filepath.Join("sub", "f"+string(rune('a'+i))+".php"), "<?php $x = [1,2];\n")
	}

	opts := defaultOpts()
	opts.Jobs = 4
	results, summary, err := FormatPaths(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatalf("FormatPaths failed: %v", err)
	}
	if summary.Files != 20 || summary.Changed != 20 {
		t.Errorf("Summary = %+v", summary)
	}
	for _, res := range results {
		if res.Err != nil || !res.Changed {
			t.Errorf("Result %s: err=%v changed=%v", res.Path, res.Err, res.Changed)
		}
	}
}

func TestFormatFilesLoadError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.php")

	results, summary, err := FormatFiles(context.Background(), []string{missing}, defaultOpts())
	if err != nil {
		t.Fatalf("FormatFiles must not abort on a per-file error: %v", err)
	}
	if summary.Errors != 1 {
		t.Errorf("Errors = %d, want 1", summary.Errors)
	}
	if results[0].Err == nil {
		t.Error("Expected a per-file error")
	}
	if !results[0].Bag.HasErrors() {
		t.Error("Expected an I/O diagnostic in the bag")
	}
}

func TestFormatPathsSkipCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenSkipCache()
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	writeFile(t, dir, "a.php", "<?php $x = [1,2];\n")

	opts := defaultOpts()
	opts.Cache = cache

	_, first, err := FormatPaths(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Changed != 1 || first.Skipped != 0 {
		t.Errorf("First run: %+v", first)
	}

	// Second run: the written content hash is recorded, file is skipped.
	results, second, err := FormatPaths(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if second.Skipped != 1 || second.Changed != 0 {
		t.Errorf("Second run: %+v", second)
	}
	if !results[0].Skipped {
		t.Error("Expected the file to be skipped")
	}

	// NoCache forces a real pass.
	opts.NoCache = true
	_, third, err := FormatPaths(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Skipped != 0 {
		t.Errorf("Third run with NoCache: %+v", third)
	}
}

func TestFormatPathsStdoutBypassesCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenSkipCache()
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	content := "<?php $x = [ 1,2 ];\n"
	writeFile(t, dir, "a.php", content)

	opts := defaultOpts()
	opts.Cache = cache

	// First run records the clean content hash.
	if _, _, err := FormatPaths(context.Background(), []string{dir}, opts); err != nil {
		t.Fatal(err)
	}

	// A stdout run must still stream the cached-clean file.
	opts.Stdout = true
	results, summary, err := FormatPaths(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 0 {
		t.Errorf("Stdout run skipped %d files", summary.Skipped)
	}
	if results[0].Skipped {
		t.Error("Expected the file not to be skipped in stdout mode")
	}
	if string(results[0].Formatted) != content {
		t.Errorf("Formatted = %q, want %q", results[0].Formatted, content)
	}
}

func TestFormatPathsTimings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.php", "<?php $x = [1,2];\n")

	opts := defaultOpts()
	opts.Timings = true
	_, summary, err := FormatPaths(context.Background(), []string{dir}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Timings == nil || len(summary.Timings.Phases) < 2 {
		t.Errorf("Expected collect+format phases, got %+v", summary.Timings)
	}
}

func TestFormatPathsProgressEvents(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.php", "<?php $x = [1,2];\n")

	events := make(chan Event, 16)
	opts := defaultOpts()
	opts.Progress = ChannelSink{Ch: events}

	if _, _, err := FormatPaths(context.Background(), []string{dir}, opts); err != nil {
		t.Fatal(err)
	}
	close(events)

	var sawWorking, sawDone bool
	for ev := range events {
		switch ev.Status {
		case StatusWorking:
			sawWorking = true
		case StatusDone:
			sawDone = true
			if !ev.Changed {
				t.Error("Done event should carry Changed=true")
			}
		}
	}
	if !sawWorking || !sawDone {
		t.Errorf("Missing events: working=%v done=%v", sawWorking, sawDone)
	}
}
