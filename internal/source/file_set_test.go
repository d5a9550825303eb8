package source

import (
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("index.php", []byte("<?php echo 1;"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	latestID, exists := fs.GetLatest("index.php")
	if !exists {
		t.Error("Expected file to exist after Add")
	}
	if latestID != id1 {
		t.Errorf("Expected latest ID to be %d, got %d", id1, latestID)
	}

	// Adding the same path again creates a new version.
	id2 := fs.Add("index.php", []byte("<?php echo 2;"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latestID, exists = fs.GetLatest("index.php")
	if !exists {
		t.Error("Expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d", id2, latestID)
	}

	// Both versions stay reachable by ID.
	if got := string(fs.Get(id1).Content); got != "<?php echo 1;" {
		t.Errorf("Expected first file content to survive, got %q", got)
	}
	if got := string(fs.Get(id2).Content); got != "<?php echo 2;" {
		t.Errorf("Expected second file content, got %q", got)
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.php", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3} // newline positions
	if len(file.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}

	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
}

func TestCRLFNormalization(t *testing.T) {
	original := []byte("a\r\nb\r\n")
	normalized, changed := normalizeCRLF(original)

	if !changed {
		t.Error("Expected CRLF normalization to be detected")
	}
	if string(normalized) != "a\nb\n" {
		t.Errorf("Expected normalized content %q, got %q", "a\nb\n", string(normalized))
	}

	// Lone \r stays put.
	loner := []byte("a\rb")
	normalized, changed = normalizeCRLF(loner)
	if changed {
		t.Error("Expected lone \\r to be left alone")
	}
	if string(normalized) != "a\rb" {
		t.Errorf("Expected %q, got %q", "a\rb", string(normalized))
	}
}

func TestCRLFNormalizationMixedEndingsUntouched(t *testing.T) {
	// One LF line, one CRLF line: normalizing would make the write path
	// expand the LF into an ending the input never had.
	mixed := []byte("a\nb\r\nc\n")
	normalized, changed := normalizeCRLF(mixed)
	if changed {
		t.Error("Mixed endings must not be normalized")
	}
	if string(normalized) != string(mixed) {
		t.Errorf("Expected %q, got %q", mixed, normalized)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"plain", []byte("<?php echo 1;\n")},
		{"crlf", []byte("<?php\r\necho 1;\r\n")},
		{"bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte("<?php echo 1;\n")...)},
		{"bom_crlf", append([]byte{0xEF, 0xBB, 0xBF}, []byte("<?php\r\necho 1;\r\n")...)},
		{"mixed_endings", []byte("<?php\necho 1;\r\n")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			content, hadBOM := removeBOM(tc.raw)
			content, hadCRLF := normalizeCRLF(content)

			flags := FileFlags(0)
			if hadBOM {
				flags |= FileHadBOM
			}
			if hadCRLF {
				flags |= FileNormalizedCRLF
			}

			fs := NewFileSet()
			file := fs.Get(fs.Add("x.php", content, flags))
			restored := file.Restore(file.Content)
			if string(restored) != string(tc.raw) {
				t.Errorf("Restore round trip broke: %q -> %q", tc.raw, restored)
			}
		})
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("x.php", []byte("ab\ncd\nef"))

	cases := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3}, // the newline belongs to line 1
		{3, 2, 1},
		{5, 2, 3},
		{6, 3, 1},
		{7, 3, 2},
	}
	for _, tc := range cases {
		start, _ := fs.Resolve(Span{File: id, Start: tc.off, End: tc.off})
		if start.Line != tc.line || start.Col != tc.col {
			t.Errorf("Resolve(%d) = %d:%d, want %d:%d", tc.off, start.Line, start.Col, tc.line, tc.col)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("x.php", []byte("first\nsecond\nthird")))

	if got := file.GetLine(1); got != "first" {
		t.Errorf("GetLine(1) = %q", got)
	}
	if got := file.GetLine(2); got != "second" {
		t.Errorf("GetLine(2) = %q", got)
	}
	if got := file.GetLine(3); got != "third" {
		t.Errorf("GetLine(3) = %q", got)
	}
	if got := file.GetLine(4); got != "" {
		t.Errorf("GetLine(4) = %q, want empty", got)
	}
	if got := file.GetLine(0); got != "" {
		t.Errorf("GetLine(0) = %q, want empty", got)
	}
}
