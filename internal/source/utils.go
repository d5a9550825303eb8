package source

import (
	"path/filepath"
)

// normalizeCRLF rewrites \r\n line endings to \n, but only when every \n in
// the file is part of a \r\n pair. Mixed-ending files are kept exactly as
// loaded: the write path re-expands every \n, which would invent CRLF
// endings the input never had. Lone \r is left alone either way; the
// rewrite pass never crosses a line boundary, so un-normalized CR bytes are
// harmless downstream.
func normalizeCRLF(content []byte) ([]byte, bool) {
	sawCRLF := false
	for i, b := range content {
		if b != '\n' {
			continue
		}
		if i == 0 || content[i-1] != '\r' {
			return content, false
		}
		sawCRLF = true
	}
	if !sawCRLF {
		return content, false
	}

	out := make([]byte, 0, len(content))
	for i := 0; i < len(content); i++ {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i++
			continue
		}
		out = append(out, content[i])
	}
	return out, true
}

// restoreCRLF is the inverse of normalizeCRLF: every \n becomes \r\n. The
// flag is only ever set for files whose endings were uniformly \r\n, so the
// expansion is exact.
func restoreCRLF(content []byte) []byte {
	n := 0
	for _, b := range content {
		if b == '\n' {
			n++
		}
	}
	out := make([]byte, 0, len(content)+n)
	for _, b := range content {
		if b == '\n' {
			out = append(out, '\r', '\n')
		} else {
			out = append(out, b)
		}
	}
	return out
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == utf8BOM[0] && content[1] == utf8BOM[1] && content[2] == utf8BOM[2] {
		return content[3:], true
	}
	return content, false
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// No newlines: the whole file is one line.
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// Binary search: largest lineIdx[i] <= off.
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] <= off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	line := hi // 0-based line index

	if line < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	var startOff uint32
	if line == 0 {
		startOff = 0
	} else {
		startOff = lineIdx[line-1] + 1
	}
	// off sits after lineIdx[line], i.e. on line+2 in 1-based numbering
	// unless it points at the newline itself.
	if lineIdx[line] < off {
		startOff = lineIdx[line] + 1
		line++
	}

	return LineCol{Line: uint32(line + 1), Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// One canonical spelling for cross-platform diffs.
	return filepath.ToSlash(filepath.Clean(p))
}
