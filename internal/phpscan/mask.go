package phpscan

import (
	"github.com/CostaMateus/bracketsmith/internal/diag"
	"github.com/CostaMateus/bracketsmith/internal/source"
)

// MaskByte replaces every literal byte in the masked shadow. It is not a
// bracket, quote, comma, or guard character, so masked interiors always
// classify as array-like.
const MaskByte = '#'

// Mask builds a length-preserving shadow of content in which every byte
// inside a literal segment is replaced by MaskByte. CR and LF are kept so
// the single-line restriction of the rewrite pattern still holds. Code bytes
// are copied through untouched.
func Mask(content []byte, segments []Segment) []byte {
	shadow := make([]byte, len(content))
	copy(shadow, content)
	for _, seg := range segments {
		if !seg.Kind.Literal() {
			continue
		}
		for i := seg.Span.Start; i < seg.Span.End && int(i) < len(shadow); i++ {
			if b := shadow[i]; b != '\n' && b != '\r' {
				shadow[i] = MaskByte
			}
		}
	}
	return shadow
}

// Masker is the pluggable literal-span segmenter handed to the rewrite core.
// Each call re-scans the (possibly rewritten) content, so the shadow always
// matches the current pass.
type Masker struct {
	Name     string        // file name used in diagnostics
	Reporter diag.Reporter // may be nil
}

func (m Masker) Mask(content []byte) []byte {
	name := m.Name
	if name == "" {
		name = "<memory>"
	}
	fileSet := source.NewFileSet()
	file := fileSet.Get(fileSet.AddVirtual(name, content))
	segments := New(file, Options{Reporter: m.Reporter}).Scan()
	return Mask(content, segments)
}
