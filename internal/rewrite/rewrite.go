// Package rewrite normalizes whitespace inside single-line array-literal
// brackets: "[1,2,3]" becomes "[ 1,2,3 ]". Empty arrays, multi-line arrays,
// and regex character classes are left alone. The pass is language-agnostic;
// literal awareness comes from a pluggable Segmenter.
package rewrite

import (
	"bytes"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxPasses bounds the fixed-point loop against pathological inputs.
const DefaultMaxPasses = 20

// Segmenter supplies literal awareness to the rewrite pass. Mask returns a
// length-preserving shadow of content in which every byte that must not be
// rewritten (strings, comments, heredocs, host text) is replaced by a
// neutral byte, with CR and LF kept in place. A nil Segmenter means the
// whole text is code.
type Segmenter interface {
	Mask(content []byte) []byte
}

// Options configures a normalization run.
type Options struct {
	Segmenter Segmenter
	MaxPasses int // <= 0 means DefaultMaxPasses
}

// Result describes one normalization run.
type Result struct {
	Text      string
	Changed   bool // exact: true iff Text differs from the input
	Passes    int
	Converged bool // false when MaxPasses ran out before a fixed point
}

// spanPattern matches a single-line, non-nested bracket span: "[", an
// interior free of brackets and newlines, "]". Nested and multi-line arrays
// are intentionally left alone; reformatting them would need a real parser.
var spanPattern = regexp.MustCompile(`\[[^\[\]\r\n]*\]`)

// Normalize rewrites single-line array-literal bracket spacing in text and
// reports whether anything changed. It never fails: worst case the input
// comes back unchanged.
func Normalize(text string) (string, bool) {
	res := NormalizeWithOptions(text, Options{})
	return res.Text, res.Changed
}

// NormalizeWithOptions is Normalize with an explicit segmenter and pass cap.
// The full scan-and-replace pass is re-applied until it changes nothing,
// because a rewritten span can shift what an adjacent span looks like; the
// pass cap guarantees termination and is reported via Converged rather than
// raised as an error.
func NormalizeWithOptions(text string, opts Options) Result {
	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}

	res := Result{}
	cur := []byte(text)
	for pass := 0; pass < maxPasses; pass++ {
		next, changed := runPass(cur, opts.Segmenter)
		res.Passes = pass + 1
		cur = next
		if !changed {
			res.Converged = true
			break
		}
	}

	res.Text = string(cur)
	res.Changed = res.Text != text
	return res
}

// runPass applies one left-to-right scan-and-replace sweep. Matching runs on
// the masked shadow so literal bytes can never be matched or trimmed, while
// replacements splice the original bytes.
func runPass(content []byte, seg Segmenter) ([]byte, bool) {
	shadow := content
	if seg != nil {
		shadow = seg.Mask(content)
		if len(shadow) != len(content) {
			// Segmenter contract violation; fall back to raw text.
			shadow = content
		}
	}

	matches := spanPattern.FindAllIndex(shadow, -1)
	if len(matches) == 0 {
		return content, false
	}

	var out []byte
	changed := false
	last := 0
	for _, m := range matches {
		open, end := m[0], m[1]
		replacement, ok := rewriteSpan(content[open+1:end-1], shadow[open+1:end-1])
		if !ok || bytes.Equal(replacement, content[open:end]) {
			continue
		}
		if out == nil {
			out = make([]byte, 0, len(content)+16)
		}
		out = append(out, content[last:open]...)
		out = append(out, replacement...)
		last = end
		changed = true
	}
	if !changed {
		return content, false
	}
	out = append(out, content[last:]...)
	return out, true
}

// rewriteSpan decides the fate of one bracket interior and, when it is an
// array literal, builds the padded replacement "[ interior ]". Trim widths
// are computed on the shadow, so only code-span whitespace is ever removed;
// the kept interior is sliced from the original bytes.
func rewriteSpan(interior, shadowInterior []byte) ([]byte, bool) {
	lead := len(shadowInterior) - len(bytes.TrimLeftFunc(shadowInterior, isArraySpace))
	trail := len(shadowInterior) - len(bytes.TrimRightFunc(shadowInterior, isArraySpace))

	trimmed := interior[lead : len(interior)-trail]
	if len(trimmed) == 0 {
		// "[]" and "[ ]" are kept as-is; no forced interior spacing.
		return nil, false
	}
	if isCharClass(shadowInterior[lead : len(shadowInterior)-trail]) {
		return nil, false
	}

	replacement := make([]byte, 0, len(trimmed)+4)
	replacement = append(replacement, '[', ' ')
	replacement = append(replacement, trimmed...)
	replacement = append(replacement, ' ', ']')
	return replacement, true
}

// isCharClass is the disambiguation guard: an interior with no quote and no
// comma, made up solely of word characters, '^', '-', and backslashes, looks
// like a regex character class ("[a-z]", "[^\d-]") and is not rewritten.
// The guard trades some false negatives for not needing a regex parser.
func isCharClass(s []byte) bool {
	for _, b := range s {
		if b == '\'' || b == '"' || b == '`' || b == ',' {
			return false
		}
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRune(s[i:])
		if !isClassRune(r) {
			return false
		}
		i += size
	}
	return true
}

// isClassRune matches PCRE \w with the u flag plus the class metacharacters.
func isClassRune(r rune) bool {
	switch r {
	case '^', '-', '\\', '_':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isArraySpace is the trim predicate. Code points, not bytes: multi-byte
// whitespace and stray BOMs are trimmed whole, never split mid-sequence.
func isArraySpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
