package phpscan

import (
	"github.com/CostaMateus/bracketsmith/internal/source"
)

// Kind classifies a segment of a PHP file.
type Kind uint8

const (
	// KindHTML covers bytes outside <?php / <?= regions. PHP files are
	// host-text documents; everything outside open tags is literal output.
	KindHTML Kind = iota
	// KindCode covers PHP code proper, open and close tags included.
	KindCode
	// KindString covers single-quoted, double-quoted, and backtick strings,
	// delimiters included.
	KindString
	// KindLineComment covers // and # comments up to (not including) the
	// terminating newline or close tag.
	KindLineComment
	// KindBlockComment covers /* ... */ comments.
	KindBlockComment
	// KindHeredoc covers <<<ID and <<<"ID" bodies through the closing marker.
	KindHeredoc
	// KindNowdoc covers <<<'ID' bodies through the closing marker.
	KindNowdoc
)

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindCode:
		return "code"
	case KindString:
		return "string"
	case KindLineComment:
		return "line_comment"
	case KindBlockComment:
		return "block_comment"
	case KindHeredoc:
		return "heredoc"
	case KindNowdoc:
		return "nowdoc"
	}
	return "unknown"
}

// Literal reports whether the segment's bytes must never be rewritten.
func (k Kind) Literal() bool {
	return k != KindCode
}

// Segment is one contiguous classified region. Segments produced by Scan
// cover the whole input in order without gaps or overlaps.
type Segment struct {
	Kind Kind
	Span source.Span
}
