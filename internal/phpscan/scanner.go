package phpscan

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/CostaMateus/bracketsmith/internal/diag"
	"github.com/CostaMateus/bracketsmith/internal/source"
)

// Options configures a Scanner.
type Options struct {
	Reporter diag.Reporter // may be nil; scan warnings are dropped then
}

// Scanner partitions a PHP file into literal and code segments. It is not a
// tokenizer: it only tracks the lexical boundaries that matter for deciding
// which bytes may be rewritten.
type Scanner struct {
	file *source.File
	cur  Cursor
	opts Options
	segs []Segment
}

// New creates a scanner over the provided file.
func New(file *source.File, opts Options) *Scanner {
	return &Scanner{
		file: file,
		cur:  NewCursor(file),
		opts: opts,
	}
}

// Scan returns the full segmentation of the file. Segments cover every byte
// of the input in order. Unterminated literals run to EOF and produce a
// warning instead of an error.
func (s *Scanner) Scan() []Segment {
	for !s.cur.EOF() {
		s.scanHTML()
		if s.cur.EOF() {
			break
		}
		s.scanPHP()
	}
	return s.segs
}

// Scan segments in-memory content without an explicit FileSet.
func Scan(content []byte) []Segment {
	fileSet := source.NewFileSet()
	file := fileSet.Get(fileSet.AddVirtual("<memory>", content))
	return New(file, Options{}).Scan()
}

func (s *Scanner) emit(kind Kind, span source.Span) {
	if span.Empty() {
		return
	}
	s.segs = append(s.segs, Segment{Kind: kind, Span: span})
}

func (s *Scanner) report(code diag.Code, span source.Span, msg string) {
	if s.opts.Reporter != nil {
		s.opts.Reporter.Report(code, diag.SevWarning, span, msg, nil)
	}
}

// scanHTML consumes host text up to the next open tag (or EOF).
func (s *Scanner) scanHTML() {
	start := s.cur.Mark()
	for !s.cur.EOF() {
		if s.cur.Peek() == '<' && s.openTagLen() > 0 {
			break
		}
		s.cur.Bump()
	}
	s.emit(KindHTML, s.cur.SpanFrom(start))
}

// openTagLen returns the byte length of an open tag at the cursor, or 0.
// Recognized: "<?php" (case-insensitive, followed by whitespace or EOF) and
// "<?=". Bare "<?" short tags are not treated as PHP.
func (s *Scanner) openTagLen() uint32 {
	rest := s.file.Content[s.cur.Off:]
	if len(rest) < 3 || rest[0] != '<' || rest[1] != '?' {
		return 0
	}
	if rest[2] == '=' {
		return 3
	}
	if len(rest) >= 5 && lower(rest[2]) == 'p' && lower(rest[3]) == 'h' && lower(rest[4]) == 'p' {
		if len(rest) == 5 {
			return 5
		}
		switch rest[5] {
		case ' ', '\t', '\r', '\n':
			return 5
		}
	}
	return 0
}

// scanPHP consumes one PHP region, from an open tag through the matching
// "?>" (or EOF), emitting code and literal segments as it goes.
func (s *Scanner) scanPHP() {
	codeMark := s.cur.Mark()
	s.cur.BumpN(s.openTagLen())

	for !s.cur.EOF() {
		b0 := s.cur.Peek()
		b1 := s.cur.PeekAt(1)
		switch {
		case b0 == '\'':
			s.flushCode(codeMark)
			s.scanSingleQuoted()
			codeMark = s.cur.Mark()
		case b0 == '"' || b0 == '`':
			s.flushCode(codeMark)
			s.scanDoubleQuoted(b0)
			codeMark = s.cur.Mark()
		case b0 == '/' && b1 == '/':
			s.flushCode(codeMark)
			s.scanLineComment(2)
			codeMark = s.cur.Mark()
		case b0 == '#' && b1 != '[':
			// "#[" is a PHP 8 attribute, not a comment; it stays code.
			s.flushCode(codeMark)
			s.scanLineComment(1)
			codeMark = s.cur.Mark()
		case b0 == '/' && b1 == '*':
			s.flushCode(codeMark)
			s.scanBlockComment()
			codeMark = s.cur.Mark()
		case b0 == '<' && b1 == '<' && s.cur.PeekAt(2) == '<':
			if s.tryHeredoc(codeMark) {
				codeMark = s.cur.Mark()
			} else {
				s.cur.Bump()
			}
		case b0 == '?' && b1 == '>':
			// The close tag itself belongs to the code segment.
			s.cur.BumpN(2)
			s.flushCode(codeMark)
			return
		default:
			s.cur.Bump()
		}
	}
	s.flushCode(codeMark)
}

func (s *Scanner) flushCode(codeMark Mark) {
	s.emit(KindCode, s.cur.SpanFrom(codeMark))
}

// scanSingleQuoted consumes a '...' string. A backslash escapes the next
// byte, which covers the two escapes PHP honors here (\\ and \') and is
// harmless for the rest.
func (s *Scanner) scanSingleQuoted() {
	start := s.cur.Mark()
	s.cur.Bump()
	for !s.cur.EOF() {
		b := s.cur.Bump()
		if b == '\\' {
			s.cur.Bump()
			continue
		}
		if b == '\'' {
			s.emit(KindString, s.cur.SpanFrom(start))
			return
		}
	}
	span := s.cur.SpanFrom(start)
	s.report(diag.ScanUnterminatedString, span, "unterminated string literal")
	s.emit(KindString, span)
}

// scanDoubleQuoted consumes a "..." or `...` string; a backslash escapes any
// next byte. Interpolated expressions stay inside the literal, which keeps
// their brackets out of reach of the rewrite pass.
func (s *Scanner) scanDoubleQuoted(term byte) {
	start := s.cur.Mark()
	s.cur.Bump()
	for !s.cur.EOF() {
		b := s.cur.Bump()
		if b == '\\' {
			s.cur.Bump()
			continue
		}
		if b == term {
			s.emit(KindString, s.cur.SpanFrom(start))
			return
		}
	}
	span := s.cur.SpanFrom(start)
	s.report(diag.ScanUnterminatedString, span, "unterminated string literal")
	s.emit(KindString, span)
}

// scanLineComment consumes a // or # comment. It ends before the newline,
// and — per PHP lexing — before a "?>" close tag, which still closes PHP
// mode from inside a line comment.
func (s *Scanner) scanLineComment(prefixLen uint32) {
	start := s.cur.Mark()
	s.cur.BumpN(prefixLen)
	for !s.cur.EOF() {
		b := s.cur.Peek()
		if b == '\n' {
			break
		}
		if b == '\r' && s.cur.PeekAt(1) == '\n' {
			break
		}
		if b == '?' && s.cur.PeekAt(1) == '>' {
			break
		}
		s.cur.Bump()
	}
	s.emit(KindLineComment, s.cur.SpanFrom(start))
}

func (s *Scanner) scanBlockComment() {
	start := s.cur.Mark()
	s.cur.BumpN(2)
	for !s.cur.EOF() {
		if s.cur.Peek() == '*' && s.cur.PeekAt(1) == '/' {
			s.cur.BumpN(2)
			s.emit(KindBlockComment, s.cur.SpanFrom(start))
			return
		}
		s.cur.Bump()
	}
	span := s.cur.SpanFrom(start)
	s.report(diag.ScanUnterminatedBlockComment, span, "unterminated block comment")
	s.emit(KindBlockComment, span)
}

// tryHeredoc attempts to consume a heredoc/nowdoc starting at "<<<". On a
// malformed opener it restores the cursor and returns false so the bytes are
// treated as plain code.
func (s *Scanner) tryHeredoc(codeMark Mark) bool {
	start := s.cur.Mark()
	s.cur.BumpN(3)
	for s.cur.Peek() == ' ' || s.cur.Peek() == '\t' {
		s.cur.Bump()
	}

	quote := byte(0)
	if b := s.cur.Peek(); b == '\'' || b == '"' {
		quote = b
		s.cur.Bump()
	}

	idStart := s.cur.Off
	if !isIdentStart(s.cur.Peek()) {
		s.cur.Reset(start)
		return false
	}
	for isIdentPart(s.cur.Peek()) {
		s.cur.Bump()
	}
	id := s.file.Content[idStart:s.cur.Off]

	if quote != 0 && !s.cur.Eat(quote) {
		s.cur.Reset(start)
		return false
	}
	s.cur.Eat('\r')
	if !s.cur.Eat('\n') {
		s.cur.Reset(start)
		return false
	}

	// Opener confirmed; everything before "<<<" is code.
	end := s.cur.Off
	s.cur.Reset(start)
	s.flushCode(codeMark)
	s.cur.Off = end

	kind := KindHeredoc
	if quote == '\'' {
		kind = KindNowdoc
	}

	idLen, err := safecast.Conv[uint32](len(id))
	if err != nil {
		panic(fmt.Errorf("heredoc id length overflow: %w", err))
	}

	// Body: the closing marker is the first line whose first non-tab/space
	// content is the id not followed by an identifier character (flexible
	// PHP 7.3+ syntax).
	for {
		if s.cur.EOF() {
			span := s.cur.SpanFrom(start)
			s.report(diag.ScanUnterminatedHeredoc, span, fmt.Sprintf("unterminated heredoc: missing closing marker %q", id))
			s.emit(kind, span)
			return true
		}
		for s.cur.Peek() == ' ' || s.cur.Peek() == '\t' {
			s.cur.Bump()
		}
		if s.matchBytes(id) && !isIdentPart(s.cur.PeekAt(idLen)) {
			s.cur.BumpN(idLen)
			s.emit(kind, s.cur.SpanFrom(start))
			return true
		}
		// Not the closer: skip the rest of the line.
		for !s.cur.EOF() && s.cur.Bump() != '\n' {
		}
	}
}

// matchBytes reports whether the content at the cursor starts with b.
func (s *Scanner) matchBytes(b []byte) bool {
	rest := s.file.Content[s.cur.Off:]
	if len(rest) < len(b) {
		return false
	}
	for i := range b {
		if rest[i] != b[i] {
			return false
		}
	}
	return true
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// PHP identifiers: [a-zA-Z_\x80-\xff][a-zA-Z0-9_\x80-\xff]*
func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
