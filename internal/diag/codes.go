package diag

import (
	"fmt"
)

// Code is a compact numeric diagnostic identifier with a stable string form.
type Code uint16

const (
	UnknownCode Code = 0

	// Scanner (literal-span segmentation)
	ScanInfo                     Code = 1000
	ScanUnterminatedString       Code = 1001
	ScanUnterminatedBlockComment Code = 1002
	ScanUnterminatedHeredoc      Code = 1003

	// Rewrite
	RewriteInfo         Code = 2000
	RewriteNoFixedPoint Code = 2001

	// I/O (driver only; the rewrite core never produces these)
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	// Observability
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown diagnostic",

	ScanInfo:                     "Scanner information",
	ScanUnterminatedString:       "Unterminated string literal",
	ScanUnterminatedBlockComment: "Unterminated block comment",
	ScanUnterminatedHeredoc:      "Unterminated heredoc or nowdoc",

	RewriteInfo:         "Rewrite information",
	RewriteNoFixedPoint: "Bracket rewrite did not reach a fixed point",

	IOLoadFileError:  "Failed to load file",
	IOWriteFileError: "Failed to write file",

	ObsTimings: "Timing report",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCAN%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RW%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
