package diag

// Severity ranks how much a diagnostic should worry the caller. The order
// is load-bearing: bag queries compare severities, so Error must sort above
// Warning above Info.
type Severity uint8

const (
	// SevInfo is informational output, never a problem by itself.
	SevInfo Severity = iota
	// SevWarning is a recoverable condition the run survives, like an
	// unterminated literal the scanner ran to end of file.
	SevWarning
	// SevError marks a failure that makes a file's result unusable.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}
