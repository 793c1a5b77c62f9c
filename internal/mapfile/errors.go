package mapfile

import "fmt"

// FormatError reports a malformed map file.
type FormatError struct {
	// Section is the tag the problem was found in.
	Section string

	// Line is the 1-based line number within the section, 0 when the problem
	// is not tied to a single line (e.g. a missing header entry).
	Line int

	// Text is the offending line, trimmed.
	Text string

	Reason string

	// Err is the underlying conversion error, if any.
	Err error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("map format error in <%s>", e.Section)
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	msg += ": " + e.Reason
	if e.Text != "" {
		msg += fmt.Sprintf(" (%q)", e.Text)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
