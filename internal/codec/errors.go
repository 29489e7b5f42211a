package codec

import (
	"fmt"

	"golang.org/x/xerrors"
)

var (
	// ErrInputStructure marks unterminated quoted strings, invalid escape
	// sequences, and missing colons after keys. Fatal in both modes.
	ErrInputStructure = xerrors.New("toon: input structure error")
	// ErrCountMismatch marks inline/tabular/list element counts that
	// disagree with a header's declared length. Suppressed in lenient mode.
	ErrCountMismatch = xerrors.New("toon: count mismatch")
	// ErrIndentationViolation marks indentation failures. Tabs in
	// indentation, non-multiple indentation columns, and blank lines inside
	// an array are strict-mode checks, suppressed in lenient mode. A line
	// indented to a depth the parser cannot place (deeper than its parent
	// allows) is reported in both modes.
	ErrIndentationViolation = xerrors.New("toon: indentation violation")
)

// IsInputStructureError reports whether err is (or wraps) ErrInputStructure.
func IsInputStructureError(err error) bool {
	return xerrors.Is(err, ErrInputStructure)
}

// IsCountMismatchError reports whether err is (or wraps) ErrCountMismatch.
func IsCountMismatchError(err error) bool {
	return xerrors.Is(err, ErrCountMismatch)
}

// IsIndentationViolationError reports whether err is (or wraps) ErrIndentationViolation.
func IsIndentationViolationError(err error) bool {
	return xerrors.Is(err, ErrIndentationViolation)
}

type parseError struct {
	line     int
	msg      string
	category error
}

func (e parseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.msg)
}

func (e parseError) Unwrap() error {
	return e.category
}

func errorAt(line int, category error, msg string) error {
	return parseError{line: line, msg: msg, category: category}
}

func errorAtf(line int, category error, format string, args ...any) error {
	return parseError{line: line, msg: fmt.Sprintf(format, args...), category: category}
}

// errorWrap attaches line context to a lower-level error (unquoting,
// delimiter splitting, header parsing) that is always an InputStructure
// failure regardless of strict mode.
func errorWrap(line int, err error) error {
	if err == nil {
		return nil
	}
	return parseError{line: line, msg: err.Error(), category: ErrInputStructure}
}
