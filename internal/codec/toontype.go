package codec

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TOON holds a raw TOON document. It is the package's equivalent of
// encoding/json.RawMessage: a byte-backed type for embedding a pre-rendered
// or deferred-decode sub-document inside a larger struct, JSON payload, or
// database column, without forcing an intermediate Go value through the
// full Value domain.
type TOON []byte

// MarshalText returns the document's raw bytes unchanged. A nil receiver
// marshals to the literal "null".
func (t TOON) MarshalText() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	return []byte(t), nil
}

// UnmarshalText captures data as the document's raw bytes.
func (t *TOON) UnmarshalText(data []byte) error {
	if t == nil {
		return errors.New("toon: UnmarshalText called on nil pointer")
	}
	*t = append(TOON(nil), data...)
	return nil
}

// Value implements database/sql/driver.Valuer, storing the document as a
// byte slice. A nil receiver stores SQL NULL.
func (t TOON) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return []byte(t), nil
}

// Scan implements database/sql.Scanner, accepting []byte, string, or nil.
func (t *TOON) Scan(src any) error {
	if t == nil {
		return errors.New("toon: Scan called on nil pointer")
	}
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		*t = append(TOON(nil), v...)
		return nil
	case string:
		*t = TOON(v)
		return nil
	default:
		return fmt.Errorf("toon: cannot scan %T into TOON", src)
	}
}

// MarshalJSON decodes the held TOON text and re-encodes the resulting value
// as JSON, so a TOON field round-trips through encoding/json as the
// structured value it represents rather than as an opaque string.
func (t TOON) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	value, err := Decode([]byte(t))
	if err != nil {
		return nil, fmt.Errorf("toon: marshal JSON: %w", err)
	}
	return json.Marshal(value)
}

// UnmarshalJSON captures a bare JSON string verbatim as raw TOON text (the
// shape of a tool's raw text response); JSON null yields a nil TOON; any
// other JSON value is re-encoded as TOON text via the package encoder.
func (t *TOON) UnmarshalJSON(data []byte) error {
	if t == nil {
		return errors.New("toon: UnmarshalJSON called on nil pointer")
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded == nil {
		*t = nil
		return nil
	}
	if s, ok := decoded.(string); ok {
		*t = TOON(s)
		return nil
	}
	encoded, err := MarshalString(decoded)
	if err != nil {
		return fmt.Errorf("toon: unmarshal JSON: %w", err)
	}
	*t = TOON(encoded)
	return nil
}

// String returns the document's text, or the empty string for a nil or
// zero-length document.
func (t TOON) String() string {
	if t == nil {
		return ""
	}
	return string(t)
}

// IsNil reports whether the document is nil or empty.
func (t TOON) IsNil() bool {
	return len(t) == 0
}

// rawTOON is the normalized-value representation of a TOON field: its text
// is fused directly onto the encoder's output rather than passed through
// string quoting, since it is already TOON syntax, not a string literal.
type rawTOON string

func (s *encodeState) emitRaw(prefix string, raw rawTOON, contIndent string) {
	lines := strings.Split(string(raw), "\n")
	s.emit(prefix + lines[0])
	for _, line := range lines[1:] {
		s.emit(contIndent + line)
	}
}
