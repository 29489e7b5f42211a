// Package toon implements the Token-Oriented Object Notation (TOON)
// encoder and decoder described in docs/SPEC.md. TOON is a compact,
// human-readable serialization format targeting LLM workflows where predictable
// structure and reduced token counts are important. The package exposes a small
// public API while keeping implementation details inside internal packages.
package toon

import (
	"time"

	"github.com/toon-format/toon-go/internal/codec"
)

// Delimiter identifies the character used to split values inside array scopes.
type Delimiter = codec.Delimiter

const (
	// DelimiterComma is the default delimiter. It is omitted from brackets.
	DelimiterComma = codec.DelimiterComma
	// DelimiterTab uses HTAB for delimiting values.
	DelimiterTab = codec.DelimiterTab
	// DelimiterPipe uses the '|' character for delimiting values.
	DelimiterPipe = codec.DelimiterPipe
)

// EncoderOption mutates encoding behaviour.
type EncoderOption = codec.EncoderOption

// DecoderOption mutates decoder behaviour.
type DecoderOption = codec.DecoderOption

// Field represents a single key/value pair in an ordered object.
type Field = codec.Field

// Object preserves the encounter order of its fields, ensuring deterministic
// emission by the encoder.
type Object = codec.Object

// NewObject constructs an ordered Object from the provided key/value pairs.
func NewObject(fields ...Field) Object {
	return codec.NewObject(fields...)
}

// Encoder serializes Go values as TOON documents.
type Encoder = codec.Encoder

// NewEncoder constructs an Encoder using the supplied options. Absent options
// default to the TOON Core Profile recommendations (Section 19).
func NewEncoder(opts ...EncoderOption) *Encoder {
	return codec.NewEncoder(opts...)
}

// Marshal renders v into a TOON document using a temporary encoder.
func Marshal(v any, opts ...EncoderOption) ([]byte, error) {
	return codec.Marshal(v, opts...)
}

// MarshalString renders v as a TOON document string.
func MarshalString(v any, opts ...EncoderOption) (string, error) {
	return codec.MarshalString(v, opts...)
}

// WithIndent configures the number of spaces used per indentation level.
func WithIndent(spaces int) EncoderOption {
	return codec.WithIndent(spaces)
}

// WithDocumentDelimiter configures the delimiter that influences quoting
// decisions outside array scopes.
func WithDocumentDelimiter(delimiter Delimiter) EncoderOption {
	return codec.WithDocumentDelimiter(delimiter)
}

// WithArrayDelimiter configures the default delimiter declared for arrays that
// do not explicitly override the active delimiter.
func WithArrayDelimiter(delimiter Delimiter) EncoderOption {
	return codec.WithArrayDelimiter(delimiter)
}

// WithLengthMarkers enables emitting optional # markers in array headers.
func WithLengthMarkers(enabled bool) EncoderOption {
	return codec.WithLengthMarkers(enabled)
}

// WithTimeFormatter specifies the formatter used for time.Time normalization.
func WithTimeFormatter(formatter func(time.Time) string) EncoderOption {
	return codec.WithTimeFormatter(formatter)
}

// Decoder parses TOON documents into Go values that match the data model from
// Section 2. Numbers are returned as float64, objects as map[string]any, and
// arrays as []any. Strings are unescaped per Section 7.1.
type Decoder = codec.Decoder

// NewDecoder constructs a Decoder with the given options.
func NewDecoder(opts ...DecoderOption) *Decoder {
	return codec.NewDecoder(opts...)
}

// Decode parses the provided TOON document using a temporary decoder.
func Decode(data []byte, opts ...DecoderOption) (any, error) {
	return codec.Decode(data, opts...)
}

// DecodeString parses a TOON document string using a temporary decoder.
func DecodeString(s string, opts ...DecoderOption) (any, error) {
	return codec.DecodeString(s, opts...)
}

// WithStrictMode toggles the strict-mode diagnostics.
func WithStrictMode(strict bool) DecoderOption {
	return codec.WithStrictMode(strict)
}

// WithDecoderIndent configures the expected indentation step.
func WithDecoderIndent(spaces int) DecoderOption {
	return codec.WithDecoderIndent(spaces)
}

// WithDecoderDocumentDelimiter records a document delimiter in the decoder
// configuration. The decoder does not consult it: array values are split by
// the delimiter declared in each array header, and values outside arrays are
// never split.
func WithDecoderDocumentDelimiter(delimiter Delimiter) DecoderOption {
	return codec.WithDecoderDocumentDelimiter(delimiter)
}

// Unmarshal decodes the TOON document in data into v, which must be a non-nil
// pointer. Struct fields use `toon` struct tags for naming and omitempty
// semantics, mirroring Marshal behaviour.
func Unmarshal(data []byte, v any, opts ...DecoderOption) error {
	return codec.Unmarshal(data, v, opts...)
}

// UnmarshalString decodes the TOON document in s into v.
func UnmarshalString(s string, v any, opts ...DecoderOption) error {
	return codec.UnmarshalString(s, v, opts...)
}

// StructValidator runs post-population validation against a Go value after
// Unmarshal has populated it. *validator.Validate from
// github.com/go-playground/validator/v10 satisfies this directly.
type StructValidator = codec.StructValidator

// WithValidator configures a StructValidator to run after Unmarshal
// populates a struct target, surfacing its error (wrapped) to the caller.
func WithValidator(v StructValidator) DecoderOption {
	return codec.WithValidator(v)
}

// TOON holds a raw TOON document for embedding inside a larger struct, JSON
// payload, or database column. See internal/codec.TOON for the full
// behavior of its Text/JSON/SQL marshaling methods.
type TOON = codec.TOON

// Error category sentinels and predicates for the three decode failure
// categories described by the format's error model.
var (
	// ErrInputStructure marks unterminated quoted strings, invalid escape
	// sequences, and missing colons after keys. Fatal in both strict and
	// lenient decode modes.
	ErrInputStructure = codec.ErrInputStructure
	// ErrCountMismatch marks inline/tabular/list element counts that
	// disagree with a header's declared length. Suppressed in lenient mode.
	ErrCountMismatch = codec.ErrCountMismatch
	// ErrIndentationViolation marks indentation failures. The strict-mode
	// checks (tabs, non-multiple columns, blank lines inside arrays) are
	// suppressed in lenient mode; a line at a depth the parser cannot place
	// is reported in both modes.
	ErrIndentationViolation = codec.ErrIndentationViolation
)

// IsInputStructureError reports whether err is (or wraps) ErrInputStructure.
func IsInputStructureError(err error) bool {
	return codec.IsInputStructureError(err)
}

// IsCountMismatchError reports whether err is (or wraps) ErrCountMismatch.
func IsCountMismatchError(err error) bool {
	return codec.IsCountMismatchError(err)
}

// IsIndentationViolationError reports whether err is (or wraps) ErrIndentationViolation.
func IsIndentationViolationError(err error) bool {
	return codec.IsIndentationViolationError(err)
}
