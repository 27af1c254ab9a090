package invoice

// FieldState tells whether an extracted field was never seen, seen with a
// label but not understood, or fully parsed.
type FieldState int

const (
	FieldUnset FieldState = iota
	FieldRaw
	FieldParsed
)

func (s FieldState) String() string {
	switch s {
	case FieldRaw:
		return "raw"
	case FieldParsed:
		return "parsed"
	default:
		return "unset"
	}
}

// Field holds one extracted value. A Raw field carries the labelled line
// verbatim when its pattern did not match, so the caller still sees what was
// printed on the invoice.
type Field[T any] struct {
	state FieldState
	raw   string
	value T
}

// Raw builds a degraded field from unparsed text.
func Raw[T any](text string) Field[T] {
	return Field[T]{state: FieldRaw, raw: text}
}

// Parsed builds a field holding a normalized value.
func Parsed[T any](v T) Field[T] {
	return Field[T]{state: FieldParsed, value: v}
}

func (f Field[T]) State() FieldState { return f.state }

// IsSet reports whether the field is Raw or Parsed.
func (f Field[T]) IsSet() bool { return f.state != FieldUnset }

// Value returns the parsed value; ok is false for Raw and Unset fields.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == FieldParsed
}

// RawText returns the unparsed line of a Raw field.
func (f Field[T]) RawText() (string, bool) {
	return f.raw, f.state == FieldRaw
}
