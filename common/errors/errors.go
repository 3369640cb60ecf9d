package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind categorizes the error
type Kind string

const (
	KindFormat       Kind = "format"        // malformed container header or chunk
	KindParse        Kind = "parse"         // JSON does not match the document schema
	KindReference    Kind = "reference"     // index out of bounds or type-incompatible target
	KindOutOfRange   Kind = "out_of_range"  // byte range exceeds declared bounds
	KindIO           Kind = "io"            // resource provider failure
	KindTypeMismatch Kind = "type_mismatch" // read requested in an incompatible numeric form
)

// Sentinels for errors.Is comparisons. Only the Kind is compared.
var (
	ErrFormat       = &Error{Kind: KindFormat, Index: -1}
	ErrParse        = &Error{Kind: KindParse, Index: -1}
	ErrReference    = &Error{Kind: KindReference, Index: -1}
	ErrOutOfRange   = &Error{Kind: KindOutOfRange, Index: -1}
	ErrIO           = &Error{Kind: KindIO, Index: -1}
	ErrTypeMismatch = &Error{Kind: KindTypeMismatch, Index: -1}
)

// Error is the structured error type used throughout the loader.
type Error struct {
	Value  any
	Cause  error
	Kind   Kind
	Entity string
	Field  string
	Detail string
	Index  int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteByte(']')

	if loc := e.Location(); loc != "" {
		b.WriteByte(' ')
		b.WriteString(loc)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Location renders the entity path, e.g. "nodes[3].children".
func (e *Error) Location() string {
	var b strings.Builder
	b.WriteString(e.Entity)
	if e.Entity != "" && e.Index >= 0 {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(e.Index))
		b.WriteByte(']')
	}
	if e.Field != "" {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(e.Field)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(kind Kind) *Builder {
	return &Builder{
		err: Error{
			Kind:  kind,
			Index: -1,
		},
	}
}

// Entity sets the document array and the position inside it. Pass a negative
// index for document-level fields.
func (b *Builder) Entity(entity string, index int) *Builder {
	b.err.Entity = entity
	b.err.Index = index
	return b
}

// Field sets the field path
func (b *Builder) Field(field string) *Builder {
	b.err.Field = field
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Format creates a container format error
func Format(msg string, args ...any) *Error {
	return New(KindFormat).Detail(msg, args...).Build()
}

// Parse creates a schema error for a field of an entity
func Parse(entity string, index int, field string, msg string, args ...any) *Error {
	return New(KindParse).Entity(entity, index).Field(field).Detail(msg, args...).Build()
}

// FieldMissing creates a missing required field error
func FieldMissing(entity string, index int, field string) *Error {
	return &Error{
		Kind:   KindParse,
		Entity: entity,
		Index:  index,
		Field:  field,
		Detail: "required field is missing",
	}
}

// Reference creates an out of bounds reference error
func Reference(entity string, index int, field string, target string, value, length int) *Error {
	return &Error{
		Kind:   KindReference,
		Entity: entity,
		Index:  index,
		Field:  field,
		Value:  value,
		Detail: fmt.Sprintf("index %d out of bounds for %s (length %d)", value, target, length),
	}
}

// Incompatible creates an error for a reference whose target has the wrong shape
func Incompatible(entity string, index int, field string, msg string, args ...any) *Error {
	return New(KindReference).Entity(entity, index).Field(field).Detail(msg, args...).Build()
}

// OutOfRange creates a byte or element range error
func OutOfRange(entity string, index int, msg string, args ...any) *Error {
	return New(KindOutOfRange).Entity(entity, index).Detail(msg, args...).Build()
}

// IO wraps a resource provider failure for the given URI
func IO(uri string, cause error) *Error {
	detail := "fetch failed"
	if uri != "" {
		detail = fmt.Sprintf("fetch %q failed", uri)
	}
	return &Error{
		Kind:   KindIO,
		Index:  -1,
		Value:  uri,
		Detail: detail,
		Cause:  cause,
	}
}

// TypeMismatch creates an error for a read whose numeric form does not fit the data
func TypeMismatch(entity string, index int, msg string, args ...any) *Error {
	return New(KindTypeMismatch).Entity(entity, index).Detail(msg, args...).Build()
}
