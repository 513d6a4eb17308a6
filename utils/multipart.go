package utils

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"zippyfetch/internal"
)

// Field is one part of a multipart/form-data body: either a text value or a
// streamed file.
type Field struct {
	name     string
	value    string
	filename string
	source   io.Reader
	size     int64
	isFile   bool
}

// TextField creates a plain form field
func TextField(name, value string) Field {
	return Field{name: name, value: value}
}

// FileField creates a streamed file field. size is -1 when unknown. A nil
// source makes the body fail when it is read.
func FileField(name, filename string, source io.Reader, size int64) Field {
	return Field{name: name, filename: filename, source: source, size: size, isFile: true}
}

// Name returns the form field name
func (f Field) Name() string {
	return f.name
}

// IsFile reports whether the field streams file content
func (f Field) IsFile() bool {
	return f.isFile
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (f Field) header(boundary string) string {
	if f.isFile {
		return fmt.Sprintf("--%s\r\nContent-Disposition: form-data; name=\"%s\"; filename=\"%s\"\r\n\r\n",
			boundary, escapeQuotes(f.name), escapeQuotes(f.filename))
	}
	return fmt.Sprintf("--%s\r\nContent-Disposition: form-data; name=\"%s\"\r\n\r\n%s\r\n",
		boundary, escapeQuotes(f.name), f.value)
}

// missingSource fails the body read for a file field built without content
type missingSource struct {
	name string
}

func (m missingSource) Read([]byte) (int, error) {
	return 0, internal.NewValidationError(m.name, "file field has no content source")
}

// Multipart is an ordered list of fields serialized on demand. Field order
// is wire order.
type Multipart struct {
	fields []Field
}

// NewMultipart starts a body with the given fields
func NewMultipart(fields ...Field) *Multipart {
	return &Multipart{fields: append([]Field(nil), fields...)}
}

// Chain appends a field and returns the body for further chaining
func (m *Multipart) Chain(field Field) *Multipart {
	m.fields = append(m.fields, field)
	return m
}

// Fields returns the fields in wire order
func (m *Multipart) Fields() []Field {
	return append([]Field(nil), m.fields...)
}

// Reader returns the encoded body. Bytes are produced as they are read and
// file sources are pulled only when the reader reaches them, so a body can
// be read once.
func (m *Multipart) Reader(boundary string) io.Reader {
	parts := make([]io.Reader, 0, len(m.fields)*3+1)
	for _, field := range m.fields {
		parts = append(parts, strings.NewReader(field.header(boundary)))
		if field.isFile {
			var source io.Reader = missingSource{name: field.name}
			if field.source != nil {
				source = field.source
			}
			parts = append(parts, source, strings.NewReader("\r\n"))
		}
	}
	parts = append(parts, strings.NewReader("--"+boundary+"--"))
	return io.MultiReader(parts...)
}

// Len returns the encoded length, or false when a file size is unknown
func (m *Multipart) Len(boundary string) (int64, bool) {
	var total int64
	for _, field := range m.fields {
		total += int64(len(field.header(boundary)))
		if field.isFile {
			if field.size < 0 {
				return 0, false
			}
			total += field.size + 2
		}
	}
	total += int64(len(boundary)) + 4
	return total, true
}

// ContentType returns the request Content-Type for boundary
func (m *Multipart) ContentType(boundary string) string {
	return "multipart/form-data; boundary=" + boundary
}

// GenerateBoundary draws length characters uniformly from alphabet
func GenerateBoundary(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", internal.NewValidationErrorWithValue("length", "boundary length cannot be negative", length)
	}

	symbols := []rune(alphabet)
	if len(symbols) == 0 {
		return "", internal.NewHostError(internal.ErrEmptyAlphabet, "boundary alphabet is empty")
	}

	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteRune(symbols[rand.IntN(len(symbols))])
	}
	return b.String(), nil
}
