package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

type formField struct {
	name, value string
}

type formFile struct {
	field, filename, contentType string
	content                      io.Reader
}

// Multipart — упорядоченный набор полей и файлов для multipart/form-data.
type Multipart struct {
	fields []formField
	files  []formFile
}

// NewMultipart returns an empty form.
func NewMultipart() *Multipart { return &Multipart{} }

// Field appends a scalar field.
func (m *Multipart) Field(name, value string) *Multipart {
	m.fields = append(m.fields, formField{name: name, value: value})
	return m
}

// File appends a file part under field.
func (m *Multipart) File(field, filename, contentType string, content io.Reader) *Multipart {
	m.files = append(m.files, formFile{field: field, filename: filename, contentType: contentType, content: content})
	return m
}

// FileCount returns the number of file parts.
func (m *Multipart) FileCount() int { return len(m.files) }

// Encode пишет форму в буфер и возвращает тело и Content-Type с boundary.
func (m *Multipart) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range m.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	for _, f := range m.files {
		if f.filename == "" {
			return nil, "", errors.New("file part without filename")
		}
		if f.content == nil {
			return nil, "", fmt.Errorf("file %s has no content", f.filename)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.field), escapeQuotes(f.filename)))
		ct := f.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.content); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", f.filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
