// Package completion wraps the external generation endpoint behind a small
// interface: ordered prompt parts in, generated text out.
package completion

import (
	"context"
	"errors"
)

// Sentinel errors. Callers branch on these with errors.Is.
var (
	ErrNotConfigured = errors.New("API key not found; set GEMINI_API_KEY")
	ErrCompletion    = errors.New("completion request failed")
	ErrEmptyResponse = errors.New("completion returned no text")
)

// Part is one element of a prompt: text, or binary data with a MIME type.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// Text returns a text part.
func Text(s string) Part { return Part{Text: s} }

// Blob returns a binary part such as an image.
func Blob(data []byte, mimeType string) Part { return Part{Data: data, MIMEType: mimeType} }

// IsBlob reports whether the part carries binary data.
func (p Part) IsBlob() bool { return len(p.Data) > 0 }

// Completer sends an ordered prompt to a generation model. The first part
// is the instruction; optional image and text parts follow in that order.
// Implementations make a single attempt.
type Completer interface {
	Complete(ctx context.Context, parts ...Part) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, parts ...Part) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, parts ...Part) (string, error) {
	return f(ctx, parts...)
}
