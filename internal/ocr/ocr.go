// Package ocr extracts raw text from receipt images. The text goes to the
// receipt parser untouched; engines must not reformat or summarize it.
package ocr

import "context"

// Engine turns a receipt image into the text printed on it.
type Engine interface {
	ExtractText(ctx context.Context, image []byte, contentType string) (string, error)
}
