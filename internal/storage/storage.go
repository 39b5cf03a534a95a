package storage

import (
	"context"
	"io"
)

// Derivative names a stored rendition of an attachment. Uploads land in
// Original; the other sizes are produced by the platform's media pipeline
// and may be absent.
type Derivative string

const (
	Original Derivative = "original"
	Large    Derivative = "large"
	Medium   Derivative = "medium"
	Square   Derivative = "square"
)

// ParseDerivative maps a configured size name to a Derivative, falling
// back to Original for unknown values.
func ParseDerivative(s string) Derivative {
	switch Derivative(s) {
	case Large, Medium, Square:
		return Derivative(s)
	default:
		return Original
	}
}

// FileStore keeps attachment blobs keyed by file name. The message store
// only tracks the storage identifier and metadata; bytes live here.
type FileStore interface {
	// Put stores the original upload.
	Put(ctx context.Context, filename string, r io.Reader) error
	// Open returns the named derivative for reading.
	Open(ctx context.Context, d Derivative, filename string) (io.ReadCloser, error)
	// Delete removes the file and all its derivatives. Deleting an
	// absent file is not an error.
	Delete(ctx context.Context, filename string) error
}

var derivatives = []Derivative{Original, Large, Medium, Square}
