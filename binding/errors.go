package binding

import (
	"errors"
	"fmt"

	"github.com/drummonds/pdfbridge/engine/pdfrenderer"
)

var (
	// ErrNotInitialized is returned before Bridge.Init has succeeded or after Bridge.Close
	ErrNotInitialized = errors.New("pdf engine not initialized")
	// ErrInvalidHandle is returned for null or unknown handles and documents that failed to open
	ErrInvalidHandle = errors.New("invalid document handle")
	// ErrHandleClosed is returned when a handle is used or closed after Close
	ErrHandleClosed = errors.New("document handle already closed")
	// ErrPageIndexOutOfRange is returned for page indices outside the document
	ErrPageIndexOutOfRange = errors.New("page index out of range")
	// ErrInvalidConfig is returned by setters given an unsupported render configuration
	ErrInvalidConfig = errors.New("invalid render configuration")
)

// engineError maps engine errors onto the binding's error set
func engineError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pdfrenderer.ErrPageRange) {
		return fmt.Errorf("%w: %w", ErrPageIndexOutOfRange, err)
	}
	return err
}
