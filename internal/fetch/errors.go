// internal/fetch/errors.go
package fetch

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyBody       = errors.New("document has no body content")
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrNoRenderer      = errors.New("browser rendering is not available")
)

// FetchError reports why a page could not be turned into a usable document.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s (HTTP %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// GetStatusCode implements retry.StatusCoder.
func (e *FetchError) GetStatusCode() int {
	return e.StatusCode
}
