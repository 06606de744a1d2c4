package dataset

import (
	"fmt"
)

type Kind int

const (
	KindDirectoryCreation Kind = iota + 1
	KindNetworkTransfer
	KindFileWrite
)

func (k Kind) String() string {
	switch k {
	case KindDirectoryCreation:
		return "create directory"
	case KindNetworkTransfer:
		return "download"
	case KindFileWrite:
		return "write cache file"
	default:
		return "unknown"
	}
}

// FetchError is the single error type EnsureCached returns. Kind identifies
// the failing step; Err carries the cause with its stack.
type FetchError struct {
	Kind Kind
	URL  string
	Path string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failed for %s (%s): %v", e.Kind, e.Path, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
