package domain

import "errors"

// Error kinds shared by all adapters. Wrap them with fmt.Errorf("%w: ...") and
// test with errors.Is.
var (
	ErrFetch      = errors.New("fetch error")
	ErrModel      = errors.New("model error")
	ErrStore      = errors.New("store error")
	ErrDelivery   = errors.New("delivery error")
	ErrValidation = errors.New("validation error")

	// ErrNoArticle reports that the source has nothing to offer.
	ErrNoArticle = errors.New("no article found")
	// ErrNotFound reports a missing row.
	ErrNotFound = errors.New("not found")
)
