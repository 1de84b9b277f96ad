package evaluation

import "errors"

// Sentinel errors for this package.
var (
	// ErrEmptySubmission is returned for blank code.
	ErrEmptySubmission = errors.New("empty submission")

	errNoFeatureTable = errors.New("no feature table for language")
)
