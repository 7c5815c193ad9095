package services

import "errors"

// Analyzer service errors
var (
	// ErrNoData indicates no claim file has been loaded into the session.
	ErrNoData = errors.New("no claim data loaded")
	// ErrModelNotTrained indicates predict was called before a successful
	// training run.
	ErrModelNotTrained = errors.New("model not trained yet")
)
