package types

import "errors"

var (
	// ErrMissingRequiredDataset is returned when no source table matches one
	// of the required dataset markers
	ErrMissingRequiredDataset = errors.New("missing required dataset")

	// ErrMissingColumn is returned when a matched table lacks a required column
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyPeriod is returned when no message falls inside the analysis window
	ErrEmptyPeriod = errors.New("no messages in analysis period")

	// ErrInvalidPeriod is returned when the end date precedes the start date
	ErrInvalidPeriod = errors.New("invalid analysis period")
)
