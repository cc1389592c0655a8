package sample

import "github.com/pkg/errors"

var (
	// ErrInsufficientData is returned by indexed sampling when the request
	// exceeds the dataset's total row count.
	ErrInsufficientData = errors.New("requested sample size exceeds total available rows")

	// ErrInvalidArgument is returned for draws that are impossible to
	// satisfy, such as choosing more elements than the population holds.
	ErrInvalidArgument = errors.New("invalid argument")
)
