package chain

import (
	"errors"
	"fmt"
)

// Set of reasons a block can fail validation.
var (
	ErrHashMismatch    = errors.New("block hash does not match block contents")
	ErrLinkageMismatch = errors.New("previous block hash does not match parent block")
)

// Set of reasons a mined block can't be linked to the end of a chain.
var (
	ErrStaleBlock = errors.New("block does not extend the latest block")
	ErrNotSolved  = errors.New("block hash does not solve the difficulty")
)

// ValidationError identifies the first block in a chain that failed
// validation and the reason it failed.
type ValidationError struct {
	Index uint64
	Err   error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("blk[%d]: %s", ve.Index, ve.Err)
}

// Unwrap provides support for errors.Is against the reason.
func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

// AsValidationError returns the validation error from the chain of errors
// if one exists.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil, false
	}
	return ve, true
}
