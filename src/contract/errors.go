package contract

import "errors"

// Closed set of conditions that abort an operation.
// A failed operation leaves no trace in the store, the caller observes
// exactly the same state as if the call was never made.
var (
	// Contract was already initialized
	ErrAlreadyInitialized = errors.New("contract already initialized")

	// Contract is already accepted, finished or rejected for the creator
	ErrAlreadyInProgress = errors.New("contract already in progress")

	// Contract isn't active
	ErrContractNotActive = errors.New("contract not active")

	// Contract doesn't have submitted assets
	ErrAssetsNotFound = errors.New("assets not found")

	// Payment can't be executed because there are no approved assets
	ErrNoApprovedAssets = errors.New("no approved assets")

	// Contract wasn't initialized yet
	ErrNotInitialized = errors.New("contract not initialized")

	// Amount left the signed 128-bit range
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// Caller failed to prove the required identity
	ErrNotAuthorized = errors.New("caller not authorized")

	// Early settlement was requested without a prepayment source
	ErrPrepaymentSourceMissing = errors.New("prepayment source required")
)
