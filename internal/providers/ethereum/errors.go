package ethereum

import (
	"errors"
	"fmt"
)

var (
	// ErrReverted is returned when a transaction was mined with a failed status
	ErrReverted = errors.New("transaction reverted")

	// ErrNotSubmitted is returned when a transaction never reached the node
	ErrNotSubmitted = errors.New("transaction not submitted")
)

// PendingError is returned when a transaction was broadcast but no receipt
// was observed before the receipt timeout. The transaction may still be mined.
type PendingError struct {
	TxHash string
	// ContractAddress is the address a pending deployment will have once mined
	ContractAddress string
}

func (e *PendingError) Error() string {
	return fmt.Sprintf("transaction %s pending after receipt timeout", e.TxHash)
}

// RevertedError is returned when a transaction was mined with a failed status
type RevertedError struct {
	TxHash string
}

func (e *RevertedError) Error() string {
	return fmt.Sprintf("transaction %s reverted", e.TxHash)
}

func (e *RevertedError) Is(target error) bool {
	return target == ErrReverted
}
