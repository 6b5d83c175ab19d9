package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound   = errors.New("ledger: account not found")
	ErrAccountInUse      = errors.New("ledger: address already in use")
	ErrWrongAccountKind  = errors.New("ledger: account has unexpected kind")
	ErrInvalidSeeds      = errors.New("ledger: seeds do not derive the address")
	ErrMissingPayer      = errors.New("ledger: missing payer")
	ErrOwnerMismatch     = errors.New("ledger: authority does not own the source account")
	ErrMintMismatch      = errors.New("ledger: token accounts hold different mints")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	ErrBalanceOverflow   = errors.New("ledger: balance overflow")
	ErrMarshal           = errors.New("ledger: marshal")
	ErrUnmarshal         = errors.New("ledger: unmarshal")
	ErrContention        = errors.New("ledger: transaction kept conflicting")
)

// Operation represents a database operation type
type Operation string

const (
	OpRead   Operation = "read"
	OpUpdate Operation = "update"
)

type DBError struct {
	Op  Operation
	Key []byte
	Err error
}

func (e *DBError) Unwrap() error {
	return e.Err
}

func (e *DBError) Error() string {
	return fmt.Sprintf("ledger database: %s key: %s error: %v", e.Op, e.Key, e.Err)
}
