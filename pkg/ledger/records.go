package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

// Kind identifies what an occupied address holds. It is stored as the first byte of every record.
type Kind uint8

const (
	KindAccount Kind = iota + 1
	KindMint
	KindTokenAccount
)

func (k Kind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindMint:
		return "mint"
	case KindTokenAccount:
		return "token_account"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

type (
	// Account is a program owned data account.
	Account struct {
		Owner solana.PublicKey
		Data  []byte
	}

	// Mint describes a fungible asset.
	Mint struct {
		Decimals  uint8
		Authority solana.PublicKey
		Supply    uint64
	}

	// TokenAccount holds a balance of one mint on behalf of Owner.
	TokenAccount struct {
		Mint   solana.PublicKey
		Owner  solana.PublicKey
		Amount uint64
	}
)

const recordPrefix = "LEDGER:V1:"

func recordKey(addr solana.PublicKey) []byte {
	return []byte(recordPrefix + addr.String())
}

func encodeRecord(kind Kind, body interface{}) ([]byte, error) {
	b, err := borsh.Serialize(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMarshal, kind, err)
	}
	return append([]byte{byte(kind)}, b...), nil
}

func decodeRecord(val []byte, kind Kind, body interface{}) error {
	if len(val) < 1 {
		return fmt.Errorf("%w: empty record", ErrUnmarshal)
	}
	if Kind(val[0]) != kind {
		return fmt.Errorf("%w: want %s, have %s", ErrWrongAccountKind, kind, Kind(val[0]))
	}
	if err := borsh.Deserialize(body, val[1:]); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnmarshal, kind, err)
	}
	return nil
}
