package ledger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/gagliardetto/solana-go"
)

// Tx is a single ledger transaction. All reads observe the transaction's snapshot plus its own writes.
type Tx struct {
	txn     *badger.Txn
	created []Kind
}

func (tx *Tx) get(addr solana.PublicKey) ([]byte, error) {
	key := recordKey(addr)
	item, err := tx.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if err != nil {
		return nil, &DBError{Op: OpRead, Key: key, Err: err}
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, &DBError{Op: OpRead, Key: key, Err: err}
	}
	return val, nil
}

// put stores body, which must be a record value rather than a pointer to one.
func (tx *Tx) put(addr solana.PublicKey, kind Kind, body interface{}) error {
	b, err := encodeRecord(kind, body)
	if err != nil {
		return err
	}
	key := recordKey(addr)
	if err := tx.txn.Set(key, b); err != nil {
		return &DBError{Op: OpUpdate, Key: key, Err: err}
	}
	return nil
}

// create writes a new record at addr, failing with ErrAccountInUse if anything already lives there.
// The existence read is what makes concurrent creations of one address conflict.
func (tx *Tx) create(addr solana.PublicKey, kind Kind, body interface{}) error {
	exists, err := tx.Exists(addr)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAccountInUse, addr)
	}
	if err := tx.put(addr, kind, body); err != nil {
		return err
	}
	tx.created = append(tx.created, kind)
	return nil
}

// Exists reports whether addr is occupied by a record of any kind.
func (tx *Tx) Exists(addr solana.PublicKey) (bool, error) {
	_, err := tx.get(addr)
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Kind returns the kind of the record stored at addr.
func (tx *Tx) Kind(addr solana.PublicKey) (Kind, error) {
	val, err := tx.get(addr)
	if err != nil {
		return 0, err
	}
	if len(val) < 1 {
		return 0, fmt.Errorf("%w: empty record", ErrUnmarshal)
	}
	return Kind(val[0]), nil
}

func (tx *Tx) Account(addr solana.PublicKey) (*Account, error) {
	val, err := tx.get(addr)
	if err != nil {
		return nil, err
	}
	var acct Account
	if err := decodeRecord(val, KindAccount, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (tx *Tx) Mint(addr solana.PublicKey) (*Mint, error) {
	val, err := tx.get(addr)
	if err != nil {
		return nil, err
	}
	var mint Mint
	if err := decodeRecord(val, KindMint, &mint); err != nil {
		return nil, err
	}
	return &mint, nil
}

func (tx *Tx) TokenAccount(addr solana.PublicKey) (*TokenAccount, error) {
	val, err := tx.get(addr)
	if err != nil {
		return nil, err
	}
	var ta TokenAccount
	if err := decodeRecord(val, KindTokenAccount, &ta); err != nil {
		return nil, err
	}
	return &ta, nil
}

// CreateAccount creates a data account at addr owned by owner and initialized with data. When seeds are
// given, addr must be the address owner derives from them; this is how a program authorizes creating an
// account it holds no private key for. Creation fails with ErrAccountInUse if addr is occupied.
func (tx *Tx) CreateAccount(payer, addr solana.PublicKey, data []byte, owner solana.PublicKey, seeds [][]byte) error {
	if payer.IsZero() {
		return ErrMissingPayer
	}
	if len(seeds) != 0 {
		if err := verifySeeds(addr, owner, seeds); err != nil {
			return err
		}
	}

	acct := Account{
		Owner: owner,
		Data:  make([]byte, len(data)),
	}
	copy(acct.Data, data)
	return tx.create(addr, KindAccount, acct)
}

func (tx *Tx) CreateMint(addr solana.PublicKey, decimals uint8, authority solana.PublicKey) error {
	return tx.create(addr, KindMint, Mint{
		Decimals:  decimals,
		Authority: authority,
	})
}

// CreateTokenAccount creates an empty token account for mint. The mint must exist.
func (tx *Tx) CreateTokenAccount(addr, mint, owner solana.PublicKey) error {
	if _, err := tx.Mint(mint); err != nil {
		return fmt.Errorf("failed to load mint %s: %w", mint, err)
	}
	return tx.create(addr, KindTokenAccount, TokenAccount{
		Mint:  mint,
		Owner: owner,
	})
}

// MintTo issues new supply of mint into the token account to.
func (tx *Tx) MintTo(mintAddr, to solana.PublicKey, authority Signer, amount uint64) error {
	if err := authority.verify(); err != nil {
		return err
	}
	mint, err := tx.Mint(mintAddr)
	if err != nil {
		return err
	}
	if !mint.Authority.Equals(authority.Key) {
		return fmt.Errorf("%w: mint %s", ErrOwnerMismatch, mintAddr)
	}
	dst, err := tx.TokenAccount(to)
	if err != nil {
		return err
	}
	if !dst.Mint.Equals(mintAddr) {
		return ErrMintMismatch
	}
	if dst.Amount+amount < dst.Amount || mint.Supply+amount < mint.Supply {
		return ErrBalanceOverflow
	}

	dst.Amount += amount
	mint.Supply += amount
	if err := tx.put(to, KindTokenAccount, *dst); err != nil {
		return err
	}
	return tx.put(mintAddr, KindMint, *mint)
}

// Transfer moves amount of a mint between two token accounts. The source must be owned by authority.
func (tx *Tx) Transfer(from, to solana.PublicKey, authority Signer, amount uint64) error {
	if err := authority.verify(); err != nil {
		return err
	}
	src, err := tx.TokenAccount(from)
	if err != nil {
		return fmt.Errorf("failed to load source %s: %w", from, err)
	}
	dst, err := tx.TokenAccount(to)
	if err != nil {
		return fmt.Errorf("failed to load destination %s: %w", to, err)
	}
	if !src.Owner.Equals(authority.Key) {
		return fmt.Errorf("%w: %s is owned by %s, not %s", ErrOwnerMismatch, from, src.Owner, authority.Key)
	}
	if !src.Mint.Equals(dst.Mint) {
		return ErrMintMismatch
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, src.Amount, amount)
	}
	if from.Equals(to) {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return ErrBalanceOverflow
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := tx.put(from, KindTokenAccount, *src); err != nil {
		return err
	}
	return tx.put(to, KindTokenAccount, *dst)
}
