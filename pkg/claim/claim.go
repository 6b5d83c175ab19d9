// Package claim provides replay protection for consumed messages.
//
// A claim is a one byte account at an address derived from the message's emitter address, emitter
// chain and sequence, optionally prefixed with an integrator chosen seed. Acquiring a claim creates
// that account. Creation fails if the address is occupied, so a message can be acquired once for the
// lifetime of the ledger. Claims are never closed.
//
// The derivation is salted with the consuming program's id, so two programs consuming the same
// message get different claims. The prefixed and unprefixed variants live in separate address spaces;
// an integrator should pick one and use it consistently, since a message claimed under one variant is
// not considered claimed under the other.
package claim

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/0xmoonear/wormhole/pkg/ledger"
	"github.com/gagliardetto/solana-go"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// MaxPrefixLength is the longest claim seed prefix a single derivation seed can hold.
const MaxPrefixLength = solana.MaxSeedLength

var (
	ErrAlreadyClaimed  = errors.New("message already claimed")
	ErrAddressMismatch = errors.New("claim account does not match derived address")
	ErrInvalidPrefix   = errors.New("invalid claim seed prefix")
)

// Key identifies a message. The triple is unique per message across all chains.
type Key struct {
	EmitterAddress vaa.Address
	EmitterChain   vaa.ChainID
	Sequence       uint64
}

func KeyFromVAA(v *vaa.VAA) Key {
	return Key{
		EmitterAddress: v.EmitterAddress,
		EmitterChain:   v.EmitterChain,
		Sequence:       v.Sequence,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s/%d", k.EmitterChain, k.EmitterAddress, k.Sequence)
}

// Seeds returns the derivation seeds of the key: [prefix], emitter address, big-endian emitter chain and
// big-endian sequence. An empty prefix selects the unprefixed variant.
func (k Key) Seeds(prefix []byte) ([][]byte, error) {
	if len(prefix) > MaxPrefixLength {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidPrefix, len(prefix), MaxPrefixLength)
	}

	chain := make([]byte, 2)
	binary.BigEndian.PutUint16(chain, uint16(k.EmitterChain))
	sequence := make([]byte, 8)
	binary.BigEndian.PutUint64(sequence, k.Sequence)

	seeds := make([][]byte, 0, 4)
	if len(prefix) != 0 {
		seeds = append(seeds, prefix)
	}
	return append(seeds, k.EmitterAddress.Bytes(), chain, sequence), nil
}

// Address derives the claim address of key for programID, along with the bump that makes the address
// fall off the curve.
func Address(programID solana.PublicKey, key Key, prefix []byte) (solana.PublicKey, uint8, error) {
	seeds, err := key.Seeds(prefix)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive claim address for %s: %w", key, err)
	}
	return addr, bump, nil
}

// Guard is an acquired claim.
type Guard struct {
	Address solana.PublicKey
	// Bump is the derivation bump, which is also the claim's only byte of data.
	Bump uint8
}

// AccountCreator is the ledger operation a claim is acquired with.
type AccountCreator interface {
	CreateAccount(payer, addr solana.PublicKey, data []byte, owner solana.PublicKey, seeds [][]byte) error
}

// Acquire claims key for programID. claimAccount is the account the caller intends to use as the claim
// and must be the derived address; a different account fails with ErrAddressMismatch before anything is
// created. If the claim already exists Acquire fails with ErrAlreadyClaimed.
//
// Acquire must run in the same ledger transaction as the work it protects, so that a failure later in
// that transaction also rolls back the claim.
func Acquire(creator AccountCreator, programID, claimAccount, payer solana.PublicKey, key Key, prefix []byte) (*Guard, error) {
	seeds, err := key.Seeds(prefix)
	if err != nil {
		return nil, err
	}
	expected, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive claim address for %s: %w", key, err)
	}

	if !claimAccount.Equals(expected) {
		return nil, fmt.Errorf("%w: have %s, derived %s", ErrAddressMismatch, claimAccount, expected)
	}

	signerSeeds := append(seeds, []byte{bump})
	err = creator.CreateAccount(payer, expected, []byte{bump}, programID, signerSeeds)
	if errors.Is(err, ledger.ErrAccountInUse) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyClaimed, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create claim for %s: %w", key, err)
	}

	return &Guard{Address: expected, Bump: bump}, nil
}

// Reader is the ledger lookup IsClaimed needs.
type Reader interface {
	Exists(addr solana.PublicKey) (bool, error)
}

// IsClaimed reports whether key has been claimed by programID.
func IsClaimed(reader Reader, programID solana.PublicKey, key Key, prefix []byte) (bool, error) {
	addr, _, err := Address(programID, key, prefix)
	if err != nil {
		return false, err
	}
	return reader.Exists(addr)
}
