package ledger

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Signer authorizes an instruction on behalf of Key. A signer with seeds is a program derived
// identity: it holds no private key and proves its authority by deriving Key from Seeds and Program.
// A signer without seeds stands for a key whose signature was checked by the caller.
type Signer struct {
	Key     solana.PublicKey
	Program solana.PublicKey
	Seeds   [][]byte
}

// KeySigner returns a signer for a key that signed the enclosing request.
func KeySigner(key solana.PublicKey) Signer {
	return Signer{Key: key}
}

// ProgramSigner returns the program derived signer for seeds. The seeds must include the bump.
func ProgramSigner(program solana.PublicKey, seeds ...[]byte) (Signer, error) {
	key, err := solana.CreateProgramAddress(seeds, program)
	if err != nil {
		return Signer{}, fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
	}
	return Signer{Key: key, Program: program, Seeds: seeds}, nil
}

func (s Signer) IsProgramDerived() bool {
	return len(s.Seeds) != 0
}

func (s Signer) verify() error {
	if !s.IsProgramDerived() {
		return nil
	}
	return verifySeeds(s.Key, s.Program, s.Seeds)
}

func verifySeeds(addr, program solana.PublicKey, seeds [][]byte) error {
	derived, err := solana.CreateProgramAddress(seeds, program)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
	}
	if !derived.Equals(addr) {
		return fmt.Errorf("%w: derived %s, have %s", ErrInvalidSeeds, derived, addr)
	}
	return nil
}
