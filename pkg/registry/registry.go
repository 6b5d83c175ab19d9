// Package registry tracks the foreign token bridge emitters whose transfers may be settled locally.
// A chain may have more than one registered emitter, for example while a token bridge is migrated.
package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/0xmoonear/wormhole/pkg/common"
	"github.com/wormhole-foundation/wormhole/sdk"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
)

var (
	ErrInvalidChain   = errors.New("registry: invalid emitter chain")
	ErrInvalidAddress = errors.New("registry: invalid emitter address")
)

// Emitter is a registered foreign token bridge.
type Emitter struct {
	Chain   vaa.ChainID
	Address vaa.Address
}

func (e Emitter) String() string {
	return fmt.Sprintf("%d:%s", e.Chain, e.Address)
}

// ParseEmitter parses "<chain>:<hex address>". The address may be shorter than 32 bytes, in which case
// it is left padded.
func ParseEmitter(s string) (Emitter, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Emitter{}, fmt.Errorf("invalid emitter %q, expected <chain>:<address>", s)
	}

	chain, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
	if err != nil {
		return Emitter{}, fmt.Errorf("%w: %s", ErrInvalidChain, err)
	}

	addr, err := vaa.StringToAddress(strings.TrimSpace(parts[1]))
	if err != nil {
		return Emitter{}, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	return Emitter{Chain: vaa.ChainID(chain), Address: addr}, nil
}

// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	emitters map[vaa.ChainID][]vaa.Address
}

func New() *Registry {
	return &Registry{
		emitters: make(map[vaa.ChainID][]vaa.Address),
	}
}

// ForEnvironment returns a registry holding the well-known token bridges of env. The unit test
// environment starts empty.
func ForEnvironment(env common.Environment) (*Registry, error) {
	r := New()

	var known map[vaa.ChainID][]byte
	switch env {
	case common.MainNet:
		known = sdk.KnownTokenbridgeEmitters
	case common.TestNet:
		known = sdk.KnownTestnetTokenbridgeEmitters
	case common.UnsafeDevNet:
		known = sdk.KnownDevnetTokenbridgeEmitters
	case common.GoTest:
		return r, nil
	default:
		return nil, fmt.Errorf("no token bridge emitters for environment %s", env)
	}

	for chain, b := range known {
		addr, err := vaa.BytesToAddress(b)
		if err != nil {
			return nil, fmt.Errorf("invalid known emitter for chain %d: %w", chain, err)
		}
		if err := r.Register(Emitter{Chain: chain, Address: addr}); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds an emitter. Registering the same emitter twice is a no-op.
func (r *Registry) Register(e Emitter) error {
	if e.Chain == vaa.ChainIDUnset {
		return ErrInvalidChain
	}
	if e.Address == (vaa.Address{}) {
		return ErrInvalidAddress
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, addr := range r.emitters[e.Chain] {
		if addr == e.Address {
			return nil
		}
	}
	r.emitters[e.Chain] = append(r.emitters[e.Chain], e.Address)
	return nil
}

// Lookup returns the addresses registered for chain.
func (r *Registry) Lookup(chain vaa.ChainID) ([]vaa.Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	addrs, ok := r.emitters[chain]
	if !ok {
		return nil, false
	}
	out := make([]vaa.Address, len(addrs))
	copy(out, addrs)
	return out, true
}

// IsRegistered reports whether addr is a registered emitter on chain.
func (r *Registry) IsRegistered(chain vaa.ChainID, addr vaa.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.emitters[chain] {
		if a == addr {
			return true
		}
	}
	return false
}

// Len returns the number of registered emitters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, addrs := range r.emitters {
		n += len(addrs)
	}
	return n
}
