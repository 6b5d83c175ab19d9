package common

import (
	"fmt"
	"strings"
)

// Environment selects the network a settler serves, which in turn selects its well-known token bridge
// emitters.
type Environment string

const (
	MainNet      Environment = "prod"
	TestNet      Environment = "test"
	UnsafeDevNet Environment = "dev" // local devnet; emitters are the deterministic devnet deployments
	GoTest       Environment = "unit-test"
)

// ParseEnvironment parses a string into the corresponding Environment value, allowing various reasonable variations.
func ParseEnvironment(str string) (Environment, error) {
	switch strings.ToLower(str) {
	case "prod", "mainnet":
		return MainNet, nil
	case "test", "testnet":
		return TestNet, nil
	case "dev", "devnet", "unsafedevnet":
		return UnsafeDevNet, nil
	case "unit-test", "gotest":
		return GoTest, nil
	}
	return UnsafeDevNet, fmt.Errorf("invalid environment string: %s", str)
}
