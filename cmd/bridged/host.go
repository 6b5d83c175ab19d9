package bridged

import (
	"fmt"
	"os"
	"strconv"

	"github.com/0xmoonear/wormhole/pkg/common"
	"github.com/0xmoonear/wormhole/pkg/ledger"
	"github.com/0xmoonear/wormhole/pkg/registry"
	"github.com/0xmoonear/wormhole/pkg/settlement"
	"github.com/gagliardetto/solana-go"
	ipfslog "github.com/ipfs/go-log/v2"
	"github.com/spf13/pflag"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
)

var (
	dataDir         string
	programID       string
	chainID         string
	env             string
	emitters        []string
	claimSeedPrefix string
	logLevel        string
)

// addHostFlags registers the flags shared by all commands operating on the local ledger.
func addHostFlags(fs *pflag.FlagSet) {
	fs.StringVar(&dataDir, "dataDir", "", "Data directory holding the ledger database")
	fs.StringVar(&programID, "programId", "", "Token bridge program id (base58)")
	fs.StringVar(&chainID, "chainId", "solana", "Wormhole chain id or name of this chain")
	fs.StringVar(&env, "env", "", `Environment whose known token bridges are trusted (i.e. "prod", "test", "dev")`)
	fs.StringSliceVar(&emitters, "emitters", nil, "Additional registered token bridges as <chain>:<hex address>")
	fs.StringVar(&claimSeedPrefix, "claimSeedPrefix", "", "Claim seed prefix; empty for unprefixed claims")
	fs.StringVar(&logLevel, "logLevel", "info", "Logging level (debug, info, warn, error, dpanic, panic, fatal)")
}

// newLogger sets up logging. The go-log zap wrapper is compatible with our usage of zap.
func newLogger() (*zap.Logger, error) {
	lvl, err := ipfslog.LevelFromString(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}

	// Our root logger. Convert directly to a regular Zap logger.
	logger := ipfslog.Logger("bridged").Desugar()

	// Override the default go-log config, which uses a magic environment variable.
	ipfslog.SetAllLoggers(lvl)

	return logger, nil
}

func parseChainID(s string) (vaa.ChainID, error) {
	if n, err := strconv.ParseUint(s, 10, 16); err == nil {
		return vaa.ChainID(n), nil
	}
	return vaa.ChainIDFromString(s)
}

func settlementConfig() (settlement.Config, error) {
	if programID == "" {
		return settlement.Config{}, fmt.Errorf("--programId must be specified")
	}
	program, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return settlement.Config{}, fmt.Errorf("invalid program id: %w", err)
	}
	chain, err := parseChainID(chainID)
	if err != nil {
		return settlement.Config{}, fmt.Errorf("invalid chain id: %w", err)
	}

	cfg := settlement.Config{
		ProgramID: program,
		ChainID:   chain,
	}
	if claimSeedPrefix != "" {
		cfg.ClaimSeedPrefix = []byte(claimSeedPrefix)
	}
	return cfg, cfg.Validate()
}

func emitterRegistry() (*registry.Registry, error) {
	r := registry.New()
	if env != "" {
		e, err := common.ParseEnvironment(env)
		if err != nil {
			return nil, err
		}
		if r, err = registry.ForEnvironment(e); err != nil {
			return nil, err
		}
	}

	for _, s := range emitters {
		e, err := registry.ParseEmitter(s)
		if err != nil {
			return nil, err
		}
		if err := r.Register(e); err != nil {
			return nil, fmt.Errorf("failed to register emitter %s: %w", s, err)
		}
	}
	return r, nil
}

func openLedger(logger *zap.Logger) (*ledger.Ledger, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("--dataDir must be specified")
	}
	return ledger.Open(logger, dataDir)
}

// host bundles what every command needs. Commands are short lived; failures exit the process.
type host struct {
	logger *zap.Logger
	ledger *ledger.Ledger
	cfg    settlement.Config
}

func mustHost(withLedger bool) *host {
	logger, err := newLogger()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	cfg, err := settlementConfig()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	h := &host{logger: logger, cfg: cfg}
	if withLedger {
		if h.ledger, err = openLedger(logger); err != nil {
			logger.Fatal("failed to open ledger", zap.String("dataDir", dataDir), zap.Error(err))
		}
	}
	return h
}

func (h *host) close() {
	if h.ledger == nil {
		return
	}
	if err := h.ledger.Close(); err != nil {
		h.logger.Error("failed to close ledger", zap.Error(err))
	}
}

func mustPublicKey(logger *zap.Logger, name, s string) solana.PublicKey {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		logger.Fatal("invalid public key", zap.String("flag", name), zap.String("value", s), zap.Error(err))
	}
	return key
}

// optionalPublicKey returns the zero key for an empty value.
func optionalPublicKey(logger *zap.Logger, name, s string) solana.PublicKey {
	if s == "" {
		return solana.PublicKey{}
	}
	return mustPublicKey(logger, name, s)
}
