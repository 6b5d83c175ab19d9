package bridged

import (
	"fmt"

	"github.com/0xmoonear/wormhole/pkg/claim"
	"github.com/0xmoonear/wormhole/pkg/ledger"
	"github.com/spf13/cobra"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
)

var (
	claimEmitterChain   *string
	claimEmitterAddress *string
	claimSequence       *uint64
)

func init() {
	addHostFlags(ClaimCmd.PersistentFlags())
	claimEmitterChain = ClaimCmd.PersistentFlags().String("emitter-chain", "", "Emitter chain id or name")
	claimEmitterAddress = ClaimCmd.PersistentFlags().String("emitter-address", "", "Emitter address (hex)")
	claimSequence = ClaimCmd.PersistentFlags().Uint64("sequence", 0, "Message sequence number")

	ClaimCmd.AddCommand(claimAddressCmd)
	ClaimCmd.AddCommand(claimStatusCmd)
}

var ClaimCmd = &cobra.Command{
	Use:               "claim",
	Short:             "Inspect replay protection claims",
	PersistentPreRunE: initCommandConfig,
}

var claimAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the claim address of a message",
	Run: func(cmd *cobra.Command, args []string) {
		h := mustHost(false)
		key := mustClaimKey(h.logger)

		addr, bump, err := claim.Address(h.cfg.ProgramID, key, h.cfg.ClaimSeedPrefix)
		if err != nil {
			h.logger.Fatal("failed to derive claim address", zap.Error(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s bump=%d\n", addr, bump)
	},
}

var claimStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether a message has been claimed in the local ledger",
	Run: func(cmd *cobra.Command, args []string) {
		h := mustHost(true)
		defer h.close()
		key := mustClaimKey(h.logger)

		var claimed bool
		err := h.ledger.View(func(tx *ledger.Tx) error {
			var err error
			claimed, err = claim.IsClaimed(tx, h.cfg.ProgramID, key, h.cfg.ClaimSeedPrefix)
			return err
		})
		if err != nil {
			h.logger.Fatal("failed to read claim", zap.Error(err))
		}

		status := "unclaimed"
		if claimed {
			status = "claimed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", key, status)
	},
}

func mustClaimKey(logger *zap.Logger) claim.Key {
	chain, err := parseChainID(*claimEmitterChain)
	if err != nil {
		logger.Fatal("invalid emitter chain", zap.String("value", *claimEmitterChain), zap.Error(err))
	}
	addr, err := vaa.StringToAddress(*claimEmitterAddress)
	if err != nil {
		logger.Fatal("invalid emitter address", zap.String("value", *claimEmitterAddress), zap.Error(err))
	}
	return claim.Key{
		EmitterAddress: addr,
		EmitterChain:   chain,
		Sequence:       *claimSequence,
	}
}
