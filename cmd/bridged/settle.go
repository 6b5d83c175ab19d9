package bridged

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/0xmoonear/wormhole/pkg/settlement"
	"github.com/0xmoonear/wormhole/pkg/transfer"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
)

var (
	settlePayer          *string
	settleClaim          *string
	settleRecipientToken *string
	settlePayerToken     *string
	settleCustodyToken   *string
	settleMint           *string
)

func init() {
	addHostFlags(SettleCmd.Flags())
	settlePayer = SettleCmd.Flags().String("payer", "", "Payer funding the claim and relaying the transfer (base58)")
	settleClaim = SettleCmd.Flags().String("claim", "", "Claim account (default: derived from the message)")
	settleRecipientToken = SettleCmd.Flags().String("recipient-token", "", "Recipient token account (default: the transfer's recipient)")
	settlePayerToken = SettleCmd.Flags().String("payer-token", "", "Payer token account the relayer fee is paid to (optional)")
	settleCustodyToken = SettleCmd.Flags().String("custody-token", "", "Custody token account (default: derived from the mint)")
	settleMint = SettleCmd.Flags().String("mint", "", "Mint being released (default: the transfer's token address)")
}

var SettleCmd = &cobra.Command{
	Use:               "settle [VAA]",
	Short:             "Complete a hex-encoded native token transfer VAA against the local ledger",
	Long:              "Complete a native token transfer. Guardian signatures are not checked; the VAA must have been verified upstream.",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: initCommandConfig,
	Run:               runSettle,
}

func runSettle(cmd *cobra.Command, args []string) {
	h := mustHost(true)
	defer h.close()
	logger := h.logger

	b, err := hex.DecodeString(strings.TrimPrefix(args[0], "0x"))
	if err != nil {
		logger.Fatal("failed to decode VAA hex", zap.Error(err))
	}
	v, err := vaa.Unmarshal(b)
	if err != nil {
		logger.Fatal("failed to unmarshal VAA", zap.Error(err))
	}
	msg, err := transfer.MessageFromVAA(v)
	if err != nil {
		logger.Fatal("failed to decode token bridge payload", zap.Error(err))
	}

	r, err := emitterRegistry()
	if err != nil {
		logger.Fatal("failed to build emitter registry", zap.Error(err))
	}
	settler, err := settlement.NewSettler(logger, h.ledger, r, h.cfg)
	if err != nil {
		logger.Fatal("failed to create settler", zap.Error(err))
	}

	accts, err := resolveAccounts(logger, settler, h.cfg, msg)
	if err != nil {
		logger.Fatal("failed to resolve accounts", zap.Error(err))
	}

	res, err := settler.CompleteTransferNative(context.Background(), msg, accts)
	if err != nil {
		code := settlement.Code(err)
		fmt.Fprintf(cmd.OutOrStdout(), "error %d (%s): %v\n", code, code, err)
		h.close()
		os.Exit(1)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "message:   %s\n", msg.MessageID())
	fmt.Fprintf(out, "claim:     %s (bump %d)\n", res.Claim.Address, res.Claim.Bump)
	fmt.Fprintf(out, "amount:    %d\n", res.Amount)
	fmt.Fprintf(out, "recipient: %s +%d\n", res.Recipient, res.RecipientAmount)
	if res.RelayerFee > 0 {
		fmt.Fprintf(out, "relayer:   %s +%d\n", res.Relayer, res.RelayerFee)
	}
}

// resolveAccounts fills in every account not given on the command line from the message.
func resolveAccounts(logger *zap.Logger, settler *settlement.Settler, cfg settlement.Config, msg *transfer.Message) (settlement.Accounts, error) {
	if *settlePayer == "" {
		return settlement.Accounts{}, fmt.Errorf("--payer must be specified")
	}

	accts := settlement.Accounts{
		Payer:          mustPublicKey(logger, "payer", *settlePayer),
		Claim:          optionalPublicKey(logger, "claim", *settleClaim),
		RecipientToken: optionalPublicKey(logger, "recipient-token", *settleRecipientToken),
		RelayerToken:   optionalPublicKey(logger, "payer-token", *settlePayerToken),
		CustodyToken:   optionalPublicKey(logger, "custody-token", *settleCustodyToken),
		Mint:           optionalPublicKey(logger, "mint", *settleMint),
	}

	var err error
	if accts.Claim.IsZero() {
		if accts.Claim, err = settler.ClaimAddress(msg); err != nil {
			return accts, err
		}
	}

	t := msg.Transfer
	if t == nil {
		// Let settlement reject it with the proper code.
		return accts, nil
	}
	if accts.Mint.IsZero() {
		accts.Mint = solana.PublicKeyFromBytes(t.TokenAddress.Bytes())
	}
	if accts.RecipientToken.IsZero() {
		accts.RecipientToken = solana.PublicKeyFromBytes(t.Recipient.Bytes())
	}
	if accts.CustodyToken.IsZero() {
		if accts.CustodyToken, _, err = settlement.CustodyTokenAddress(cfg.ProgramID, accts.Mint); err != nil {
			return accts, err
		}
	}
	return accts, nil
}
