package bridged

import (
	"context"
	"fmt"
	"io"

	"github.com/0xmoonear/wormhole/pkg/ledger"
	"github.com/0xmoonear/wormhole/pkg/settlement"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	mintDecimals  *uint8
	mintAuthority *string
	tokenMint     *string
	tokenOwner    *string
	mintToAmount  *uint64
)

func init() {
	addHostFlags(LedgerCmd.PersistentFlags())

	mintDecimals = createMintCmd.Flags().Uint8("decimals", 8, "Mint decimals")
	mintAuthority = createMintCmd.Flags().String("authority", "", "Mint authority (base58)")

	tokenMint = createTokenAccountCmd.Flags().String("mint", "", "Mint held by the account (base58)")
	tokenOwner = createTokenAccountCmd.Flags().String("owner", "", "Account owner (base58)")

	createCustodyCmd.Flags().StringVar(tokenMint, "mint", "", "Mint held in custody (base58)")

	mintToCmd.Flags().StringVar(mintAuthority, "authority", "", "Mint authority (base58)")
	mintToCmd.Flags().StringVar(tokenMint, "mint", "", "Mint to issue (base58)")
	mintToAmount = mintToCmd.Flags().Uint64("amount", 0, "Amount in native units")

	LedgerCmd.AddCommand(inspectCmd)
	LedgerCmd.AddCommand(createMintCmd)
	LedgerCmd.AddCommand(createTokenAccountCmd)
	LedgerCmd.AddCommand(createCustodyCmd)
	LedgerCmd.AddCommand(mintToCmd)
}

var LedgerCmd = &cobra.Command{
	Use:               "ledger",
	Short:             "Inspect and seed the local ledger",
	PersistentPreRunE: initCommandConfig,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [ADDRESS]",
	Short: "Print the record stored at an address",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		h := mustHost(true)
		defer h.close()
		addr := mustPublicKey(h.logger, "address", args[0])

		err := h.ledger.View(func(tx *ledger.Tx) error {
			return printRecord(cmd.OutOrStdout(), tx, addr)
		})
		if err != nil {
			h.logger.Fatal("failed to inspect address", zap.Stringer("address", addr), zap.Error(err))
		}
	},
}

func printRecord(out io.Writer, tx *ledger.Tx, addr solana.PublicKey) error {
	kind, err := tx.Kind(addr)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %s\n", addr, kind)
	switch kind {
	case ledger.KindAccount:
		acct, err := tx.Account(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  owner: %s\n  data:  %x\n", acct.Owner, acct.Data)
	case ledger.KindMint:
		mint, err := tx.Mint(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  decimals:  %d\n  authority: %s\n  supply:    %d\n", mint.Decimals, mint.Authority, mint.Supply)
	case ledger.KindTokenAccount:
		ta, err := tx.TokenAccount(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  mint:   %s\n  owner:  %s\n  amount: %d\n", ta.Mint, ta.Owner, ta.Amount)
	}
	return nil
}

var createMintCmd = &cobra.Command{
	Use:   "create-mint [ADDRESS]",
	Short: "Create a mint",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		h := mustHost(true)
		defer h.close()
		addr := mustPublicKey(h.logger, "address", args[0])
		authority := mustPublicKey(h.logger, "authority", *mintAuthority)

		h.mustUpdate("create mint", func(tx *ledger.Tx) error {
			return tx.CreateMint(addr, *mintDecimals, authority)
		})
		fmt.Fprintln(cmd.OutOrStdout(), addr)
	},
}

var createTokenAccountCmd = &cobra.Command{
	Use:   "create-token-account [ADDRESS]",
	Short: "Create a token account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		h := mustHost(true)
		defer h.close()
		addr := mustPublicKey(h.logger, "address", args[0])
		mint := mustPublicKey(h.logger, "mint", *tokenMint)
		owner := mustPublicKey(h.logger, "owner", *tokenOwner)

		h.mustUpdate("create token account", func(tx *ledger.Tx) error {
			return tx.CreateTokenAccount(addr, mint, owner)
		})
		fmt.Fprintln(cmd.OutOrStdout(), addr)
	},
}

var createCustodyCmd = &cobra.Command{
	Use:   "create-custody",
	Short: "Create the custody token account of a mint, owned by the custody authority",
	Run: func(cmd *cobra.Command, args []string) {
		h := mustHost(true)
		defer h.close()
		mint := mustPublicKey(h.logger, "mint", *tokenMint)

		custody, _, err := settlement.CustodyTokenAddress(h.cfg.ProgramID, mint)
		if err != nil {
			h.logger.Fatal("failed to derive custody account", zap.Error(err))
		}
		authority, err := settlement.CustodyAuthority(h.cfg.ProgramID)
		if err != nil {
			h.logger.Fatal("failed to derive custody authority", zap.Error(err))
		}

		h.mustUpdate("create custody account", func(tx *ledger.Tx) error {
			return tx.CreateTokenAccount(custody, mint, authority.Key)
		})
		fmt.Fprintln(cmd.OutOrStdout(), custody)
	},
}

var mintToCmd = &cobra.Command{
	Use:   "mint-to [TOKEN ACCOUNT]",
	Short: "Issue new supply into a token account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		h := mustHost(true)
		defer h.close()
		to := mustPublicKey(h.logger, "token account", args[0])
		mint := mustPublicKey(h.logger, "mint", *tokenMint)
		authority := mustPublicKey(h.logger, "authority", *mintAuthority)

		h.mustUpdate("mint", func(tx *ledger.Tx) error {
			return tx.MintTo(mint, to, ledger.KeySigner(authority), *mintToAmount)
		})
		fmt.Fprintf(cmd.OutOrStdout(), "%s +%d\n", to, *mintToAmount)
	},
}

func (h *host) mustUpdate(what string, fn func(tx *ledger.Tx) error) {
	if err := h.ledger.Update(context.Background(), fn); err != nil {
		h.close()
		h.logger.Fatal("failed to "+what, zap.Error(err))
	}
}
