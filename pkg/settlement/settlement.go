// Package settlement completes inbound token bridge transfers of assets native to this chain.
//
// Native assets leaving this chain are escrowed in a per-mint custody token account. Completing the
// inbound transfer releases them again: the message is claimed for replay protection, checked against
// the registered foreign token bridges and the supplied accounts, its amounts are scaled back to the
// mint's precision and the custody account pays the recipient and, optionally, the relayer. All of it
// happens in one ledger transaction, so any failure leaves the message unclaimed and the custody
// balance untouched.
package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xmoonear/wormhole/pkg/amount"
	"github.com/0xmoonear/wormhole/pkg/claim"
	"github.com/0xmoonear/wormhole/pkg/ledger"
	"github.com/0xmoonear/wormhole/pkg/transfer"
	"github.com/gagliardetto/solana-go"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
)

// CustodySignerSeed is the seed of the identity that owns every custody token account.
const CustodySignerSeed = "custody_signer"

type Config struct {
	// ProgramID is the identity of the token bridge. Claims, custody accounts and the custody
	// authority are all derived from it.
	ProgramID solana.PublicKey
	// ChainID is the wormhole chain id of this chain.
	ChainID vaa.ChainID
	// ClaimSeedPrefix selects the prefixed claim derivation when set. The token bridge itself uses
	// unprefixed claims.
	ClaimSeedPrefix []byte
}

func (c Config) Validate() error {
	if c.ProgramID.IsZero() {
		return errors.New("program id must be set")
	}
	if c.ChainID == vaa.ChainIDUnset {
		return errors.New("chain id must be set")
	}
	if len(c.ClaimSeedPrefix) > claim.MaxPrefixLength {
		return fmt.Errorf("%w: %d bytes exceeds %d", claim.ErrInvalidPrefix, len(c.ClaimSeedPrefix), claim.MaxPrefixLength)
	}
	return nil
}

// EmitterRegistry authorizes the source of a message.
type EmitterRegistry interface {
	IsRegistered(chain vaa.ChainID, addr vaa.Address) bool
}

// Accounts are the resolved accounts a settlement operates on.
type Accounts struct {
	// Payer funds the claim and relays the transfer.
	Payer solana.PublicKey
	// Claim must be the claim address derived for the message.
	Claim solana.PublicKey
	// RecipientToken is the token account named as recipient by the transfer.
	RecipientToken solana.PublicKey
	// RelayerToken is the payer's token account the relayer fee is paid to. Optional.
	RelayerToken solana.PublicKey
	// CustodyToken is the custody account of Mint.
	CustodyToken solana.PublicKey
	// Mint is the native asset being released.
	Mint solana.PublicKey
}

// Result describes a completed settlement.
type Result struct {
	Claim claim.Guard
	// Amount is the denormalized transfer amount released from custody.
	Amount uint64
	// RecipientAmount is what the recipient received.
	RecipientAmount uint64
	// RelayerFee is what the relayer received in a separate transfer. It is zero when the fee was
	// zero or owed to the recipient's own account.
	RelayerFee uint64
	Recipient  solana.PublicKey
	Relayer    solana.PublicKey
}

type Settler struct {
	logger   *zap.Logger
	ledger   *ledger.Ledger
	registry EmitterRegistry
	cfg      Config

	// custodyAuthority is derived once and signs every release from custody.
	custodyAuthority ledger.Signer
}

func NewSettler(logger *zap.Logger, l *ledger.Ledger, registry EmitterRegistry, cfg Config) (*Settler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settlement config: %w", err)
	}
	if l == nil {
		return nil, errors.New("settlement requires a ledger")
	}
	if registry == nil {
		return nil, errors.New("settlement requires an emitter registry")
	}

	authority, err := CustodyAuthority(cfg.ProgramID)
	if err != nil {
		return nil, err
	}

	return &Settler{
		logger:           logger.Named("settlement"),
		ledger:           l,
		registry:         registry,
		cfg:              cfg,
		custodyAuthority: authority,
	}, nil
}

// CustodyAuthority derives the signer that owns the custody token accounts of programID.
func CustodyAuthority(programID solana.PublicKey) (ledger.Signer, error) {
	seed := []byte(CustodySignerSeed)
	_, bump, err := solana.FindProgramAddress([][]byte{seed}, programID)
	if err != nil {
		return ledger.Signer{}, fmt.Errorf("failed to derive custody authority: %w", err)
	}
	return ledger.ProgramSigner(programID, seed, []byte{bump})
}

// CustodyTokenAddress derives the custody token account of mint.
func CustodyTokenAddress(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{mint.Bytes()}, programID)
}

// CustodyAuthority returns the custody authority used by s.
func (s *Settler) CustodyAuthority() solana.PublicKey {
	return s.custodyAuthority.Key
}

// ClaimAddress returns the claim account msg must be settled with.
func (s *Settler) ClaimAddress(msg *transfer.Message) (solana.PublicKey, error) {
	addr, _, err := claim.Address(s.cfg.ProgramID, msg.Key(), s.cfg.ClaimSeedPrefix)
	return addr, err
}

// CompleteTransferNative settles msg, releasing escrowed tokens of a mint native to this chain.
func (s *Settler) CompleteTransferNative(ctx context.Context, msg *transfer.Message, accts Accounts) (*Result, error) {
	if msg == nil {
		return nil, ErrInvalidPayload
	}

	var res *Result
	err := s.ledger.Update(ctx, func(tx *ledger.Tx) error {
		var err error
		res, err = s.completeTransferNative(tx, msg, accts)
		return err
	})
	if err != nil {
		code := Code(err)
		settlementFailures.WithLabelValues(CodeName(code)).Inc()
		s.logger.Warn("failed to complete native transfer",
			zap.String("msgID", msg.MessageID()),
			zap.Uint32("code", uint32(code)),
			zap.Stringer("reason", code),
			zap.Error(err),
		)
		return nil, err
	}

	settlementsCompleted.Inc()
	s.logger.Info("completed native transfer",
		zap.String("msgID", msg.MessageID()),
		zap.Stringer("claim", res.Claim.Address),
		zap.Stringer("mint", accts.Mint),
		zap.Stringer("recipient", res.Recipient),
		zap.Uint64("amount", res.Amount),
		zap.Uint64("recipientAmount", res.RecipientAmount),
		zap.Uint64("relayerFee", res.RelayerFee),
	)

	return res, nil
}

func (s *Settler) completeTransferNative(tx *ledger.Tx, msg *transfer.Message, accts Accounts) (*Result, error) {
	// Create the claim first. It exists only if the rest of this transaction commits.
	guard, err := claim.Acquire(tx, s.cfg.ProgramID, accts.Claim, accts.Payer, msg.Key(), s.cfg.ClaimSeedPrefix)
	if err != nil {
		return nil, err
	}

	if !s.registry.IsRegistered(msg.EmitterChain, msg.EmitterAddress) {
		return nil, fmt.Errorf("%w: %d/%s", ErrUntrustedEmitter, msg.EmitterChain, msg.EmitterAddress)
	}

	t, err := s.validateTransfer(msg, accts)
	if err != nil {
		return nil, err
	}

	mint, err := tx.Mint(accts.Mint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMint, err)
	}

	if err := s.validateTokenAccounts(tx, accts); err != nil {
		return nil, err
	}

	// Both amounts were normalized from this mint's precision on the way out.
	transferAmount, err := amount.Denormalize(t.Amount, mint.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: amount: %w", ErrAmountOverflow, err)
	}
	relayerFee, err := amount.Denormalize(t.RelayerFee, mint.Decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: relayer fee: %w", ErrAmountOverflow, err)
	}

	// The sending side never lets the fee exceed the amount.
	if relayerFee > transferAmount {
		return nil, fmt.Errorf("%w: fee %d, amount %d", ErrFeeExceedsAmount, relayerFee, transferAmount)
	}

	res := &Result{
		Claim:           *guard,
		Amount:          transferAmount,
		RecipientAmount: transferAmount,
		Recipient:       accts.RecipientToken,
	}

	// A fee owed to the recipient's own account is paid as part of the single transfer below.
	if relayerFee > 0 && !accts.RelayerToken.IsZero() && !accts.RelayerToken.Equals(accts.RecipientToken) {
		if err := tx.Transfer(accts.CustodyToken, accts.RelayerToken, s.custodyAuthority, relayerFee); err != nil {
			return nil, fmt.Errorf("%w: relayer fee: %w", ErrTransferFailed, err)
		}
		res.RecipientAmount = transferAmount - relayerFee
		res.RelayerFee = relayerFee
		res.Relayer = accts.RelayerToken
	}

	if err := tx.Transfer(accts.CustodyToken, accts.RecipientToken, s.custodyAuthority, res.RecipientAmount); err != nil {
		return nil, fmt.Errorf("%w: recipient: %w", ErrTransferFailed, err)
	}

	return res, nil
}

// validateTransfer checks the transfer payload against this chain and the supplied mint.
func (s *Settler) validateTransfer(msg *transfer.Message, accts Accounts) (*transfer.Transfer, error) {
	t := msg.Transfer
	if msg.PayloadID != transfer.PayloadIDTransfer || t == nil {
		return nil, fmt.Errorf("%w: payload type %d", ErrInvalidPayload, msg.PayloadID)
	}

	if t.RecipientChain != s.cfg.ChainID {
		return nil, fmt.Errorf("%w: %s", ErrWrongTargetChain, t.RecipientChain)
	}

	// Tokens from other chains are minted as wrapped assets, never released from custody.
	if t.TokenChain != s.cfg.ChainID {
		return nil, fmt.Errorf("%w: token chain %s", ErrWrongSettlementPath, t.TokenChain)
	}

	if !accts.Mint.Equals(solana.PublicKeyFromBytes(t.TokenAddress.Bytes())) {
		return nil, fmt.Errorf("%w: have %s, transfer names %s", ErrInvalidMint, accts.Mint, t.TokenAddress)
	}

	if !accts.RecipientToken.Equals(solana.PublicKeyFromBytes(t.Recipient.Bytes())) {
		return nil, fmt.Errorf("%w: have %s, transfer names %s", ErrInvalidRecipient, accts.RecipientToken, t.Recipient)
	}

	return t, nil
}

// validateTokenAccounts checks the custody, recipient and relayer token accounts against the mint.
func (s *Settler) validateTokenAccounts(tx *ledger.Tx, accts Accounts) error {
	custody, _, err := CustodyTokenAddress(s.cfg.ProgramID, accts.Mint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCustody, err)
	}
	if !accts.CustodyToken.Equals(custody) {
		return fmt.Errorf("%w: have %s, derived %s", ErrInvalidCustody, accts.CustodyToken, custody)
	}

	recipient, err := tx.TokenAccount(accts.RecipientToken)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecipient, err)
	}
	if !recipient.Mint.Equals(accts.Mint) {
		return fmt.Errorf("%w: holds mint %s", ErrInvalidRecipient, recipient.Mint)
	}

	if accts.RelayerToken.IsZero() {
		return nil
	}
	relayer, err := tx.TokenAccount(accts.RelayerToken)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRelayerAccount, err)
	}
	if !relayer.Mint.Equals(accts.Mint) {
		return fmt.Errorf("%w: holds mint %s", ErrInvalidRelayerAccount, relayer.Mint)
	}
	if !relayer.Owner.Equals(accts.Payer) {
		return fmt.Errorf("%w: owned by %s, not the payer", ErrInvalidRelayerAccount, relayer.Owner)
	}

	return nil
}
