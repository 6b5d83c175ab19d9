package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/0xmoonear/wormhole/pkg/amount"
	"github.com/0xmoonear/wormhole/pkg/claim"
	"github.com/0xmoonear/wormhole/pkg/ledger"
	"github.com/0xmoonear/wormhole/pkg/registry"
	"github.com/0xmoonear/wormhole/pkg/transfer"
	"github.com/dgraph-io/badger/v3"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	testProgram = solana.MustPublicKeyFromBase58("wormDTUJ6AWPNvk59vGQbDvGJmqbDTdgWgAqcLBCgUb")
	ethEmitter  = vaa.Address{12: 0x3e, 13: 0xe1, 14: 0x8b, 15: 0x22, 16: 0x14, 17: 0xaf, 18: 0xf9, 19: 0x70, 31: 0x85}
)

type fixture struct {
	t       *testing.T
	ledger  *ledger.Ledger
	settler *Settler

	mint           solana.PublicKey
	mintAuthority  solana.PublicKey
	custody        solana.PublicKey
	payer          solana.PublicKey
	payerToken     solana.PublicKey
	recipientToken solana.PublicKey
}

func newFixture(t *testing.T, decimals uint8, custodyBalance uint64) *fixture {
	return newFixtureWithLogger(t, zap.NewNop(), decimals, custodyBalance)
}

func newFixtureWithLogger(t *testing.T, logger *zap.Logger, decimals uint8, custodyBalance uint64) *fixture {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	l := ledger.NewLedger(logger, db)
	t.Cleanup(func() { l.Close() })

	reg := registry.New()
	require.NoError(t, reg.Register(registry.Emitter{Chain: vaa.ChainIDEthereum, Address: ethEmitter}))

	settler, err := NewSettler(logger, l, reg, Config{ProgramID: testProgram, ChainID: vaa.ChainIDSolana})
	require.NoError(t, err)

	f := &fixture{
		t:              t,
		ledger:         l,
		settler:        settler,
		mint:           solana.NewWallet().PublicKey(),
		mintAuthority:  solana.NewWallet().PublicKey(),
		payer:          solana.NewWallet().PublicKey(),
		payerToken:     solana.NewWallet().PublicKey(),
		recipientToken: solana.NewWallet().PublicKey(),
	}
	f.custody, _, err = CustodyTokenAddress(testProgram, f.mint)
	require.NoError(t, err)

	err = l.Update(context.Background(), func(tx *ledger.Tx) error {
		if err := tx.CreateMint(f.mint, decimals, f.mintAuthority); err != nil {
			return err
		}
		if err := tx.CreateTokenAccount(f.custody, f.mint, settler.CustodyAuthority()); err != nil {
			return err
		}
		if err := tx.CreateTokenAccount(f.payerToken, f.mint, f.payer); err != nil {
			return err
		}
		if err := tx.CreateTokenAccount(f.recipientToken, f.mint, solana.NewWallet().PublicKey()); err != nil {
			return err
		}
		return tx.MintTo(f.mint, f.custody, ledger.KeySigner(f.mintAuthority), custodyBalance)
	})
	require.NoError(t, err)

	return f
}

// message returns a transfer of the fixture's mint with wire amounts.
func (f *fixture) message(seq uint64, wireAmount, wireFee uint64) *transfer.Message {
	return &transfer.Message{
		EmitterChain:   vaa.ChainIDEthereum,
		EmitterAddress: ethEmitter,
		Sequence:       seq,
		PayloadID:      transfer.PayloadIDTransfer,
		Transfer: &transfer.Transfer{
			Amount:         uint256.NewInt(wireAmount),
			TokenAddress:   vaa.Address(f.mint),
			TokenChain:     vaa.ChainIDSolana,
			Recipient:      vaa.Address(f.recipientToken),
			RecipientChain: vaa.ChainIDSolana,
			RelayerFee:     uint256.NewInt(wireFee),
		},
	}
}

func (f *fixture) accounts(msg *transfer.Message) Accounts {
	claimAddr, err := f.settler.ClaimAddress(msg)
	require.NoError(f.t, err)
	return Accounts{
		Payer:          f.payer,
		Claim:          claimAddr,
		RecipientToken: f.recipientToken,
		RelayerToken:   f.payerToken,
		CustodyToken:   f.custody,
		Mint:           f.mint,
	}
}

func (f *fixture) balance(addr solana.PublicKey) uint64 {
	var amt uint64
	err := f.ledger.View(func(tx *ledger.Tx) error {
		ta, err := tx.TokenAccount(addr)
		if err != nil {
			return err
		}
		amt = ta.Amount
		return nil
	})
	require.NoError(f.t, err)
	return amt
}

func (f *fixture) claimed(msg *transfer.Message) bool {
	var claimed bool
	err := f.ledger.View(func(tx *ledger.Tx) error {
		var err error
		claimed, err = claim.IsClaimed(tx, testProgram, msg.Key(), nil)
		return err
	})
	require.NoError(f.t, err)
	return claimed
}

func TestCompleteTransferNative(t *testing.T) {
	f := newFixture(t, 8, 10_000)
	ctx := context.Background()
	msg := f.message(1, 1_000, 100)

	res, err := f.settler.CompleteTransferNative(ctx, msg, f.accounts(msg))
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000), res.Amount)
	assert.Equal(t, uint64(900), res.RecipientAmount)
	assert.Equal(t, uint64(100), res.RelayerFee)
	assert.Equal(t, f.recipientToken, res.Recipient)
	assert.Equal(t, f.payerToken, res.Relayer)
	assert.Equal(t, f.accounts(msg).Claim, res.Claim.Address)

	assert.Equal(t, uint64(900), f.balance(f.recipientToken))
	assert.Equal(t, uint64(100), f.balance(f.payerToken))
	assert.Equal(t, uint64(9_000), f.balance(f.custody))
	assert.True(t, f.claimed(msg))
}

func TestCompleteTransferNativeDenormalizes(t *testing.T) {
	tests := []struct {
		name     string
		decimals uint8
		expected uint64
	}{
		{"six decimals", 6, 10_000},
		{"nine decimals", 9, 10_000_000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.decimals, 100_000_000)
			msg := f.message(1, 1_000_000, 0)

			res, err := f.settler.CompleteTransferNative(context.Background(), msg, f.accounts(msg))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, res.Amount)
			assert.Equal(t, tc.expected, f.balance(f.recipientToken))
		})
	}
}

// createTokenAccount adds an empty token account of the fixture's mint owned by owner.
func (f *fixture) createTokenAccount(owner solana.PublicKey) solana.PublicKey {
	addr := solana.NewWallet().PublicKey()
	err := f.ledger.Update(context.Background(), func(tx *ledger.Tx) error {
		return tx.CreateTokenAccount(addr, f.mint, owner)
	})
	require.NoError(f.t, err)
	return addr
}

func TestCompleteTransferNativeFeeToRecipientAccount(t *testing.T) {
	// The payer redeems its own transfer, so the fee is owed to the recipient account.
	f := newFixture(t, 8, 10_000)
	own := f.createTokenAccount(f.payer)
	msg := f.message(1, 1_000, 100)
	msg.Transfer.Recipient = vaa.Address(own)
	accts := f.accounts(msg)
	accts.RecipientToken = own
	accts.RelayerToken = own

	res, err := f.settler.CompleteTransferNative(context.Background(), msg, accts)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), res.Amount)
	assert.Equal(t, uint64(1_000), res.RecipientAmount)
	assert.Equal(t, uint64(0), res.RelayerFee)
	assert.True(t, res.Relayer.IsZero())
	assert.Equal(t, uint64(1_000), f.balance(own))
	assert.Equal(t, uint64(9_000), f.balance(f.custody))
	assert.Equal(t, uint64(0), f.balance(f.payerToken))
}

func TestCompleteTransferNativeFeeToRecipientAccountNotOwnedByPayer(t *testing.T) {
	// The recipient account is not the payer's, so it can't double as the relayer account.
	f := newFixture(t, 8, 10_000)
	msg := f.message(1, 1_000, 100)
	accts := f.accounts(msg)
	accts.RelayerToken = f.recipientToken

	_, err := f.settler.CompleteTransferNative(context.Background(), msg, accts)
	assert.ErrorIs(t, err, ErrInvalidRelayerAccount)
	assert.Equal(t, CodeInvalidRelayerAccount, Code(err))
	assert.False(t, f.claimed(msg))
	assert.Equal(t, uint64(10_000), f.balance(f.custody))
	assert.Equal(t, uint64(0), f.balance(f.recipientToken))
}

func TestCompleteTransferNativeWithoutRelayer(t *testing.T) {
	f := newFixture(t, 8, 10_000)
	msg := f.message(1, 1_000, 100)
	accts := f.accounts(msg)
	accts.RelayerToken = solana.PublicKey{}

	res, err := f.settler.CompleteTransferNative(context.Background(), msg, accts)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), res.RecipientAmount)
	assert.Equal(t, uint64(1_000), f.balance(f.recipientToken))
	assert.Equal(t, uint64(0), f.balance(f.payerToken))
}

func TestCompleteTransferNativeAtMostOnce(t *testing.T) {
	f := newFixture(t, 8, 10_000)
	ctx := context.Background()
	msg := f.message(7, 1_000, 0)

	failures := testutil.ToFloat64(settlementFailures.WithLabelValues("already_claimed"))

	_, err := f.settler.CompleteTransferNative(ctx, msg, f.accounts(msg))
	require.NoError(t, err)

	_, err = f.settler.CompleteTransferNative(ctx, msg, f.accounts(msg))
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, CodeAlreadyClaimed, Code(err))

	assert.Equal(t, uint64(1_000), f.balance(f.recipientToken))
	assert.Equal(t, uint64(9_000), f.balance(f.custody))
	assert.Equal(t, failures+1, testutil.ToFloat64(settlementFailures.WithLabelValues("already_claimed")))

	// The next sequence number is a different message.
	next := f.message(8, 1_000, 0)
	_, err = f.settler.CompleteTransferNative(ctx, next, f.accounts(next))
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000), f.balance(f.recipientToken))
}

func TestCompleteTransferNativeConcurrent(t *testing.T) {
	f := newFixture(t, 8, 1_000_000)
	ctx := context.Background()
	msg := f.message(99, 1_000, 10)
	accts := f.accounts(msg)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.settler.CompleteTransferNative(ctx, msg, accts)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyClaimed)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, uint64(990), f.balance(f.recipientToken))
	assert.Equal(t, uint64(10), f.balance(f.payerToken))
	assert.Equal(t, uint64(1_000_000-1_000), f.balance(f.custody))
}

func TestCompleteTransferNativeRollsBackClaim(t *testing.T) {
	// Custody can't cover the transfer, so the release fails after the claim was created.
	f := newFixture(t, 8, 500)
	ctx := context.Background()
	msg := f.message(3, 1_000, 0)

	_, err := f.settler.CompleteTransferNative(ctx, msg, f.accounts(msg))
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.Equal(t, CodeTransferFailed, Code(err))

	assert.False(t, f.claimed(msg))
	assert.Equal(t, uint64(500), f.balance(f.custody))
	assert.Equal(t, uint64(0), f.balance(f.recipientToken))

	// Once custody is funded the same message settles.
	err = f.ledger.Update(ctx, func(tx *ledger.Tx) error {
		return tx.MintTo(f.mint, f.custody, ledger.KeySigner(f.mintAuthority), 500)
	})
	require.NoError(t, err)

	_, err = f.settler.CompleteTransferNative(ctx, msg, f.accounts(msg))
	require.NoError(t, err)
	assert.True(t, f.claimed(msg))
}

func TestCompleteTransferNativeAddressMismatch(t *testing.T) {
	f := newFixture(t, 8, 10_000)
	msg := f.message(1, 1_000, 0)
	accts := f.accounts(msg)
	wrong := solana.NewWallet().PublicKey()
	accts.Claim = wrong

	_, err := f.settler.CompleteTransferNative(context.Background(), msg, accts)
	assert.ErrorIs(t, err, ErrAddressMismatch)
	assert.Equal(t, CodeAddressMismatch, Code(err))

	err = f.ledger.View(func(tx *ledger.Tx) error {
		exists, err := tx.Exists(wrong)
		require.NoError(t, err)
		assert.False(t, exists)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, f.claimed(msg))
}

func TestCompleteTransferNativeRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(f *fixture, msg *transfer.Message, accts *Accounts)
		err    error
		code   ErrorCode
	}{
		{
			name: "untrusted emitter",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				msg.EmitterAddress = vaa.Address{31: 0x01}
				accts.Claim, _ = f.settler.ClaimAddress(msg)
			},
			err:  ErrUntrustedEmitter,
			code: CodeUntrustedEmitter,
		},
		{
			name: "unregistered chain",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				msg.EmitterChain = vaa.ChainIDBSC
				accts.Claim, _ = f.settler.ClaimAddress(msg)
			},
			err:  ErrUntrustedEmitter,
			code: CodeUntrustedEmitter,
		},
		{
			name: "wrapped asset",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				msg.Transfer.TokenChain = vaa.ChainIDEthereum
			},
			err:  ErrWrongSettlementPath,
			code: CodeWrongSettlementPath,
		},
		{
			name: "wrong target chain",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				msg.Transfer.RecipientChain = vaa.ChainIDEthereum
			},
			err:  ErrWrongTargetChain,
			code: CodeWrongTargetChain,
		},
		{
			name: "payload with transfer",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				msg.PayloadID = transfer.PayloadIDTransferWithPayload
				msg.Transfer = nil
			},
			err:  ErrInvalidPayload,
			code: CodeInvalidPayload,
		},
		{
			name: "mint differs from token address",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				accts.Mint = solana.NewWallet().PublicKey()
			},
			err:  ErrInvalidMint,
			code: CodeInvalidMint,
		},
		{
			name: "mint does not exist",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				missing := solana.NewWallet().PublicKey()
				msg.Transfer.TokenAddress = vaa.Address(missing)
				accts.Mint = missing
			},
			err:  ErrInvalidMint,
			code: CodeInvalidMint,
		},
		{
			name: "recipient differs from transfer",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				accts.RecipientToken = f.payerToken
			},
			err:  ErrInvalidRecipient,
			code: CodeInvalidRecipient,
		},
		{
			name: "recipient account does not exist",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				missing := solana.NewWallet().PublicKey()
				msg.Transfer.Recipient = vaa.Address(missing)
				accts.RecipientToken = missing
			},
			err:  ErrInvalidRecipient,
			code: CodeInvalidRecipient,
		},
		{
			name: "custody is not derived from the mint",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				accts.CustodyToken = f.payerToken
			},
			err:  ErrInvalidCustody,
			code: CodeInvalidCustody,
		},
		{
			name: "relayer account not owned by payer",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				accts.Payer = solana.NewWallet().PublicKey()
			},
			err:  ErrInvalidRelayerAccount,
			code: CodeInvalidRelayerAccount,
		},
		{
			name: "relayer account does not exist",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				accts.RelayerToken = solana.NewWallet().PublicKey()
			},
			err:  ErrInvalidRelayerAccount,
			code: CodeInvalidRelayerAccount,
		},
		{
			name: "fee exceeds amount",
			modify: func(f *fixture, msg *transfer.Message, accts *Accounts) {
				msg.Transfer.RelayerFee = uint256.NewInt(1_001)
			},
			err:  ErrFeeExceedsAmount,
			code: CodeFeeExceedsAmount,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, 8, 10_000)
			msg := f.message(1, 1_000, 0)
			accts := f.accounts(msg)
			tc.modify(f, msg, &accts)

			_, err := f.settler.CompleteTransferNative(context.Background(), msg, accts)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, tc.code, Code(err))

			assert.False(t, f.claimed(msg), "a rejected message stays unclaimed")
			assert.Equal(t, uint64(10_000), f.balance(f.custody))
		})
	}
}

func TestCompleteTransferNativeAmountOverflow(t *testing.T) {
	f := newFixture(t, 18, 10_000)
	msg := f.message(1, 0, 0)
	// 2^64 wire units scaled by 10^10 can't be held by a token account.
	msg.Transfer.Amount = new(uint256.Int).Lsh(uint256.NewInt(1), 64)

	_, err := f.settler.CompleteTransferNative(context.Background(), msg, f.accounts(msg))
	assert.ErrorIs(t, err, ErrAmountOverflow)
	assert.ErrorIs(t, err, amount.ErrOverflow)
	assert.Equal(t, CodeAmountOverflow, Code(err))
	assert.False(t, f.claimed(msg))

	msg = f.message(2, 1, 0)
	msg.Transfer.RelayerFee = new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	_, err = f.settler.CompleteTransferNative(context.Background(), msg, f.accounts(msg))
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestCompleteTransferNativeNilMessage(t *testing.T) {
	f := newFixture(t, 8, 0)
	_, err := f.settler.CompleteTransferNative(context.Background(), nil, Accounts{})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestCompleteTransferNativePrefixedClaims(t *testing.T) {
	f := newFixture(t, 8, 10_000)
	prefixed, err := NewSettler(zap.NewNop(), f.ledger, alwaysRegistered{}, Config{
		ProgramID:       testProgram,
		ChainID:         vaa.ChainIDSolana,
		ClaimSeedPrefix: []byte("integrator"),
	})
	require.NoError(t, err)
	assert.Equal(t, f.settler.CustodyAuthority(), prefixed.CustodyAuthority())

	msg := f.message(5, 1_000, 0)

	// The unprefixed claim address isn't the one the prefixed settler expects.
	_, err = prefixed.CompleteTransferNative(context.Background(), msg, f.accounts(msg))
	assert.ErrorIs(t, err, ErrAddressMismatch)

	claimAddr, err := prefixed.ClaimAddress(msg)
	require.NoError(t, err)
	accts := f.accounts(msg)
	accts.Claim = claimAddr
	_, err = prefixed.CompleteTransferNative(context.Background(), msg, accts)
	require.NoError(t, err)

	_, err = prefixed.CompleteTransferNative(context.Background(), msg, accts)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}

func TestCompleteTransferNativeLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	f := newFixtureWithLogger(t, zap.New(core), 8, 10_000)
	msg := f.message(1, 1_000, 0)

	_, err := f.settler.CompleteTransferNative(context.Background(), msg, f.accounts(msg))
	require.NoError(t, err)
	completed := logs.FilterMessage("completed native transfer").All()
	require.Len(t, completed, 1)
	assert.Equal(t, msg.MessageID(), completed[0].ContextMap()["msgID"])

	_, err = f.settler.CompleteTransferNative(context.Background(), msg, f.accounts(msg))
	require.Error(t, err)
	failed := logs.FilterMessage("failed to complete native transfer").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "already_claimed", failed[0].ContextMap()["reason"])
}

type alwaysRegistered struct{}

func (alwaysRegistered) IsRegistered(vaa.ChainID, vaa.Address) bool { return true }

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{ProgramID: testProgram, ChainID: vaa.ChainIDSolana}.Validate())
	assert.Error(t, Config{ChainID: vaa.ChainIDSolana}.Validate())
	assert.Error(t, Config{ProgramID: testProgram}.Validate())
	assert.ErrorIs(t, Config{
		ProgramID:       testProgram,
		ChainID:         vaa.ChainIDSolana,
		ClaimSeedPrefix: make([]byte, claim.MaxPrefixLength+1),
	}.Validate(), claim.ErrInvalidPrefix)

	_, err := NewSettler(zap.NewNop(), nil, registry.New(), Config{})
	assert.Error(t, err)
}

func TestNewSettlerRequiresDependencies(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	l := ledger.NewLedger(zap.NewNop(), db)
	t.Cleanup(func() { l.Close() })
	cfg := Config{ProgramID: testProgram, ChainID: vaa.ChainIDSolana}

	_, err = NewSettler(zap.NewNop(), nil, registry.New(), cfg)
	assert.ErrorContains(t, err, "ledger")

	_, err = NewSettler(zap.NewNop(), l, nil, cfg)
	assert.ErrorContains(t, err, "emitter registry")

	s, err := NewSettler(zap.NewNop(), l, registry.New(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestCustodyAuthority(t *testing.T) {
	a, err := CustodyAuthority(testProgram)
	require.NoError(t, err)
	b, err := CustodyAuthority(testProgram)
	require.NoError(t, err)
	assert.Equal(t, a.Key, b.Key)
	assert.True(t, a.IsProgramDerived())

	expected, _, err := solana.FindProgramAddress([][]byte{[]byte(CustodySignerSeed)}, testProgram)
	require.NoError(t, err)
	assert.Equal(t, expected, a.Key)

	other, err := CustodyAuthority(solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.NotEqual(t, a.Key, other.Key)
}

func TestCode(t *testing.T) {
	assert.Equal(t, CodeAlreadyClaimed, Code(fmt.Errorf("wrapped: %w", claim.ErrAlreadyClaimed)))
	assert.Equal(t, CodeLedgerContention, Code(fmt.Errorf("commit: %w: %w", ledger.ErrContention, badger.ErrConflict)))
	assert.Equal(t, "ledger_contention", CodeLedgerContention.String())
	assert.Equal(t, CodeUnknown, Code(errors.New("something else")))
	assert.Equal(t, CodeUnknown, Code(nil))
	assert.Equal(t, "fee_exceeds_amount", CodeFeeExceedsAmount.String())
	assert.Equal(t, "unknown", CodeUnknown.String())
	assert.Equal(t, ErrorCode(6000), CodeAlreadyClaimed)
	assert.Equal(t, ErrorCode(6003), CodeWrongSettlementPath)

	seen := make(map[ErrorCode]bool)
	for _, c := range codes {
		assert.False(t, seen[c.code], "duplicate code %d", c.code)
		seen[c.code] = true
		assert.Equal(t, c.code, Code(c.err))
	}
}
