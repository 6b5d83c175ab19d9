package settlement

import (
	"errors"

	"github.com/0xmoonear/wormhole/pkg/claim"
	"github.com/0xmoonear/wormhole/pkg/ledger"
)

// Settlement failures. Each maps to a stable ErrorCode.
var (
	ErrAlreadyClaimed        = claim.ErrAlreadyClaimed
	ErrAddressMismatch       = claim.ErrAddressMismatch
	ErrUntrustedEmitter      = errors.New("emitter is not a registered token bridge")
	ErrWrongSettlementPath   = errors.New("token is not native to this chain")
	ErrInvalidMint           = errors.New("mint does not match the transferred token")
	ErrAmountOverflow        = errors.New("amount overflows native precision")
	ErrTransferFailed        = errors.New("token transfer failed")
	ErrInvalidPayload        = errors.New("message is not a token bridge transfer")
	ErrWrongTargetChain      = errors.New("transfer is not addressed to this chain")
	ErrInvalidRecipient      = errors.New("recipient token account does not match the transfer")
	ErrInvalidRelayerAccount = errors.New("relayer token account is not valid for this transfer")
	ErrInvalidCustody        = errors.New("custody token account does not match the mint")
	ErrFeeExceedsAmount      = errors.New("relayer fee exceeds transfer amount")
	ErrLedgerContention      = ledger.ErrContention
)

// ErrorCode is the stable diagnostic code of a settlement failure.
type ErrorCode uint32

const (
	CodeAlreadyClaimed        ErrorCode = 6000
	CodeAddressMismatch       ErrorCode = 6001
	CodeUntrustedEmitter      ErrorCode = 6002
	CodeWrongSettlementPath   ErrorCode = 6003
	CodeInvalidMint           ErrorCode = 6004
	CodeAmountOverflow        ErrorCode = 6005
	CodeTransferFailed        ErrorCode = 6006
	CodeInvalidPayload        ErrorCode = 6007
	CodeWrongTargetChain      ErrorCode = 6008
	CodeInvalidRecipient      ErrorCode = 6009
	CodeInvalidRelayerAccount ErrorCode = 6010
	CodeInvalidCustody        ErrorCode = 6011
	CodeFeeExceedsAmount      ErrorCode = 6012
	CodeLedgerContention      ErrorCode = 6013
	CodeUnknown               ErrorCode = 6999
)

var codes = []struct {
	err  error
	code ErrorCode
	name string
}{
	{ErrAlreadyClaimed, CodeAlreadyClaimed, "already_claimed"},
	{ErrAddressMismatch, CodeAddressMismatch, "address_mismatch"},
	{ErrUntrustedEmitter, CodeUntrustedEmitter, "untrusted_emitter"},
	{ErrWrongSettlementPath, CodeWrongSettlementPath, "wrong_settlement_path"},
	{ErrInvalidMint, CodeInvalidMint, "invalid_mint"},
	{ErrAmountOverflow, CodeAmountOverflow, "amount_overflow"},
	{ErrTransferFailed, CodeTransferFailed, "transfer_failed"},
	{ErrInvalidPayload, CodeInvalidPayload, "invalid_payload"},
	{ErrWrongTargetChain, CodeWrongTargetChain, "wrong_target_chain"},
	{ErrInvalidRecipient, CodeInvalidRecipient, "invalid_recipient"},
	{ErrInvalidRelayerAccount, CodeInvalidRelayerAccount, "invalid_relayer_account"},
	{ErrInvalidCustody, CodeInvalidCustody, "invalid_custody"},
	{ErrFeeExceedsAmount, CodeFeeExceedsAmount, "fee_exceeds_amount"},
	{ErrLedgerContention, CodeLedgerContention, "ledger_contention"},
}

// Code classifies err. Errors that aren't settlement failures map to CodeUnknown.
func Code(err error) ErrorCode {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}

// CodeName returns the stable name of code, used in logs and metric labels.
func CodeName(code ErrorCode) string {
	for _, c := range codes {
		if c.code == code {
			return c.name
		}
	}
	return "unknown"
}

func (c ErrorCode) String() string {
	return CodeName(c)
}
