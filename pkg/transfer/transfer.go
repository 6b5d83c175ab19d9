// Package transfer decodes token bridge transfer payloads carried by VAAs.
//
// The payload layout is shared by every token bridge implementation. All integers are big-endian and
// amounts are 256-bit fixed-point values truncated to at most 8 decimals on the sending side:
//
//	[0]       payload type (1 = Transfer, 3 = TransferWithPayload)
//	[1:33]    amount
//	[33:65]   token address
//	[65:67]   token chain
//	[67:99]   recipient
//	[99:101]  recipient chain
//	[101:133] relayer fee (type 1) or sender address (type 3)
//	[133:]    arbitrary payload (type 3 only)
package transfer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
)

type PayloadID uint8

const (
	PayloadIDTransfer            PayloadID = 1
	PayloadIDTransferWithPayload PayloadID = 3
)

const (
	// TransferLength is the exact length of a type 1 payload.
	TransferLength = 133
	// transferWithPayloadMinLength is the fixed header of a type 3 payload.
	transferWithPayloadMinLength = 133
)

var (
	ErrPayloadTooShort    = errors.New("transfer payload too short")
	ErrPayloadLength      = errors.New("transfer payload has unexpected length")
	ErrUnsupportedPayload = errors.New("unsupported token bridge payload type")
)

type (
	// Transfer is a token bridge transfer which may pay a relayer fee out of the transferred amount.
	Transfer struct {
		// Amount being transferred, normalized to at most 8 decimals.
		Amount *uint256.Int
		// TokenAddress is the chain agnostic address of the token on its origin chain.
		TokenAddress vaa.Address
		// TokenChain is the origin chain of the token.
		TokenChain vaa.ChainID
		// Recipient of the transfer on the target chain.
		Recipient vaa.Address
		// RecipientChain is the target chain.
		RecipientChain vaa.ChainID
		// RelayerFee is paid to whoever redeems the transfer, normalized like Amount.
		RelayerFee *uint256.Int
	}

	// TransferWithPayload carries an arbitrary payload for the recipient contract instead of a relayer fee.
	TransferWithPayload struct {
		Amount         *uint256.Int
		TokenAddress   vaa.Address
		TokenChain     vaa.ChainID
		Recipient      vaa.Address
		RecipientChain vaa.ChainID
		FromAddress    vaa.Address
		Payload        []byte
	}
)

// PayloadType returns the token bridge payload type, or an error if the payload is empty.
func PayloadType(payload []byte) (PayloadID, error) {
	if len(payload) < 1 {
		return 0, ErrPayloadTooShort
	}
	return PayloadID(payload[0]), nil
}

// header is the part shared by both transfer payload types.
type header struct {
	amount         *uint256.Int
	tokenAddress   vaa.Address
	tokenChain     vaa.ChainID
	recipient      vaa.Address
	recipientChain vaa.ChainID
}

func decodeHeader(payload []byte) (*header, error) {
	h := &header{
		amount: new(uint256.Int).SetBytes32(payload[1:33]),
	}

	reader := bytes.NewReader(payload[33:101])
	if err := binary.Read(reader, binary.BigEndian, &h.tokenAddress); err != nil {
		return nil, fmt.Errorf("failed to read token address: %w", err)
	}
	if err := binary.Read(reader, binary.BigEndian, &h.tokenChain); err != nil {
		return nil, fmt.Errorf("failed to read token chain: %w", err)
	}
	if err := binary.Read(reader, binary.BigEndian, &h.recipient); err != nil {
		return nil, fmt.Errorf("failed to read recipient: %w", err)
	}
	if err := binary.Read(reader, binary.BigEndian, &h.recipientChain); err != nil {
		return nil, fmt.Errorf("failed to read recipient chain: %w", err)
	}

	return h, nil
}

// DecodeTransfer decodes a type 1 payload.
func DecodeTransfer(payload []byte) (*Transfer, error) {
	id, err := PayloadType(payload)
	if err != nil {
		return nil, err
	}
	if id != PayloadIDTransfer {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPayload, id)
	}
	if len(payload) != TransferLength {
		return nil, fmt.Errorf("%w: %d", ErrPayloadLength, len(payload))
	}

	h, err := decodeHeader(payload)
	if err != nil {
		return nil, err
	}

	return &Transfer{
		Amount:         h.amount,
		TokenAddress:   h.tokenAddress,
		TokenChain:     h.tokenChain,
		Recipient:      h.recipient,
		RecipientChain: h.recipientChain,
		RelayerFee:     new(uint256.Int).SetBytes32(payload[101:133]),
	}, nil
}

// DecodeTransferWithPayload decodes a type 3 payload.
func DecodeTransferWithPayload(payload []byte) (*TransferWithPayload, error) {
	id, err := PayloadType(payload)
	if err != nil {
		return nil, err
	}
	if id != PayloadIDTransferWithPayload {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedPayload, id)
	}
	if len(payload) < transferWithPayloadMinLength {
		return nil, ErrPayloadTooShort
	}

	h, err := decodeHeader(payload)
	if err != nil {
		return nil, err
	}

	t := &TransferWithPayload{
		Amount:         h.amount,
		TokenAddress:   h.tokenAddress,
		TokenChain:     h.tokenChain,
		Recipient:      h.recipient,
		RecipientChain: h.recipientChain,
		Payload:        make([]byte, len(payload)-transferWithPayloadMinLength),
	}
	copy(t.FromAddress[:], payload[101:133])
	copy(t.Payload, payload[133:])

	return t, nil
}

func (t *Transfer) Serialize() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(PayloadIDTransfer))
	writeAmount(buf, t.Amount)
	buf.Write(t.TokenAddress[:])
	vaa.MustWrite(buf, binary.BigEndian, t.TokenChain)
	buf.Write(t.Recipient[:])
	vaa.MustWrite(buf, binary.BigEndian, t.RecipientChain)
	writeAmount(buf, t.RelayerFee)
	return buf.Bytes()
}

func (t *TransferWithPayload) Serialize() []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(byte(PayloadIDTransferWithPayload))
	writeAmount(buf, t.Amount)
	buf.Write(t.TokenAddress[:])
	vaa.MustWrite(buf, binary.BigEndian, t.TokenChain)
	buf.Write(t.Recipient[:])
	vaa.MustWrite(buf, binary.BigEndian, t.RecipientChain)
	buf.Write(t.FromAddress[:])
	buf.Write(t.Payload)
	return buf.Bytes()
}

// writeAmount writes a 32 byte big-endian amount. A nil amount is written as zero.
func writeAmount(buf *bytes.Buffer, amt *uint256.Int) {
	var b [32]byte
	if amt != nil {
		b = amt.Bytes32()
	}
	buf.Write(b[:])
}
