package transfer

import (
	"fmt"

	"github.com/0xmoonear/wormhole/pkg/claim"
	"github.com/wormhole-foundation/wormhole/sdk/vaa"
)

// Message is the trusted view of a token bridge VAA. Signatures and quorum are verified upstream; this
// package only interprets field values.
type Message struct {
	EmitterChain   vaa.ChainID
	EmitterAddress vaa.Address
	Sequence       uint64
	// PayloadID is the token bridge payload type of the message.
	PayloadID PayloadID
	// Transfer is set for type 1 payloads.
	Transfer *Transfer
	// TransferWithPayload is set for type 3 payloads.
	TransferWithPayload *TransferWithPayload
}

// MessageFromVAA decodes the token bridge payload of an already verified VAA.
func MessageFromVAA(v *vaa.VAA) (*Message, error) {
	id, err := PayloadType(v.Payload)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		EmitterChain:   v.EmitterChain,
		EmitterAddress: v.EmitterAddress,
		Sequence:       v.Sequence,
		PayloadID:      id,
	}

	switch id {
	case PayloadIDTransfer:
		msg.Transfer, err = DecodeTransfer(v.Payload)
	case PayloadIDTransferWithPayload:
		msg.TransferWithPayload, err = DecodeTransferWithPayload(v.Payload)
	default:
		err = fmt.Errorf("%w: %d", ErrUnsupportedPayload, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", msg.MessageID(), err)
	}

	return msg, nil
}

// Key returns the replay protection key of the message.
func (m *Message) Key() claim.Key {
	return claim.Key{
		EmitterAddress: m.EmitterAddress,
		EmitterChain:   m.EmitterChain,
		Sequence:       m.Sequence,
	}
}

// MessageID returns a human-readable emitter_chain/emitter_address/sequence tuple.
func (m *Message) MessageID() string {
	return fmt.Sprintf("%d/%s/%d", m.EmitterChain, m.EmitterAddress, m.Sequence)
}
