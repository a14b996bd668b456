package note

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

const (
	// MaxValueSize is the largest encodable value, in bytes (a 256-bit amount).
	MaxValueSize = 32

	// nullifier(32) + owner pubkey(33) + owner nonce(4) + asset(4) + flags(1) + value_len(1)
	recordHeaderSize = NullifierSize + PubKeySize + 4 + 4 + 1 + 1

	flagPending    = 0x01
	flagAllowChain = 0x02
)

// Marshal encodes a note into its binary record format.
func Marshal(n *Note) ([]byte, error) {
	if n == nil {
		return nil, ErrNilNote
	}
	value := n.Value
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeValue, value)
	}
	vb := value.Bytes()
	if len(vb) > MaxValueSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrValueTooLarge, len(vb))
	}

	buf := make([]byte, recordHeaderSize+len(vb))
	offset := 0

	copy(buf[offset:offset+NullifierSize], n.Nullifier[:])
	offset += NullifierSize

	copy(buf[offset:offset+PubKeySize], n.Owner.PubKey[:])
	offset += PubKeySize

	binary.BigEndian.PutUint32(buf[offset:offset+4], n.Owner.Nonce)
	offset += 4

	binary.BigEndian.PutUint32(buf[offset:offset+4], n.AssetID)
	offset += 4

	var flags byte
	if n.Pending {
		flags |= flagPending
	}
	if n.AllowChain {
		flags |= flagAllowChain
	}
	buf[offset] = flags
	offset++

	buf[offset] = byte(len(vb))
	offset++

	copy(buf[offset:], vb)
	return buf, nil
}

// Unmarshal decodes a binary note record.
func Unmarshal(data []byte) (*Note, error) {
	if len(data) < recordHeaderSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidNoteData, len(data))
	}
	offset := 0

	n := &Note{}
	copy(n.Nullifier[:], data[offset:offset+NullifierSize])
	offset += NullifierSize

	copy(n.Owner.PubKey[:], data[offset:offset+PubKeySize])
	offset += PubKeySize

	n.Owner.Nonce = binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4

	n.AssetID = binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4

	flags := data[offset]
	offset++
	if flags&^(flagPending|flagAllowChain) != 0 {
		return nil, fmt.Errorf("%w: unknown flags 0x%02x", ErrInvalidNoteData, flags)
	}
	n.Pending = flags&flagPending != 0
	n.AllowChain = flags&flagAllowChain != 0

	valueLen := int(data[offset])
	offset++
	if valueLen > MaxValueSize {
		return nil, fmt.Errorf("%w: value length %d", ErrInvalidNoteData, valueLen)
	}
	if len(data) != offset+valueLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrInvalidNoteData, offset+valueLen, len(data))
	}
	n.Value = new(big.Int).SetBytes(data[offset:])
	return n, nil
}
