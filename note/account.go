package note

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// PubKeySize is the length of a compressed secp256k1 public key.
const PubKeySize = 33

// AccountID identifies a rollup account: the owner's public key and the
// account nonce it was registered under.
type AccountID struct {
	PubKey [PubKeySize]byte
	Nonce  uint32
}

// NewAccountID builds an AccountID from a public key and nonce.
func NewAccountID(pub *ec.PublicKey, nonce uint32) AccountID {
	var id AccountID
	copy(id.PubKey[:], pub.Compressed())
	id.Nonce = nonce
	return id
}

// ParseAccountID parses the "<pubkey hex>:<nonce>" form produced by String.
func ParseAccountID(s string) (AccountID, error) {
	keyHex, nonceStr, ok := strings.Cut(s, ":")
	if !ok {
		return AccountID{}, fmt.Errorf("%w: missing nonce in %q", ErrInvalidAccountID, s)
	}
	b, err := hex.DecodeString(keyHex)
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: %w", ErrInvalidAccountID, err)
	}
	pub, err := ec.PublicKeyFromBytes(b)
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: %w", ErrInvalidAccountID, err)
	}
	nonce, err := strconv.ParseUint(nonceStr, 10, 32)
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: nonce: %w", ErrInvalidAccountID, err)
	}
	return NewAccountID(pub, uint32(nonce)), nil
}

// PublicKey decodes the owner's public key.
func (a AccountID) PublicKey() (*ec.PublicKey, error) {
	pub, err := ec.PublicKeyFromBytes(a.PubKey[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAccountID, err)
	}
	return pub, nil
}

// String returns "<pubkey hex>:<nonce>".
func (a AccountID) String() string {
	return hex.EncodeToString(a.PubKey[:]) + ":" + strconv.FormatUint(uint64(a.Nonce), 10)
}
