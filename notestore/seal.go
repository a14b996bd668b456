package notestore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"golang.org/x/crypto/hkdf"

	"github.com/bitfsorg/notepicker-go/note"
)

const (
	// sealInfo is the HKDF info string for note record keys.
	sealInfo = "notepicker-note-record"

	sealKeyLen   = 32
	sealNonceLen = 12
	sealTagLen   = 16
)

// sealer encrypts note records at rest.
//
//	secret     = ECDH(D_seal, P_seal).x
//	record_key = HKDF-SHA256(secret, salt = nullifier, info = sealInfo)
//	sealed     = nonce(12B) || AES-256-GCM(record_key, nonce, record, aad = nullifier)
type sealer struct {
	secret []byte
}

func newSealer(key *ec.PrivateKey) (*sealer, error) {
	shared, err := key.DeriveSharedSecret(key.PubKey())
	if err != nil {
		return nil, fmt.Errorf("notestore: derive seal secret: %w", err)
	}
	secret := make([]byte, 32)
	shared.X.FillBytes(secret)
	return &sealer{secret: secret}, nil
}

func (s *sealer) aead(nullifier note.Nullifier) (cipher.AEAD, error) {
	key := make([]byte, sealKeyLen)
	r := hkdf.New(sha256.New, s.secret, nullifier[:], []byte(sealInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("notestore: derive record key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("notestore: AES cipher creation failed: %w", err)
	}
	return cipher.NewGCM(block)
}

func (s *sealer) seal(nullifier note.Nullifier, record []byte) ([]byte, error) {
	gcm, err := s.aead(nullifier)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, sealNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("notestore: generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, record, nullifier[:]), nil
}

func (s *sealer) open(nullifier note.Nullifier, sealed []byte) ([]byte, error) {
	if len(sealed) < sealNonceLen+sealTagLen {
		return nil, fmt.Errorf("%w: record too short", ErrSealBroken)
	}
	gcm, err := s.aead(nullifier)
	if err != nil {
		return nil, err
	}
	record, err := gcm.Open(nil, sealed[:sealNonceLen], sealed[sealNonceLen:], nullifier[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSealBroken, err)
	}
	return record, nil
}
