package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
)

// ErrDecryptionFailed is returned when a stored payload cannot be decrypted
// with any configured key. It indicates data corruption or a key mismatch
// and must never be papered over with the raw ciphertext.
var ErrDecryptionFailed = errors.New("failed to decrypt message payload")

// Encryptor provides symmetric encryption for message content. It uses
// AES-256-GCM with a fresh random nonce per call, so encrypting the same
// plaintext twice yields different ciphertext. Optional legacy Fernet keys
// allow reading rows written by the predecessor system.
type Encryptor struct {
	aead       cipher.AEAD
	fernetKeys []*fernet.Key
}

func NewEncryptor(key []byte, legacyKeys []string) (*Encryptor, error) {
	// Derive a fixed-size 32-byte key from the provided bytes using SHA-256.
	// This allows using arbitrary-length secrets (e.g. from existing .env
	// files) while ensuring AES-256 compatibility.
	if len(key) == 0 {
		return nil, errors.New("encryption key must not be empty")
	}
	sum := sha256.Sum256(key)
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	fernetKeys := make([]*fernet.Key, 0, len(legacyKeys)+1)
	if fk := parseFernetKey(string(key)); fk != nil {
		fernetKeys = append(fernetKeys, fk)
	}
	for _, rawKey := range legacyKeys {
		if fk := parseFernetKey(rawKey); fk != nil {
			fernetKeys = append(fernetKeys, fk)
		}
	}

	return &Encryptor{aead: aead, fernetKeys: fernetKeys}, nil
}

func parseFernetKey(raw string) *fernet.Key {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	key, err := fernet.DecodeKey(trimmed)
	if err != nil {
		return nil
	}
	return key
}

// Encrypt seals the plaintext with a random nonce. The nonce is prepended to
// the ciphertext so decryption is self-contained.
func (e *Encryptor) Encrypt(plain string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ciphertext := e.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens a payload produced by Encrypt, falling back to the legacy
// Fernet keys for older rows. Returns ErrDecryptionFailed if nothing matches.
func (e *Encryptor) Decrypt(enc string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err == nil && len(raw) >= e.aead.NonceSize() {
		nonce := raw[:e.aead.NonceSize()]
		ciphertext := raw[e.aead.NonceSize():]
		if plain, openErr := e.aead.Open(nil, nonce, ciphertext, nil); openErr == nil {
			return string(plain), nil
		}
	}

	if len(e.fernetKeys) > 0 {
		if plain := fernet.VerifyAndDecrypt([]byte(enc), 0*time.Second, e.fernetKeys); plain != nil {
			return string(plain), nil
		}
	}

	return "", ErrDecryptionFailed
}
