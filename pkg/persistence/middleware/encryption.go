package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/aretw0/gss/pkg/ports"
)

// KeySize is the AES-256 key length.
const KeySize = 32

const envelopeField = "__encrypted__"

// ErrNotEncrypted is returned when encryption is on but a stored entry carries no envelope.
var ErrNotEncrypted = errors.New("history entry is missing encrypted data envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt an entry,
	// so that keys can be rotated without rewriting history.
	FallbackKeys [][]byte
}

// ParseKey decodes a base64 AES-256 key.
func ParseKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid base64: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

type encryptionMiddleware struct {
	next   ports.HistoryStore
	config EncryptionConfig
}

// sealed is what gets encrypted: the expression and the full response.
type sealed struct {
	Function string          `json:"function"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// NewEncryptionMiddleware stores the expression and payload of every entry as an
// AES-GCM envelope. Bounds, mode and status stay in clear for listing.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != KeySize {
		return nil, fmt.Errorf("active key must be %d bytes (AES-256)", KeySize)
	}
	for i, k := range config.FallbackKeys {
		if len(k) != KeySize {
			return nil, fmt.Errorf("fallback key %d must be %d bytes (AES-256)", i, KeySize)
		}
	}
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

func (m *encryptionMiddleware) Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	plainText, err := json.Marshal(sealed{Function: entry.Function, Payload: entry.Payload})
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt entry: %w", err)
	}

	envelope, err := json.Marshal(map[string]string{
		envelopeField: base64.StdEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return err
	}
	entry.Function = ""
	entry.Payload = envelope
	return m.next.Append(ctx, sessionID, entry)
}

func (m *encryptionMiddleware) List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	entries, err := m.next.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if err := m.open(&entries[i]); err != nil {
			return nil, fmt.Errorf("entry %s: %w", entries[i].ID, err)
		}
	}
	return entries, nil
}

func (m *encryptionMiddleware) open(entry *domain.HistoryEntry) error {
	var envelope map[string]string
	if err := json.Unmarshal(entry.Payload, &envelope); err != nil {
		return ErrNotEncrypted
	}
	encoded, ok := envelope[envelopeField]
	if !ok {
		return ErrNotEncrypted
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}
	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return fmt.Errorf("failed to decrypt entry: %w", err)
	}

	var s sealed
	if err := json.Unmarshal(plainText, &s); err != nil {
		return fmt.Errorf("failed to unmarshal decrypted entry: %w", err)
	}
	entry.Function = s.Function
	entry.Payload = s.Payload
	return nil
}

func (m *encryptionMiddleware) Trim(ctx context.Context, sessionID string, keep int) error {
	return m.next.Trim(ctx, sessionID, keep)
}

func (m *encryptionMiddleware) Clear(ctx context.Context, sessionID string) error {
	return m.next.Clear(ctx, sessionID)
}

func (m *encryptionMiddleware) Sessions(ctx context.Context) ([]string, error) {
	return m.next.Sessions(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
