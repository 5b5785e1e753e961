package services

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studiokit/internal/common"

	"golang.org/x/crypto/scrypt"
)

// legacySalt is the fixed salt older two-part ciphertexts were written
// with. New ciphertext always carries its own random salt.
const legacySalt = "f3b1a9c84d2e6075"

var ErrVaultNotConfigured = errors.New("encryption secret is not configured")

// VaultService encrypts and decrypts tenant-scoped credential blobs with
// a symmetric scheme keyed by the process-wide encryption secret.
//
// Format: salt:iv:ciphertext, hex-encoded, key derived per-blob with
// scrypt. A legacy iv:ciphertext form (fixed salt) still decrypts.
type VaultService interface {
	Ready() bool
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, error)
	DecryptEmailCredentials(blob string) (*common.EmailCredentials, error)
	DecryptSMSCredentials(blob string) (*common.SMSCredentials, error)
}

type vaultService struct {
	secret string
}

func NewVaultService(secret string) VaultService {
	return &vaultService{secret: secret}
}

func (s *vaultService) Ready() bool {
	return s.secret != ""
}

func (s *vaultService) deriveKey(salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(s.secret), salt, 1<<14, 8, 1, 32)
}

func (s *vaultService) Encrypt(plaintext string) (string, error) {
	if !s.Ready() {
		return "", ErrVaultNotConfigured
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return fmt.Sprintf("%s:%s:%s", hex.EncodeToString(salt), hex.EncodeToString(iv), hex.EncodeToString(ct)), nil
}

func (s *vaultService) Decrypt(blob string) (string, error) {
	if !s.Ready() {
		return "", ErrVaultNotConfigured
	}

	parts := strings.Split(blob, ":")
	var salt, ivHex, ctHex string
	switch len(parts) {
	case 3:
		salt, ivHex, ctHex = parts[0], parts[1], parts[2]
	case 2:
		// Legacy ciphertext written before per-blob salts existed.
		salt, ivHex, ctHex = hex.EncodeToString([]byte(legacySalt)), parts[0], parts[1]
	default:
		return "", fmt.Errorf("malformed ciphertext: expected 2 or 3 segments, got %d", len(parts))
	}

	saltBytes, err := hex.DecodeString(salt)
	if err != nil {
		return "", fmt.Errorf("malformed salt: %w", err)
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return "", fmt.Errorf("malformed iv: %w", err)
	}
	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return "", fmt.Errorf("malformed ciphertext: %w", err)
	}
	if len(iv) != aes.BlockSize || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", errors.New("malformed ciphertext: bad block length")
	}

	key, err := s.deriveKey(saltBytes)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func (s *vaultService) DecryptEmailCredentials(blob string) (*common.EmailCredentials, error) {
	plain, err := s.Decrypt(blob)
	if err != nil {
		return nil, err
	}
	creds := &common.EmailCredentials{}
	if err := json.Unmarshal([]byte(plain), creds); err != nil {
		return nil, fmt.Errorf("email credentials are not valid JSON: %w", err)
	}
	return creds, nil
}

func (s *vaultService) DecryptSMSCredentials(blob string) (*common.SMSCredentials, error) {
	plain, err := s.Decrypt(blob)
	if err != nil {
		return nil, err
	}
	creds := &common.SMSCredentials{}
	if err := json.Unmarshal([]byte(plain), creds); err != nil {
		return nil, fmt.Errorf("sms credentials are not valid JSON: %w", err)
	}
	return creds, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(pad)}, pad)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-pad], nil
}
