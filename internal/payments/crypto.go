package payments

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	ErrInvalidKey     = errors.New("working key must be 16 or 32 characters")
	ErrEmptyPlaintext = errors.New("plaintext must not be empty")
)

// DecryptError wraps any ciphertext failure without leaking key or
// payload material into logs.
type DecryptError struct {
	Stage string
	Len   int
}

func (e *DecryptError) Error() string {
	return fmt.Sprintf("decrypt failed at %s (payload length %d)", e.Stage, e.Len)
}

// Codec implements the AES-128-CBC construction CCAvenue mandates: the
// cipher key is the MD5 digest of the working key and the IV is the
// first 16 bytes of the working key itself. Both sides derive the same
// IV, so equal plaintexts produce equal ciphertexts. That determinism
// is required for the gateway to decrypt our requests; never reuse this
// codec for anything but gateway traffic.
type Codec struct {
	key []byte
	iv  []byte
}

func NewCodec(workingKey string) (*Codec, error) {
	if len(workingKey) != 16 && len(workingKey) != 32 {
		return nil, ErrInvalidKey
	}
	digest := md5.Sum([]byte(workingKey))
	return &Codec{
		key: digest[:],
		iv:  []byte(workingKey)[:aes.BlockSize],
	}, nil
}

// Encrypt returns base64-encoded AES-128-CBC ciphertext with PKCS#7 padding
func (c *Codec) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPlaintext
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, c.iv).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. All failure modes collapse into a
// DecryptError that carries only the stage and payload length.
func (c *Codec) Decrypt(encB64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encB64)
	if err != nil {
		return "", &DecryptError{Stage: "base64 decode", Len: len(encB64)}
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", &DecryptError{Stage: "block alignment", Len: len(raw)}
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, c.iv).CryptBlocks(out, raw)

	unpadded, ok := pkcs7Unpad(out, aes.BlockSize)
	if !ok {
		return "", &DecryptError{Stage: "padding", Len: len(raw)}
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+pad)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize || pad > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, false
		}
	}
	return data[:len(data)-pad], true
}
