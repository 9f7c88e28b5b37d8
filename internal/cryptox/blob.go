package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/sealbox/sealbox/internal/common"
)

// EncryptBlob encrypts data with AES-256-CBC under key and returns
// iv(16)||ciphertext. A fresh random IV is generated per call. This is the
// at-rest format shared by the credential vault and the audit log.
func EncryptBlob(data, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("encrypt blob: %w", err)
	}
	iv := common.GenerateRandByteArray(IVSize)
	padded := PadPKCS7(data, aes.BlockSize)
	out := make([]byte, IVSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[IVSize:], padded)
	return out, nil
}

// DecryptBlob reverses EncryptBlob. Any structural problem (short input,
// misaligned ciphertext, bad padding) is an error; the caller decides how
// much of the cause to surface.
func DecryptBlob(raw, key []byte) ([]byte, error) {
	if len(raw) < IVSize || (len(raw)-IVSize)%aes.BlockSize != 0 || len(raw) == IVSize {
		return nil, fmt.Errorf("decrypt blob: %w", ErrBadPadding)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("decrypt blob: %w", err)
	}
	padded := make([]byte, len(raw)-IVSize)
	cipher.NewCBCDecrypter(block, raw[:IVSize]).CryptBlocks(padded, raw[IVSize:])
	data, err := UnpadPKCS7(padded, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("decrypt blob: %w", err)
	}
	return data, nil
}
