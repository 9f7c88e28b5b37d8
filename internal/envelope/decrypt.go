package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sealbox/sealbox/internal/common"
	"github.com/sealbox/sealbox/internal/cryptox"
)

// Decrypt decrypts encPath and writes the plaintext to outPath. When
// outPath is empty the ".enc" suffix is stripped, or ".dec" appended when
// absent. It returns the plaintext path and whether the envelope carried
// the one-time-decrypt flag.
//
// CBC has no built-in authentication: a wrong password produces garbage
// that almost always fails to unpad. Every parse, cipher, and padding
// failure after the file is opened is reported as ErrDecryptFailed so that
// nothing leaks about which stage broke. The plaintext is assembled in
// memory and written in one step, so no partial output file is ever left
// behind.
func Decrypt(encPath, password, outPath string, progress ProgressFunc) (string, bool, error) {
	f, err := os.Open(encPath)
	if err != nil {
		return "", false, fmt.Errorf("open envelope: %w", err)
	}
	defer f.Close()

	h, err := readHeader(f)
	if err != nil {
		return "", false, ErrDecryptFailed
	}
	ciphertext, err := io.ReadAll(f)
	if err != nil {
		return "", false, fmt.Errorf("read envelope: %w", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", h.otd, ErrDecryptFailed
	}

	key, err := cryptox.DeriveKey(password, h.salt)
	if err != nil {
		return "", h.otd, ErrDecryptFailed
	}
	defer common.WipeByteArray(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", h.otd, ErrDecryptFailed
	}
	dec := cipher.NewCBCDecrypter(block, h.iv)

	padded := make([]byte, len(ciphertext))
	for off := 0; off < len(ciphertext); off += chunkSize {
		end := off + chunkSize
		if end > len(ciphertext) {
			end = len(ciphertext)
		}
		dec.CryptBlocks(padded[off:end], ciphertext[off:end])
		report(progress, capFraction(end, len(ciphertext)))
	}

	plaintext, err := cryptox.UnpadPKCS7(padded, aes.BlockSize)
	if err != nil {
		return "", h.otd, ErrDecryptFailed
	}

	if outPath == "" {
		outPath = defaultOutputPath(encPath)
	}
	if err := os.WriteFile(outPath, plaintext, 0o600); err != nil {
		return "", h.otd, fmt.Errorf("write plaintext: %w", err)
	}

	report(progress, 1.0)
	return outPath, h.otd, nil
}

// ReadOwnerInfo parses only the unencrypted header of encPath and returns
// the embedded owner metadata, independent of any password. It reports
// false on any parse error and never panics.
func ReadOwnerInfo(encPath string) (*Metadata, bool) {
	f, err := os.Open(encPath)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	h, err := readHeader(f)
	if err != nil {
		return nil, false
	}
	return parseMetadata(h.steg)
}

// IsOneTimeDecrypt reports whether encPath carries the otd flag, without
// decrypting. Parse errors report false.
func IsOneTimeDecrypt(encPath string) bool {
	f, err := os.Open(encPath)
	if err != nil {
		return false
	}
	defer f.Close()

	h, err := readHeader(f)
	if err != nil {
		return false
	}
	return h.otd
}

func defaultOutputPath(encPath string) string {
	if strings.HasSuffix(encPath, EncSuffix) {
		return strings.TrimSuffix(encPath, EncSuffix)
	}
	return encPath + DecSuffix
}
