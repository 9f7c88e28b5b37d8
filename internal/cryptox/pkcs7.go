package cryptox

import (
	"bytes"
	"errors"
)

// ErrBadPadding is returned when PKCS#7 unpadding fails. Callers that care
// about oracle leakage must collapse it into a generic failure message.
var ErrBadPadding = errors.New("invalid padding")

// PadPKCS7 appends PKCS#7 padding up to blockSize. The result is always a
// non-empty multiple of blockSize.
func PadPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

// UnpadPKCS7 strips PKCS#7 padding, validating every padding byte.
func UnpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, ErrBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrBadPadding
		}
	}
	return data[:len(data)-n], nil
}
