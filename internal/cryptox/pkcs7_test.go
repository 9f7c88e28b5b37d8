package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadUnpadPKCS7(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"one byte", []byte{0x42}},
		{"block minus one", bytes.Repeat([]byte{0x01}, 15)},
		{"exact block", bytes.Repeat([]byte{0x02}, 16)},
		{"several blocks plus tail", bytes.Repeat([]byte{0x03}, 37)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			padded := PadPKCS7(tc.data, 16)
			require.NotEmpty(t, padded)
			require.Zero(t, len(padded)%16)

			got, err := UnpadPKCS7(padded, 16)
			require.NoError(t, err)
			assert.Equal(t, tc.data, got)
		})
	}
}

func TestUnpadPKCS7_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"misaligned", bytes.Repeat([]byte{0x01}, 17)},
		{"zero pad byte", append(bytes.Repeat([]byte{0x07}, 15), 0x00)},
		{"pad byte too large", append(bytes.Repeat([]byte{0x07}, 15), 0x11)},
		{"inconsistent padding", append(bytes.Repeat([]byte{0x07}, 14), 0x01, 0x02)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UnpadPKCS7(tc.data, 16)
			require.ErrorIs(t, err, ErrBadPadding)
		})
	}
}
