package envelope

import (
	"bytes"
	"crypto/aes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sealbox/sealbox/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"tiny", []byte("hi")},
		{"one block", bytes.Repeat([]byte{0x42}, 16)},
		{"chunk boundary", bytes.Repeat([]byte{0x17}, chunkSize)},
		{"multi chunk", bytes.Repeat([]byte("sealbox"), 5000)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := writeSource(t, tc.content)

			encPath, err := Encrypt(src, "pa55word!", Options{})
			require.NoError(t, err)
			assert.Equal(t, src+EncSuffix, encPath)

			require.NoError(t, os.Remove(src))

			plainPath, otd, err := Decrypt(encPath, "pa55word!", "", nil)
			require.NoError(t, err)
			assert.False(t, otd)
			assert.Equal(t, src, plainPath)

			got, err := os.ReadFile(plainPath)
			require.NoError(t, err)
			if len(tc.content) == 0 {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tc.content, got)
			}
		})
	}
}

func TestEncrypt_MissingSource(t *testing.T) {
	_, err := Encrypt(filepath.Join(t.TempDir(), "absent.txt"), "pw", Options{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDecryptFailed)
}

func TestEncrypt_HeaderLayout(t *testing.T) {
	src := writeSource(t, []byte("layout check"))
	encPath, err := Encrypt(src, "pw", Options{OneTimeDecrypt: true, OwnerInfo: "alice"})
	require.NoError(t, err)

	raw, err := os.ReadFile(encPath)
	require.NoError(t, err)

	require.Greater(t, len(raw), cryptox.SaltSize+cryptox.IVSize+3)
	flag := raw[cryptox.SaltSize+cryptox.IVSize]
	assert.Equal(t, byte(0x01), flag)

	stegLen := binary.BigEndian.Uint16(raw[cryptox.SaltSize+cryptox.IVSize+1:])
	require.NotZero(t, stegLen)
	steg := raw[cryptox.SaltSize+cryptox.IVSize+3 : cryptox.SaltSize+cryptox.IVSize+3+int(stegLen)]
	assert.Equal(t, []byte{0xac, 0xce}, steg[:2])

	ciphertext := raw[cryptox.SaltSize+cryptox.IVSize+3+int(stegLen):]
	assert.Zero(t, len(ciphertext)%aes.BlockSize)
}

func TestEncrypt_FreshSaltAndIV(t *testing.T) {
	src := writeSource(t, []byte("entropy"))

	enc1, err := Encrypt(src, "pw", Options{})
	require.NoError(t, err)
	raw1, err := os.ReadFile(enc1)
	require.NoError(t, err)
	require.NoError(t, os.Remove(enc1))

	enc2, err := Encrypt(src, "pw", Options{})
	require.NoError(t, err)
	raw2, err := os.ReadFile(enc2)
	require.NoError(t, err)

	assert.NotEqual(t, raw1[:cryptox.SaltSize], raw2[:cryptox.SaltSize])
	assert.NotEqual(t, raw1[cryptox.SaltSize:cryptox.SaltSize+cryptox.IVSize], raw2[cryptox.SaltSize:cryptox.SaltSize+cryptox.IVSize])
}

func TestDecrypt_WrongPassword(t *testing.T) {
	src := writeSource(t, []byte("super secret content"))
	encPath, err := Encrypt(src, "correct-password", Options{})
	require.NoError(t, err)
	require.NoError(t, os.Remove(src))

	_, _, err = Decrypt(encPath, "wrong-password", "", nil)
	require.ErrorIs(t, err, ErrDecryptFailed)

	// No partial output file may be left behind.
	_, statErr := os.Stat(src)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDecrypt_TruncatedEnvelope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.enc")
	require.NoError(t, os.WriteFile(path, []byte("way too short"), 0o600))

	_, _, err := Decrypt(path, "pw", "", nil)
	require.ErrorIs(t, err, ErrDecryptFailed)
}

func TestDecrypt_CorruptedCiphertext(t *testing.T) {
	src := writeSource(t, bytes.Repeat([]byte("data"), 100))
	encPath, err := Encrypt(src, "pw", Options{})
	require.NoError(t, err)

	raw, err := os.ReadFile(encPath)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(encPath, raw, 0o600))

	_, _, err = Decrypt(encPath, "pw", "", nil)
	require.ErrorIs(t, err, ErrDecryptFailed)
}

func TestHeaderFidelity_OTDAndOwnerSurvive(t *testing.T) {
	src := writeSource(t, []byte("flagged content"))
	encPath, err := Encrypt(src, "pw", Options{OneTimeDecrypt: true, OwnerInfo: "bob@corp"})
	require.NoError(t, err)

	meta, ok := ReadOwnerInfo(encPath)
	require.True(t, ok)
	assert.Equal(t, "bob@corp", meta.Owner)
	assert.NotZero(t, meta.TS)
	assert.True(t, IsOneTimeDecrypt(encPath))

	outPath := filepath.Join(t.TempDir(), "out.txt")
	plainPath, otd, err := Decrypt(encPath, "pw", outPath, nil)
	require.NoError(t, err)
	assert.True(t, otd)
	assert.Equal(t, outPath, plainPath)

	// Metadata is still readable after the round trip.
	meta, ok = ReadOwnerInfo(encPath)
	require.True(t, ok)
	assert.Equal(t, "bob@corp", meta.Owner)
}

func TestReadOwnerInfo_NoneWhenAbsent(t *testing.T) {
	src := writeSource(t, []byte("plain"))
	encPath, err := Encrypt(src, "pw", Options{})
	require.NoError(t, err)

	meta, ok := ReadOwnerInfo(encPath)
	assert.False(t, ok)
	assert.Nil(t, meta)

	meta, ok = ReadOwnerInfo(filepath.Join(t.TempDir(), "absent.enc"))
	assert.False(t, ok)
	assert.Nil(t, meta)
}

func TestProgress_MonotoneAndFinalOne(t *testing.T) {
	src := writeSource(t, bytes.Repeat([]byte{0x5a}, 3*chunkSize+123))

	var fractions []float64
	_, err := Encrypt(src, "pw", Options{Progress: func(f float64) {
		fractions = append(fractions, f)
	}})
	require.NoError(t, err)

	require.NotEmpty(t, fractions)
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	for _, f := range fractions[:len(fractions)-1] {
		assert.LessOrEqual(t, f, 0.95)
	}
	assert.Equal(t, 1.0, fractions[len(fractions)-1])
}

func TestEncryptInPlace_RoundTrip(t *testing.T) {
	content := bytes.Repeat([]byte("in place "), 2000)
	path := writeSource(t, content)

	require.NoError(t, EncryptInPlace(path, "pw", Options{OwnerInfo: "carol"}))

	meta, ok := ReadOwnerInfo(path)
	require.True(t, ok)
	assert.Equal(t, "carol", meta.Owner)

	out := filepath.Join(t.TempDir(), "restored.txt")
	_, _, err := Decrypt(path, "pw", out, nil)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestEncryptInPlace_FailureLeavesOriginalUntouched(t *testing.T) {
	content := []byte("must survive")
	path := writeSource(t, content)

	renameFile = func(oldpath, newpath string) error {
		return errors.New("simulated crash before rename")
	}
	defer func() { renameFile = os.Rename }()

	err := EncryptInPlace(path, "pw", Options{})
	require.Error(t, err)

	got, rerr := os.ReadFile(path)
	require.NoError(t, rerr)
	assert.Equal(t, content, got, "original must be byte-identical after a failed in-place encrypt")

	// The temporary file must have been cleaned up.
	entries, rerr := os.ReadDir(filepath.Dir(path))
	require.NoError(t, rerr)
	require.Len(t, entries, 1)
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "/tmp/a.txt", defaultOutputPath("/tmp/a.txt.enc"))
	assert.Equal(t, "/tmp/blob.dec", defaultOutputPath("/tmp/blob"))
}
