package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sealbox/sealbox/internal/common"
	"github.com/sealbox/sealbox/internal/cryptox"
)

// renameFile is a test seam for os.Rename, letting tests fail the atomic
// replace step without touching the filesystem layer.
var renameFile = os.Rename

// Encrypt encrypts srcPath into a new file srcPath+".enc" and returns the
// output path. A fresh random salt and IV are generated per call and never
// reused. Input is streamed in fixed-size chunks; opts.Progress observes
// monotone fractions up to 0.95 during streaming and exactly 1.0 once the
// output is complete. A missing source is an I/O error; on any failure the
// partially written output is removed.
func Encrypt(srcPath, password string, opts Options) (string, error) {
	outPath := srcPath + EncSuffix

	fin, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer fin.Close()

	fi, err := fin.Stat()
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}

	h, enc, err := newEncrypter(password, opts, time.Now())
	if err != nil {
		return "", err
	}

	fout, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}

	if err := streamEncrypt(fin, fout, fi.Size(), h, enc, opts.Progress); err != nil {
		fout.Close()
		os.Remove(outPath)
		return "", err
	}
	if err := fout.Close(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("close output: %w", err)
	}

	report(opts.Progress, 1.0)
	return outPath, nil
}

// EncryptInPlace encrypts path and atomically replaces the original file
// with the envelope. The plaintext is read fully, encrypted in memory,
// written to a temporary file in the same directory, synced to stable
// storage, and renamed over the original. On any failure after the
// temporary file is created it is removed and the original stays intact.
//
// No two EncryptInPlace calls may run concurrently on the same path;
// callers must serialize per-path access.
func EncryptInPlace(path, password string, opts Options) error {
	plaintext, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	env, err := EncryptBytes(plaintext, password, opts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+uuid.NewString()+".sealbox.tmp")

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(env); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := renameFile(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace original: %w", err)
	}

	report(opts.Progress, 1.0)
	return nil
}

// EncryptBytes builds a complete envelope for plaintext in memory.
// Progress is reported over the chunk loop with the same contract as
// Encrypt, except that the final 1.0 is left to the caller when the bytes
// still have to reach disk.
func EncryptBytes(plaintext []byte, password string, opts Options) ([]byte, error) {
	h, enc, err := newEncrypter(password, opts, time.Now())
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(h.steg)+len(plaintext)+2*aes.BlockSize+cryptox.SaltSize+cryptox.IVSize+3)
	out = append(out, h.marshal()...)

	size := len(plaintext)
	if size == 0 {
		size = 1
	}

	for off := 0; off < len(plaintext); off += chunkSize {
		end := off + chunkSize
		if end > len(plaintext) {
			break // the tail is padded below
		}
		block := make([]byte, chunkSize)
		enc.CryptBlocks(block, plaintext[off:end])
		out = append(out, block...)
		report(opts.Progress, capFraction(end, size))
	}

	tail := cryptox.PadPKCS7(plaintext[len(plaintext)-len(plaintext)%chunkSize:], aes.BlockSize)
	final := make([]byte, len(tail))
	enc.CryptBlocks(final, tail)
	return append(out, final...), nil
}

func newEncrypter(password string, opts Options, now time.Time) (*header, cipher.BlockMode, error) {
	steg, err := buildSteg(opts.OwnerInfo, now)
	if err != nil {
		return nil, nil, err
	}

	h := &header{
		salt: common.GenerateRandByteArray(cryptox.SaltSize),
		iv:   common.GenerateRandByteArray(cryptox.IVSize),
		otd:  opts.OneTimeDecrypt,
		steg: steg,
	}

	key, err := cryptox.DeriveKey(password, h.salt)
	if err != nil {
		return nil, nil, err
	}
	// aes.NewCipher copies the key schedule, the raw key can go.
	defer common.WipeByteArray(key)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, fmt.Errorf("cipher init: %w", err)
	}
	return h, cipher.NewCBCEncrypter(block, h.iv), nil
}

func streamEncrypt(fin io.Reader, fout io.Writer, size int64, h *header, enc cipher.BlockMode, progress ProgressFunc) error {
	if _, err := fout.Write(h.marshal()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if size == 0 {
		size = 1
	}

	buf := make([]byte, chunkSize)
	var processed int64
	for {
		n, err := io.ReadFull(fin, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			final := cryptox.PadPKCS7(buf[:n], aes.BlockSize)
			enc.CryptBlocks(final, final)
			if _, werr := fout.Write(final); werr != nil {
				return fmt.Errorf("write ciphertext: %w", werr)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}

		enc.CryptBlocks(buf, buf)
		if _, err := fout.Write(buf); err != nil {
			return fmt.Errorf("write ciphertext: %w", err)
		}
		processed += int64(n)
		report(progress, capFraction64(processed, size))
	}
}

func capFraction(done, total int) float64 {
	return capFraction64(int64(done), int64(total))
}

func capFraction64(done, total int64) float64 {
	f := float64(done) / float64(total)
	if f > 0.95 {
		f = 0.95
	}
	return f
}
