// Package envelope implements the sealbox encrypted-file format:
//
//	salt(16) || iv(16) || otd_flag(1) || steg_len(2, big-endian) ||
//	steg_payload(steg_len) || ciphertext
//
// Ciphertext is AES-256-CBC with PKCS#7 padding; the key is derived from
// the caller's password and the per-file salt. The otd flag marks a file
// for one-time decryption, and the steg payload optionally carries
// unencrypted owner metadata readable without the password. Any conforming
// implementation must produce byte-identical headers.
package envelope

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sealbox/sealbox/internal/cryptox"
)

const (
	// EncSuffix is appended to freshly encrypted files and stripped again
	// on decryption.
	EncSuffix = ".enc"
	// DecSuffix is appended when the encrypted input does not carry
	// EncSuffix.
	DecSuffix = ".dec"

	// chunkSize is the streaming unit; a multiple of the AES block size.
	chunkSize = 8192

	maxStegLen = 0xffff
)

// stegMagic prefixes every non-empty steganographic payload.
var stegMagic = []byte{0xac, 0xce}

// ErrDecryptFailed is the single error surfaced for a wrong password or a
// corrupted envelope. Header parse failures and padding failures collapse
// into it deliberately so that callers cannot distinguish the two cases.
var ErrDecryptFailed = errors.New("wrong password or corrupted file")

// ProgressFunc receives fractions in [0,1]. Values are non-decreasing,
// stay at or below 0.95 while streaming, and the final call is exactly 1.0.
type ProgressFunc func(fraction float64)

func report(p ProgressFunc, f float64) {
	if p != nil {
		p(f)
	}
}

// Options controls an encryption call.
type Options struct {
	// OneTimeDecrypt sets the otd flag: the caller-side workflow
	// re-encrypts and wipes the plaintext after the first successful
	// decryption.
	OneTimeDecrypt bool
	// OwnerInfo, when non-empty, is embedded unencrypted in the header as
	// a steganographic hint, deliberately readable without the password.
	OwnerInfo string
	// Progress receives streaming progress.
	Progress ProgressFunc
}

// Metadata is the owner information carried in the steg payload.
type Metadata struct {
	Owner string  `json:"owner"`
	TS    float64 `json:"ts"`
}

type header struct {
	salt []byte
	iv   []byte
	otd  bool
	steg []byte
}

func buildSteg(ownerInfo string, now time.Time) ([]byte, error) {
	if ownerInfo == "" {
		return nil, nil
	}
	meta, err := json.Marshal(Metadata{Owner: ownerInfo, TS: float64(now.UnixNano()) / float64(time.Second)})
	if err != nil {
		return nil, err
	}
	payload := append(append([]byte{}, stegMagic...), meta...)
	if len(payload) > maxStegLen {
		return nil, fmt.Errorf("owner metadata too large: %d bytes", len(payload))
	}
	return payload, nil
}

func (h *header) marshal() []byte {
	out := make([]byte, 0, cryptox.SaltSize+cryptox.IVSize+3+len(h.steg))
	out = append(out, h.salt...)
	out = append(out, h.iv...)
	if h.otd {
		out = append(out, 0x01)
	} else {
		out = append(out, 0x00)
	}
	out = binary.BigEndian.AppendUint16(out, uint16(len(h.steg)))
	return append(out, h.steg...)
}

// readHeader consumes exactly the header bytes from r, leaving the reader
// positioned at the start of the ciphertext.
func readHeader(r io.Reader) (*header, error) {
	fixed := make([]byte, cryptox.SaltSize+cryptox.IVSize+3)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, err
	}
	h := &header{
		salt: fixed[:cryptox.SaltSize],
		iv:   fixed[cryptox.SaltSize : cryptox.SaltSize+cryptox.IVSize],
		otd:  fixed[cryptox.SaltSize+cryptox.IVSize] == 0x01,
	}
	stegLen := binary.BigEndian.Uint16(fixed[cryptox.SaltSize+cryptox.IVSize+1:])
	if stegLen > 0 {
		h.steg = make([]byte, stegLen)
		if _, err := io.ReadFull(r, h.steg); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// parseMetadata extracts owner metadata from a steg payload, if present.
func parseMetadata(steg []byte) (*Metadata, bool) {
	if len(steg) < len(stegMagic)+2 {
		return nil, false
	}
	if steg[0] != stegMagic[0] || steg[1] != stegMagic[1] {
		return nil, false
	}
	var m Metadata
	if err := json.Unmarshal(steg[len(stegMagic):], &m); err != nil {
		return nil, false
	}
	return &m, true
}
