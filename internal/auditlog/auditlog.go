// Package auditlog implements the tamper-evident operation log: an
// append-only list of entries where each entry carries an HMAC-SHA256
// chain hash binding it to all prior entries. Any modification, deletion
// or reorder breaks the chain and is detected on verification. The whole
// list is persisted with the same encrypted-blob mechanism as the
// credential vault, under a separate per-install chain-signing key for the
// MAC.
//
// The log holds at most MaxEntries entries; trimming the oldest recomputes
// the remaining chain from the genesis marker forward so continuity is
// preserved. Like the vault, the log has no internal locking.
package auditlog

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sealbox/sealbox/internal/cryptox"
	"github.com/sealbox/sealbox/internal/logging"
)

const (
	// MaxEntries caps the stored chain length.
	MaxEntries = 200

	// genesisMarker is the predecessor hash of the first entry.
	genesisMarker = "GENESIS"

	// StatusSuccess and StatusFailed are the two entry statuses.
	StatusSuccess = "Success"
	StatusFailed  = "Failed"

	// DefaultAlgorithm labels the cipher used by the envelope engine.
	DefaultAlgorithm = "AES-256-CBC"
)

// Entry is one audit record. Hash covers every other field plus the
// previous entry's hash.
type Entry struct {
	Action      string            `json:"action"`
	Filename    string            `json:"filename"`
	Algorithm   string            `json:"algorithm"`
	Status      string            `json:"status"`
	User        string            `json:"user"`
	Timestamp   string            `json:"timestamp"`
	DisplayTime string            `json:"display_time"`
	Extra       map[string]string `json:"extra,omitempty"`
	Hash        string            `json:"_hash"`
}

// Log is the in-memory chain bound to one encrypted file. Entries are
// stored oldest-first; Entries() exposes them newest-first.
type Log struct {
	path     string
	blobKey  []byte
	chainKey []byte
	log      logging.Logger
	now      func() time.Time

	entries []Entry
}

// Open loads the log at path. blobKey encrypts the store at rest;
// chainKey signs the chain. A missing or corrupt store degrades to an
// empty log.
func Open(path string, blobKey, chainKey []byte, log logging.Logger) *Log {
	if log == nil {
		log = logging.NewNop()
	}
	l := &Log{
		path:     path,
		blobKey:  blobKey,
		chainKey: chainKey,
		log:      log,
		now:      time.Now,
	}
	l.load()
	return l
}

func (l *Log) load() {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Warn(context.Background(), "audit log load failed, starting fresh", "error", err)
		}
		return
	}
	plain, err := cryptox.DecryptBlob(raw, l.blobKey)
	if err != nil {
		l.log.Warn(context.Background(), "audit log decrypt failed, starting fresh", "error", err)
		return
	}
	var doc struct {
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(plain, &doc); err != nil {
		l.log.Warn(context.Background(), "audit log parse failed, starting fresh", "error", err)
		return
	}
	l.entries = doc.Entries
}

func (l *Log) save() error {
	plain, err := json.Marshal(struct {
		Entries []Entry `json:"entries"`
	}{Entries: l.entries})
	if err != nil {
		return fmt.Errorf("audit log save: %w", err)
	}
	blob, err := cryptox.EncryptBlob(plain, l.blobKey)
	if err != nil {
		return fmt.Errorf("audit log save: %w", err)
	}
	if err := os.WriteFile(l.path, blob, 0o600); err != nil {
		return fmt.Errorf("audit log save: %w", err)
	}
	return nil
}

// Append records one operation, computes its chain hash over all other
// fields plus the previous hash, trims above the cap (re-chaining from
// genesis), and persists the whole log.
func (l *Log) Append(action, filename, status, algorithm, user string, extra map[string]string) error {
	prev := genesisMarker
	if n := len(l.entries); n > 0 {
		prev = l.entries[n-1].Hash
	}

	now := l.now()
	e := Entry{
		Action:      action,
		Filename:    filename,
		Algorithm:   algorithm,
		Status:      status,
		User:        user,
		Timestamp:   now.Format(time.RFC3339),
		DisplayTime: now.Format("2006-01-02  15:04:05"),
		Extra:       extra,
	}
	e.Hash = l.entryHash(e, prev)
	l.entries = append(l.entries, e)

	if len(l.entries) > MaxEntries {
		l.entries = append([]Entry(nil), l.entries[len(l.entries)-MaxEntries:]...)
		l.rechain()
	}

	return l.save()
}

// Verify walks the stored chain, recomputing every hash. It reports the
// index of the first broken entry, or the verified count when intact.
func (l *Log) Verify() (bool, string) {
	prev := genesisMarker
	for i, e := range l.entries {
		if computed := l.entryHash(e, prev); computed != e.Hash {
			return false, fmt.Sprintf("chain broken at entry #%d (%s)", i, e.DisplayTime)
		}
		prev = e.Hash
	}
	return true, fmt.Sprintf("chain intact, %d entries verified", len(l.entries))
}

// Clear discards all entries and persists the empty log.
func (l *Log) Clear() error {
	l.entries = nil
	return l.save()
}

// Entries returns a newest-first copy for display.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Len returns the stored entry count.
func (l *Log) Len() int {
	return len(l.entries)
}

// rechain recomputes every hash from genesis forward, used after a trim.
func (l *Log) rechain() {
	prev := genesisMarker
	for i := range l.entries {
		l.entries[i].Hash = l.entryHash(l.entries[i], prev)
		prev = l.entries[i].Hash
	}
}

// entryHash MACs a canonical encoding of the entry (hash field excluded)
// chained to prev. Canonical means encoding/json over a map, which sorts
// keys and emits compact output.
func (l *Log) entryHash(e Entry, prev string) string {
	fields := map[string]any{
		"action":       e.Action,
		"filename":     e.Filename,
		"algorithm":    e.Algorithm,
		"status":       e.Status,
		"user":         e.User,
		"timestamp":    e.Timestamp,
		"display_time": e.DisplayTime,
	}
	if len(e.Extra) > 0 {
		fields["extra"] = e.Extra
	}
	payload, err := json.Marshal(map[string]any{"entry": fields, "prev": prev})
	if err != nil {
		// Only string maps are marshaled here; this cannot fail.
		panic(err)
	}
	m := hmac.New(sha256.New, l.chainKey)
	m.Write(payload)
	return hex.EncodeToString(m.Sum(nil))
}
