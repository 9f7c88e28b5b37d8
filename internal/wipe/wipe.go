// Package wipe implements bounded multi-pass secure erasure of files and
// directory trees. It defends against simple recovery of deleted data, not
// against wear-leveled flash remapping.
package wipe

import (
	"crypto/rand"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultPasses is the standard overwrite count.
const DefaultPasses = 7

// writeBuf bounds the per-pass write buffer.
const writeBuf = 64 * 1024

// Wipe overwrites path passes times, cycling through all-zero, all-one and
// cryptographically random patterns, syncing each pass to stable storage,
// then removes the file. Empty files are removed directly. A missing path
// is a success. On any I/O failure mid-wipe a best-effort delete is still
// attempted and the failure is reported.
func Wipe(path string, passes int) error {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("wipe %s: %w", path, err)
	}
	if fi.Size() == 0 {
		return os.Remove(path)
	}

	if err := overwrite(path, fi.Size(), passes); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("wipe %s: %w", path, err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("wipe %s: %w", path, err)
	}
	return nil
}

// WipeTree recursively wipes every regular file under dir with
// DefaultPasses, then removes the directory tree. Wipe failures do not
// stop the walk; the first one is reported after the tree is removed.
func WipeTree(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}

	var firstErr error
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := Wipe(path, DefaultPasses); err != nil && firstErr == nil {
			firstErr = err
		}
		return nil
	})
	if walkErr != nil && firstErr == nil {
		firstErr = walkErr
	}

	if err := os.RemoveAll(dir); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func overwrite(path string, size int64, passes int) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, writeBuf)
	for pass := 0; pass < passes; pass++ {
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}
		if err := writePattern(f, buf, size, pass%3); err != nil {
			return err
		}
		if err := f.Sync(); err != nil {
			return err
		}
	}
	return nil
}

func writePattern(f *os.File, buf []byte, size int64, pattern int) error {
	for remaining := size; remaining > 0; {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		chunk := buf[:n]
		switch pattern {
		case 0:
			for i := range chunk {
				chunk[i] = 0x00
			}
		case 1:
			for i := range chunk {
				chunk[i] = 0xff
			}
		default:
			if _, err := rand.Read(chunk); err != nil {
				return err
			}
		}
		if _, err := f.Write(chunk); err != nil {
			return err
		}
		remaining -= n
	}
	return nil
}
