package hostkey

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Provide is a Wire provider that loads the server's host key from
// path. On first startup the file doesn't exist yet, so a new random
// key is generated and persisted; subsequent restarts load the same
// key, keeping the server's fingerprint stable for clients that
// pinned it.
func Provide(path string) (*KeyPair, error) {
	if path == "" {
		kp, err := GenerateRandom()
		if err != nil {
			return nil, err
		}
		return &kp, nil
	}

	if pemBytes, err := os.ReadFile(path); err == nil {
		slog.Info("loading existing host key", "path", path)
		signer, err := Load(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("hostkey: load %s: %w", path, err)
		}
		return &KeyPair{Signer: signer}, nil
	}

	slog.Info("generating new host key", "path", path)
	kp, err := GenerateRandom()
	if err != nil {
		return nil, fmt.Errorf("hostkey: generate: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("hostkey: create key dir: %w", err)
		}
	}

	pemBytes, err := kp.PEM()
	if err != nil {
		return nil, err
	}
	if err := atomicWriteFile(path, pemBytes, 0600); err != nil {
		return nil, fmt.Errorf("hostkey: write key: %w", err)
	}

	return &kp, nil
}

// atomicWriteFile writes data to a temporary file in the same
// directory as path, then renames it into place, so a crash mid-write
// cannot leave a partially written host key at path. Adapted verbatim
// from the teacher's internal/pki atomic-write helper.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
