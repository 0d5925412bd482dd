// Package hostkey derives and loads the Ed25519 host keys an sshd
// Server presents to connecting clients, adapted from the teacher's
// internal/pki certificate authority: the same HKDF-SHA256-from-seed
// determinism, applied to SSH host keys instead of X.509/ECDSA CA
// material, so an operator can run a fresh server process without
// minting a new host-key fingerprint every restart unless they want
// one.
package hostkey

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/ssh"
)

// KeyPair is a generated or derived Ed25519 host key, available both
// as an ssh.Signer (for Server.HostKey) and in OpenSSH PEM form (for
// persisting to disk).
type KeyPair struct {
	Signer ssh.Signer
	priv   ed25519.PrivateKey
}

// PEM serializes the private key to OpenSSH PEM format.
func (k KeyPair) PEM() ([]byte, error) {
	block, err := ssh.MarshalPrivateKey(k.priv, "")
	if err != nil {
		return nil, fmt.Errorf("hostkey: marshal private key: %w", err)
	}
	return pem.EncodeToMemory(block), nil
}

// GenerateRandom creates a new Ed25519 host key using the system
// CSPRNG. Each call produces a different key and therefore a
// different fingerprint; suitable for throwaway/dev servers that
// don't need key stability across restarts.
func GenerateRandom() (KeyPair, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return KeyPair{}, fmt.Errorf("hostkey: generate key: %w", err)
	}
	return wrap(priv)
}

// FromSeed deterministically derives an Ed25519 host key from seed.
// The same seed always yields the same key (and therefore the same
// host-key fingerprint), which matters because clients pin host keys
// on first connect: an operator who wants restarts to keep the same
// fingerprint without persisting a key file to disk can instead pass
// a stable seed (e.g. from a secret manager).
func FromSeed(seed string) (KeyPair, error) {
	reader := hkdf.New(sha256.New, []byte(seed), nil, []byte("shenron-host-key"))

	_, priv, err := ed25519.GenerateKey(reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("hostkey: derive key from seed: %w", err)
	}
	return wrap(priv)
}

// Load parses a PEM-encoded OpenSSH private key into an ssh.Signer.
// Keys loaded this way only expose the Signer, not the raw PEM
// encoding needed for persistence. Use GenerateRandom or FromSeed
// when the caller also needs to write the key back out.
func Load(pemBytes []byte) (ssh.Signer, error) {
	signer, err := ssh.ParsePrivateKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("hostkey: parse private key: %w", err)
	}
	return signer, nil
}

func wrap(priv ed25519.PrivateKey) (KeyPair, error) {
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return KeyPair{}, fmt.Errorf("hostkey: wrap signer: %w", err)
	}
	return KeyPair{Signer: signer, priv: priv}, nil
}
