package hostkey

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFromSeedIsDeterministic(t *testing.T) {
	k1, err := FromSeed("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	k2, err := FromSeed("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}

	if !bytes.Equal(k1.Signer.PublicKey().Marshal(), k2.Signer.PublicKey().Marshal()) {
		t.Error("expected the same seed to derive the same public key")
	}
}

func TestFromSeedDifferentSeeds(t *testing.T) {
	k1, err := FromSeed("seed-a")
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}
	k2, err := FromSeed("seed-b")
	if err != nil {
		t.Fatalf("FromSeed: %v", err)
	}

	if bytes.Equal(k1.Signer.PublicKey().Marshal(), k2.Signer.PublicKey().Marshal()) {
		t.Error("expected different seeds to derive different public keys")
	}
}

func TestGenerateRandomUniquePerCall(t *testing.T) {
	k1, err := GenerateRandom()
	if err != nil {
		t.Fatalf("GenerateRandom: %v", err)
	}
	k2, err := GenerateRandom()
	if err != nil {
		t.Fatalf("GenerateRandom: %v", err)
	}

	if bytes.Equal(k1.Signer.PublicKey().Marshal(), k2.Signer.PublicKey().Marshal()) {
		t.Error("expected two GenerateRandom calls to produce different keys")
	}
}

func TestKeyPairPEMRoundtrip(t *testing.T) {
	original, err := GenerateRandom()
	if err != nil {
		t.Fatalf("GenerateRandom: %v", err)
	}

	pemBytes, err := original.PEM()
	if err != nil {
		t.Fatalf("PEM: %v", err)
	}
	if len(pemBytes) == 0 {
		t.Fatal("expected non-empty PEM")
	}

	loaded, err := Load(pemBytes)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !bytes.Equal(original.Signer.PublicKey().Marshal(), loaded.PublicKey().Marshal()) {
		t.Error("loaded key's public key differs from the original")
	}
}

func TestProvideGeneratesThenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "host_key")

	first, err := Provide(path)
	if err != nil {
		t.Fatalf("Provide (first run): %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected host key file to be written: %v", err)
	}

	second, err := Provide(path)
	if err != nil {
		t.Fatalf("Provide (second run): %v", err)
	}

	if !bytes.Equal(first.Signer.PublicKey().Marshal(), second.Signer.PublicKey().Marshal()) {
		t.Error("expected the second Provide call to load the same key persisted by the first")
	}
}

func TestProvideEmptyPathGeneratesEphemeralKey(t *testing.T) {
	kp, err := Provide("")
	if err != nil {
		t.Fatalf("Provide: %v", err)
	}
	if kp.Signer == nil {
		t.Fatal("expected a usable signer even with no path configured")
	}
}
