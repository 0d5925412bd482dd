package cmd

import (
	"github.com/shenron-go/shenron/internal/config"
	"github.com/shenron-go/shenron/internal/hostkey"
)

// ProvideHostKey picks between the two host-key sourcing strategies
// internal/config exposes: a deterministic seed (hostkey.FromSeed)
// takes priority if set, otherwise the server falls back to
// hostkey.Provide's load-or-generate-and-persist behavior over the
// configured path (or an ephemeral key if no path is set either). It
// is exported because cmd/shenron's hand-composed wire_gen.go calls
// it across the package boundary.
func ProvideHostKey(conf *config.Config) (*hostkey.KeyPair, error) {
	if seed := conf.ServerHostKeySeed(); seed != "" {
		kp, err := hostkey.FromSeed(seed)
		if err != nil {
			return nil, err
		}
		return &kp, nil
	}

	return hostkey.Provide(conf.ServerHostKeyPath())
}
