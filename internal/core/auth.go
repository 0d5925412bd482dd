package core

import "golang.org/x/crypto/ssh"

// PasswordVerifier decides whether user may authenticate with
// password. It is called once per auth attempt; returning false
// rejects the attempt without revealing whether the username itself
// was valid.
type PasswordVerifier func(user, password string) bool

// PubkeyVerifier decides whether user may authenticate with the given
// public key. key is only valid for the duration of the call.
type PubkeyVerifier func(user string, key ssh.PublicKey) bool

// AuthConfig holds the verifiers configured on a Server. A nil
// verifier means that method is not offered to clients at all.
type AuthConfig struct {
	Password PasswordVerifier
	Pubkey   PubkeyVerifier
}

// IsEmpty reports whether no authentication method has been
// configured. A Server with an empty AuthConfig accepts every
// connection, which is appropriate for local development only.
func (a AuthConfig) IsEmpty() bool {
	return a.Password == nil && a.Pubkey == nil
}
