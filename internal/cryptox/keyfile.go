package cryptox

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sigrelay/internal/common"
	"github.com/dmitrijs2005/sigrelay/internal/filex"
)

// WriteKeyFile stores kp as JSON at path, readable by the owner only. An
// existing file is never overwritten.
func WriteKeyFile(path string, kp KeyPair) error {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return err
	}
	b, err := json.MarshalIndent(kp, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("key file: %w", err)
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("key file %s: %w", path, err)
	}
	return f.Close()
}

// ReadKeyFile loads a key file written by WriteKeyFile. The public key is
// derived from the private key; a stored public key that disagrees is
// ErrKeyMismatch.
func ReadKeyFile(path string) (KeyPair, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return KeyPair{}, fmt.Errorf("key file: %w", err)
	}

	var kp KeyPair
	if err := json.Unmarshal(b, &kp); err != nil {
		return KeyPair{}, fmt.Errorf("%w: key file %s: %v", common.ErrInvalidKey, path, err)
	}
	pub, err := PublicKeyOf(kp.PrivateKey)
	if err != nil {
		return KeyPair{}, err
	}
	if kp.PublicKey != "" && !SameKey(pub, kp.PublicKey) {
		return KeyPair{}, common.ErrKeyMismatch
	}
	kp.PublicKey = pub
	return kp, nil
}
