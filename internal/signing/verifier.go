// Package signing verifies detached bundle signatures. A bundle may ship
// with a sidecar <bundle>.sig file holding a base64 ed25519 signature over
// the SHA-256 digest of the archive bytes. Trusted signers are ed25519 SSH
// public keys listed one per line in authorized_keys format.
package signing

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
)

// SignatureSuffix is appended to a bundle path to locate its signature.
const SignatureSuffix = ".sig"

// Status classifies the outcome of a verification attempt.
type Status string

const (
	// StatusSigned means a signature was present and matched a trusted key.
	StatusSigned Status = "signed"
	// StatusUnsigned means no signature file was found next to the bundle.
	StatusUnsigned Status = "unsigned"
	// StatusInvalid means a signature was present but failed verification
	// against every trusted key.
	StatusInvalid Status = "invalid"
)

// Result reports the outcome of verifying one bundle.
type Result struct {
	Status Status
	// Signer is the comment of the trusted key that verified the
	// signature, or its base64 fingerprint when no comment is set.
	Signer string
}

// Verifier checks bundle signatures against a set of trusted signers.
type Verifier interface {
	Verify(bundlePath string) (*Result, error)
}

type trustedKey struct {
	pub  ed25519.PublicKey
	name string
}

// FileVerifier verifies against keys loaded from a trusted-signers file.
type FileVerifier struct {
	keys []trustedKey
}

// NewFileVerifier loads the trusted-signers file. A missing file yields a
// verifier with no trusted keys: signed bundles then verify as invalid,
// unsigned bundles as unsigned.
func NewFileVerifier(trustedSignersPath string) (*FileVerifier, error) {
	data, err := os.ReadFile(trustedSignersPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", trustedSignersPath).Msg("No trusted signers file")
			return &FileVerifier{}, nil
		}
		return nil, fmt.Errorf("reading trusted signers: %w", err)
	}

	v := &FileVerifier{}
	for rest := data; len(bytes.TrimSpace(rest)) > 0; {
		pub, comment, _, next, err := ssh.ParseAuthorizedKey(rest)
		if err != nil {
			return nil, fmt.Errorf("parsing trusted signers %s: %w", trustedSignersPath, err)
		}
		rest = next

		cryptoPub, ok := pub.(ssh.CryptoPublicKey)
		if !ok {
			continue
		}
		edPub, ok := cryptoPub.CryptoPublicKey().(ed25519.PublicKey)
		if !ok {
			log.Warn().
				Str("key_type", pub.Type()).
				Msg("Skipping non-ed25519 trusted signer key")
			continue
		}

		name := comment
		if name == "" {
			name = ssh.FingerprintSHA256(pub)
		}
		v.keys = append(v.keys, trustedKey{pub: edPub, name: name})
	}

	log.Debug().Int("trusted_keys", len(v.keys)).Msg("Loaded trusted signers")
	return v, nil
}

// TrustedKeyCount returns how many usable signer keys were loaded.
func (v *FileVerifier) TrustedKeyCount() int { return len(v.keys) }

// Verify checks the detached signature for the bundle at bundlePath.
func (v *FileVerifier) Verify(bundlePath string) (*Result, error) {
	sigData, err := os.ReadFile(bundlePath + SignatureSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return &Result{Status: StatusUnsigned}, nil
		}
		return nil, fmt.Errorf("reading signature: %w", err)
	}

	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(sigData)))
	if err != nil {
		return nil, fmt.Errorf("decoding signature: %w", err)
	}
	if len(sig) != ed25519.SignatureSize {
		return &Result{Status: StatusInvalid}, nil
	}

	digest, err := hashFile(bundlePath)
	if err != nil {
		return nil, err
	}

	for _, key := range v.keys {
		if ed25519.Verify(key.pub, digest, sig) {
			return &Result{Status: StatusSigned, Signer: key.name}, nil
		}
	}
	return &Result{Status: StatusInvalid}, nil
}

// Sign produces a detached signature for the bundle using an OpenSSH
// ed25519 private key, writing it next to the bundle. Returns the
// signature path.
func Sign(bundlePath, privateKeyPath string) (string, error) {
	keyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return "", fmt.Errorf("reading private key: %w", err)
	}

	raw, err := ssh.ParseRawPrivateKey(keyData)
	if err != nil {
		return "", fmt.Errorf("parsing private key: %w", err)
	}

	var priv ed25519.PrivateKey
	switch k := raw.(type) {
	case ed25519.PrivateKey:
		priv = k
	case *ed25519.PrivateKey:
		priv = *k
	default:
		return "", fmt.Errorf("private key is not ed25519 (got %T)", raw)
	}

	digest, err := hashFile(bundlePath)
	if err != nil {
		return "", err
	}

	sig := ed25519.Sign(priv, digest)
	sigPath := bundlePath + SignatureSuffix
	encoded := base64.StdEncoding.EncodeToString(sig) + "\n"
	if err := os.WriteFile(sigPath, []byte(encoded), 0644); err != nil {
		return "", fmt.Errorf("writing signature: %w", err)
	}
	return sigPath, nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}
	return h.Sum(nil), nil
}
