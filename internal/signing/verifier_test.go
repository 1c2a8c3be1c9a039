package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// writeKeyPair generates an ed25519 keypair, writing the private key in
// OpenSSH format and appending the public key to the trusted signers file.
func writeKeyPair(t *testing.T, dir, comment string) (privPath, signersPath string) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(priv, comment)
	require.NoError(t, err)
	privPath = filepath.Join(dir, comment+".key")
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(block), 0600))

	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	line := string(ssh.MarshalAuthorizedKey(sshPub))
	// authorized_keys comments are appended after the key material.
	line = line[:len(line)-1] + " " + comment + "\n"

	signersPath = filepath.Join(dir, "trusted_signers")
	f, err := os.OpenFile(signersPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(line)
	require.NoError(t, err)

	return privPath, signersPath
}

func TestSignAndVerify(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.zip")
	require.NoError(t, os.WriteFile(bundle, []byte("archive bytes"), 0644))

	privPath, signersPath := writeKeyPair(t, dir, "alice")

	sigPath, err := Sign(bundle, privPath)
	require.NoError(t, err)
	assert.Equal(t, bundle+SignatureSuffix, sigPath)

	v, err := NewFileVerifier(signersPath)
	require.NoError(t, err)
	require.Equal(t, 1, v.TrustedKeyCount())

	res, err := v.Verify(bundle)
	require.NoError(t, err)
	assert.Equal(t, StatusSigned, res.Status)
	assert.Equal(t, "alice", res.Signer)
}

func TestVerify_Unsigned(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.zip")
	require.NoError(t, os.WriteFile(bundle, []byte("archive bytes"), 0644))

	v, err := NewFileVerifier(filepath.Join(dir, "missing_signers"))
	require.NoError(t, err)

	res, err := v.Verify(bundle)
	require.NoError(t, err)
	assert.Equal(t, StatusUnsigned, res.Status)
}

func TestVerify_TamperedBundle(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.zip")
	require.NoError(t, os.WriteFile(bundle, []byte("archive bytes"), 0644))

	privPath, signersPath := writeKeyPair(t, dir, "alice")
	_, err := Sign(bundle, privPath)
	require.NoError(t, err)

	// Flip the content after signing.
	require.NoError(t, os.WriteFile(bundle, []byte("tampered bytes"), 0644))

	v, err := NewFileVerifier(signersPath)
	require.NoError(t, err)

	res, err := v.Verify(bundle)
	require.NoError(t, err)
	assert.Equal(t, StatusInvalid, res.Status)
}

func TestVerify_UntrustedSigner(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.zip")
	require.NoError(t, os.WriteFile(bundle, []byte("archive bytes"), 0644))

	// Sign with alice, trust only bob.
	alicePriv, _ := writeKeyPair(t, dir, "alice")
	otherDir := t.TempDir()
	_, bobSigners := writeKeyPair(t, otherDir, "bob")

	_, err := Sign(bundle, alicePriv)
	require.NoError(t, err)

	v, err := NewFileVerifier(bobSigners)
	require.NoError(t, err)

	res, err := v.Verify(bundle)
	require.NoError(t, err)
	assert.Equal(t, StatusInvalid, res.Status)
}

func TestVerify_MalformedSignature(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.zip")
	require.NoError(t, os.WriteFile(bundle, []byte("archive bytes"), 0644))
	require.NoError(t, os.WriteFile(bundle+SignatureSuffix, []byte("not base64!!"), 0644))

	v := &FileVerifier{}
	_, err := v.Verify(bundle)
	require.Error(t, err)
}

func TestNewFileVerifier_MultipleKeys(t *testing.T) {
	dir := t.TempDir()
	writeKeyPair(t, dir, "alice")
	_, signersPath := writeKeyPair(t, dir, "bob")

	v, err := NewFileVerifier(signersPath)
	require.NoError(t, err)
	assert.Equal(t, 2, v.TrustedKeyCount())
}
