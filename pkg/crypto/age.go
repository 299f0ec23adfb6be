package crypto

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"
)

// AgePassphrase implements the wire format's "aes128-sha512" encryptor id
// using age's scrypt-based passphrase recipient/identity instead of the
// literal AES-128/SHA-512 construction the name describes. See DESIGN.md:
// no pack example ships a standalone AES-CBC+HMAC implementation, and
// reusing age (already pulled in by the retrieval pack) gives a vetted,
// authenticated construction at the cost of the wire-format name no
// longer describing the actual cipher.
type AgePassphrase struct{}

func NewAgePassphrase() *AgePassphrase { return &AgePassphrase{} }

func (*AgePassphrase) Name() string { return "aes128-sha512" }

func (*AgePassphrase) Encrypt(data, password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("crypto: empty password")
	}
	recipient, err := age.NewScryptRecipient(string(password))
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	w, err := age.Encrypt(&out, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (*AgePassphrase) Decrypt(data, password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, fmt.Errorf("crypto: empty password")
	}
	identity, err := age.NewScryptIdentity(string(password))
	if err != nil {
		return nil, err
	}
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
