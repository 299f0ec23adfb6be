package crypto

import "fmt"

// Encryptor adapts one encryption scheme to the codec's framing layer.
// Name must match the header table's encryptor column ("none",
// "aes128-sha512") or "custom" for a caller-supplied implementation.
type Encryptor interface {
	Name() string
	Encrypt(data, password []byte) ([]byte, error)
	Decrypt(data, password []byte) ([]byte, error)
}

// None is the identity encryptor.
type None struct{}

func (None) Name() string                                 { return "none" }
func (None) Encrypt(data, _ []byte) ([]byte, error)        { return data, nil }
func (None) Decrypt(data, _ []byte) ([]byte, error)        { return data, nil }

// Resolve maps an encryptor name onto a concrete Encryptor. "custom" is
// not resolvable here — callers supply their own instance via
// codec.WithCustomEncryptor.
func Resolve(name string) (Encryptor, error) {
	switch name {
	case "", "none":
		return None{}, nil
	case "aes128-sha512":
		return NewAgePassphrase(), nil
	default:
		return nil, fmt.Errorf("crypto: unknown encryptor %q", name)
	}
}
