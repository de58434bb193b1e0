package issuance

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// AddressLength は Solana の公開鍵 (ed25519) のバイト長です。
const AddressLength = 32

// Address は base58 エンコードされた 32 バイトの公開鍵です。
// ドメイン層は SDK の型に依存しないため文字列で保持します。
type Address string

func (a Address) String() string { return string(a) }

// Validate は base58 としてデコードでき、32 バイトであることを確認します。
func (a Address) Validate() error {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return fmt.Errorf("address is empty")
	}
	if s != string(a) {
		return fmt.Errorf("address %q has surrounding whitespace", string(a))
	}
	b, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("address %q is not base58: %w", s, err)
	}
	if len(b) != AddressLength {
		return fmt.Errorf("address %q decodes to %d bytes, want %d", s, len(b), AddressLength)
	}
	return nil
}

// Bytes は 32 バイトの生の鍵を返します。
func (a Address) Bytes() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return base58.Decode(string(a))
}

// AddressFromBytes は 32 バイトの鍵を Address に変換します。
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressLength {
		return "", fmt.Errorf("address bytes: got %d, want %d", len(b), AddressLength)
	}
	return Address(base58.Encode(b)), nil
}
