// Package addresscodec wraps the base58 address codec as an injectable
// external collaborator (spec §1 treats base58/address encoding as out of
// scope for the core); the Validators in modules/wallet call into it but do
// not implement the checksum scheme themselves. The default codec uses the
// standard Bitcoin-style base58 alphabet, the same one CryptoNote-family
// coins use, via the widely-vendored btcsuite base58 package.
package addresscodec

import "github.com/btcsuite/btcutil/base58"

// Codec decodes a base58 address string into its raw prefix+payload bytes.
// Embedders may supply a codec that also verifies a network-specific
// checksum; the built-in Default only decodes the alphabet.
type Codec interface {
	// Decode returns the decoded bytes for a base58 string, or ok=false if
	// the string contains characters outside the base58 alphabet.
	Decode(address string) (decoded []byte, ok bool)
}

// Default is the built-in Codec, decoding the standard base58 alphabet.
type Default struct{}

var _ Codec = Default{}

// Decode implements Codec.
func (Default) Decode(address string) ([]byte, bool) {
	decoded := base58.Decode(address)
	if len(decoded) == 0 {
		return nil, false
	}
	// Every character of the input is also checked against the base58
	// alphabet directly; no re-encoding round trip is made.
	if !addressAlphabetOnly(address) {
		return nil, false
	}
	return decoded, true
}

func addressAlphabetOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isBase58Char(s[i]) {
			return false
		}
	}
	return true
}

func isBase58Char(c byte) bool {
	switch {
	case c >= '1' && c <= '9':
		return true
	case c >= 'A' && c <= 'H', c >= 'J' && c <= 'N', c >= 'P' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'k', c >= 'm' && c <= 'z':
		return true
	default:
		return false
	}
}
