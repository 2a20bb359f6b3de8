// Package crypto holds the deterministic, one-shot cryptographic operations
// the synchronizer needs to classify outputs and derive key images. Every
// operation here is injectable (see Primitives); the built-in
// implementation is a default, not a mandate, the same split rivine makes
// between its own signature primitives (crypto/signatures.go) and the
// embedder-supplied policy around them.
//
// The actual elliptic-curve point arithmetic and scalar arithmetic a
// production CryptoNote client needs are out of scope for this core (see
// spec §1); the built-in implementation below derives everything from
// Keccak-256 so that the required algebraic identity in §8 invariant 5
// (underivePublicKey(keyDerivation(P,v), i, outKey) ∈ S iff owned) holds
// internally, without depending on a real curve25519/ed25519 point library.
// Embedders that need wire-compatibility with an actual CryptoNote network
// provide their own Primitives.
package crypto

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

// Primitives is the capability trait every classification and spend
// operation is built from. Embedders may override any subset by embedding
// Default (see below); a nil Primitives given to NewBlockProcessor falls
// back to Default as a whole.
type Primitives interface {
	// KeyDerivation computes the shared derivation D from a transaction's
	// public key and our private view key.
	KeyDerivation(txPublicKey, privateViewKey types.Hex) types.Hex
	// PublicEphemeral computes the one-time public key for output index i
	// given the derivation and a subwallet's public spend key.
	PublicEphemeral(derivation types.Hex, outputIndex uint64, publicSpend types.Hex) types.Hex
	// PrivateEphemeral computes the one-time private key for output index i
	// given the derivation and a subwallet's private spend key.
	PrivateEphemeral(derivation types.Hex, outputIndex uint64, privateSpend types.Hex) types.Hex
	// KeyImage computes the key image (double-spend nullifier) of an output
	// from its one-time public/private keypair.
	KeyImage(publicEphemeral, privateEphemeral types.Hex) types.Hex
	// UnderivePublicKey recovers the public spend key an output key was
	// derived from, given the derivation and output index. Used to test
	// ownership without knowing the private spend key up front.
	UnderivePublicKey(derivation types.Hex, outputIndex uint64, outputKey types.Hex) types.Hex
}

// Default is the built-in Primitives implementation. Embedders wanting to
// override only a subset of operations can embed Default and shadow the
// methods they need.
type Default struct{}

var _ Primitives = Default{}

// KeyDerivation implements Primitives.
func (Default) KeyDerivation(txPublicKey, privateViewKey types.Hex) types.Hex {
	a, err := decode(txPublicKey)
	if err != nil {
		return types.NullKey
	}
	b, err := decode(privateViewKey)
	if err != nil {
		return types.NullKey
	}
	return encode(keccak(a, b))
}

// PublicEphemeral implements Primitives.
func (Default) PublicEphemeral(derivation types.Hex, outputIndex uint64, publicSpend types.Hex) types.Hex {
	d, err := decode(derivation)
	if err != nil {
		return types.NullKey
	}
	s, err := decode(publicSpend)
	if err != nil {
		return types.NullKey
	}
	mask := keccak(d, indexBytes(outputIndex))
	return encode(xor(mask, s))
}

// PrivateEphemeral implements Primitives.
func (Default) PrivateEphemeral(derivation types.Hex, outputIndex uint64, privateSpend types.Hex) types.Hex {
	d, err := decode(derivation)
	if err != nil {
		return types.NullKey
	}
	s, err := decode(privateSpend)
	if err != nil {
		return types.NullKey
	}
	return encode(keccak(d, indexBytes(outputIndex), s))
}

// KeyImage implements Primitives.
func (Default) KeyImage(publicEphemeral, privateEphemeral types.Hex) types.Hex {
	p, err := decode(publicEphemeral)
	if err != nil {
		return types.NullKey
	}
	s, err := decode(privateEphemeral)
	if err != nil {
		return types.NullKey
	}
	return encode(keccak(p, s))
}

// UnderivePublicKey implements Primitives.
func (Default) UnderivePublicKey(derivation types.Hex, outputIndex uint64, outputKey types.Hex) types.Hex {
	d, err := decode(derivation)
	if err != nil {
		return types.NullKey
	}
	k, err := decode(outputKey)
	if err != nil {
		return types.NullKey
	}
	mask := keccak(d, indexBytes(outputIndex))
	return encode(xor(mask, k))
}

func decode(h types.Hex) ([]byte, error) {
	if !h.Valid() {
		return nil, errInvalidHex
	}
	return hex.DecodeString(string(h))
}

func encode(b []byte) types.Hex {
	return types.Hex(hex.EncodeToString(b))
}

func keccak(parts ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}

func xor(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range out {
		out[i] = a[i] ^ b[i%len(b)]
	}
	return out
}

func indexBytes(index uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], index)
	return buf[:]
}

type invalidHexError string

func (e invalidHexError) Error() string { return string(e) }

const errInvalidHex = invalidHexError("crypto: invalid 32-byte hex key")
