package crypto

import "github.com/kryptokrona/kryptokrona-wallet-backend-go/types"

// Classify reports the public spend key an output at index i in a
// transaction with public key txPub was sent to, using the given private
// view key, and whether that key is one of the wallet's own public spend
// keys (§4.1). On any internal failure the null key is returned and found
// is false, never an error: classification failures are "not mine", not
// fatal.
func Classify(p Primitives, txPublicKey, privateViewKey, outputKey types.Hex, outputIndex uint64, ownedPublicSpends map[types.Hex]struct{}) (publicSpend types.Hex, found bool) {
	derivation := p.KeyDerivation(txPublicKey, privateViewKey)
	if derivation.IsNull() {
		return types.NullKey, false
	}
	candidate := p.UnderivePublicKey(derivation, outputIndex, outputKey)
	if candidate.IsNull() {
		return types.NullKey, false
	}
	_, owned := ownedPublicSpends[candidate]
	return candidate, owned
}

// DeriveKeyImage computes the key image for an owned output, given the
// derivation already computed for the transaction and the subwallet's spend
// keypair. If the subwallet is view-only (no private spend key), the null
// key is returned: view-only wallets can detect but never spend outputs.
func DeriveKeyImage(p Primitives, derivation types.Hex, outputIndex uint64, keys types.KeyPair) types.Hex {
	if keys.IsViewOnly() {
		return types.NullKey
	}
	publicEphemeral := p.PublicEphemeral(derivation, outputIndex, keys.PublicSpend)
	privateEphemeral := p.PrivateEphemeral(derivation, outputIndex, keys.PrivateSpend)
	if publicEphemeral.IsNull() || privateEphemeral.IsNull() {
		return types.NullKey
	}
	return p.KeyImage(publicEphemeral, privateEphemeral)
}
