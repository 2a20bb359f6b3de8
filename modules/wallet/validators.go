package wallet

import (
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/addresscodec"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/config"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

// Validators groups the parameter-validation rules of spec §4.8. It is a
// plain value collaborator (no state of its own beyond configuration and
// the address codec) so it can be constructed once and shared freely,
// following rivine's preference for small stateless helper types over
// package-level functions when the behavior needs injected configuration.
type Validators struct {
	cfg   config.Config
	codec addresscodec.Codec
}

// NewValidators builds a Validators bound to cfg and codec.
func NewValidators(cfg config.Config, codec addresscodec.Codec) *Validators {
	return &Validators{cfg: cfg, codec: codec}
}

// ValidateAddress checks length, base58 alphabet, coin prefix, and
// (if disallowed) integration, per spec §4.8.
func (v *Validators) ValidateAddress(address string, allowIntegrated bool) *WalletError {
	n := len(address)
	if n != int(v.cfg.StandardAddressLength) && n != int(v.cfg.IntegratedAddressLength) {
		return newErr(ADDRESS_WRONG_LENGTH, "address is not a valid length")
	}

	decoded, ok := v.codec.Decode(address)
	if !ok {
		return newErr(ADDRESS_NOT_BASE58, "address contains a non-base58 character")
	}

	isIntegrated := n == int(v.cfg.IntegratedAddressLength)
	if isIntegrated && !allowIntegrated {
		return newErr(ADDRESS_IS_INTEGRATED, "an integrated address was given where a payment ID is also present")
	}

	if len(decoded) == 0 {
		return newErr(ADDRESS_NOT_VALID, "address did not decode to any data")
	}
	if !prefixMatches(decoded, v.cfg.AddressPrefix) {
		return newErr(ADDRESS_WRONG_PREFIX, "address does not match the configured coin prefix")
	}

	return nil
}

// prefixMatches checks the varint-style base58 address prefix. CryptoNote
// addresses encode the prefix as a base128 varint over the first bytes of
// the decoded payload; we only need enough of it to distinguish coins, so
// we compare the leading bytes against the little-endian encoding of the
// configured prefix.
func prefixMatches(decoded []byte, prefix uint64) bool {
	var buf []byte
	for prefix >= 0x80 {
		buf = append(buf, byte(prefix)|0x80)
		prefix >>= 7
	}
	buf = append(buf, byte(prefix))
	if len(decoded) < len(buf) {
		return false
	}
	for i, b := range buf {
		if decoded[i] != b {
			return false
		}
	}
	return true
}

// ValidateAddressIsInWallet checks the address decodes to one of the
// store's known public spend keys.
func (v *Validators) ValidateAddressIsInWallet(publicSpend types.Hex, known map[types.Hex]struct{}) *WalletError {
	if _, ok := known[publicSpend]; !ok {
		return newErr(ADDRESS_NOT_IN_WALLET, "address is not present in this wallet")
	}
	return nil
}

// ValidatePaymentID checks a payment ID is either empty or exactly 64 hex
// characters.
func (v *Validators) ValidatePaymentID(paymentID string) *WalletError {
	if paymentID == "" {
		return nil
	}
	if len(paymentID) != paymentIDLength {
		return newErr(PAYMENT_ID_WRONG_LENGTH, "payment ID must be 64 hex characters")
	}
	if !types.Hex(paymentID).Valid() {
		return newErr(PAYMENT_ID_INVALID, "payment ID contains non-hex characters")
	}
	return nil
}

// ValidateDestinations checks the destination list is non-empty, every
// amount is a positive integer, and (since payment IDs may also be carried
// by integrated addresses) no two sources of payment ID disagree.
func (v *Validators) ValidateDestinations(destinations []types.Destination, paymentID string) *WalletError {
	if len(destinations) == 0 {
		return newErr(NO_DESTINATIONS_GIVEN, "no destinations given")
	}
	seenPaymentID := paymentID
	for _, d := range destinations {
		if err := v.ValidateAddress(d.Address, paymentID == ""); err != nil {
			return err
		}
		if err := v.ValidateAmount(int64(d.Amount)); err != nil {
			return err
		}
		if len(d.Address) == int(v.cfg.IntegratedAddressLength) {
			embedded := extractIntegratedPaymentID(d.Address)
			if seenPaymentID != "" && embedded != "" && embedded != seenPaymentID {
				return newErr(CONFLICTING_PAYMENT_IDS, "destinations disagree on payment ID")
			}
			if seenPaymentID == "" {
				seenPaymentID = embedded
			}
		}
	}
	return nil
}

// extractIntegratedPaymentID pulls the trailing paymentIDLength hex chars
// an integrated address embeds after the standard address payload.
func extractIntegratedPaymentID(address string) string {
	if len(address) < paymentIDLength {
		return ""
	}
	return address[len(address)-paymentIDLength:]
}

// ValidateAmount checks amount is neither negative nor zero. Overflow of a
// transfer sum is checked separately by ValidateAmountWillNotOverflow.
func (v *Validators) ValidateAmount(amount int64) *WalletError {
	if amount < 0 {
		return newErr(NEGATIVE_VALUE_GIVEN, "amount must not be negative")
	}
	if amount == 0 {
		return newErr(AMOUNT_IS_ZERO, "amount must not be zero")
	}
	return nil
}

// ValidateFee checks fee against the minimum, distinguishing fusion (where
// the fee must be exactly zero) from regular sends per spec §9's open
// question.
func (v *Validators) ValidateFee(fee uint64, isFusion bool) *WalletError {
	if isFusion {
		if fee != 0 {
			return newErr(FEE_TOO_SMALL, "fusion transactions must carry zero fee")
		}
		return nil
	}
	if fee < v.cfg.MinimumFee {
		return newErr(FEE_TOO_SMALL, "fee is below the minimum accepted fee")
	}
	return nil
}

// ValidateMixin checks mixin against the height-indexed band.
func (v *Validators) ValidateMixin(mixin, height uint64) *WalletError {
	min, max := v.cfg.MixinLimitsByHeight(height)
	if mixin < min {
		return newErr(MIXIN_TOO_SMALL, "mixin is below the minimum allowed at this height")
	}
	if mixin > max {
		return newErr(MIXIN_TOO_BIG, "mixin is above the maximum allowed at this height")
	}
	return nil
}

// ValidateAmountWillNotOverflow checks a candidate transfer sum does not
// overflow int64, the type Transaction.Transfers values are stored in.
func (v *Validators) ValidateAmountWillNotOverflow(existing int64, delta uint64) *WalletError {
	if delta > (1<<63)-1 {
		return newErr(WILL_OVERFLOW, "amount exceeds the representable range")
	}
	sum := existing + int64(delta)
	if sum < existing {
		return newErr(WILL_OVERFLOW, "transfer sum overflows")
	}
	return nil
}

// ValidateSufficientBalance checks available covers amount+fee.
func (v *Validators) ValidateSufficientBalance(available, amount, fee uint64) *WalletError {
	if available < amount+fee {
		return newErr(NOT_ENOUGH_BALANCE, "insufficient unlocked balance")
	}
	return nil
}
