package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/addresscodec"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/config"
)

type fakeCodec struct {
	prefixByte byte
}

func (f fakeCodec) Decode(address string) ([]byte, bool) {
	for _, r := range address {
		if r == '0' || r == 'O' || r == 'I' || r == 'l' {
			return nil, false
		}
	}
	return []byte{f.prefixByte, 1, 2, 3}, true
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.AddressPrefix = 42
	cfg.StandardAddressLength = 10
	cfg.IntegratedAddressLength = 10 + 64
	return cfg
}

func TestValidateAddressWrongLength(t *testing.T) {
	v := NewValidators(testConfig(), fakeCodec{prefixByte: 42})
	err := v.ValidateAddress(strings.Repeat("a", 9), true)
	assert.NotNil(t, err)
	assert.Equal(t, ADDRESS_WRONG_LENGTH, err.Code)
}

func TestValidateAddressNotBase58(t *testing.T) {
	v := NewValidators(testConfig(), fakeCodec{prefixByte: 42})
	err := v.ValidateAddress("abcdefgh0a", true)
	assert.NotNil(t, err)
	assert.Equal(t, ADDRESS_NOT_BASE58, err.Code)
}

func TestValidateAddressWrongPrefix(t *testing.T) {
	v := NewValidators(testConfig(), fakeCodec{prefixByte: 99})
	err := v.ValidateAddress("abcdefghij", true)
	assert.NotNil(t, err)
	assert.Equal(t, ADDRESS_WRONG_PREFIX, err.Code)
}

func TestValidateAddressValid(t *testing.T) {
	v := NewValidators(testConfig(), fakeCodec{prefixByte: 42})
	err := v.ValidateAddress("abcdefghij", true)
	assert.Nil(t, err)
}

func TestValidateAddressIntegratedDisallowed(t *testing.T) {
	v := NewValidators(testConfig(), fakeCodec{prefixByte: 42})
	err := v.ValidateAddress(strings.Repeat("a", 10+64), false)
	assert.NotNil(t, err)
	assert.Equal(t, ADDRESS_IS_INTEGRATED, err.Code)
}

func TestValidatePaymentID(t *testing.T) {
	v := NewValidators(testConfig(), addresscodec.Default{})

	assert.Nil(t, v.ValidatePaymentID(""))

	err := v.ValidatePaymentID("tooshort")
	assert.NotNil(t, err)
	assert.Equal(t, PAYMENT_ID_WRONG_LENGTH, err.Code)

	invalidChars := strings.Repeat("g", 64)
	err = v.ValidatePaymentID(invalidChars)
	assert.NotNil(t, err)
	assert.Equal(t, PAYMENT_ID_INVALID, err.Code)

	valid := strings.Repeat("a", 64)
	assert.Nil(t, v.ValidatePaymentID(valid))
}

func TestValidateAmount(t *testing.T) {
	v := NewValidators(testConfig(), addresscodec.Default{})

	err := v.ValidateAmount(-1)
	assert.Equal(t, NEGATIVE_VALUE_GIVEN, err.Code)

	err = v.ValidateAmount(0)
	assert.Equal(t, AMOUNT_IS_ZERO, err.Code)

	assert.Nil(t, v.ValidateAmount(100))
}

func TestValidateFeeFusionVsRegular(t *testing.T) {
	v := NewValidators(testConfig(), addresscodec.Default{})

	assert.Nil(t, v.ValidateFee(0, true))

	err := v.ValidateFee(0, false)
	assert.NotNil(t, err)
	assert.Equal(t, FEE_TOO_SMALL, err.Code)

	err = v.ValidateFee(1, true)
	assert.NotNil(t, err)
	assert.Equal(t, FEE_TOO_SMALL, err.Code)

	assert.Nil(t, v.ValidateFee(v.cfg.MinimumFee, false))
}

func TestValidateMixinBand(t *testing.T) {
	cfg := testConfig()
	cfg.MixinLimits = []config.MixinLimit{
		{Height: 0, MinMixin: 1, MaxMixin: 5},
		{Height: 1000, MinMixin: 3, MaxMixin: 7},
	}
	v := NewValidators(cfg, addresscodec.Default{})

	assert.Equal(t, MIXIN_TOO_SMALL, v.ValidateMixin(0, 500).Code)
	assert.Nil(t, v.ValidateMixin(3, 500))
	assert.Equal(t, MIXIN_TOO_BIG, v.ValidateMixin(6, 500).Code)
	assert.Equal(t, MIXIN_TOO_SMALL, v.ValidateMixin(2, 1500).Code)
	assert.Nil(t, v.ValidateMixin(7, 1500))
}
