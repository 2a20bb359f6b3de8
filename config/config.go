// Package config holds every tunable the core threads through its
// subcomponents. Rivine's wallet takes its chain parameters
// (types.BlockchainInfo, types.ChainConstants) as explicit constructor
// arguments rather than module-level globals (modules/wallet/wallet.go
// New()); this Config struct generalizes that same pattern to every knob
// spec.md §6 enumerates, per the design note that "module-level default
// configuration... become explicit context objects".
package config

import "time"

// MixinLimit is one band of the height-indexed mixin policy table.
type MixinLimit struct {
	Height       uint64
	MinMixin     uint64
	MaxMixin     uint64
	DefaultMixin uint64
}

// Config is constructed once by the embedder and passed by value into
// every subcomponent constructor.
type Config struct {
	DecimalPlaces   int
	AddressPrefix   uint64
	RequestTimeout  time.Duration
	BlockTargetTime time.Duration

	SyncThreadInterval              time.Duration
	DaemonUpdateInterval            time.Duration
	LockedTransactionsCheckInterval time.Duration
	BlocksPerTick                   int

	ScanCoinbaseTransactions bool

	MinimumFee    uint64
	MaxFusionTxSize int
	MaxFusionInputs  int
	MixinLimits      []MixinLimit

	StandardAddressLength   int
	IntegratedAddressLength int

	BlockStoreMemoryLimit uint64
	BlocksPerDaemonRequest int
	MaxBodyResponseSize    uint64
}

// Default returns the configuration spec.md §6 names as defaults.
func Default() Config {
	return Config{
		DecimalPlaces:   2,
		AddressPrefix:   3914525,
		RequestTimeout:  10 * time.Second,
		BlockTargetTime: 30 * time.Second,

		SyncThreadInterval:              10 * time.Millisecond,
		DaemonUpdateInterval:            10 * time.Second,
		LockedTransactionsCheckInterval: 30 * time.Second,
		BlocksPerTick:                   1,

		ScanCoinbaseTransactions: false,

		MinimumFee:      10,
		MaxFusionTxSize: 8 * 1024,
		MaxFusionInputs: 12,
		MixinLimits:     nil,

		StandardAddressLength:   99,
		IntegratedAddressLength: 99 + 88,

		BlockStoreMemoryLimit:  50 * 1024 * 1024,
		BlocksPerDaemonRequest: 100,
		MaxBodyResponseSize:    50 * 1024 * 1024,
	}
}

// MixinLimitsByHeight returns the [min,max] mixin band in effect at the
// given height. Per spec §9's open question, the two reference
// implementations disagree on the fallback; this implementation follows
// the documented fall-through: default to [0, 2^64-1] and only narrow when
// a matching rule's height has been reached, never falling back to a
// previously-matched rule once a later height stops matching.
func (c Config) MixinLimitsByHeight(height uint64) (min, max uint64) {
	min, max = 0, ^uint64(0)
	for _, limit := range c.MixinLimits {
		if height >= limit.Height {
			min, max = limit.MinMixin, limit.MaxMixin
		}
	}
	return min, max
}
