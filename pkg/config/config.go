// Package config loads the matcher's init-time parameters: the price
// range, pool/queue sizing, and the synthetic feed mix used by the
// benchmark harness.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// FeedMix is the fraction of generated commands of each kind. The core
// itself never depends on this distribution — it exists purely to make
// the feed generator's shape configurable rather than hard-coded.
type FeedMix struct {
	Limit  float64
	IOC    float64
	FOK    float64
	Cancel float64
}

// Config bundles everything needed to construct a Queue, Pool, Book, and
// Engine, plus the feed generator's parameters for benchmark runs.
type Config struct {
	PriceMin              int64
	PriceMax              int64
	MaxOrders             uint64
	RingBufferSize        uint64
	TotalOrdersToGenerate uint64
	FeedMix               FeedMix

	Instrument string

	MarketDataAddr string
	PyroscopeAddr  string
}

// Default returns the baseline run parameters: PRICE_MIN=0,
// PRICE_MAX=10000, MAX_ORDERS=1_000_000, RING_BUFFER_SIZE=2^20.
func Default() Config {
	return Config{
		PriceMin:              0,
		PriceMax:              10_000,
		MaxOrders:             1_000_000,
		RingBufferSize:        1 << 20,
		TotalOrdersToGenerate: 1_000_000,
		FeedMix: FeedMix{
			Limit:  0.70,
			IOC:    0.15,
			FOK:    0.05,
			Cancel: 0.10,
		},
		Instrument: "CLOB-0",
	}
}

// LoadFromEnv loads a .env file (if present, or the one at envPath) and
// then overlays environment variables on top of Default(). Priority:
// ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("CLOB_PRICE_MIN"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.PriceMin = n
		}
	}
	if v := os.Getenv("CLOB_PRICE_MAX"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.PriceMax = n
		}
	}
	if v := os.Getenv("CLOB_MAX_ORDERS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.MaxOrders = n
		}
	}
	if v := os.Getenv("CLOB_RING_BUFFER_SIZE"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.RingBufferSize = n
		}
	}
	if v := os.Getenv("CLOB_TOTAL_ORDERS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.TotalOrdersToGenerate = n
		}
	}
	if v := os.Getenv("CLOB_INSTRUMENT"); v != "" {
		cfg.Instrument = v
	}
	if v := os.Getenv("CLOB_FEED_LIMIT_FRAC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FeedMix.Limit = f
		}
	}
	if v := os.Getenv("CLOB_FEED_IOC_FRAC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FeedMix.IOC = f
		}
	}
	if v := os.Getenv("CLOB_FEED_FOK_FRAC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FeedMix.FOK = f
		}
	}
	if v := os.Getenv("CLOB_FEED_CANCEL_FRAC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FeedMix.Cancel = f
		}
	}
	if v := os.Getenv("CLOB_MARKETDATA_ADDR"); v != "" {
		cfg.MarketDataAddr = v
	}
	if v := os.Getenv("CLOB_PYROSCOPE_ADDR"); v != "" {
		cfg.PyroscopeAddr = v
	}

	return cfg
}
