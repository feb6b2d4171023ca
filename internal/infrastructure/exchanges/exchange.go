package exchanges

import (
	"context"

	"github.com/bimakw/market-intel/internal/domain/rows"
)

// Exchange is a centralized exchange public market-data API.
type Exchange interface {
	// Name returns the exchange identifier stored in the exchange_source
	// column.
	Name() string

	// OHLCV fetches candles for a trading pair like "BTC/USDT" at the
	// given granularity ("1m", "1h", "1d").
	OHLCV(ctx context.Context, pair, interval string) ([]rows.OHLCV, error)

	// OrderBook fetches an order book snapshot limited to depth levels
	// per side.
	OrderBook(ctx context.Context, pair string, depth int) ([]rows.OrderBookLevel, error)
}
