package exchanges

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

var _ Exchange = (*Binance)(nil)

// Binance fetches market data from the Binance public REST API.
type Binance struct {
	baseURL string
	http    *httpx.Client
}

// NewBinance creates a Binance client.
func NewBinance(http *httpx.Client) *Binance {
	return &Binance{
		baseURL: "https://api.binance.com",
		http:    http,
	}
}

// Name returns the exchange identifier.
func (b *Binance) Name() string { return "Binance" }

// OHLCV fetches klines for one trading pair.
func (b *Binance) OHLCV(ctx context.Context, pair, interval string) ([]rows.OHLCV, error) {
	params := url.Values{
		"symbol":   {binanceSymbol(pair)},
		"interval": {interval},
	}

	// Klines come back as arrays of mixed numbers and strings.
	var raw [][]any
	if err := b.http.GetJSON(ctx, b.baseURL+"/api/v3/klines", params, nil, &raw); err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", pair, err)
	}

	now := time.Now().UTC()
	out := make([]rows.OHLCV, 0, len(raw))
	for _, k := range raw {
		if len(k) < 6 {
			continue
		}
		openTime, ok := k[0].(float64)
		if !ok {
			continue
		}
		o, err1 := anyFloat(k[1])
		h, err2 := anyFloat(k[2])
		l, err3 := anyFloat(k[3])
		cl, err4 := anyFloat(k[4])
		v, err5 := anyFloat(k[5])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}
		out = append(out, rows.OHLCV{
			IngestionTimestamp: now,
			EventTimestamp:     time.UnixMilli(int64(openTime)).UTC(),
			TradingPair:        pair,
			ExchangeSource:     b.Name(),
			Granularity:        interval,
			Open:               o,
			High:               h,
			Low:                l,
			Close:              cl,
			Volume:             v,
		})
	}
	return out, nil
}

// OrderBook fetches an order book snapshot.
func (b *Binance) OrderBook(ctx context.Context, pair string, depth int) ([]rows.OrderBookLevel, error) {
	params := url.Values{
		"symbol": {binanceSymbol(pair)},
		"limit":  {strconv.Itoa(depth)},
	}

	var raw struct {
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
	}
	if err := b.http.GetJSON(ctx, b.baseURL+"/api/v3/depth", params, nil, &raw); err != nil {
		return nil, fmt.Errorf("binance depth %s: %w", pair, err)
	}

	now := time.Now().UTC()
	out := make([]rows.OrderBookLevel, 0, len(raw.Bids)+len(raw.Asks))
	out = appendLevels(out, raw.Bids, "bid", pair, b.Name(), now)
	out = appendLevels(out, raw.Asks, "ask", pair, b.Name(), now)
	return out, nil
}

func appendLevels(out []rows.OrderBookLevel, levels [][]string, side, pair, source string, now time.Time) []rows.OrderBookLevel {
	for _, lvl := range levels {
		if len(lvl) < 2 {
			continue
		}
		price, err1 := strconv.ParseFloat(lvl[0], 64)
		qty, err2 := strconv.ParseFloat(lvl[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, rows.OrderBookLevel{
			IngestionTimestamp: now,
			TradingPair:        pair,
			ExchangeSource:     source,
			Side:               side,
			Price:              price,
			Quantity:           qty,
		})
	}
	return out
}

func binanceSymbol(pair string) string {
	return strings.ToUpper(strings.ReplaceAll(pair, "/", ""))
}

func anyFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("unexpected value type %T", v)
	}
}
