package exchanges

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bimakw/market-intel/internal/domain/rows"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

var _ Exchange = (*Kraken)(nil)

// Kraken fetches market data from the Kraken public REST API.
type Kraken struct {
	baseURL string
	http    *httpx.Client
}

// NewKraken creates a Kraken client.
func NewKraken(http *httpx.Client) *Kraken {
	return &Kraken{
		baseURL: "https://api.kraken.com",
		http:    http,
	}
}

// Name returns the exchange identifier.
func (k *Kraken) Name() string { return "Kraken" }

// OHLCV fetches candles for one trading pair. Kraken expresses the
// interval in minutes and names Bitcoin XBT.
func (k *Kraken) OHLCV(ctx context.Context, pair, interval string) ([]rows.OHLCV, error) {
	minutes, err := intervalMinutes(interval)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"pair":     {krakenSymbol(pair)},
		"interval": {strconv.Itoa(minutes)},
	}

	var raw struct {
		Error  []string                   `json:"error"`
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := k.http.GetJSON(ctx, k.baseURL+"/0/public/OHLC", params, nil, &raw); err != nil {
		return nil, fmt.Errorf("kraken ohlc %s: %w", pair, err)
	}
	if len(raw.Error) > 0 {
		return nil, fmt.Errorf("kraken ohlc %s: %s", pair, strings.Join(raw.Error, "; "))
	}

	// The result holds one entry keyed by Kraken's own pair name plus a
	// "last" cursor.
	var candles [][]any
	for key, msg := range raw.Result {
		if key == "last" {
			continue
		}
		if err := json.Unmarshal(msg, &candles); err != nil {
			return nil, fmt.Errorf("kraken ohlc %s: %w", pair, err)
		}
		break
	}

	now := time.Now().UTC()
	out := make([]rows.OHLCV, 0, len(candles))
	for _, c := range candles {
		if len(c) < 7 {
			continue
		}
		ts, ok := c[0].(float64)
		if !ok {
			continue
		}
		o, err1 := anyFloat(c[1])
		h, err2 := anyFloat(c[2])
		l, err3 := anyFloat(c[3])
		cl, err4 := anyFloat(c[4])
		v, err5 := anyFloat(c[6])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}
		out = append(out, rows.OHLCV{
			IngestionTimestamp: now,
			EventTimestamp:     time.Unix(int64(ts), 0).UTC(),
			TradingPair:        pair,
			ExchangeSource:     k.Name(),
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
func (k *Kraken) OrderBook(ctx context.Context, pair string, depth int) ([]rows.OrderBookLevel, error) {
	params := url.Values{
		"pair":  {krakenSymbol(pair)},
		"count": {strconv.Itoa(depth)},
	}

	var raw struct {
		Error  []string                   `json:"error"`
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := k.http.GetJSON(ctx, k.baseURL+"/0/public/Depth", params, nil, &raw); err != nil {
		return nil, fmt.Errorf("kraken depth %s: %w", pair, err)
	}
	if len(raw.Error) > 0 {
		return nil, fmt.Errorf("kraken depth %s: %s", pair, strings.Join(raw.Error, "; "))
	}

	var book struct {
		Bids [][]any `json:"bids"`
		Asks [][]any `json:"asks"`
	}
	for _, msg := range raw.Result {
		if err := json.Unmarshal(msg, &book); err != nil {
			return nil, fmt.Errorf("kraken depth %s: %w", pair, err)
		}
		break
	}

	now := time.Now().UTC()
	out := make([]rows.OrderBookLevel, 0, len(book.Bids)+len(book.Asks))
	out = appendKrakenLevels(out, book.Bids, "bid", pair, k.Name(), now)
	out = appendKrakenLevels(out, book.Asks, "ask", pair, k.Name(), now)
	return out, nil
}

func appendKrakenLevels(out []rows.OrderBookLevel, levels [][]any, side, pair, source string, now time.Time) []rows.OrderBookLevel {
	for _, lvl := range levels {
		if len(lvl) < 2 {
			continue
		}
		price, err1 := anyFloat(lvl[0])
		qty, err2 := anyFloat(lvl[1])
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

// krakenSymbol maps a normalized pair to Kraken's naming, where Bitcoin
// is XBT.
func krakenSymbol(pair string) string {
	base, quote, found := strings.Cut(pair, "/")
	if !found {
		return strings.ToUpper(pair)
	}
	if strings.EqualFold(base, "BTC") {
		base = "XBT"
	}
	return strings.ToUpper(base + quote)
}

func intervalMinutes(interval string) (int, error) {
	switch interval {
	case "1m":
		return 1, nil
	case "5m":
		return 5, nil
	case "15m":
		return 15, nil
	case "30m":
		return 30, nil
	case "1h":
		return 60, nil
	case "4h":
		return 240, nil
	case "1d":
		return 1440, nil
	default:
		return 0, fmt.Errorf("unsupported interval %q", interval)
	}
}
