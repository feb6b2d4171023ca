package exchanges

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

func newTestKraken(server *httptest.Server) *Kraken {
	k := NewKraken(httpx.New(zap.NewNop()))
	k.baseURL = server.URL
	return k
}

func TestKrakenSymbol(t *testing.T) {
	tests := []struct {
		pair string
		want string
	}{
		{"BTC/USDT", "XBTUSDT"},
		{"ETH/USDT", "ETHUSDT"},
		{"eth/usd", "ETHUSD"},
		{"SOLUSD", "SOLUSD"},
	}
	for _, tt := range tests {
		if got := krakenSymbol(tt.pair); got != tt.want {
			t.Errorf("krakenSymbol(%q) = %q, want %q", tt.pair, got, tt.want)
		}
	}
}

func TestIntervalMinutes(t *testing.T) {
	if got, err := intervalMinutes("1h"); err != nil || got != 60 {
		t.Errorf("intervalMinutes(1h) = %d, %v", got, err)
	}
	if _, err := intervalMinutes("3w"); err == nil {
		t.Error("expected error for unsupported interval")
	}
}

func TestKraken_OHLCV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pair") != "XBTUSDT" {
			t.Errorf("expected pair XBTUSDT, got %q", r.URL.Query().Get("pair"))
		}
		if r.URL.Query().Get("interval") != "1" {
			t.Errorf("expected interval 1, got %q", r.URL.Query().Get("interval"))
		}
		w.Write([]byte(`{
			"error": [],
			"result": {
				"XXBTZUSD": [
					[1717401600, "68000.1", "68100.5", "67900.0", "68050.2", "68010.0", "12.5", 100]
				],
				"last": 1717401600
			}
		}`))
	}))
	defer server.Close()

	candles, err := newTestKraken(server).OHLCV(context.Background(), "BTC/USDT", "1m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candles) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(candles))
	}
	c := candles[0]
	if c.ExchangeSource != "Kraken" || c.TradingPair != "BTC/USDT" {
		t.Errorf("unexpected candle identity %+v", c)
	}
	wantTS := time.Unix(1717401600, 0).UTC()
	if !c.EventTimestamp.Equal(wantTS) {
		t.Errorf("expected event timestamp %v, got %v", wantTS, c.EventTimestamp)
	}
	// Kraken puts VWAP at index 5; volume is index 6.
	if c.Volume != 12.5 {
		t.Errorf("expected volume 12.5, got %f", c.Volume)
	}
}

func TestKraken_OHLCV_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": ["EQuery:Unknown asset pair"], "result": {}}`))
	}))
	defer server.Close()

	if _, err := newTestKraken(server).OHLCV(context.Background(), "BTC/USDT", "1m"); err == nil {
		t.Error("expected error when the API reports one")
	}
}

func TestKraken_OrderBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"error": [],
			"result": {
				"XXBTZUSD": {
					"bids": [["68000.0", "1.5", 1717401600]],
					"asks": [["68010.0", "0.75", 1717401601]]
				}
			}
		}`))
	}))
	defer server.Close()

	levels, err := newTestKraken(server).OrderBook(context.Background(), "BTC/USDT", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(levels) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(levels))
	}
	if levels[0].Side != "bid" || levels[0].Price != 68000.0 {
		t.Errorf("unexpected bid %+v", levels[0])
	}
	if levels[1].Side != "ask" || levels[1].Quantity != 0.75 {
		t.Errorf("unexpected ask %+v", levels[1])
	}
}
