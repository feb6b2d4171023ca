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

func newTestBinance(server *httptest.Server) *Binance {
	b := NewBinance(httpx.New(zap.NewNop()))
	b.baseURL = server.URL
	return b
}

func TestBinance_OHLCV(t *testing.T) {
	var gotSymbol, gotInterval string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		gotInterval = r.URL.Query().Get("interval")
		w.Write([]byte(`[
			[1717401600000, "68000.1", "68100.5", "67900.0", "68050.2", "12.5", 1717401659999],
			[1717401660000, "68050.2", "68120.0", "68000.0", "68110.9", "8.25", 1717401719999],
			["garbage", "x", "y", "z", "w", "v"]
		]`))
	}))
	defer server.Close()

	candles, err := newTestBinance(server).OHLCV(context.Background(), "BTC/USDT", "1m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotSymbol != "BTCUSDT" {
		t.Errorf("expected symbol BTCUSDT, got %q", gotSymbol)
	}
	if gotInterval != "1m" {
		t.Errorf("expected interval 1m, got %q", gotInterval)
	}

	if len(candles) != 2 {
		t.Fatalf("expected 2 parseable candles, got %d", len(candles))
	}
	first := candles[0]
	if first.TradingPair != "BTC/USDT" || first.ExchangeSource != "Binance" || first.Granularity != "1m" {
		t.Errorf("unexpected candle identity %+v", first)
	}
	wantTS := time.UnixMilli(1717401600000).UTC()
	if !first.EventTimestamp.Equal(wantTS) {
		t.Errorf("expected event timestamp %v, got %v", wantTS, first.EventTimestamp)
	}
	if first.Open != 68000.1 || first.High != 68100.5 || first.Low != 67900.0 || first.Close != 68050.2 {
		t.Errorf("unexpected OHLC values %+v", first)
	}
	if first.Volume != 12.5 {
		t.Errorf("expected volume 12.5, got %f", first.Volume)
	}
}

func TestBinance_OrderBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "2" {
			t.Errorf("expected limit 2, got %q", r.URL.Query().Get("limit"))
		}
		w.Write([]byte(`{
			"bids": [["68000.0", "1.5"], ["67990.0", "2.0"]],
			"asks": [["68010.0", "0.75"], ["bad", "data"]]
		}`))
	}))
	defer server.Close()

	levels, err := newTestBinance(server).OrderBook(context.Background(), "BTC/USDT", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(levels) != 3 {
		t.Fatalf("expected 3 parseable levels, got %d", len(levels))
	}
	if levels[0].Side != "bid" || levels[0].Price != 68000.0 || levels[0].Quantity != 1.5 {
		t.Errorf("unexpected first bid %+v", levels[0])
	}
	if levels[2].Side != "ask" || levels[2].Price != 68010.0 {
		t.Errorf("unexpected ask %+v", levels[2])
	}
}

func TestBinance_OHLCV_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	if _, err := newTestBinance(server).OHLCV(context.Background(), "BTC/USDT", "1m"); err == nil {
		t.Error("expected error on HTTP failure")
	}
}
