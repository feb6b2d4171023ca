package thegraph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

func graphSwap(id string) string {
	return fmt.Sprintf(`{
		"transaction": {"id": %q},
		"timestamp": "1717401600",
		"pool": {
			"id": "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640",
			"token0": {"symbol": "USDC"},
			"token1": {"symbol": "WETH"}
		},
		"amount0": "-3000.5",
		"amount1": "1.0",
		"amountUSD": "3000.5",
		"sqrtPriceX96": "1903618761809251248168021"
	}`, id)
}

func TestSwaps_PagesUntilShortPage(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Variables["first"] != float64(2) {
			t.Errorf("expected page size 2, got %v", req.Variables["first"])
		}

		// First page is full, second page comes back short and ends the
		// pagination.
		switch req.Variables["skip"] {
		case float64(0):
			fmt.Fprintf(w, `{"data":{"swaps":[%s,%s]}}`, graphSwap("0xaaa"), graphSwap("0xbbb"))
		case float64(2):
			fmt.Fprintf(w, `{"data":{"swaps":[%s]}}`, graphSwap("0xccc"))
		default:
			t.Errorf("unexpected skip %v", req.Variables["skip"])
			fmt.Fprint(w, `{"data":{"swaps":[]}}`)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, httpx.New(zap.NewNop()))
	swaps, err := client.Swaps(context.Background(), 1717401000, 1717402000, 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
	if len(swaps) != 3 {
		t.Fatalf("expected 3 swaps, got %d", len(swaps))
	}
	if swaps[0].Transaction.ID != "0xaaa" || swaps[2].Transaction.ID != "0xccc" {
		t.Errorf("unexpected swap ordering: %q .. %q", swaps[0].Transaction.ID, swaps[2].Transaction.ID)
	}
	if swaps[0].Pool.Token0.Symbol != "USDC" || swaps[0].Pool.Token1.Symbol != "WETH" {
		t.Errorf("unexpected pool tokens %+v", swaps[0].Pool)
	}
}

func TestSwaps_HonorsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"swaps":[%s,%s]}}`, graphSwap("0xaaa"), graphSwap("0xbbb"))
	}))
	defer server.Close()

	client := NewClient(server.URL, httpx.New(zap.NewNop()))
	swaps, err := client.Swaps(context.Background(), 1717401000, 1717402000, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(swaps) != 1 {
		t.Fatalf("expected 1 swap after truncation, got %d", len(swaps))
	}
}

func TestSwaps_GraphQLError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"errors":[{"message":"indexing error"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, httpx.New(zap.NewNop()))
	if _, err := client.Swaps(context.Background(), 0, 1, 10, 0); err == nil {
		t.Error("expected error when the subgraph reports one")
	}
}
