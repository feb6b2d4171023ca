package explorers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

func newTestClient(server *httptest.Server) *Client {
	c := NewClient(config.ExplorerConfig{EtherscanKey: "test-key"}, httpx.New(zap.NewNop()))
	c.endpoints["ethereum"] = endpoint{baseURL: server.URL, apiKey: "test-key", chainID: 1}
	return c
}

func TestSupported(t *testing.T) {
	c := NewClient(config.ExplorerConfig{EtherscanKey: "k"}, httpx.New(zap.NewNop()))

	if !c.Supported("ethereum") {
		t.Error("expected ethereum to be supported with a key configured")
	}
	// No bscscan key configured, so the chain is effectively unsupported.
	if c.Supported("binance-smart-chain") {
		t.Error("expected binance-smart-chain to be unsupported without a key")
	}
	if c.Supported("solana") {
		t.Error("expected solana to be unsupported")
	}
	if got := c.ChainID("ethereum"); got != 1 {
		t.Errorf("expected chain ID 1, got %d", got)
	}
	if got := c.ChainID("solana"); got != 0 {
		t.Errorf("expected chain ID 0 for unknown chain, got %d", got)
	}
}

func TestTokenTransfers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "tokentx" || q.Get("apikey") != "test-key" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("offset") != "100" || q.Get("sort") != "desc" {
			t.Errorf("unexpected paging params %v", q)
		}
		w.Write([]byte(`{
			"status": "1",
			"message": "OK",
			"result": [
				{
					"timeStamp": "1717401600",
					"hash": "0xabc",
					"from": "0x1111111111111111111111111111111111111111",
					"to": "0x2222222222222222222222222222222222222222",
					"value": "1000000",
					"tokenDecimal": "6",
					"functionName": "transfer(address,uint256)"
				}
			]
		}`))
	}))
	defer server.Close()

	txs, err := newTestClient(server).TokenTransfers(context.Background(), "ethereum", "0xdac17f958d2ee523a2206206994597c13d831ec7", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(txs) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(txs))
	}
	if txs[0].Hash != "0xabc" || txs[0].TokenDecimal != "6" {
		t.Errorf("unexpected transfer %+v", txs[0])
	}
}

func TestTokenTransfers_NoTransactionsFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "0", "message": "No transactions found", "result": []}`))
	}))
	defer server.Close()

	txs, err := newTestClient(server).TokenTransfers(context.Background(), "ethereum", "0xdead", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("expected no transfers, got %d", len(txs))
	}
}

func TestTokenTransfers_ExplorerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "0", "message": "NOTOK", "result": "Max rate limit reached"}`))
	}))
	defer server.Close()

	if _, err := newTestClient(server).TokenTransfers(context.Background(), "ethereum", "0xdead", 100); err == nil {
		t.Error("expected error from a NOTOK response")
	}
}

func TestTokenTransfers_UnsupportedChain(t *testing.T) {
	c := NewClient(config.ExplorerConfig{}, httpx.New(zap.NewNop()))

	_, err := c.TokenTransfers(context.Background(), "avalanche", "0xdead", 100)
	if !errors.Is(err, ErrUnsupportedChain) {
		t.Errorf("expected ErrUnsupportedChain, got %v", err)
	}
}

func TestContractSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "getsourcecode" {
			t.Errorf("unexpected action %q", r.URL.Query().Get("action"))
		}
		w.Write([]byte(`{
			"status": "1",
			"message": "OK",
			"result": [
				{
					"ContractName": "TetherToken",
					"CompilerVersion": "v0.4.18+commit.9cf6e910",
					"SourceCode": "pragma solidity ^0.4.18;",
					"ABI": "[]"
				}
			]
		}`))
	}))
	defer server.Close()

	src, err := newTestClient(server).ContractSource(context.Background(), "ethereum", "0xdac17f958d2ee523a2206206994597c13d831ec7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if src.ContractName != "TetherToken" {
		t.Errorf("expected contract name TetherToken, got %q", src.ContractName)
	}
	if src.SourceCode == "" {
		t.Error("expected source code to be populated")
	}
}

func TestContractSource_Unverified(t *testing.T) {
	// Unverified contracts still come back status 1 with empty fields.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"status": "1",
			"message": "OK",
			"result": [
				{"ContractName": "", "CompilerVersion": "", "SourceCode": "", "ABI": "Contract source code not verified"}
			]
		}`))
	}))
	defer server.Close()

	src, err := newTestClient(server).ContractSource(context.Background(), "ethereum", "0xdead")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.SourceCode != "" {
		t.Errorf("expected empty source code, got %q", src.SourceCode)
	}
}

func TestBytecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("module") != "proxy" || q.Get("action") != "eth_getCode" {
			t.Errorf("unexpected query %v", q)
		}
		w.Write([]byte(`{"jsonrpc": "2.0", "id": 1, "result": "0x6080604052"}`))
	}))
	defer server.Close()

	code, err := newTestClient(server).Bytecode(context.Background(), "ethereum", "0xdac17f958d2ee523a2206206994597c13d831ec7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "0x6080604052" {
		t.Errorf("unexpected bytecode %q", code)
	}
}
