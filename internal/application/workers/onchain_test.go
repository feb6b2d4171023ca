package workers

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/bimakw/market-intel/internal/infrastructure/explorers"
)

func explorerTx(at time.Time, from, to, value, fn string) explorers.TokenTx {
	return explorers.TokenTx{
		TimeStamp:    strconv.FormatInt(at.Unix(), 10),
		From:         from,
		To:           to,
		Value:        value,
		TokenDecimal: "18",
		FunctionName: fn,
	}
}

func TestComputeOnchainMetricsWindows(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	txs := []explorers.TokenTx{
		explorerTx(now.Add(-time.Hour), "0xa", "0xb", "1000000000000000000", "transfer"),
		explorerTx(now.Add(-3*24*time.Hour), "0xb", "0xc", "2000000000000000000", "swapExactTokensForTokens"),
		// Outside the 7d window but inside 30d.
		explorerTx(now.Add(-10*24*time.Hour), "0xa", "0xd", "1000000000000000000", "transfer"),
	}

	m := computeOnchainMetrics(txs, 0, 0, 0, now)

	if m.TxCount7d != 2 {
		t.Errorf("expected 2 transfers in 7d, got %d", m.TxCount7d)
	}
	if m.ActiveWallets7d != 3 {
		t.Errorf("expected 3 active wallets in 7d, got %d", m.ActiveWallets7d)
	}
}

func TestComputeOnchainMetricsRetention(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	// b both receives and sends; c and d only receive.
	txs := []explorers.TokenTx{
		explorerTx(now.Add(-time.Hour), "0xa", "0xb", "1", "transfer"),
		explorerTx(now.Add(-2*time.Hour), "0xb", "0xc", "1", "transfer"),
		explorerTx(now.Add(-3*time.Hour), "0xa", "0xd", "1", "transfer"),
	}

	m := computeOnchainMetrics(txs, 0, 0, 0, now)

	want := 2.0 / 3.0 * 100
	if math.Abs(m.RetentionScore30d-want) > 1e-9 {
		t.Errorf("expected retention %.2f, got %.2f", want, m.RetentionScore30d)
	}
}

func TestComputeOnchainMetricsQualityScore(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	txs := []explorers.TokenTx{
		explorerTx(now.Add(-time.Hour), "0xa", "0xb", "1", "stake(uint256)"),
		explorerTx(now.Add(-time.Hour), "0xa", "0xb", "1", "approve(address,uint256)"),
		explorerTx(now.Add(-time.Hour), "0xa", "0xb", "1", "transfer"),
	}

	m := computeOnchainMetrics(txs, 0, 0, 0, now)

	want := (5.0 + 2.0 + 1.0) / 3.0
	if math.Abs(m.TxQualityScore7d-want) > 1e-9 {
		t.Errorf("expected quality %.3f, got %.3f", want, m.TxQualityScore7d)
	}
}

func TestComputeOnchainMetricsWhalesAndVelocity(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	// 200 tokens at $1000 is $200k, one whale trade at a $100k bar.
	txs := []explorers.TokenTx{
		explorerTx(now.Add(-time.Hour), "0xa", "0xb", "200000000000000000000", "transfer"),
		explorerTx(now.Add(-2*time.Hour), "0xa", "0xb", "1000000000000000000", "transfer"),
	}

	m := computeOnchainMetrics(txs, 1000, 10_000_000, 100_000, now)

	if m.WhaleTxCount7d != 1 {
		t.Errorf("expected 1 whale tx, got %d", m.WhaleTxCount7d)
	}
	wantVelocity := 201_000.0 / 10_000_000.0 * 100
	if math.Abs(m.NormalizedVelocity-wantVelocity) > 1e-9 {
		t.Errorf("expected velocity %.4f, got %.4f", wantVelocity, m.NormalizedVelocity)
	}
}

func TestParseTokenAmount(t *testing.T) {
	if got := parseTokenAmount("1500000", "6"); got != 1.5 {
		t.Errorf("expected 1.5, got %f", got)
	}
	if got := parseTokenAmount("bogus", "18"); got != 0 {
		t.Errorf("expected 0 for unparseable value, got %f", got)
	}
	// Unparseable decimals fall back to 18.
	if got := parseTokenAmount("1000000000000000000", ""); got != 1 {
		t.Errorf("expected 1 with default decimals, got %f", got)
	}
}
