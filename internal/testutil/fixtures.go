package testutil

import (
	"time"

	"github.com/bimakw/market-intel/internal/domain/rows"
)

// Well-known test values.
const (
	USDTAddress   = "0xdac17f958d2ee523a2206206994597c13d831ec7"
	WETHAddress   = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	TestAddress1  = "0x1111111111111111111111111111111111111111"
	TestAddress2  = "0x2222222222222222222222222222222222222222"
	TestTxHash    = "0xabc0000000000000000000000000000000000000000000000000000000000001"
	TransferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"
)

// MarketOption customizes a test market row.
type MarketOption func(*rows.Market)

func WithProjectID(id string) MarketOption {
	return func(m *rows.Market) { m.ProjectID = id }
}

func WithMarketCap(cap float64) MarketOption {
	return func(m *rows.Market) { m.MarketCap = cap }
}

func WithVolume24h(vol float64) MarketOption {
	return func(m *rows.Market) { m.Volume24h = vol }
}

// CreateTestMarket builds a market row with sensible defaults.
func CreateTestMarket(opts ...MarketOption) rows.Market {
	m := rows.Market{
		ProjectID:          "fetch-ai",
		Symbol:             "fet",
		Name:               "Fetch.ai",
		PriceUSD:           1.25,
		MarketCap:          1_200_000_000,
		MarketCapRank:      42,
		Volume24h:          85_000_000,
		CirculatingSupply:  960_000_000,
		ContractChain:      "ethereum",
		ContractAddress:    TestAddress1,
		IngestionTimestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// RawLogOption customizes a test raw log row.
type RawLogOption func(*rows.RawLog)

func WithLogAddress(addr string) RawLogOption {
	return func(l *rows.RawLog) { l.Address = addr }
}

func WithLogTopics(topics ...string) RawLogOption {
	return func(l *rows.RawLog) { l.Topics = topics }
}

func WithLogData(data string) RawLogOption {
	return func(l *rows.RawLog) { l.Data = data }
}

func WithBlockNumber(n int64) RawLogOption {
	return func(l *rows.RawLog) { l.BlockNumber = n }
}

// CreateTestRawLog builds a raw log row resembling an ERC-20 Transfer.
func CreateTestRawLog(opts ...RawLogOption) rows.RawLog {
	l := rows.RawLog{
		LogIndex:        3,
		TransactionHash: TestTxHash,
		BlockNumber:     19_000_000,
		Address:         USDTAddress,
		Topics: []string{
			TransferTopic,
			"0x000000000000000000000000" + TestAddress1[2:],
			"0x000000000000000000000000" + TestAddress2[2:],
		},
		Data:               "0x000000000000000000000000000000000000000000000000000000003b9aca00",
		IngestionTimestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

// SocialPostOption customizes a test social post row.
type SocialPostOption func(*rows.SocialPost)

func WithPostText(text string) SocialPostOption {
	return func(p *rows.SocialPost) { p.Text = text }
}

func WithPostID(id string) SocialPostOption {
	return func(p *rows.SocialPost) { p.PostID = id }
}

func WithPlatform(platform string) SocialPostOption {
	return func(p *rows.SocialPost) { p.Platform = platform }
}

// CreateTestSocialPost builds a social post row with sensible defaults.
func CreateTestSocialPost(opts ...SocialPostOption) rows.SocialPost {
	p := rows.SocialPost{
		PostID:             "twitter:1234567890",
		Platform:           "twitter",
		Author:             "134255",
		Text:               "$FET looking strong after the merger announcement",
		PostedAt:           time.Date(2024, 6, 1, 11, 30, 0, 0, time.UTC),
		Score:              17,
		IngestionTimestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
