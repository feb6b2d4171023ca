package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/rows"
)

// Scanner reads raw logs of tracked contract addresses off the chain.
type Scanner struct {
	client *Client
	config config.ChainConfig
	logger *zap.Logger
}

// NewScanner creates a log scanner
func NewScanner(client *Client, cfg config.ChainConfig, logger *zap.Logger) *Scanner {
	return &Scanner{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// ScanResult contains one range scan.
type ScanResult struct {
	Logs      []rows.RawLog
	FromBlock int64
	ToBlock   int64
}

// ScanRange fetches every log emitted by the given addresses in the
// block range, batched to keep individual eth_getLogs calls small.
func (s *Scanner) ScanRange(ctx context.Context, addresses []string, fromBlock, toBlock int64) (*ScanResult, error) {
	filtered := make([]common.Address, len(addresses))
	for i, addr := range addresses {
		filtered[i] = common.HexToAddress(addr)
	}

	result := &ScanResult{FromBlock: fromBlock, ToBlock: toBlock}
	now := time.Now().UTC()

	for start := fromBlock; start <= toBlock; start += s.config.BlockBatchSize {
		end := start + s.config.BlockBatchSize - 1
		if end > toBlock {
			end = toBlock
		}

		query := ethereum.FilterQuery{
			FromBlock: big.NewInt(start),
			ToBlock:   big.NewInt(end),
			Addresses: filtered,
		}

		s.logger.Debug("Fetching logs",
			zap.Int64("from_block", start),
			zap.Int64("to_block", end),
			zap.Int("address_count", len(addresses)),
		)

		logs, err := s.client.GetLogs(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blocks %d-%d: %w", start, end, err)
		}

		for _, l := range logs {
			result.Logs = append(result.Logs, toRawLog(l, now))
		}
	}

	s.logger.Info("Scanned block range",
		zap.Int64("from_block", fromBlock),
		zap.Int64("to_block", toBlock),
		zap.Int("log_count", len(result.Logs)),
	)

	return result, nil
}

// SafeHead returns the newest block number minus the confirmation depth.
func (s *Scanner) SafeHead(ctx context.Context) (int64, error) {
	head, err := s.client.GetLatestBlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	safe := int64(head) - s.config.Confirmations
	if safe < 0 {
		safe = 0
	}
	return safe, nil
}

func toRawLog(l types.Log, now time.Time) rows.RawLog {
	topics := make([]string, len(l.Topics))
	for i, t := range l.Topics {
		topics[i] = t.Hex()
	}
	return rows.RawLog{
		LogIndex:           int64(l.Index),
		TransactionHash:    l.TxHash.Hex(),
		BlockNumber:        int64(l.BlockNumber),
		Address:            strings.ToLower(l.Address.Hex()),
		Data:               "0x" + common.Bytes2Hex(l.Data),
		Topics:             topics,
		IngestionTimestamp: now,
	}
}
