package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
)

// Ensure Client implements the warehouse interfaces
var (
	_ repositories.Appender       = (*Client)(nil)
	_ repositories.ProjectReader  = (*Client)(nil)
	_ repositories.LogReader      = (*Client)(nil)
	_ repositories.ContractReader = (*Client)(nil)
	_ repositories.TransferReader = (*Client)(nil)
	_ repositories.EventReader    = (*Client)(nil)
	_ repositories.PriceReader    = (*Client)(nil)
	_ repositories.MetricsReader  = (*Client)(nil)
	_ repositories.SocialReader   = (*Client)(nil)
	_ repositories.ScalarReader   = (*Client)(nil)
)

// Client wraps the BigQuery client for the destination dataset. All
// writes go through streaming inserts; all reads are standard SQL.
type Client struct {
	bq     *bigquery.Client
	cfg    config.WarehouseConfig
	logger *zap.Logger

	mu      sync.Mutex
	ensured map[string]bool
}

// New creates a BigQuery client and ensures the destination dataset
// exists.
func New(ctx context.Context, cfg config.WarehouseConfig, logger *zap.Logger) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	bq, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	dataset := bq.Dataset(cfg.Dataset)
	if _, err := dataset.Metadata(ctx); err != nil {
		if err := dataset.Create(ctx, &bigquery.DatasetMetadata{Location: cfg.Location}); err != nil {
			return nil, fmt.Errorf("failed to create dataset %s: %w", cfg.Dataset, err)
		}
		logger.Info("Created dataset",
			zap.String("dataset", cfg.Dataset),
			zap.String("location", cfg.Location),
		)
	}

	logger.Info("Connected to BigQuery",
		zap.String("project", cfg.ProjectID),
		zap.String("dataset", cfg.Dataset),
	)

	return &Client{
		bq:      bq,
		cfg:     cfg,
		logger:  logger,
		ensured: make(map[string]bool),
	}, nil
}

// EnsureTable creates table with a schema inferred from prototype when it
// does not exist yet. Streaming inserts 404 on missing tables, so every
// destination is ensured before its first append.
func (c *Client) EnsureTable(ctx context.Context, table string, prototype any) error {
	c.mu.Lock()
	done := c.ensured[table]
	c.mu.Unlock()
	if done {
		return nil
	}

	t := c.bq.Dataset(c.cfg.Dataset).Table(table)
	if _, err := t.Metadata(ctx); err != nil {
		schema, inferErr := bigquery.InferSchema(prototype)
		if inferErr != nil {
			return fmt.Errorf("failed to infer schema for %s: %w", table, inferErr)
		}
		if err := t.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
		c.logger.Info("Created table",
			zap.String("table", table),
			zap.String("dataset", c.cfg.Dataset),
		)
	}

	c.mu.Lock()
	c.ensured[table] = true
	c.mu.Unlock()
	return nil
}

// Close closes the underlying BigQuery client.
func (c *Client) Close() error {
	return c.bq.Close()
}

// Append streams the given rows into table. Invalid rows are skipped and
// counted rather than failing the whole batch.
func (c *Client) Append(ctx context.Context, table string, records []any) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if err := c.EnsureTable(ctx, table, records[0]); err != nil {
		return 0, err
	}

	ins := c.bq.Dataset(c.cfg.Dataset).Table(table).Inserter()
	ins.SkipInvalidRows = true
	ins.IgnoreUnknownValues = true

	if err := ins.Put(ctx, records); err != nil {
		var multi bigquery.PutMultiError
		if errors.As(err, &multi) {
			accepted := len(records) - len(multi)
			c.logger.Warn("Some rows were rejected",
				zap.String("table", table),
				zap.Int("rejected", len(multi)),
				zap.Int("accepted", accepted),
			)
			return accepted, nil
		}
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}

	return len(records), nil
}

// ref returns the fully qualified identifier for a table in the
// destination dataset.
func (c *Client) ref(table string) string {
	return fmt.Sprintf("`%s`", c.cfg.TableRef(table))
}
