package workers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/domain/repositories"
	"github.com/bimakw/market-intel/internal/infrastructure/notify"
)

// AlertsWorker evaluates the configured threshold rules against the
// warehouse and pushes a notification for every rule that trips.
type AlertsWorker struct {
	scalar        repositories.ScalarReader
	notifier      notify.Notifier
	rules         []config.AlertRule
	summaryTables []string
	logger        *zap.Logger
}

func NewAlertsWorker(
	scalar repositories.ScalarReader,
	notifier notify.Notifier,
	rules []config.AlertRule,
	summaryTables []string,
	logger *zap.Logger,
) *AlertsWorker {
	return &AlertsWorker{
		scalar:        scalar,
		notifier:      notifier,
		rules:         rules,
		summaryTables: summaryTables,
		logger:        logger,
	}
}

func (w *AlertsWorker) Name() string { return "alerts" }

func (w *AlertsWorker) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	fired := 0
	for _, rule := range w.rules {
		value, err := w.scalar.QueryFloat(ctx, rule.Query)
		if err != nil {
			w.logger.Warn("rule query failed", zap.String("rule", rule.Name), zap.Error(err))
			res.ItemsFailed++
			continue
		}

		triggered, err := compareThreshold(value, rule.Operator, rule.Threshold)
		if err != nil {
			w.logger.Warn("rule misconfigured", zap.String("rule", rule.Name), zap.Error(err))
			res.ItemsFailed++
			continue
		}
		if !triggered {
			continue
		}

		fired++
		message := fmt.Sprintf("[%s] %s (value %.2f, threshold %s %.2f)",
			rule.Name, rule.Message, value, rule.Operator, rule.Threshold)
		if err := w.notifier.Send(ctx, message); err != nil {
			w.logger.Warn("notification failed", zap.String("rule", rule.Name), zap.Error(err))
			res.ItemsFailed++
		}
	}

	if err := w.sendSummary(ctx, res); err != nil {
		w.logger.Warn("ingestion summary failed", zap.Error(err))
		res.ItemsFailed++
	}

	res.Message = fmt.Sprintf("%d rules evaluated, %d fired", len(w.rules), fired)
	return res, nil
}

// sendSummary reports the row count of each configured table in a single
// notification, so operators can tell at a glance whether ingestion runs
// are landing data. Tables that fail to count are reported as 0 rows.
func (w *AlertsWorker) sendSummary(ctx context.Context, res *Result) error {
	if len(w.summaryTables) == 0 {
		return nil
	}

	lines := make([]string, 0, len(w.summaryTables))
	for _, table := range w.summaryTables {
		count, err := w.scalar.RowCount(ctx, table)
		if err != nil {
			w.logger.Warn("row count failed", zap.String("table", table), zap.Error(err))
			res.ItemsFailed++
			count = 0
		}
		lines = append(lines, fmt.Sprintf("%s: %d rows", table, count))
	}

	return w.notifier.Send(ctx, "Ingestion summary: "+strings.Join(lines, ", "))
}

func compareThreshold(value float64, operator string, threshold float64) (bool, error) {
	switch operator {
	case ">":
		return value > threshold, nil
	case ">=":
		return value >= threshold, nil
	case "<":
		return value < threshold, nil
	case "<=":
		return value <= threshold, nil
	case "==":
		return value == threshold, nil
	case "!=":
		return value != threshold, nil
	default:
		return false, fmt.Errorf("unknown operator %q", operator)
	}
}
