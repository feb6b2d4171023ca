package slither

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/bimakw/market-intel/internal/config"
)

// Finding is one detector hit reported by slither.
type Finding struct {
	Check  string `json:"check"`
	Impact string `json:"impact"`
}

// Report aggregates one slither run.
type Report struct {
	HighCount     int64
	MediumCount   int64
	LowCount      int64
	SecurityScore float64
	Detectors     []string
}

// Runner executes the slither binary against contract source code.
type Runner struct {
	binary  string
	timeout time.Duration
}

// NewRunner creates a slither runner.
func NewRunner(cfg config.SlitherConfig) *Runner {
	return &Runner{binary: cfg.Binary, timeout: cfg.Timeout}
}

type slitherOutput struct {
	Results struct {
		Detectors []Finding `json:"detectors"`
	} `json:"results"`
}

// Analyze writes the source to a temp directory, runs slither on it and
// scores the findings. The score starts at 100 and loses 10 per high, 3
// per medium and 1 per low severity finding.
func (r *Runner) Analyze(ctx context.Context, sourceCode string) (*Report, error) {
	dir, err := os.MkdirTemp("", "slither-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	solPath := filepath.Join(dir, "contract.sol")
	jsonPath := filepath.Join(dir, "results.json")
	if err := os.WriteFile(solPath, []byte(sourceCode), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write source: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Slither exits non-zero when findings exist; the JSON output decides.
	cmd := exec.CommandContext(runCtx, r.binary, solPath, "--json", jsonPath)
	_ = cmd.Run()
	if runCtx.Err() != nil {
		return nil, fmt.Errorf("slither timed out after %s", r.timeout)
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("slither produced no output: %w", err)
	}

	var out slitherOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse slither output: %w", err)
	}

	report := &Report{}
	for _, d := range out.Results.Detectors {
		switch d.Impact {
		case "High":
			report.HighCount++
		case "Medium":
			report.MediumCount++
		case "Low":
			report.LowCount++
		}
		report.Detectors = append(report.Detectors, d.Check)
	}

	score := 100 - float64(10*report.HighCount+3*report.MediumCount+report.LowCount)
	if score < 0 {
		score = 0
	}
	report.SecurityScore = score
	return report, nil
}
