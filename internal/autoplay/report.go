package autoplay

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/rehabsim/internal/domain/types"
	"github.com/okian/rehabsim/pkg/logger"
)

// Report is the outcome of one autoplay run.
type Report struct {
	RunID       string         `json:"run_id"`
	Seed        int64          `json:"seed"`
	Widgets     []string       `json:"widgets"`
	Duration    string         `json:"duration"`
	VirtualTime string         `json:"virtual_time"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Inputs      Inputs         `json:"inputs"`
	Final       types.Snapshot `json:"final"`
	Violations  []Violation    `json:"violations"`
	Passed      bool           `json:"passed"`
}

// Save writes the report as indented JSON, creating the directory if needed.
func (r *Report) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Load reads a report written by Save.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

// Log writes the final statistics and every violation.
func (r *Report) Log(ctx context.Context, log logger.Logger) {
	f := r.Final
	log.Info(ctx, "final statistics",
		logger.String("runID", r.RunID),
		logger.String("virtualTime", r.VirtualTime),
		logger.Int("kicks", f.BalanceWalk.Kicks),
		logger.Int("reps", f.ReachGrab.Reps),
		logger.Int("attempts", f.ReachGrab.Attempts),
		logger.Int("accuracy", f.ReachGrab.Accuracy),
		logger.Int("score", f.ReactionTap.Score),
		logger.Int("hits", f.ReactionTap.Hits),
		logger.Int("misses", f.ReactionTap.Misses),
		logger.Int("avgMs", f.ReactionTap.AvgMS),
		logger.String("grade", f.ReactionTap.Grade),
		logger.Int("reaches", r.Inputs.Reaches),
		logger.Int("taps", r.Inputs.Taps),
		logger.Int("duplicateTaps", r.Inputs.DuplicateTaps),
		logger.Int("skippedTargets", r.Inputs.SkippedTargets),
		logger.Bool("passed", r.Passed),
	)
	for _, v := range r.Violations {
		log.Warn(ctx, "property violated",
			logger.String("widget", v.Widget),
			logger.String("rule", v.Rule),
			logger.Duration("at", v.At),
			logger.String("detail", v.Detail),
		)
	}
}
