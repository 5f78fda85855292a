// Package batch runs the invoice extractor over a list of documents,
// skipping the ones that fail, and hands the records to a sink.
package batch

import (
	"fmt"
	"path/filepath"

	"github.com/a3tai/invoice-extractor/internal/invoice"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentExtractor extracts the invoice fields of one document
type DocumentExtractor interface {
	ExtractFile(path string) (invoice.Result, error)
}

// Sink persists rows. ExistingRecords is the number of data rows already
// stored, used to resume numbering. Write is called once per run.
type Sink interface {
	ExistingRecords() (int, error)
	Write(header []string, rows [][]any) error
}

// Runner processes documents one at a time
type Runner struct {
	extractor DocumentExtractor
	shaping   Shaping
	logger    *zap.Logger
	onStart   func(path string)
	onOutcome func(Outcome)
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// OnStart is called before each document is attempted
func OnStart(fn func(path string)) RunnerOption {
	return func(r *Runner) {
		r.onStart = fn
	}
}

// OnOutcome is called after each document is attempted
func OnOutcome(fn func(Outcome)) RunnerOption {
	return func(r *Runner) {
		r.onOutcome = fn
	}
}

// NewRunner creates a Runner
func NewRunner(extractor DocumentExtractor, shaping Shaping, opts ...RunnerOption) *Runner {
	r := &Runner{
		extractor: extractor,
		shaping:   shaping,
		logger:    zap.NewNop(),
		onStart:   func(string) {},
		onOutcome: func(Outcome) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run attempts every path in order. A failing document is logged and
// skipped; only sink errors abort the run. Rows are written once, after the
// last document.
func (r *Runner) Run(paths []string, sink Sink) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	log := r.logger.With(zap.String("run_id", summary.RunID))

	existing, err := sink.ExistingRecords()
	if err != nil {
		return summary, fmt.Errorf("failed to read existing records: %w", err)
	}

	log.Info("batch started",
		zap.Int("documents", len(paths)),
		zap.String("shaping", string(r.shaping)),
		zap.Int("existing_records", existing),
	)

	serial := existing
	rows := make([][]any, 0, len(paths))

	for _, path := range paths {
		summary.Attempted++
		r.onStart(path)

		outcome := r.attempt(path)
		if outcome.OK() {
			if r.shaping.Numbered() {
				serial++
				outcome.Serial = serial
				if summary.FirstSerial == 0 {
					summary.FirstSerial = serial
				}
				summary.LastSerial = serial
			}
			rows = append(rows, r.shaping.Row(outcome.Serial, outcome.Record))
			summary.Succeeded++
			log.Info("processed", zap.String("file", path), zap.Int("serial", outcome.Serial))
		} else {
			summary.Failed = append(summary.Failed, newFailure(outcome))
			log.Warn("skipped document", zap.String("file", path), zap.Error(outcome.Err))
		}

		r.onOutcome(outcome)
	}

	if err := sink.Write(r.shaping.Header(), rows); err != nil {
		return summary, fmt.Errorf("failed to write records: %w", err)
	}

	log.Info("batch finished",
		zap.Int("attempted", summary.Attempted),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", len(summary.Failed)),
	)
	return summary, nil
}

func (r *Runner) attempt(path string) (outcome Outcome) {
	outcome.Path = path
	defer func() {
		if rec := recover(); rec != nil {
			outcome = Outcome{Path: path, Err: fmt.Errorf("extract %s: panic: %v", path, rec)}
		}
	}()

	result, err := r.extractor.ExtractFile(path)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Record = Record{Result: result, Source: filepath.Base(path)}
	return outcome
}
