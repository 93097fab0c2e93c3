package generate

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kurtatter/cmforai/internal/project"
)

// Selection is one chosen file with its compression decision and the
// cumulative charged tokens at the point of inclusion.
type Selection struct {
	Record        project.FileRecord
	Compressed    bool
	RunningTokens int
}

// Result is the ordered outcome of one Select call: important records
// first, then regular, caller order preserved within each partition.
type Result struct {
	Selections  []Selection
	TotalTokens int
}

// Diagnostic is a non-fatal selection warning surfaced outside the
// generated document.
type Diagnostic struct {
	Code    string
	Message string
}

const DiagEmptyExplicitMatch = "empty_explicit_match"

// DiagnosticSink receives selection warnings. Every Selector has one;
// callers that do not supply their own get a slog-backed sink.
type DiagnosticSink interface {
	Report(d Diagnostic)
}

type logSink struct {
	log *slog.Logger
}

func (s logSink) Report(d Diagnostic) {
	s.log.Warn(d.Message, "code", d.Code)
}

// SelectorOptions are the injected heuristics. Zero values take defaults.
type SelectorOptions struct {
	// CompressedChargeDivisor divides a file's token estimate when it is
	// included compressed. Empirically digests land near a third of the
	// full content.
	CompressedChargeDivisor int
}

const DefaultCompressedChargeDivisor = 3

// Selector implements budget allocation over a pre-prioritized file list.
// It never re-sorts input and never fails: all limits are soft policy.
type Selector struct {
	estimator *Estimator
	opts      SelectorOptions
	sink      DiagnosticSink
}

func NewSelector(estimator *Estimator, opts SelectorOptions, sink DiagnosticSink) *Selector {
	if estimator == nil {
		estimator = NewEstimator()
	}
	if opts.CompressedChargeDivisor <= 0 {
		opts.CompressedChargeDivisor = DefaultCompressedChargeDivisor
	}
	if sink == nil {
		sink = logSink{log: slog.Default().With("component", "selector")}
	}
	return &Selector{estimator: estimator, opts: opts, sink: sink}
}

// Select chooses which files enter the document and whether each is
// rendered compressed. Important records are processed before regular
// ones; within a partition the caller-provided order is preserved.
func (s *Selector) Select(files []project.FileRecord, cfg Config) Result {
	candidates := files
	if len(cfg.FilesToAnalyze) > 0 {
		matched := filterExplicit(files, cfg.FilesToAnalyze)
		if len(matched) == 0 {
			s.sink.Report(Diagnostic{
				Code: DiagEmptyExplicitMatch,
				Message: fmt.Sprintf("no files match the %d requested patterns; falling back to the full file list",
					len(cfg.FilesToAnalyze)),
			})
		} else {
			candidates = matched
		}
	}

	var important, regular []project.FileRecord
	for _, f := range candidates {
		if f.IsImportant {
			important = append(important, f)
		} else {
			regular = append(regular, f)
		}
	}

	result := Result{}
	s.selectImportant(important, cfg, &result)
	s.selectRegular(regular, cfg, &result)
	return result
}

func (s *Selector) selectImportant(files []project.FileRecord, cfg Config, result *Result) {
	for _, rec := range files {
		if cfg.MaxFiles > 0 && len(result.Selections) >= cfg.MaxFiles {
			return
		}

		fileTokens := s.estimator.Estimate(rec.SizeBytes)
		oversized := cfg.MaxFileSizeBytes > 0 && rec.SizeBytes > cfg.MaxFileSizeBytes
		overBudget := cfg.MaxTokens > 0 && result.TotalTokens+fileTokens > cfg.MaxTokens

		switch {
		case oversized && !cfg.CompressLargeFiles:
			// Too big to show and compression is off: drop it.
			continue
		case oversized, overBudget && cfg.CompressLargeFiles:
			s.include(result, rec, true, fileTokens/s.opts.CompressedChargeDivisor)
		case overBudget:
			continue
		default:
			compressed := s.preferCompressed(rec, cfg)
			charge := fileTokens
			if compressed {
				charge = fileTokens / s.opts.CompressedChargeDivisor
			}
			s.include(result, rec, compressed, charge)
		}
	}
}

func (s *Selector) selectRegular(files []project.FileRecord, cfg Config, result *Result) {
	for _, rec := range files {
		if cfg.MaxFiles > 0 && len(result.Selections) >= cfg.MaxFiles {
			return
		}
		if cfg.MaxFileSizeBytes > 0 && rec.SizeBytes > cfg.MaxFileSizeBytes {
			// Regular files are additive context, never worth a digest.
			continue
		}

		fileTokens := s.estimator.Estimate(rec.SizeBytes)
		if cfg.MaxTokens > 0 && result.TotalTokens+fileTokens > cfg.MaxTokens {
			// The list is pre-sorted by priority; everything after this
			// record is no more valuable, so stop the partition.
			return
		}

		compressed := s.preferCompressed(rec, cfg)
		charge := fileTokens
		if compressed {
			charge = fileTokens / s.opts.CompressedChargeDivisor
		}
		s.include(result, rec, compressed, charge)
	}
}

// preferCompressed applies the line-count threshold: long files render as
// digests even when they fit the budget, provided compression is enabled.
func (s *Selector) preferCompressed(rec project.FileRecord, cfg Config) bool {
	return cfg.CompressLargeFiles &&
		cfg.CompressThresholdLines > 0 &&
		rec.LineCount > cfg.CompressThresholdLines
}

func (s *Selector) include(result *Result, rec project.FileRecord, compressed bool, charge int) {
	result.TotalTokens += charge
	result.Selections = append(result.Selections, Selection{
		Record:        rec,
		Compressed:    compressed,
		RunningTokens: result.TotalTokens,
	})
}

// filterExplicit restricts records to an allow-list. Entries match the
// relative path or basename exactly; entries with * or ? wildcards match
// against both.
func filterExplicit(files []project.FileRecord, patterns []string) []project.FileRecord {
	var matched []project.FileRecord
	for _, f := range files {
		if matchesAny(f, patterns) {
			matched = append(matched, f)
		}
	}
	return matched
}

func matchesAny(f project.FileRecord, patterns []string) bool {
	base := path.Base(f.RelativePath)
	for _, p := range patterns {
		if strings.ContainsAny(p, "*?[") {
			if ok, _ := doublestar.Match(p, f.RelativePath); ok {
				return true
			}
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
			continue
		}
		if p == f.RelativePath || p == base {
			return true
		}
	}
	return false
}
