package census

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsawler/census/assemble"
	"github.com/tsawler/census/datasets"
	"github.com/tsawler/census/document"
	"github.com/tsawler/census/extract"
	"github.com/tsawler/census/metrics"
	"github.com/tsawler/census/model"
	"github.com/tsawler/census/store"
	"github.com/tsawler/census/tables"
)

// Extractor provides a fluent interface for extracting records from one
// page and loading them into a table. Each configuration method returns a
// new Extractor, so a configured Extractor can be reused as a template.
type Extractor struct {
	// Source; exactly one is set.
	filename string
	doc      document.Document
	page     extract.Page

	// Lifecycle
	ownsDoc   bool
	docOpened bool

	options options

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename:  e.filename,
		doc:       e.doc,
		page:      e.page,
		ownsDoc:   e.ownsDoc,
		docOpened: e.docOpened,
		options:   e.options.clone(),
		err:       e.err,
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Dataset sets the target table, page and grid hints from d.
//
// Example:
//
//	ds, _ := datasets.Get("top_industries")
//	records, _, err := census.Open("India2.pdf").Dataset(ds).Records()
func (e *Extractor) Dataset(d datasets.Dataset) *Extractor {
	n := e.clone()
	if err := d.Validate(); err != nil && n.err == nil {
		n.err = err
	}
	n.options.setDataset(d)
	return n
}

// Schema sets the target table without dataset hints.
func (e *Extractor) Schema(s model.Schema) *Extractor {
	n := e.clone()
	if err := s.Validate(); err != nil && n.err == nil {
		n.err = fmt.Errorf("census: %w", err)
	}
	n.options.schema = s
	n.options.schema.Columns = slices.Clone(s.Columns)
	if n.options.dataset == "" {
		n.options.dataset = s.Table
	}
	n.options.hasDataset = true
	return n
}

// Page selects the 1-based page to read, overriding the dataset's page.
func (e *Extractor) Page(number int) *Extractor {
	n := e.clone()
	if number < 1 && n.err == nil {
		n.err = fmt.Errorf("census: invalid page number %d", number)
	}
	n.options.page = number
	return n
}

// Strategies replaces the ordered strategy list.
//
// Example:
//
//	census.Open("India2.pdf").Strategies(extract.NewGrid())
func (e *Extractor) Strategies(strategies ...extract.Strategy) *Extractor {
	n := e.clone()
	n.options.strategies = slices.Clone(strategies)
	if n.options.strategies == nil {
		n.options.strategies = []extract.Strategy{}
	}
	return n
}

// StrategyNames replaces the strategy list by name ("text-line", "grid",
// "grid-strict").
func (e *Extractor) StrategyNames(names ...string) *Extractor {
	strategies, err := extract.Parse(names)
	n := e.Strategies(strategies...)
	if err != nil && n.err == nil {
		n.err = err
	}
	return n
}

// GridSettings replaces the table-finding settings every grid strategy
// tries, in order.
func (e *Extractor) GridSettings(settings ...tables.Settings) *Extractor {
	n := e.clone()
	for _, s := range settings {
		if err := s.Validate(); err != nil && n.err == nil {
			n.err = fmt.Errorf("census: %w", err)
		}
	}
	n.options.gridSettings = slices.Clone(settings)
	return n
}

// StopAtFirst stops after the first strategy that yields records instead
// of letting later strategies replace them.
func (e *Extractor) StopAtFirst() *Extractor {
	n := e.clone()
	n.options.stopAtFirst = true
	return n
}

// Logger sets the logger. The default discards everything.
func (e *Extractor) Logger(l *zap.Logger) *Extractor {
	n := e.clone()
	if l == nil {
		l = zap.NewNop()
	}
	n.options.logger = l
	return n
}

// Metrics records run counters in m.
func (e *Extractor) Metrics(m *metrics.Metrics) *Extractor {
	n := e.clone()
	n.options.metrics = m
	return n
}

// ============================================================================
// Lifecycle
// ============================================================================

// ensurePage opens the document if needed and returns the selected page.
func (e *Extractor) ensurePage() (extract.Page, error) {
	if e.page != nil {
		return e.page, nil
	}
	if !e.docOpened {
		if e.filename == "" {
			return nil, errors.New("census: no document specified")
		}
		doc, err := document.OpenWithOptions(e.filename, document.Options{Logger: e.options.logger})
		if err != nil {
			return nil, fmt.Errorf("census: %w", err)
		}
		e.doc = doc
		e.ownsDoc = true
		e.docOpened = true
	}
	if n := e.doc.PageCount(); e.options.page > n {
		return nil, fmt.Errorf("census: page %d out of range (document has %d pages)", e.options.page, n)
	}
	page, err := e.doc.Page(e.options.page)
	if err != nil {
		return nil, fmt.Errorf("census: reading page %d: %w", e.options.page, err)
	}
	return page, nil
}

// Close releases the document if the Extractor opened it. It is safe to
// call Close multiple times.
func (e *Extractor) Close() error {
	if e.ownsDoc && e.doc != nil {
		err := e.doc.Close()
		e.doc = nil
		e.ownsDoc = false
		e.docOpened = false
		return err
	}
	return nil
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Outcome is the result of running one strategy on the page.
type Outcome struct {
	Strategy string
	Result   extract.Result
	Records  []model.Record
	Tally    assemble.Tally
}

// Productive reports whether the strategy yielded at least one record.
func (o Outcome) Productive() bool { return len(o.Records) > 0 }

// outcomes runs the strategies in order, yielding each outcome. Warnings
// are appended to *warnings. Extraction errors are fatal and end the
// sequence.
func (e *Extractor) outcomes(page extract.Page, log *zap.Logger, warnings *[]Warning) iter.Seq2[Outcome, error] {
	width := e.options.schema.Width()
	pageNum := page.Number()
	m := e.options.metrics

	return func(yield func(Outcome, error) bool) {
		for _, s := range e.options.resolveStrategies() {
			name := s.Name()
			slog := log.With(zap.String("strategy", name))

			res, err := s.Extract(page, width)
			if err != nil {
				yield(Outcome{Strategy: name}, fmt.Errorf("census: %s strategy: %w", name, err))
				return
			}

			o := Outcome{Strategy: name, Result: res}
			if !res.Found() {
				slog.Info("no table found")
				*warnings = append(*warnings, Warning{Page: pageNum, Strategy: name, Message: "no table found"})
				if !yield(o, nil) {
					return
				}
				continue
			}

			o.Records, o.Tally = assemble.All(res.Rows(), width)
			for _, r := range o.Tally.Rejected {
				*warnings = append(*warnings, Warning{
					Page:     pageNum,
					Strategy: name,
					Message:  fmt.Sprintf("row %d %q rejected: %s", r.Origin.Index, r.Label, r.Reason),
				})
			}
			if !o.Productive() {
				*warnings = append(*warnings, Warning{Page: pageNum, Strategy: name,
					Message: fmt.Sprintf("%d rows extracted, none accepted", res.Len())})
			}
			if m != nil {
				m.RowsExtracted.WithLabelValues(name).Add(float64(res.Len()))
				m.Records.WithLabelValues(assemble.Accepted.String()).Add(float64(o.Tally.Accepted))
				m.Records.WithLabelValues(assemble.RejectedLabel.String()).Add(float64(o.Tally.RejectedBy(assemble.RejectedLabel)))
				m.Records.WithLabelValues(assemble.RejectedAllNull.String()).Add(float64(o.Tally.RejectedBy(assemble.RejectedAllNull)))
				m.NullCells.Add(float64(o.Tally.NullCells))
			}
			slog.Info("rows assembled",
				zap.Int("extracted", res.Len()),
				zap.Int("accepted", o.Tally.Accepted),
				zap.Int("rejected", len(o.Tally.Rejected)),
				zap.Int64("null_cells", o.Tally.NullCells),
				zap.Int("padded", o.Tally.PaddedRows),
				zap.Int("truncated", o.Tally.Truncated))

			if !yield(o, nil) {
				return
			}
		}
	}
}

// prepare checks the configuration and resolves the page.
func (e *Extractor) prepare() (extract.Page, error) {
	if e.err != nil {
		return nil, e.err
	}
	if !e.options.hasDataset {
		return nil, errors.New("census: no dataset or schema configured")
	}
	return e.ensurePage()
}

// Outcomes runs every configured strategy and returns each outcome in
// order, without loading anything.
func (e *Extractor) Outcomes() ([]Outcome, []Warning, error) {
	defer e.Close()
	page, err := e.prepare()
	if err != nil {
		return nil, nil, err
	}

	var (
		warnings []Warning
		out      []Outcome
	)
	log := e.options.logger.With(zap.Int("page", page.Number()))
	for o, err := range e.outcomes(page, log, &warnings) {
		if err != nil {
			return nil, warnings, err
		}
		out = append(out, o)
		if e.options.stopAtFirst && o.Productive() {
			break
		}
	}
	return out, warnings, nil
}

// Records returns the records an ingestion run would leave in the table:
// those of the last productive strategy, or the first with StopAtFirst.
// It returns ErrNoData when no strategy yields records.
func (e *Extractor) Records() ([]model.Record, []Warning, error) {
	outcomes, warnings, err := e.Outcomes()
	if err != nil {
		return nil, warnings, err
	}
	for _, o := range slices.Backward(outcomes) {
		if o.Productive() {
			return o.Records, warnings, nil
		}
	}
	return nil, warnings, ErrNoData
}

// StrategyReport summarizes one strategy in an ingestion run.
type StrategyReport struct {
	Strategy  string `json:"strategy"`
	Found     bool   `json:"found"`
	Extracted int    `json:"extracted"`
	Accepted  int    `json:"accepted"`
	Rejected  int    `json:"rejected"`
	NullCells int64  `json:"null_cells"`
	Loaded    int    `json:"loaded"`
}

// Report summarizes an ingestion run.
type Report struct {
	RunID      string           `json:"run_id"`
	Dataset    string           `json:"dataset"`
	Table      string           `json:"table"`
	Page       int              `json:"page"`
	Strategies []StrategyReport `json:"strategies"`
	// Winner is the strategy whose records remain in the table.
	Winner   string        `json:"winner,omitempty"`
	Loaded   int           `json:"loaded"`
	Duration time.Duration `json:"duration"`
}

// Ingest creates the target table if needed, then runs the strategies in
// order. Each strategy that yields records replaces the table's contents
// through sink, so the last productive strategy wins unless StopAtFirst is
// set. A sink error aborts the run; the failed replace leaves the table as
// it was. ErrNoData is returned when no strategy yielded records.
func (e *Extractor) Ingest(ctx context.Context, sink store.Sink) (Report, []Warning, error) {
	defer e.Close()
	start := time.Now()
	report := Report{
		RunID:   uuid.NewString(),
		Dataset: e.options.dataset,
		Table:   e.options.schema.Table,
		Page:    e.options.page,
	}
	log := e.options.logger.With(
		zap.String("run_id", report.RunID),
		zap.String("dataset", report.Dataset),
		zap.Int("page", report.Page))

	status := metrics.StatusFailure
	defer func() {
		report.Duration = time.Since(start)
		e.options.metrics.ObserveRun(report.Dataset, status, report.Duration)
	}()

	page, err := e.prepare()
	if err != nil {
		log.Error("ingest failed", zap.Error(err))
		return report, nil, err
	}
	if err := sink.EnsureSchema(ctx); err != nil {
		log.Error("ingest failed", zap.Error(err))
		return report, nil, fmt.Errorf("census: %w", err)
	}
	log.Info("ingest started", zap.String("table", report.Table), zap.Int("width", e.options.schema.Width()))

	var warnings []Warning
	for o, err := range e.outcomes(page, log, &warnings) {
		if err != nil {
			log.Error("ingest failed", zap.Error(err))
			return report, warnings, err
		}
		sr := StrategyReport{
			Strategy:  o.Strategy,
			Found:     o.Result.Found(),
			Extracted: o.Result.Len(),
			Accepted:  o.Tally.Accepted,
			Rejected:  len(o.Tally.Rejected),
			NullCells: o.Tally.NullCells,
		}
		if o.Productive() {
			n, err := sink.ReplaceAll(ctx, slices.Values(o.Records))
			if err != nil {
				report.Strategies = append(report.Strategies, sr)
				log.Error("ingest failed", zap.String("strategy", o.Strategy), zap.Error(err))
				return report, warnings, fmt.Errorf("census: loading %s from %s strategy: %w", report.Table, o.Strategy, err)
			}
			sr.Loaded = n
			report.Winner = o.Strategy
			report.Loaded = n
			log.Info("table replaced", zap.String("strategy", o.Strategy), zap.Int("rows", n))
		}
		report.Strategies = append(report.Strategies, sr)
		if e.options.stopAtFirst && o.Productive() {
			break
		}
	}

	if report.Winner == "" {
		status = metrics.StatusNoData
		log.Warn("no records loaded", zap.Int("warnings", len(warnings)))
		return report, warnings, ErrNoData
	}
	status = metrics.StatusSuccess
	if m := e.options.metrics; m != nil {
		m.TableRows.WithLabelValues(report.Table).Set(float64(report.Loaded))
	}
	log.Info("ingest finished",
		zap.String("winner", report.Winner),
		zap.Int("loaded", report.Loaded),
		zap.Duration("elapsed", time.Since(start)))
	return report, warnings, nil
}
