package census

import (
	"slices"

	"go.uber.org/zap"

	"github.com/tsawler/census/datasets"
	"github.com/tsawler/census/extract"
	"github.com/tsawler/census/metrics"
	"github.com/tsawler/census/model"
	"github.com/tsawler/census/tables"
)

// options holds extractor configuration.
type options struct {
	// Target
	dataset    string
	schema     model.Schema
	page       int
	header     []string
	skipRows   int
	hasDataset bool

	// Strategies, in order; nil means text-line then grid.
	strategies   []extract.Strategy
	gridSettings []tables.Settings
	stopAtFirst  bool

	logger  *zap.Logger
	metrics *metrics.Metrics
}

func defaultOptions() options {
	return options{
		page:     1,
		skipRows: 2,
		logger:   zap.NewNop(),
	}
}

// clone creates a deep copy of options.
func (o options) clone() options {
	n := o
	n.schema.Columns = slices.Clone(o.schema.Columns)
	n.header = slices.Clone(o.header)
	n.strategies = slices.Clone(o.strategies)
	n.gridSettings = slices.Clone(o.gridSettings)
	return n
}

func (o *options) setDataset(d datasets.Dataset) {
	o.dataset = d.Name
	o.schema = d.Schema
	o.schema.Columns = slices.Clone(d.Columns)
	o.page = d.Page
	o.header = slices.Clone(d.HeaderTokens)
	o.skipRows = d.Skip()
	o.hasDataset = true
}

// resolveStrategies returns the strategies to run. Grid strategies are
// copied so dataset header hints and grid settings never leak into the
// caller's values.
func (o options) resolveStrategies() []extract.Strategy {
	strategies := o.strategies
	if strategies == nil {
		strategies = extract.Default()
	}
	out := make([]extract.Strategy, len(strategies))
	for i, s := range strategies {
		g, ok := s.(*extract.Grid)
		if !ok {
			out[i] = s
			continue
		}
		cp := *g
		if o.strategies == nil {
			// Built-in grid: apply the dataset's hints.
			cp.SkipRows = o.skipRows
			if len(o.header) > 0 {
				cp.HeaderTokens = o.header
			}
		}
		if len(o.gridSettings) > 0 {
			cp.Settings = o.gridSettings
		}
		out[i] = &cp
	}
	return out
}
