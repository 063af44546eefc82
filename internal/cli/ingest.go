package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tsawler/census"
	"github.com/tsawler/census/datasets"
	"github.com/tsawler/census/model"
	"github.com/tsawler/census/store"
)

// extractFlags are shared by ingest and extract.
type extractFlags struct {
	dataset     string
	page        int
	strategies  []string
	stopAtFirst bool
}

func (f *extractFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.dataset, "dataset", "d", "", "dataset name (see 'census datasets')")
	flags.IntVarP(&f.page, "page", "p", 0, "1-based page number (default: the dataset's page)")
	flags.StringSliceVarP(&f.strategies, "strategy", "s", nil, "strategies to run in order: text-line, grid")
	flags.BoolVar(&f.stopAtFirst, "stop-at-first", false, "stop after the first strategy that yields records")
	_ = cmd.MarkFlagRequired("dataset")
}

// extractor configures an Extractor for file from the flags.
func (a *app) extractor(cmd *cobra.Command, f *extractFlags, file string) (*census.Extractor, datasets.Dataset, error) {
	ds, err := datasets.Get(f.dataset)
	if err != nil {
		return nil, datasets.Dataset{}, err
	}
	e := census.Open(file).Dataset(ds).Logger(a.log)
	if cmd.Flags().Changed("page") {
		e = e.Page(f.page)
	}
	if len(f.strategies) > 0 {
		e = e.StrategyNames(f.strategies...)
	}
	if f.stopAtFirst || a.cfg.Ingest.StopAtFirst {
		e = e.StopAtFirst()
	}
	return e, ds, nil
}

func (a *app) printWarnings(warnings []census.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(a.stderr, "warning: %s\n", w)
	}
}

func (a *app) newIngestCommand() *cobra.Command {
	var f extractFlags
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Extract a dataset's table and replace its database table",
		Long: `Extract the dataset's table from one page of <file> and load it.

Each strategy that yields records replaces the whole table inside a single
transaction, so the table always holds exactly one strategy's records. The
table is left untouched when no strategy yields records.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ds, err := a.extractor(cmd, &f, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			st, err := store.Open(ctx, a.cfg.Database, ds.Schema, store.WithLogger(a.log))
			if err != nil {
				return err
			}
			defer st.Close()

			report, warnings, err := e.Ingest(ctx, st)
			a.printWarnings(warnings)
			if err != nil {
				if errors.Is(err, census.ErrNoData) {
					a.log.Warn("nothing loaded", zap.String("table", ds.Table))
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) newExtractCommand() *cobra.Command {
	var (
		f      extractFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the records a dataset's table would be loaded with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "csv" {
				return fmt.Errorf("unknown output format %q, use json or csv", output)
			}
			e, ds, err := a.extractor(cmd, &f, args[0])
			if err != nil {
				return err
			}
			records, warnings, err := e.Records()
			a.printWarnings(warnings)
			if err != nil {
				return err
			}
			if output == "csv" {
				return writeCSV(cmd.OutOrStdout(), ds.Schema, records)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or csv")
	return cmd
}

// writeCSV writes records under a header of the schema's column names.
// Null fields are written as empty cells.
func writeCSV(w io.Writer, schema model.Schema, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{schema.LabelColumn}, schema.ColumnNames()...)); err != nil {
		return err
	}
	row := make([]string, schema.Width()+1)
	for _, r := range records {
		row[0] = r.Label
		for i := range schema.Width() {
			row[i+1] = ""
			if i < len(r.Fields) && r.Fields[i].Valid() {
				row[i+1] = r.Fields[i].String()
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
