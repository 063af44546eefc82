package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tsawler/census/datasets"
	"github.com/tsawler/census/store"
)

func (a *app) newSchemaCommand() *cobra.Command {
	var (
		dataset string
		driver  string
	)
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the CREATE TABLE statement for a dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := datasets.Get(dataset)
			if err != nil {
				return err
			}
			if driver == "" {
				driver = a.cfg.Database.Driver
			}
			d, err := store.ParseDialect(driver)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), store.DDL(d, ds.Schema))
			return err
		},
	}
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "dataset name")
	cmd.Flags().StringVar(&driver, "driver", "", "SQL dialect: postgres, mysql or sqlite (default: database.driver)")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

func (a *app) newDatasetsCommand() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the known datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := datasets.List()
			if asYAML {
				data, err := datasets.Marshal(list)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTABLE\tPAGE\tCOLUMNS\tDESCRIPTION")
			for _, ds := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", ds.Name, ds.Table, ds.Page, ds.Width(), ds.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print definitions as YAML")
	return cmd
}
