package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/importer"
)

func newImportCommand() *cobra.Command {
	var (
		sheet       string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Create cards from an xlsx or csv file (learner_id, content_id, content_type)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			imp := importer.New(st.service(cfg), importer.WithSheet(sheet), importer.WithConcurrency(concurrency))
			result, err := imp.ImportFile(context.Background(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "imported %d of %d rows\n", result.Imported, result.Processed)
			for _, msg := range result.Errors {
				color.New(color.FgRed).Fprintln(out, "  "+msg)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "xlsx sheet name (defaults to the first sheet)")
	cmd.Flags().IntVar(&concurrency, "concurrency", importer.DefaultConcurrency, "cards created in parallel")
	return cmd
}
