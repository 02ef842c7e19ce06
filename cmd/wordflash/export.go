package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/models"
	"gopkg.in/yaml.v3"
)

type exportDocument struct {
	LearnerID string        `yaml:"learner_id"`
	Cards     []models.Card `yaml:"cards"`
}

func newExportCommand() *cobra.Command {
	var (
		learnerID string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump a learner's cards as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			cards, err := st.service(cfg).ListCards(context.Background(), learnerID)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeExport(w, exportDocument{LearnerID: learnerID, Cards: cards})
		},
	}
	cmd.Flags().StringVar(&learnerID, "learner", "", "learner ID")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	_ = cmd.MarkFlagRequired("learner")
	return cmd
}

func writeExport(w io.Writer, doc exportDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
