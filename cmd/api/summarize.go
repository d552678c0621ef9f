package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"doc-summarizer/internal/ingest"
)

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize FILE",
		Short: "Summarize a local PDF or text file and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := buildComponents()
			if err != nil {
				return err
			}
			defer comp.Close()

			loader := ingest.NewLoader(comp.service, cfg.Server.MaxUploadBytes())
			result, err := loader.SummarizeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
