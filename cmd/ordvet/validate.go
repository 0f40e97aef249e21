package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/ordvet/internal/document"
	"github.com/dgallion1/ordvet/internal/llm"
	"github.com/dgallion1/ordvet/internal/queue"
	"github.com/dgallion1/ordvet/internal/validate"
)

func validateCmd() *cobra.Command {
	var (
		jurisdiction string
		state        string
		kind         string
		acronym      string
		source       string
		threshold    float64
		inFlight     int
	)

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check whether a document's legal text applies to a jurisdiction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := apiKey()
			if err != nil {
				return err
			}
			if jurisdiction == "" || state == "" {
				return fmt.Errorf("--jurisdiction and --state are required")
			}

			path := args[0]
			loader, err := document.ForFile(path)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			doc, err := loader.Load(f, path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			if source != "" {
				doc.SetAttr("source", source)
			}

			log := newLogger()
			registry := queue.NewRegistry()
			client := llm.NewClient(key, flagModel, registry.GetOrCreate(llm.ServiceName, inFlight), log)

			var pass bool
			switch kind {
			case "county":
				pass, err = validate.NewCountyValidator(client, threshold, log).
					Check(cmd.Context(), doc, jurisdiction, state)
			case "district":
				pass, err = validate.NewDistrictValidator(client, threshold, log).
					Check(cmd.Context(), doc, jurisdiction, acronym, state)
			default:
				return fmt.Errorf("unknown jurisdiction kind %q", kind)
			}
			if err != nil {
				return err
			}

			out := map[string]any{
				"file":         path,
				"jurisdiction": jurisdiction,
				"state":        state,
				"kind":         kind,
				"pages":        len(doc.Pages()),
				"pass":         pass,
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			if !pass {
				os.Exit(2)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "jurisdiction name, e.g. \"Box Elder\"")
	cmd.Flags().StringVar(&state, "state", "", "state name, e.g. \"Utah\"")
	cmd.Flags().StringVar(&kind, "kind", "county", "jurisdiction kind: county or district")
	cmd.Flags().StringVar(&acronym, "acronym", "", "district acronym (district kind only)")
	cmd.Flags().StringVar(&source, "source", "", "source URL of the document")
	cmd.Flags().Float64Var(&threshold, "threshold", validate.DefaultScoreThreshold, "page vote score threshold")
	cmd.Flags().IntVar(&inFlight, "max-in-flight", 10, "max concurrent LLM requests")
	return cmd
}
